package model

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchCandidate MatchStatus = "candidate"
	MatchApproved  MatchStatus = "approved"
	MatchRejected  MatchStatus = "rejected"
)

// Provenance tags for Match.Method.
const (
	MethodHeuristic    = "heuristic"
	MethodManualCreate = "manual-create"
)

// Match is a scored, directional link from one Offer to one Product.
// Matches are only ever status-transitioned, never deleted.
type Match struct {
	BaseModel
	OfferID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"offer_id"`
	ProductID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"product_id"`
	Rank       int         `gorm:"not null;default:0" json:"rank"`
	Score      float64     `gorm:"not null" json:"score"`
	Method     string      `gorm:"type:varchar(30);not null" json:"method"`
	Reasons    []string    `gorm:"type:jsonb;serializer:json" json:"reasons"`
	Status     MatchStatus `gorm:"type:varchar(20);not null" json:"status"`
	ReviewedBy string      `gorm:"type:varchar(255)" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time  `json:"reviewed_at,omitempty"`
}
