package model

import (
	"strings"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferNew         OfferStatus = "new"
	OfferNeedsReview OfferStatus = "needs_review"
	OfferMatched     OfferStatus = "matched"
)

// RawSource tags where an unparsed supplier record came from.
type RawSource string

const (
	RawSourceCSV    RawSource = "csv"
	RawSourceXLSX   RawSource = "xlsx"
	RawSourceText   RawSource = "text"
	RawSourceAI     RawSource = "ai"
	RawSourceManual RawSource = "manual"
	RawSourceAPI    RawSource = "api"
)

// RawRecord is the original supplier line kept for audit. The matching core
// never reads it.
type RawRecord struct {
	Source RawSource         `json:"source" validate:"omitempty,oneof=csv xlsx text ai manual api"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Offer is one supplier line item pending reconciliation.
type Offer struct {
	BaseModel
	Supplier    string      `gorm:"type:varchar(255)" json:"supplier"`
	SupplierSku string      `gorm:"type:varchar(100)" json:"supplier_sku,omitempty"`
	Description string      `gorm:"type:text;not null" json:"description"`
	Pack        *float64    `json:"pack,omitempty"`
	UOM         string      `gorm:"type:varchar(20)" json:"uom,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	Currency    string      `gorm:"type:varchar(10)" json:"currency,omitempty"`
	Notes       string      `gorm:"type:text" json:"notes,omitempty"`
	Raw         RawRecord   `gorm:"type:jsonb;serializer:json" json:"raw"`
	Tokens      []string    `gorm:"type:jsonb;serializer:json" json:"tokens"`
	Status      OfferStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	BestMatchID *uuid.UUID  `gorm:"type:uuid" json:"best_match_id,omitempty"`
}

// OfferRecord is one structured record handed over by the parsing
// collaborators. Only field shape is validated here.
type OfferRecord struct {
	Supplier    string     `json:"supplier"`
	SupplierSku string     `json:"supplier_sku,omitempty"`
	Description string     `json:"description" validate:"required,notblank"`
	Pack        *float64   `json:"pack,omitempty" validate:"omitempty,finite,gt=0"`
	UOM         string     `json:"uom,omitempty"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,finite"`
	Currency    string     `json:"currency,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Raw         *RawRecord `json:"raw,omitempty"`
}

// ToOffer builds a new Offer in status "new" with the given tokens.
func (r OfferRecord) ToOffer(tokens []string) *Offer {
	o := &Offer{
		Supplier:    strings.TrimSpace(r.Supplier),
		SupplierSku: strings.TrimSpace(r.SupplierSku),
		Description: strings.TrimSpace(r.Description),
		Pack:        r.Pack,
		UOM:         strings.TrimSpace(r.UOM),
		Price:       r.Price,
		Currency:    strings.TrimSpace(r.Currency),
		Notes:       r.Notes,
		Tokens:      tokens,
		Status:      OfferNew,
	}
	if r.Raw != nil {
		o.Raw = *r.Raw
	}
	if o.Raw.Source == "" {
		o.Raw.Source = RawSourceAPI
	}
	return o
}
