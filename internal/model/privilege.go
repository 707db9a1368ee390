package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "match:review"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Privilege codes guarding the API.
const (
	PrivCatalogView   = "catalog:view"
	PrivCatalogCreate = "catalog:create"
	PrivOfferIngest   = "offer:ingest"
	PrivOfferView     = "offer:view"
	PrivMatchReview   = "match:review"
	PrivDashboardView = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivCatalogView, Name: "View Catalog"},
	{Code: PrivCatalogCreate, Name: "Create Product"},
	{Code: PrivOfferIngest, Name: "Ingest Offers"},
	{Code: PrivOfferView, Name: "View Offers"},
	{Code: PrivMatchReview, Name: "Review Matches"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}
