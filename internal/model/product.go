package model

// Product is a canonical catalog entry. It is read-only for the matching core.
type Product struct {
	BaseModel
	SKU        string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku" validate:"required,notblank"`
	Name       string            `gorm:"type:varchar(255);not null" json:"name" validate:"required,notblank"`
	Brand      string            `gorm:"type:varchar(255)" json:"brand"`
	Category   string            `gorm:"type:varchar(255)" json:"category,omitempty"`
	Unit       string            `gorm:"type:varchar(20)" json:"unit,omitempty"`
	PkgSize    *int              `json:"pkg_size,omitempty" validate:"omitempty,gt=0"`
	Attributes map[string]string `gorm:"type:jsonb;serializer:json" json:"attributes,omitempty"`
	AltSkus    []string          `gorm:"type:jsonb;serializer:json" json:"alt_skus"`
	Synonyms   []string          `gorm:"type:jsonb;serializer:json" json:"synonyms"`
	UPC        string            `gorm:"type:varchar(50)" json:"upc,omitempty"`
}

// ProductDraft is the caller supplied shape used to create a product,
// either from the catalog API or from an unmatched offer.
type ProductDraft struct {
	SKU      string `json:"sku" yaml:"sku" validate:"required,notblank"`
	Name     string `json:"name" yaml:"name" validate:"required,notblank"`
	Brand    string `json:"brand" yaml:"brand"`
	Category string `json:"category,omitempty" yaml:"category"`
	Unit     string `json:"unit,omitempty" yaml:"unit"`
	PkgSize  *int   `json:"pkg_size,omitempty" yaml:"pkg_size" validate:"omitempty,gt=0"`

	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes"`
	AltSkus    []string          `json:"alt_skus,omitempty" yaml:"alt_skus"`
	Synonyms   []string          `json:"synonyms,omitempty" yaml:"synonyms"`
	UPC        string            `json:"upc,omitempty" yaml:"upc"`
}

// ToProduct builds a new, not yet persisted Product from the draft.
func (d ProductDraft) ToProduct() *Product {
	p := &Product{
		SKU:        d.SKU,
		Name:       d.Name,
		Brand:      d.Brand,
		Category:   d.Category,
		Unit:       d.Unit,
		PkgSize:    d.PkgSize,
		Attributes: d.Attributes,
		AltSkus:    append([]string(nil), d.AltSkus...),
		Synonyms:   append([]string(nil), d.Synonyms...),
		UPC:        d.UPC,
	}
	if p.Attributes == nil {
		p.Attributes = map[string]string{}
	}
	return p
}
