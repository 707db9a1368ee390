package matching

import (
	"strings"

	"go-offer-match/internal/model"
)

// IdentifierKind tells which product identifier a supplier identifier hit.
type IdentifierKind string

const (
	IdentifierNone      IdentifierKind = "none"
	IdentifierPrimary   IdentifierKind = "primary"
	IdentifierAlternate IdentifierKind = "alternate"
	IdentifierUPC       IdentifierKind = "upc"
)

var identifierReplacer = strings.NewReplacer("-", "", "_", "")

// NormalizeIdentifier lowercases an identifier and strips whitespace,
// hyphens and underscores.
func NormalizeIdentifier(id string) string {
	id = strings.ToLower(id)
	id = strings.Join(strings.Fields(id), "")
	return identifierReplacer.Replace(id)
}

// MatchIdentifier compares a supplier identifier against the product's sku,
// then its alternate skus, then its upc, and reports the first hit.
func MatchIdentifier(supplierSku string, p *model.Product) IdentifierKind {
	s := NormalizeIdentifier(supplierSku)
	if s == "" || p == nil {
		return IdentifierNone
	}

	if s == NormalizeIdentifier(p.SKU) {
		return IdentifierPrimary
	}
	for _, alt := range p.AltSkus {
		if s == NormalizeIdentifier(alt) {
			return IdentifierAlternate
		}
	}
	if s == NormalizeIdentifier(p.UPC) {
		return IdentifierUPC
	}
	return IdentifierNone
}
