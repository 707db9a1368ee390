package matching

import (
	"fmt"
	"strings"

	"go-offer-match/internal/model"
)

// Default scoring parameters.
const (
	DefaultPrimaryWeight    = 1.0
	DefaultAlternateWeight  = 0.95
	DefaultSimilarityWeight = 0.8
	DefaultBrandBonus       = 0.1
	DefaultPackSizeBonus    = 0.05
	DefaultScoreCap         = 1.2
	DefaultTopN             = 3
)

// Weights are the per-signal contributions. Every signal is bounded by its
// own weight, and the sum is bounded by Cap.
type Weights struct {
	Primary    float64
	Alternate  float64 // also used for upc hits
	Similarity float64 // multiplied by the Jaccard similarity
	Brand      float64
	PackSize   float64
	Cap        float64
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Primary:    DefaultPrimaryWeight,
		Alternate:  DefaultAlternateWeight,
		Similarity: DefaultSimilarityWeight,
		Brand:      DefaultBrandBonus,
		PackSize:   DefaultPackSizeBonus,
		Cap:        DefaultScoreCap,
	}
}

// ScorerConfig holds configuration for the scorer
type ScorerConfig struct {
	Weights  Weights
	TopN     int
	MinScore float64
}

// Scorer scores offers against products and ranks catalog candidates.
// It is safe for concurrent use.
type Scorer struct {
	weights  Weights
	topN     int
	minScore float64
}

// NewScorer creates a scorer, filling zero values with defaults.
func NewScorer(config ScorerConfig) *Scorer {
	w := config.Weights
	def := DefaultWeights()
	if w == (Weights{}) {
		w = def
	}
	if w.Primary <= 0 {
		w.Primary = def.Primary
	}
	if w.Alternate <= 0 {
		w.Alternate = def.Alternate
	}
	if w.Similarity <= 0 {
		w.Similarity = def.Similarity
	}
	if w.Brand < 0 {
		w.Brand = def.Brand
	}
	if w.PackSize < 0 {
		w.PackSize = def.PackSize
	}
	if w.Cap <= 0 {
		w.Cap = def.Cap
	}

	topN := config.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	minScore := config.MinScore
	if minScore < 0 {
		minScore = 0
	}

	return &Scorer{weights: w, topN: topN, minScore: minScore}
}

// Weights returns the effective weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// OfferInput is the matchable part of an offer.
type OfferInput struct {
	Supplier    string
	SupplierSku string
	Description string
	UOM         string
	Pack        *float64
}

// OfferInputFrom extracts the matchable fields of a persisted offer.
func OfferInputFrom(o *model.Offer) OfferInput {
	return OfferInput{
		Supplier:    o.Supplier,
		SupplierSku: o.SupplierSku,
		Description: o.Description,
		UOM:         o.UOM,
		Pack:        o.Pack,
	}
}

// Tokens returns the normalized offer token sequence.
func (o OfferInput) Tokens() []string {
	return JoinTokens(o.Description, o.SupplierSku, o.Supplier, o.UOM)
}

// ProductTokens returns the normalized product token sequence.
func ProductTokens(p *model.Product) []string {
	return JoinTokens(
		p.Name,
		p.Brand,
		p.Category,
		strings.Join(p.AltSkus, " "),
		strings.Join(p.Synonyms, " "),
		p.UPC,
	)
}

// Score is the outcome of comparing one offer with one product.
type Score struct {
	Value   float64
	Reasons []string
}

// Score compares an offer with a single product.
func (s *Scorer) Score(offer OfferInput, p *model.Product) Score {
	return s.score(offer, offer.Tokens(), p, ProductTokens(p))
}

func (s *Scorer) score(offer OfferInput, offerTokens []string, p *model.Product, productTokens []string) Score {
	var reasons []string
	total := 0.0

	// Identifier match (highest weight)
	switch kind := MatchIdentifier(offer.SupplierSku, p); kind {
	case IdentifierPrimary:
		total += s.weights.Primary
		reasons = append(reasons, "SKU match: sku")
	case IdentifierAlternate:
		total += s.weights.Alternate
		reasons = append(reasons, "SKU match: altSku")
	case IdentifierUPC:
		total += s.weights.Alternate
		reasons = append(reasons, "SKU match: upc")
	}

	// Name/description token similarity
	if sim := Jaccard(offerTokens, productTokens); sim > 0 {
		total += sim * s.weights.Similarity
		reasons = append(reasons, fmt.Sprintf("Name similarity: %.0f%%", sim*100))
	}

	// Brand mention
	if p.Brand != "" && strings.Contains(strings.ToLower(offer.Description), strings.ToLower(p.Brand)) {
		total += s.weights.Brand
		reasons = append(reasons, "Brand mention")
	}

	// Package size
	if offer.Pack != nil && p.PkgSize != nil && *offer.Pack == float64(*p.PkgSize) {
		total += s.weights.PackSize
		reasons = append(reasons, "Package size matches")
	}

	if total > s.weights.Cap {
		total = s.weights.Cap
	}
	return Score{Value: total, Reasons: reasons}
}
