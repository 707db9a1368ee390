package matching

import (
	"sort"

	"github.com/google/uuid"

	"go-offer-match/internal/model"
)

// Candidate is one proposed product for an offer.
type Candidate struct {
	ProductID uuid.UUID
	Score     float64
	Reasons   []string
	Method    string
}

// Catalog is an immutable snapshot of the product catalog with product
// tokens computed once. Iteration order is the order products were given in
// and is the tie-break for equal scores.
type Catalog struct {
	entries []catalogEntry
}

type catalogEntry struct {
	product *model.Product
	tokens  []string
}

// NewCatalog snapshots the given products.
func NewCatalog(products []model.Product) *Catalog {
	c := &Catalog{entries: make([]catalogEntry, len(products))}
	for i := range products {
		p := products[i]
		c.entries[i] = catalogEntry{product: &p, tokens: ProductTokens(&p)}
	}
	return c
}

// Len returns the number of products in the snapshot.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Rank scores the offer against every product of the catalog and returns the
// top candidates by descending score. Equal scores keep catalog order.
func (s *Scorer) Rank(offer OfferInput, catalog *Catalog) []Candidate {
	if catalog.Len() == 0 {
		return nil
	}

	offerTokens := offer.Tokens()
	scored := make([]Candidate, 0, catalog.Len())
	for _, e := range catalog.entries {
		sc := s.score(offer, offerTokens, e.product, e.tokens)
		if sc.Value < s.minScore {
			continue
		}
		scored = append(scored, Candidate{
			ProductID: e.product.ID,
			Score:     sc.Value,
			Reasons:   sc.Reasons,
			Method:    model.MethodHeuristic,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > s.topN {
		scored = scored[:s.topN]
	}
	return scored
}
