package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"go-offer-match/internal/events"
	"go-offer-match/internal/matching"
	"go-offer-match/internal/model"
	"go-offer-match/internal/repository/memory"
)

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.got))
	for i, e := range p.got {
		out[i] = e.Type
	}
	return out
}

type recordingCache struct {
	mu          sync.Mutex
	summary     *model.DashboardSummary
	invalidated int
}

func (c *recordingCache) GetSummary(context.Context) (*model.DashboardSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return nil, nil
	}
	s := *c.summary
	return &s, nil
}

func (c *recordingCache) SetSummary(_ context.Context, s model.DashboardSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = &s
	return nil
}

func (c *recordingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = nil
	c.invalidated++
	return nil
}

var reviewer = Actor{ID: "11111111-1111-1111-1111-111111111111", Name: "Rita Reviewer", Email: "rita@example.com"}

// fixture wires every service over one memory store.
type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	cache     *recordingCache
	catalog   CatalogService
	ingestion IngestionService
	review    ReviewService
	dashboard DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.New(),
		publisher: &recordingPublisher{},
		cache:     &recordingCache{},
	}
	scorer := matching.NewScorer(matching.ScorerConfig{})
	f.catalog = NewCatalogService(f.store, f.publisher, f.cache, nil)
	f.ingestion = NewIngestionService(f.store, scorer, IngestionConfig{Workers: 4}, f.publisher, f.cache, nil, nil)
	f.review = NewReviewService(f.store, f.publisher, f.cache, nil, nil)
	f.dashboard = NewDashboardService(f.store, f.cache, nil)
	return f
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// seedCatalog loads a small printer supplies catalog.
func (f *fixture) seedCatalog(t *testing.T) []model.Product {
	t.Helper()
	drafts := []model.ProductDraft{
		{SKU: "X100", Name: "Thermal Printer X100", Brand: "Acme", Category: "Printers"},
		{SKU: "LM-2", Name: "Label Maker Pro", Brand: "Brother", AltSkus: []string{"LBL2"}},
		{SKU: "PR-80", Name: "Thermal Paper Roll", Brand: "Acme", PkgSize: intPtr(10)},
		{SKU: "TN-1", Name: "Toner Cartridge Black", Brand: "Canon"},
	}
	_, err := f.catalog.Seed(context.Background(), drafts, Actor{})
	require.NoError(t, err)

	products, err := f.catalog.ListProducts(context.Background())
	require.NoError(t, err)
	return products
}

// ingestOne ingests a single record and returns its result.
func (f *fixture) ingestOne(t *testing.T, rec model.OfferRecord) RecordResult {
	t.Helper()
	res, err := f.ingestion.Ingest(context.Background(), []model.OfferRecord{rec}, reviewer)
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	require.Empty(t, res.Results[0].Error)
	return res.Results[0]
}
