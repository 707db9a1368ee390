package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-offer-match/internal/config"
	"go-offer-match/internal/model"
	"go-offer-match/internal/service"
)

var operator = service.Actor{ID: "ops", Name: "Ops"}

func memoryConfig() *config.Config {
	return &config.Config{
		StoreDriver:   "memory",
		IngestWorkers: 2,
		Match: config.MatchConfig{
			AutoApproveThreshold: 0.88,
			TopN:                 3,
			PrimaryWeight:        1.0,
			AlternateWeight:      0.95,
			SimilarityWeight:     0.8,
			BrandWeight:          0.1,
			PackSizeWeight:       0.05,
			ScoreCap:             1.2,
		},
	}
}

func TestOpenStore(t *testing.T) {
	cfg := memoryConfig()
	store, closeFn, err := OpenStore(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, closeFn())

	cfg.StoreDriver = "sqlite"
	_, _, err = OpenStore(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewServicesWiresOneStore(t *testing.T) {
	cfg := memoryConfig()
	store, _, err := OpenStore(cfg, zap.NewNop())
	require.NoError(t, err)

	svc := NewServices(cfg, store, Options{}, zap.NewNop())
	ctx := context.Background()

	_, err = svc.Catalog.CreateProduct(ctx, model.ProductDraft{SKU: "X100", Name: "Thermal Printer X100"}, operator)
	require.NoError(t, err)

	res, err := svc.Ingestion.Ingest(ctx, []model.OfferRecord{{SupplierSku: "X100", Description: "Thermal Printer X100"}}, operator)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matched)

	summary, err := svc.Dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Matched)
	assert.Equal(t, int64(1), summary.Products)

	require.NoError(t, svc.Auth.EnsureAdmin(ctx, "admin@example.com", "admin123"))
	login, err := svc.Auth.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}
