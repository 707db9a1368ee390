package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-offer-match/internal/events"
	"go-offer-match/internal/model"
)

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.CreateProduct(ctx, model.ProductDraft{
		SKU:     "X100",
		Name:    "Thermal Printer X100",
		Brand:   "Acme",
		AltSkus: []string{"X-100"},
	}, reviewer)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, reviewer.ID, p.CreatedBy)
	assert.Equal(t, []string{"X-100"}, p.AltSkus)
	assert.NotNil(t, p.Attributes)

	assert.Equal(t, []events.Type{events.ProductCreated}, f.publisher.types())
	assert.Equal(t, 1, f.cache.invalidated)

	t.Run("duplicate sku", func(t *testing.T) {
		_, err := f.catalog.CreateProduct(ctx, model.ProductDraft{SKU: "X100", Name: "Again"}, reviewer)
		assert.ErrorIs(t, err, ErrDuplicateSKU)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := f.catalog.CreateProduct(ctx, model.ProductDraft{SKU: "NEW"}, reviewer)
		require.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "name", verr.Fields[0].FailedField)
	})

	t.Run("non positive package size", func(t *testing.T) {
		_, err := f.catalog.CreateProduct(ctx, model.ProductDraft{SKU: "NEW", Name: "New", PkgSize: intPtr(0)}, reviewer)
		assert.ErrorIs(t, err, ErrValidation)
	})

	products, err := f.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestListProductsEmpty(t *testing.T) {
	f := newFixture(t)
	products, err := f.catalog.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	products := f.seedCatalog(t)
	require.Len(t, products, 4)
	skus := make([]string, len(products))
	for i, p := range products {
		skus[i] = p.SKU
	}
	assert.Equal(t, []string{"X100", "LM-2", "PR-80", "TN-1"}, skus)

	t.Run("second run skips existing skus", func(t *testing.T) {
		res, err := f.catalog.Seed(ctx, []model.ProductDraft{
			{SKU: "X100", Name: "Thermal Printer X100"},
			{SKU: "NEW-1", Name: "Something New"},
		}, Actor{})
		require.NoError(t, err)
		assert.Equal(t, SeedResult{Created: 1, Skipped: 1}, *res)
	})

	t.Run("invalid draft aborts before writing", func(t *testing.T) {
		_, err := f.catalog.Seed(ctx, []model.ProductDraft{
			{SKU: "NEW-2", Name: "Fine"},
			{SKU: "NEW-3"},
		}, Actor{})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = f.store.Products().FindBySKU(ctx, "NEW-2")
		assert.Error(t, err)
	})

	n, err := f.store.Products().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
