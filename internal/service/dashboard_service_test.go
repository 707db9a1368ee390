package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-offer-match/internal/model"
)

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardSummary{}, *empty)

	f.seedCatalog(t)
	f.ingestOne(t, model.OfferRecord{SupplierSku: "X100", Description: "Thermal Printer X100"})
	f.ingestOne(t, model.OfferRecord{Description: "Label maker refill"})

	got, err := f.dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardSummary{TotalOffers: 2, Matched: 1, NeedsReview: 1, Products: 4}, *got)

	t.Run("served from cache until invalidated", func(t *testing.T) {
		f.cache.summary = &model.DashboardSummary{TotalOffers: 99}
		cached, err := f.dashboard.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(99), cached.TotalOffers)

		f.ingestOne(t, model.OfferRecord{Description: "Unrelated widget"})
		fresh, err := f.dashboard.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), fresh.TotalOffers)
	})
}

func TestReviewQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	queue, err := f.dashboard.ReviewQueue(ctx)
	require.NoError(t, err)
	assert.NotNil(t, queue)
	assert.Empty(t, queue)

	products := f.seedCatalog(t)
	first := f.ingestOne(t, model.OfferRecord{Description: "Label maker refill"})
	f.ingestOne(t, model.OfferRecord{SupplierSku: "X100", Description: "Thermal Printer X100"})
	second := f.ingestOne(t, model.OfferRecord{Description: "Thermal paper roll", Pack: floatPtr(10)})

	queue, err = f.dashboard.ReviewQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)

	assert.Equal(t, *first.OfferID, queue[0].Offer.ID)
	assert.Equal(t, *second.OfferID, queue[1].Offer.ID)

	item := queue[0]
	require.NotNil(t, item.TopMatch)
	require.NotNil(t, item.Product)
	assert.Equal(t, products[1].ID, item.Product.ID)
	assert.Equal(t, item.TopMatch.ID, item.Candidates[0].ID)
	for i := 1; i < len(item.Candidates); i++ {
		assert.GreaterOrEqual(t, item.Candidates[i-1].Score, item.Candidates[i].Score)
	}

	assert.Equal(t, products[2].ID, queue[1].Product.ID)

	t.Run("rejected top match is no longer proposed", func(t *testing.T) {
		require.Greater(t, len(item.Candidates), 1)
		_, err := f.review.Reject(ctx, item.TopMatch.ID, reviewer)
		require.NoError(t, err)

		queue, err := f.dashboard.ReviewQueue(ctx)
		require.NoError(t, err)
		require.Len(t, queue, 2)

		next := queue[0]
		require.NotNil(t, next.Offer.BestMatchID)
		require.NotNil(t, next.TopMatch)
		assert.Equal(t, *next.Offer.BestMatchID, next.TopMatch.ID)
		assert.Equal(t, model.MatchCandidate, next.TopMatch.Status)
		assert.NotEqual(t, item.TopMatch.ID, next.TopMatch.ID)
		require.NotNil(t, next.Product)
		assert.Equal(t, next.TopMatch.ProductID, next.Product.ID)
		assert.Len(t, next.Candidates, len(item.Candidates))

		item = next
	})

	t.Run("approved offers leave the queue", func(t *testing.T) {
		_, err := f.review.Approve(ctx, item.TopMatch.ID, reviewer)
		require.NoError(t, err)

		queue, err := f.dashboard.ReviewQueue(ctx)
		require.NoError(t, err)
		require.Len(t, queue, 1)
		assert.Equal(t, *second.OfferID, queue[0].Offer.ID)
	})
}

func TestMatched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	matched, err := f.dashboard.Matched(ctx)
	require.NoError(t, err)
	assert.NotNil(t, matched)
	assert.Empty(t, matched)

	products := f.seedCatalog(t)
	auto := f.ingestOne(t, model.OfferRecord{SupplierSku: "X100", Description: "Thermal Printer X100"})
	f.ingestOne(t, model.OfferRecord{Description: "Label maker refill"})

	matched, err = f.dashboard.Matched(ctx)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, *auto.OfferID, matched[0].Offer.ID)
	assert.Equal(t, model.MatchApproved, matched[0].Match.Status)
	assert.Equal(t, products[0].ID, matched[0].Product.ID)
}
