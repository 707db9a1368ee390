package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-offer-match/internal/model"
)

func newTestCache(t *testing.T, ttl time.Duration) (*SummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSummaryCache(client, ttl), mr
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)

	got, err := c.GetSummary(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := model.DashboardSummary{TotalOffers: 5, Matched: 2, NeedsReview: 1, Products: 9}
	require.NoError(t, c.SetSummary(ctx, want))

	got, err = c.GetSummary(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	require.NoError(t, c.Invalidate(ctx))
	got, err = c.GetSummary(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSummaryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.SetSummary(ctx, model.DashboardSummary{Products: 1}))
	mr.FastForward(2 * time.Minute)

	got, err := c.GetSummary(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSummaryCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set(summaryKey, "not json"))
	got, err := c.GetSummary(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(summaryKey))
}

func TestNilSummaryCache(t *testing.T) {
	ctx := context.Background()
	var c *SummaryCache

	got, err := c.GetSummary(ctx)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.SetSummary(ctx, model.DashboardSummary{}))
	assert.NoError(t, c.Invalidate(ctx))
}

func TestSummaryCacheServerDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, err := c.GetSummary(ctx)
	assert.Error(t, err)
}
