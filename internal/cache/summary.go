package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"go-offer-match/internal/model"
)

const summaryKey = "offer-match:dashboard:summary"

// SummaryCache keeps the dashboard summary in Redis. A nil cache or client
// behaves as an always-empty cache.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// GetSummary returns nil without error on a cache miss.
func (c *SummaryCache) GetSummary(ctx context.Context) (*model.DashboardSummary, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, summaryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary model.DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		// a corrupt entry is a miss; drop it
		_ = c.client.Del(ctx, summaryKey).Err()
		return nil, nil
	}
	return &summary, nil
}

func (c *SummaryCache) SetSummary(ctx context.Context, summary model.DashboardSummary) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey, raw, c.ttl).Err()
}

// Invalidate drops the cached summary. Every write to offers, matches or
// products must call it.
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, summaryKey).Err()
}
