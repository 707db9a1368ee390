package service

import (
	"context"

	"go.uber.org/zap"

	"go-offer-match/internal/events"
	"go-offer-match/internal/model"
)

// SummaryCache caches the dashboard summary between writes.
type SummaryCache interface {
	GetSummary(ctx context.Context) (*model.DashboardSummary, error)
	SetSummary(ctx context.Context, summary model.DashboardSummary) error
	Invalidate(ctx context.Context) error
}

type noCache struct{}

func (noCache) GetSummary(context.Context) (*model.DashboardSummary, error) { return nil, nil }
func (noCache) SetSummary(context.Context, model.DashboardSummary) error     { return nil }
func (noCache) Invalidate(context.Context) error                             { return nil }

// Actor is the authenticated user behind a command.
type Actor struct {
	ID    string
	Name  string
	Email string
}

func (a Actor) event() *events.Actor {
	if a.ID == "" {
		return nil
	}
	return &events.Actor{ID: a.ID, Name: a.Name, Email: a.Email}
}

func (a Actor) label() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Email != "" {
		return a.Email
	}
	return "system"
}

// notifier runs the side effects of a committed write. Failures are logged,
// never returned: the write already happened.
type notifier struct {
	publisher events.Publisher
	cache     SummaryCache
	log       *zap.Logger
}

func newNotifier(publisher events.Publisher, cache SummaryCache, log *zap.Logger) notifier {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if cache == nil {
		cache = noCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return notifier{publisher: publisher, cache: cache, log: log}
}

func (n notifier) committed(ctx context.Context, evts ...events.Event) {
	// side effects outlive a canceled request
	ctx = context.WithoutCancel(ctx)

	if err := n.cache.Invalidate(ctx); err != nil {
		n.log.Warn("summary cache invalidation failed", zap.Error(err))
	}
	for _, e := range evts {
		if err := n.publisher.Publish(ctx, e); err != nil {
			n.log.Warn("event publish failed", zap.String("type", string(e.Type)), zap.String("key", e.Key), zap.Error(err))
		}
	}
}
