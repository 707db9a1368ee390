package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"go-offer-match/internal/events"
	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
)

type CatalogService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, draft model.ProductDraft, actor Actor) (*model.Product, error)
	// Seed inserts every draft whose SKU is not in the catalog yet.
	Seed(ctx context.Context, drafts []model.ProductDraft, actor Actor) (*SeedResult, error)
}

type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type catalogService struct {
	store  repository.Store
	notify notifier
	log    *zap.Logger
}

func NewCatalogService(store repository.Store, publisher events.Publisher, cache SummaryCache, log *zap.Logger) CatalogService {
	n := newNotifier(publisher, cache, log)
	return &catalogService{store: store, notify: n, log: n.log}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.store.Products().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, draft model.ProductDraft, actor Actor) (*model.Product, error) {
	// 1. Validate draft
	if err := validate(draft); err != nil {
		return nil, err
	}

	// 2. Insert; the unique SKU index decides duplicates
	product := draft.ToProduct()
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID
	if err := s.store.Products().Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	// 3. Broadcast
	s.notify.committed(ctx, events.Event{
		Type:    events.ProductCreated,
		Key:     product.ID.String(),
		Actor:   actor.event(),
		Message: fmt.Sprintf("%s created product '%s'", actor.label(), product.Name),
		Data:    product,
	})
	return product, nil
}

func (s *catalogService) Seed(ctx context.Context, drafts []model.ProductDraft, actor Actor) (*SeedResult, error) {
	for i := range drafts {
		if err := validate(drafts[i]); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
	}

	result := &SeedResult{}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		*result = SeedResult{}
		for _, d := range drafts {
			_, err := tx.Products().FindBySKU(ctx, d.SKU)
			if err == nil {
				result.Skipped++
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}

			p := d.ToProduct()
			p.CreatedBy = actor.ID
			p.UpdatedBy = actor.ID
			if err := tx.Products().Create(ctx, p); err != nil {
				return fmt.Errorf("seed %s: %w", d.SKU, err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Created > 0 {
		s.notify.committed(ctx)
	}
	s.log.Info("catalog seeded", zap.Int("created", result.Created), zap.Int("skipped", result.Skipped))
	return result, nil
}
