package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
)

// DashboardService serves the read projections. None of them carry
// business logic beyond joining persisted state.
type DashboardService interface {
	Summary(ctx context.Context) (*model.DashboardSummary, error)
	ReviewQueue(ctx context.Context) ([]model.ReviewItem, error)
	Matched(ctx context.Context) ([]model.MatchedItem, error)
}

type dashboardService struct {
	store repository.Store
	cache SummaryCache
	log   *zap.Logger
}

func NewDashboardService(store repository.Store, cache SummaryCache, log *zap.Logger) DashboardService {
	if cache == nil {
		cache = noCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &dashboardService{store: store, cache: cache, log: log}
}

func (s *dashboardService) Summary(ctx context.Context) (*model.DashboardSummary, error) {
	cached, err := s.cache.GetSummary(ctx)
	if err != nil {
		s.log.Warn("summary cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	counts, err := s.store.Offers().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count offers: %w", err)
	}
	products, err := s.store.Products().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	summary := model.DashboardSummary{
		Matched:     counts[model.OfferMatched],
		NeedsReview: counts[model.OfferNeedsReview],
		Products:    products,
	}
	for _, n := range counts {
		summary.TotalOffers += n
	}

	if err := s.cache.SetSummary(ctx, summary); err != nil {
		s.log.Warn("summary cache write failed", zap.Error(err))
	}
	return &summary, nil
}

// ReviewQueue lists offers awaiting review with their matches by descending
// score and the product behind the current proposal.
func (s *dashboardService) ReviewQueue(ctx context.Context) ([]model.ReviewItem, error) {
	offers, err := s.store.Offers().FindByStatus(ctx, model.OfferNeedsReview)
	if err != nil {
		return nil, fmt.Errorf("list review queue: %w", err)
	}
	items := make([]model.ReviewItem, 0, len(offers))
	if len(offers) == 0 {
		return items, nil
	}

	offerIDs := make([]uuid.UUID, len(offers))
	for i, o := range offers {
		offerIDs[i] = o.ID
	}
	matches, err := s.store.Matches().FindByOffers(ctx, offerIDs)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	byOffer := make(map[uuid.UUID][]model.Match, len(offers))
	for _, m := range matches {
		byOffer[m.OfferID] = append(byOffer[m.OfferID], m)
	}

	tops := make(map[uuid.UUID]*model.Match, len(offers))
	var productIDs []uuid.UUID
	for _, o := range offers {
		set := byOffer[o.ID]
		sort.SliceStable(set, func(i, j int) bool {
			if set[i].Score != set[j].Score {
				return set[i].Score > set[j].Score
			}
			return set[i].Rank < set[j].Rank
		})
		if top := topMatch(o, set); top != nil {
			tops[o.ID] = top
			productIDs = append(productIDs, top.ProductID)
		}
	}
	products, err := s.productsByID(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	for _, o := range offers {
		item := model.ReviewItem{Offer: o, Candidates: byOffer[o.ID]}
		if item.Candidates == nil {
			item.Candidates = []model.Match{}
		}
		if top := tops[o.ID]; top != nil {
			item.TopMatch = top
			if p, ok := products[top.ProductID]; ok {
				item.Product = &p
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// topMatch is the match the offer points at, or else its best open
// candidate. Rejected matches are never proposed. set is sorted by score.
func topMatch(o model.Offer, set []model.Match) *model.Match {
	if o.BestMatchID != nil {
		for i := range set {
			if set[i].ID == *o.BestMatchID && set[i].Status != model.MatchRejected {
				m := set[i]
				return &m
			}
		}
	}
	for i := range set {
		if set[i].Status == model.MatchCandidate {
			m := set[i]
			return &m
		}
	}
	return nil
}

// Matched lists matched offers with their approved match and product.
// Offers whose link cannot be resolved are left out.
func (s *dashboardService) Matched(ctx context.Context) ([]model.MatchedItem, error) {
	offers, err := s.store.Offers().FindByStatus(ctx, model.OfferMatched)
	if err != nil {
		return nil, fmt.Errorf("list matched offers: %w", err)
	}
	items := make([]model.MatchedItem, 0, len(offers))

	var matchIDs []uuid.UUID
	for _, o := range offers {
		if o.BestMatchID != nil {
			matchIDs = append(matchIDs, *o.BestMatchID)
		}
	}
	if len(matchIDs) == 0 {
		return items, nil
	}

	matches, err := s.store.Matches().FindByIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	byID := make(map[uuid.UUID]model.Match, len(matches))
	productIDs := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
		productIDs = append(productIDs, m.ProductID)
	}
	products, err := s.productsByID(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	for _, o := range offers {
		if o.BestMatchID == nil {
			continue
		}
		m, ok := byID[*o.BestMatchID]
		if !ok {
			continue
		}
		p, ok := products[m.ProductID]
		if !ok {
			continue
		}
		items = append(items, model.MatchedItem{Offer: o, Match: m, Product: p})
	}
	return items, nil
}

func (s *dashboardService) productsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	out := make(map[uuid.UUID]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := s.store.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}
