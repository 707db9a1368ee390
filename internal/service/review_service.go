package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-offer-match/internal/events"
	"go-offer-match/internal/metrics"
	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
	"go-offer-match/internal/review"
)

// Manual creation is a trusted assertion, not a scored claim.
const (
	manualCreateScore  = 0.9
	manualCreateReason = "Created product from offer"
)

type ReviewService interface {
	Approve(ctx context.Context, matchID uuid.UUID, actor Actor) (*ReviewResult, error)
	Reject(ctx context.Context, matchID uuid.UUID, actor Actor) (*ReviewResult, error)
	// CreateProductFromOffer adds a catalog product built from the draft and
	// links the offer to it with an approved manual match.
	CreateProductFromOffer(ctx context.Context, offerID uuid.UUID, draft model.ProductDraft, actor Actor) (*CreateFromOfferResult, error)
}

type ReviewResult struct {
	Offer model.Offer `json:"offer"`
	Match model.Match `json:"match"`
}

type CreateFromOfferResult struct {
	Offer   model.Offer   `json:"offer"`
	Product model.Product `json:"product"`
	Match   model.Match   `json:"match"`
}

type transition func(offer model.Offer, matches []model.Match, matchID uuid.UUID, actor review.Actor) (review.Outcome, error)

type reviewService struct {
	store   repository.Store
	metrics *metrics.Metrics
	notify  notifier
	log     *zap.Logger
	now     func() time.Time
}

func NewReviewService(store repository.Store, publisher events.Publisher, cache SummaryCache, m *metrics.Metrics, log *zap.Logger) ReviewService {
	n := newNotifier(publisher, cache, log)
	return &reviewService{
		store:   store,
		metrics: m,
		notify:  n,
		log:     n.log,
		now:     time.Now,
	}
}

func (s *reviewService) Approve(ctx context.Context, matchID uuid.UUID, actor Actor) (res *ReviewResult, err error) {
	defer func() { s.metrics.RecordReview("approve", err) }()

	res, err = s.decide(ctx, matchID, actor, review.Approve)
	if err != nil {
		return nil, err
	}

	s.notify.committed(ctx, events.Event{
		Type:    events.MatchApproved,
		Key:     res.Offer.ID.String(),
		Actor:   actor.event(),
		Message: fmt.Sprintf("%s approved a match for '%s'", actor.label(), res.Offer.Description),
		Data:    res,
	})
	return res, nil
}

func (s *reviewService) Reject(ctx context.Context, matchID uuid.UUID, actor Actor) (res *ReviewResult, err error) {
	defer func() { s.metrics.RecordReview("reject", err) }()

	res, err = s.decide(ctx, matchID, actor, review.Reject)
	if err != nil {
		return nil, err
	}

	s.notify.committed(ctx, events.Event{
		Type:    events.MatchRejected,
		Key:     res.Offer.ID.String(),
		Actor:   actor.event(),
		Message: fmt.Sprintf("%s rejected a match for '%s'", actor.label(), res.Offer.Description),
		Data:    res,
	})
	return res, nil
}

// decide applies one transition to the match's offer inside a transaction
// holding the offer lock.
func (s *reviewService) decide(ctx context.Context, matchID uuid.UUID, actor Actor, apply transition) (*ReviewResult, error) {
	var res ReviewResult

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		// 1. Resolve the match to its offer
		match, err := tx.Matches().FindByID(ctx, matchID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		// 2. Lock the offer, then read its match set
		offer, matches, err := s.lockOffer(ctx, tx, match.OfferID)
		if err != nil {
			return err
		}

		// 3. Pure transition
		out, err := apply(*offer, matches, matchID, s.reviewer(actor))
		if err != nil {
			return err
		}

		// 4. Write back
		if err := s.write(ctx, tx, out, actor); err != nil {
			return err
		}

		res.Offer = out.Offer
		res.Match = *match
		for _, m := range out.Changed {
			if m.ID == matchID {
				res.Match = m
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *reviewService) CreateProductFromOffer(ctx context.Context, offerID uuid.UUID, draft model.ProductDraft, actor Actor) (res *CreateFromOfferResult, err error) {
	defer func() { s.metrics.RecordReview("create_product", err) }()

	if err := validate(draft); err != nil {
		return nil, err
	}

	var out CreateFromOfferResult
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		// 1. Lock the offer and read its match set
		offer, matches, err := s.lockOffer(ctx, tx, offerID)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if m.Status == model.MatchApproved {
				return ErrAlreadyMatched
			}
		}

		// 2. Create the product, seeded from the offer
		product := productFromOffer(draft, offer)
		product.CreatedBy = actor.ID
		product.UpdatedBy = actor.ID
		if err := tx.Products().Create(ctx, product); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateSKU
			}
			return fmt.Errorf("create product: %w", err)
		}

		// 3. Assert the manual match and close open candidates
		manual := model.Match{
			OfferID:   offer.ID,
			ProductID: product.ID,
			Rank:      len(matches),
			Score:     manualCreateScore,
			Method:    model.MethodManualCreate,
			Reasons:   []string{manualCreateReason},
		}
		manual.EnsureID()
		manual.CreatedBy = actor.ID

		decided, err := review.AssertManual(*offer, matches, manual, s.reviewer(actor))
		if err != nil {
			return err
		}
		if err := s.write(ctx, tx, decided, actor); err != nil {
			return err
		}

		out.Offer = decided.Offer
		out.Product = *product
		out.Match = decided.Changed[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify.committed(ctx, events.Event{
		Type:    events.ProductCreatedFromOffer,
		Key:     out.Offer.ID.String(),
		Actor:   actor.event(),
		Message: fmt.Sprintf("%s created product '%s' from an offer", actor.label(), out.Product.Name),
		Data:    &out,
	})
	return &out, nil
}

func (s *reviewService) lockOffer(ctx context.Context, tx repository.Store, offerID uuid.UUID) (*model.Offer, []model.Match, error) {
	offer, err := tx.Offers().FindByIDForUpdate(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrOfferNotFound
		}
		return nil, nil, err
	}
	matches, err := tx.Matches().FindByOffer(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}
	return offer, matches, nil
}

func (s *reviewService) write(ctx context.Context, tx repository.Store, out review.Outcome, actor Actor) error {
	if err := tx.Matches().Save(ctx, out.Changed); err != nil {
		return fmt.Errorf("save matches: %w", err)
	}
	offer := out.Offer
	offer.UpdatedBy = actor.ID
	if err := tx.Offers().Update(ctx, &offer); err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	return nil
}

func (s *reviewService) reviewer(actor Actor) review.Actor {
	id := actor.Email
	if id == "" {
		id = actor.ID
	}
	return review.Actor{ID: id, At: s.now()}
}

// productFromOffer seeds the identifier set with the new SKU and the
// synonyms with the offer's description.
func productFromOffer(draft model.ProductDraft, offer *model.Offer) *model.Product {
	p := draft.ToProduct()
	p.AltSkus = appendUnique([]string{draft.SKU}, draft.AltSkus...)
	p.Synonyms = appendUnique([]string{offer.Description}, draft.Synonyms...)
	return p
}

func appendUnique(base []string, more ...string) []string {
	seen := make(map[string]bool, len(base)+len(more))
	out := make([]string, 0, len(base)+len(more))
	for _, v := range append(base, more...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
