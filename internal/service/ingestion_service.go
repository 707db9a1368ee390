package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-offer-match/internal/events"
	"go-offer-match/internal/matching"
	"go-offer-match/internal/metrics"
	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
	"go-offer-match/internal/review"
)

type IngestionService interface {
	// Ingest reconciles a batch of offer records. Records are independent:
	// a failing record is reported in its result and the batch continues.
	Ingest(ctx context.Context, records []model.OfferRecord, actor Actor) (*IngestResult, error)
}

type IngestionConfig struct {
	AutoApproveThreshold float64
	Workers              int
}

// RecordResult is the outcome of one input record, in input order.
type RecordResult struct {
	Index       int               `json:"index"`
	OfferID     *uuid.UUID        `json:"offer_id,omitempty"`
	Status      model.OfferStatus `json:"status,omitempty"`
	BestMatchID *uuid.UUID        `json:"best_match_id,omitempty"`
	Candidates  int               `json:"candidates"`
	Error       string            `json:"error,omitempty"`
}

type IngestResult struct {
	Results     []RecordResult `json:"results"`
	Matched     int            `json:"matched"`
	NeedsReview int            `json:"needs_review"`
	Unmatched   int            `json:"unmatched"`
	Failed      int            `json:"failed"`
}

// prepared is a scored record waiting to be persisted.
type prepared struct {
	offer   *model.Offer
	matches []model.Match
	err     error
}

type ingestionService struct {
	store   repository.Store
	scorer  *matching.Scorer
	cfg     IngestionConfig
	metrics *metrics.Metrics
	notify  notifier
	log     *zap.Logger
}

func NewIngestionService(store repository.Store, scorer *matching.Scorer, cfg IngestionConfig, publisher events.Publisher, cache SummaryCache, m *metrics.Metrics, log *zap.Logger) IngestionService {
	if cfg.AutoApproveThreshold <= 0 {
		cfg.AutoApproveThreshold = review.DefaultAutoApproveThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	n := newNotifier(publisher, cache, log)
	return &ingestionService{
		store:   store,
		scorer:  scorer,
		cfg:     cfg,
		metrics: m,
		notify:  n,
		log:     n.log,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, records []model.OfferRecord, actor Actor) (*IngestResult, error) {
	started := time.Now()
	defer s.metrics.ObserveBatch(started)

	result := &IngestResult{Results: make([]RecordResult, len(records))}
	if len(records) == 0 {
		return result, nil
	}

	// 1. One catalog snapshot for the whole batch
	products, err := s.store.Products().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalog := matching.NewCatalog(products)

	// 2. Validate, tokenize and rank concurrently against the snapshot
	work, err := s.prepare(ctx, records, catalog, actor)
	if err != nil {
		return nil, err
	}

	// 3. Persist in input order, one transaction per record
	var committed []events.Event
	for i, p := range work {
		res := &result.Results[i]
		res.Index = i

		if p.err == nil {
			p.err = s.persist(ctx, p)
		}
		if p.err != nil {
			res.Error = p.err.Error()
			result.Failed++
			s.metrics.RecordIngested("failed")
			continue
		}

		id := p.offer.ID
		res.OfferID = &id
		res.Status = p.offer.Status
		res.BestMatchID = p.offer.BestMatchID
		res.Candidates = len(p.matches)

		switch p.offer.Status {
		case model.OfferMatched:
			result.Matched++
		case model.OfferNeedsReview:
			result.NeedsReview++
		default:
			result.Unmatched++
		}
		s.metrics.RecordIngested(string(p.offer.Status))
		if len(p.matches) > 0 {
			s.metrics.ObserveTopScore(p.matches[0].Score)
		}

		committed = append(committed, events.Event{
			Type:  events.OfferIngested,
			Key:   id.String(),
			Actor: actor.event(),
			Data:  res,
		})
	}

	// 4. Broadcast after commit
	if len(committed) > 0 {
		s.notify.committed(ctx, committed...)
	}

	s.log.Info("offer batch ingested",
		zap.Int("records", len(records)),
		zap.Int("matched", result.Matched),
		zap.Int("needs_review", result.NeedsReview),
		zap.Int("unmatched", result.Unmatched),
		zap.Int("failed", result.Failed),
		zap.Duration("took", time.Since(started)),
	)
	return result, nil
}

// prepare builds the offer and its ranked matches for every record. Scoring
// is pure, so the only failure is a canceled context before all workers start.
func (s *ingestionService) prepare(ctx context.Context, records []model.OfferRecord, catalog *matching.Catalog, actor Actor) ([]prepared, error) {
	work := make([]prepared, len(records))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i := range records {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return nil, err
		}
		g.Go(func() error {
			work[i] = s.score(records[i], catalog, actor)
			return nil
		})
	}
	_ = g.Wait()
	return work, nil
}

func (s *ingestionService) score(rec model.OfferRecord, catalog *matching.Catalog, actor Actor) prepared {
	if err := validate(rec); err != nil {
		return prepared{err: err}
	}

	input := matching.OfferInput{
		Supplier:    rec.Supplier,
		SupplierSku: rec.SupplierSku,
		Description: rec.Description,
		UOM:         rec.UOM,
		Pack:        rec.Pack,
	}
	offer := rec.ToOffer(input.Tokens())
	offer.EnsureID()
	offer.CreatedBy = actor.ID
	offer.UpdatedBy = actor.ID

	candidates := s.scorer.Rank(matching.OfferInputFrom(offer), catalog)
	matches := make([]model.Match, 0, len(candidates))
	for rank, c := range candidates {
		m := model.Match{
			OfferID:   offer.ID,
			ProductID: c.ProductID,
			Rank:      rank,
			Score:     c.Score,
			Method:    c.Method,
			Reasons:   c.Reasons,
			Status:    model.MatchCandidate,
		}
		m.EnsureID()
		m.CreatedBy = actor.ID
		matches = append(matches, m)
	}

	// Auto-decision runs on the ranked set before anything is written; the
	// offer and its matches are then stored in their final state together.
	out := review.AutoDecide(*offer, matches, s.cfg.AutoApproveThreshold)
	for _, changed := range out.Changed {
		for i := range matches {
			if matches[i].ID == changed.ID {
				matches[i] = changed
			}
		}
	}
	decided := out.Offer
	return prepared{offer: &decided, matches: matches}
}

func (s *ingestionService) persist(ctx context.Context, p prepared) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Offers().Create(ctx, p.offer); err != nil {
			return fmt.Errorf("store offer: %w", err)
		}
		if err := tx.Matches().Create(ctx, p.matches); err != nil {
			return fmt.Errorf("store matches: %w", err)
		}
		return nil
	})
}
