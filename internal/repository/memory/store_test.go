package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
)

func TestProducts(t *testing.T) {
	ctx := context.Background()
	s := New()

	b := &model.Product{SKU: "B-1", Name: "Bolt", AltSkus: []string{"b1"}}
	a := &model.Product{SKU: "A-1", Name: "Anchor"}
	require.NoError(t, s.Products().Create(ctx, b))
	require.NoError(t, s.Products().Create(ctx, a))
	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	t.Run("duplicate sku", func(t *testing.T) {
		err := s.Products().Create(ctx, &model.Product{SKU: "B-1", Name: "Other"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("creation order", func(t *testing.T) {
		all, err := s.Products().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "B-1", all[0].SKU)
		assert.Equal(t, "A-1", all[1].SKU)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := s.Products().FindBySKU(ctx, "A-1")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)

		_, err = s.Products().FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrNotFound)

		n, err := s.Products().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("returned values are copies", func(t *testing.T) {
		got, err := s.Products().FindByID(ctx, b.ID)
		require.NoError(t, err)
		got.AltSkus[0] = "changed"

		again, err := s.Products().FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"b1"}, again.AltSkus)
	})
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Products().Create(ctx, &model.Product{SKU: "X", Name: "X"}); err != nil {
			return err
		}
		offer := &model.Offer{Description: "x", Status: model.OfferNew}
		if err := tx.Offers().Create(ctx, offer); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := s.Products().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	counts, err := s.Offers().CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestTransactionCommit(t *testing.T) {
	ctx := context.Background()
	s := New()

	offer := &model.Offer{Description: "x", Status: model.OfferNew}
	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Offers().Create(ctx, offer); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.Transaction(ctx, func(inner repository.Store) error {
			offer.Status = model.OfferNeedsReview
			return inner.Offers().Update(ctx, offer)
		})
	})
	require.NoError(t, err)

	got, err := s.Offers().FindByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferNeedsReview, got.Status)
}

func TestTransactionCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New().Transaction(ctx, func(tx repository.Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestTransactionsSerialize(t *testing.T) {
	ctx := context.Background()
	s := New()
	offer := &model.Offer{Description: "x", Status: model.OfferNew}
	require.NoError(t, s.Offers().Create(ctx, offer))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Transaction(ctx, func(tx repository.Store) error {
				m := []model.Match{{OfferID: offer.ID, ProductID: uuid.New(), Status: model.MatchCandidate}}
				return tx.Matches().Create(ctx, m)
			})
		}()
	}
	wg.Wait()

	matches, err := s.Matches().FindByOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 20)
}

func TestMatches(t *testing.T) {
	ctx := context.Background()
	s := New()
	offerID := uuid.New()
	other := uuid.New()

	batch := []model.Match{
		{OfferID: offerID, ProductID: uuid.New(), Rank: 1, Score: 0.4, Status: model.MatchCandidate},
		{OfferID: offerID, ProductID: uuid.New(), Rank: 0, Score: 0.9, Status: model.MatchCandidate},
		{OfferID: other, ProductID: uuid.New(), Rank: 0, Score: 0.2, Status: model.MatchCandidate},
	}
	require.NoError(t, s.Matches().Create(ctx, batch))

	t.Run("rank order", func(t *testing.T) {
		got, err := s.Matches().FindByOffer(ctx, offerID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].Rank)
		assert.Equal(t, 1, got[1].Rank)
	})

	t.Run("save updates review fields only", func(t *testing.T) {
		changed := batch[1]
		changed.Status = model.MatchApproved
		changed.ReviewedBy = "rev"
		changed.Score = 0.1
		require.NoError(t, s.Matches().Save(ctx, []model.Match{changed}))

		got, err := s.Matches().FindByID(ctx, batch[1].ID)
		require.NoError(t, err)
		assert.Equal(t, model.MatchApproved, got.Status)
		assert.Equal(t, "rev", got.ReviewedBy)
		assert.Equal(t, 0.9, got.Score)
	})

	t.Run("save inserts unknown", func(t *testing.T) {
		m := model.Match{OfferID: other, ProductID: uuid.New(), Status: model.MatchApproved}
		require.NoError(t, s.Matches().Save(ctx, []model.Match{m}))

		got, err := s.Matches().FindByOffers(ctx, []uuid.UUID{other})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestOffers(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := &model.Offer{Description: "a", Status: model.OfferNeedsReview}
	second := &model.Offer{Description: "b", Status: model.OfferMatched}
	third := &model.Offer{Description: "c", Status: model.OfferNeedsReview}
	for _, o := range []*model.Offer{first, second, third} {
		require.NoError(t, s.Offers().Create(ctx, o))
	}

	queue, err := s.Offers().FindByStatus(ctx, model.OfferNeedsReview)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, third.ID, queue[1].ID)

	counts, err := s.Offers().CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.OfferNeedsReview])
	assert.Equal(t, int64(1), counts[model.OfferMatched])

	err = s.Offers().Update(ctx, &model.Offer{BaseModel: model.BaseModel{ID: uuid.New()}})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsersAndPrivileges(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Privileges().SeedDefaults(ctx))
	require.NoError(t, s.Privileges().SeedDefaults(ctx))
	all, err := s.Privileges().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(model.DefaultPrivileges))

	privs, err := s.Privileges().FindByCodes(ctx, []string{model.PrivMatchReview})
	require.NoError(t, err)
	require.Len(t, privs, 1)

	u := &model.User{Email: "a@example.com", FullName: "A", IsActive: true}
	require.NoError(t, s.Users().Create(ctx, u))
	assert.ErrorIs(t, s.Users().Create(ctx, &model.User{Email: "a@example.com"}), repository.ErrDuplicate)

	require.NoError(t, s.Users().UpdatePrivileges(ctx, u.ID, privs))
	require.NoError(t, s.Users().UpdateLastLogin(ctx, u.ID))

	got, err := s.Users().FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, got.HasPrivilege(model.PrivMatchReview))
	assert.NotNil(t, got.LastLoginAt)

	assert.ErrorIs(t, s.Users().UpdatePassword(ctx, uuid.New(), "x"), repository.ErrNotFound)
}
