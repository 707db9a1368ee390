// Package memory is an in-process repository.Store. It backs tests and the
// STORE_DRIVER=memory mode. Transactions run serially against a copy of the
// data that replaces the committed state only when fn succeeds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
)

type state struct {
	products   map[uuid.UUID]model.Product
	skus       map[string]uuid.UUID
	offers     map[uuid.UUID]model.Offer
	matches    map[uuid.UUID]model.Match
	users      map[uuid.UUID]model.User
	privileges []model.Privilege
	seq        int64
}

func newState() *state {
	return &state{
		products: map[uuid.UUID]model.Product{},
		skus:     map[string]uuid.UUID{},
		offers:   map[uuid.UUID]model.Offer{},
		matches:  map[uuid.UUID]model.Match{},
		users:    map[uuid.UUID]model.User{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[uuid.UUID]model.Product, len(s.products)),
		skus:       make(map[string]uuid.UUID, len(s.skus)),
		offers:     make(map[uuid.UUID]model.Offer, len(s.offers)),
		matches:    make(map[uuid.UUID]model.Match, len(s.matches)),
		users:      make(map[uuid.UUID]model.User, len(s.users)),
		privileges: append([]model.Privilege(nil), s.privileges...),
		seq:        s.seq,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.skus {
		c.skus[k] = v
	}
	for k, v := range s.offers {
		c.offers[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// stamp gives new rows a creation time that strictly increases, so creation
// order survives clocks with coarse resolution.
func (s *state) stamp(base *model.BaseModel) {
	s.seq++
	now := time.Now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now.Add(time.Duration(s.seq))
	}
	base.UpdatedAt = now
}

// Store implements repository.Store in memory.
type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{mu: &sync.Mutex{}, data: newState()}
}

func (s *Store) Products() repository.ProductRepository     { return productRepo{s} }
func (s *Store) Offers() repository.OfferRepository         { return offerRepo{s} }
func (s *Store) Matches() repository.MatchRepository        { return matchRepo{s} }
func (s *Store) Users() repository.UserRepository           { return userRepo{s} }
func (s *Store) Privileges() repository.PrivilegeRepository { return privilegeRepo{s} }

// Transaction runs fn against a private copy of the data. Nested calls join
// the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&Store{mu: s.mu, data: work, inTx: true}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// do runs fn with exclusive access to the current data.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func cloneProduct(p model.Product) model.Product {
	p.AltSkus = append([]string(nil), p.AltSkus...)
	p.Synonyms = append([]string(nil), p.Synonyms...)
	if p.Attributes != nil {
		attrs := make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		p.Attributes = attrs
	}
	if p.PkgSize != nil {
		v := *p.PkgSize
		p.PkgSize = &v
	}
	return p
}

func cloneOffer(o model.Offer) model.Offer {
	o.Tokens = append([]string(nil), o.Tokens...)
	if o.Raw.Fields != nil {
		fields := make(map[string]string, len(o.Raw.Fields))
		for k, v := range o.Raw.Fields {
			fields[k] = v
		}
		o.Raw.Fields = fields
	}
	if o.Pack != nil {
		v := *o.Pack
		o.Pack = &v
	}
	if o.Price != nil {
		v := *o.Price
		o.Price = &v
	}
	if o.BestMatchID != nil {
		v := *o.BestMatchID
		o.BestMatchID = &v
	}
	return o
}

func cloneMatch(m model.Match) model.Match {
	m.Reasons = append([]string(nil), m.Reasons...)
	if m.ReviewedAt != nil {
		v := *m.ReviewedAt
		m.ReviewedAt = &v
	}
	return m
}

func byCreation[T any](items []T, created func(T) time.Time, tie func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return tie(items[i], items[j])
	})
}
