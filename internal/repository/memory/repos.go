package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
)

type productRepo struct{ s *Store }

func (r productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.s.do(ctx, func(st *state) error {
		if _, taken := st.skus[product.SKU]; taken {
			return repository.ErrDuplicate
		}
		product.EnsureID()
		if _, taken := st.products[product.ID]; taken {
			return repository.ErrDuplicate
		}
		st.stamp(&product.BaseModel)
		st.products[product.ID] = cloneProduct(*product)
		st.skus[product.SKU] = product.ID
		return nil
	})
}

func (r productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := r.s.do(ctx, func(st *state) error {
		out = make([]model.Product, 0, len(st.products))
		for _, p := range st.products {
			out = append(out, cloneProduct(p))
		}
		return nil
	})
	byCreation(out,
		func(p model.Product) time.Time { return p.CreatedAt },
		func(a, b model.Product) bool { return a.SKU < b.SKU })
	return out, err
}

func (r productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var out *model.Product
	err := r.s.do(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return repository.ErrNotFound
		}
		c := cloneProduct(p)
		out = &c
		return nil
	})
	return out, err
}

func (r productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	err := r.s.do(ctx, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out = append(out, cloneProduct(p))
			}
		}
		return nil
	})
	return out, err
}

func (r productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var out *model.Product
	err := r.s.do(ctx, func(st *state) error {
		id, ok := st.skus[sku]
		if !ok {
			return repository.ErrNotFound
		}
		c := cloneProduct(st.products[id])
		out = &c
		return nil
	})
	return out, err
}

func (r productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.do(ctx, func(st *state) error {
		n = int64(len(st.products))
		return nil
	})
	return n, err
}

type offerRepo struct{ s *Store }

func (r offerRepo) Create(ctx context.Context, offer *model.Offer) error {
	return r.s.do(ctx, func(st *state) error {
		offer.EnsureID()
		if _, taken := st.offers[offer.ID]; taken {
			return repository.ErrDuplicate
		}
		st.stamp(&offer.BaseModel)
		st.offers[offer.ID] = cloneOffer(*offer)
		return nil
	})
}

func (r offerRepo) Update(ctx context.Context, offer *model.Offer) error {
	return r.s.do(ctx, func(st *state) error {
		cur, ok := st.offers[offer.ID]
		if !ok {
			return repository.ErrNotFound
		}
		cur.Status = offer.Status
		cur.BestMatchID = nil
		if offer.BestMatchID != nil {
			id := *offer.BestMatchID
			cur.BestMatchID = &id
		}
		cur.UpdatedBy = offer.UpdatedBy
		cur.UpdatedAt = time.Now()
		st.offers[offer.ID] = cur
		return nil
	})
}

func (r offerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var out *model.Offer
	err := r.s.do(ctx, func(st *state) error {
		o, ok := st.offers[id]
		if !ok {
			return repository.ErrNotFound
		}
		c := cloneOffer(o)
		out = &c
		return nil
	})
	return out, err
}

// FindByIDForUpdate needs no row lock: transactions already hold the store lock.
func (r offerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	return r.FindByID(ctx, id)
}

func (r offerRepo) FindByStatus(ctx context.Context, status model.OfferStatus) ([]model.Offer, error) {
	var out []model.Offer
	err := r.s.do(ctx, func(st *state) error {
		for _, o := range st.offers {
			if o.Status == status {
				out = append(out, cloneOffer(o))
			}
		}
		return nil
	})
	byCreation(out,
		func(o model.Offer) time.Time { return o.CreatedAt },
		func(a, b model.Offer) bool { return a.ID.String() < b.ID.String() })
	return out, err
}

func (r offerRepo) CountByStatus(ctx context.Context) (map[model.OfferStatus]int64, error) {
	counts := map[model.OfferStatus]int64{}
	err := r.s.do(ctx, func(st *state) error {
		for _, o := range st.offers {
			counts[o.Status]++
		}
		return nil
	})
	return counts, err
}

type matchRepo struct{ s *Store }

func (r matchRepo) Create(ctx context.Context, matches []model.Match) error {
	return r.s.do(ctx, func(st *state) error {
		for i := range matches {
			m := &matches[i]
			m.EnsureID()
			if _, taken := st.matches[m.ID]; taken {
				return repository.ErrDuplicate
			}
		}
		for i := range matches {
			st.stamp(&matches[i].BaseModel)
			st.matches[matches[i].ID] = cloneMatch(matches[i])
		}
		return nil
	})
}

func (r matchRepo) Save(ctx context.Context, matches []model.Match) error {
	return r.s.do(ctx, func(st *state) error {
		for i := range matches {
			m := &matches[i]
			m.EnsureID()
			cur, ok := st.matches[m.ID]
			if !ok {
				st.stamp(&m.BaseModel)
				st.matches[m.ID] = cloneMatch(*m)
				continue
			}
			cur.Status = m.Status
			cur.ReviewedBy = m.ReviewedBy
			cur.ReviewedAt = m.ReviewedAt
			cur.UpdatedAt = time.Now()
			st.matches[m.ID] = cloneMatch(cur)
		}
		return nil
	})
}

func (r matchRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	var out *model.Match
	err := r.s.do(ctx, func(st *state) error {
		m, ok := st.matches[id]
		if !ok {
			return repository.ErrNotFound
		}
		c := cloneMatch(m)
		out = &c
		return nil
	})
	return out, err
}

func (r matchRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Match, error) {
	var out []model.Match
	err := r.s.do(ctx, func(st *state) error {
		for _, id := range ids {
			if m, ok := st.matches[id]; ok {
				out = append(out, cloneMatch(m))
			}
		}
		return nil
	})
	return out, err
}

func (r matchRepo) FindByOffer(ctx context.Context, offerID uuid.UUID) ([]model.Match, error) {
	return r.FindByOffers(ctx, []uuid.UUID{offerID})
}

func (r matchRepo) FindByOffers(ctx context.Context, offerIDs []uuid.UUID) ([]model.Match, error) {
	want := make(map[uuid.UUID]bool, len(offerIDs))
	for _, id := range offerIDs {
		want[id] = true
	}

	var out []model.Match
	err := r.s.do(ctx, func(st *state) error {
		for _, m := range st.matches {
			if want[m.OfferID] {
				out = append(out, cloneMatch(m))
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.OfferID != b.OfferID {
			return a.OfferID.String() < b.OfferID.String()
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, err
}

type userRepo struct{ s *Store }

func (r userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.s.do(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				c := u
				c.Privileges = append([]model.Privilege(nil), u.Privileges...)
				out = &c
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var out *model.User
	err := r.s.do(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		u.Privileges = append([]model.Privilege(nil), u.Privileges...)
		out = &u
		return nil
	})
	return out, err
}

func (r userRepo) Create(ctx context.Context, user *model.User) error {
	return r.s.do(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Email == user.Email {
				return repository.ErrDuplicate
			}
		}
		user.EnsureID()
		st.stamp(&user.BaseModel)
		c := *user
		c.Privileges = append([]model.Privilege(nil), user.Privileges...)
		st.users[user.ID] = c
		return nil
	})
}

func (r userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	return r.update(ctx, userID, func(u *model.User) { u.Password = hashedPassword })
}

func (r userRepo) UpdatePrivileges(ctx context.Context, userID uuid.UUID, privileges []model.Privilege) error {
	return r.update(ctx, userID, func(u *model.User) {
		u.Privileges = append([]model.Privilege(nil), privileges...)
	})
}

func (r userRepo) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	return r.update(ctx, userID, func(u *model.User) { u.TokenVersion = version })
}

func (r userRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	return r.update(ctx, userID, func(u *model.User) {
		now := time.Now()
		u.LastLoginAt = &now
	})
}

func (r userRepo) update(ctx context.Context, userID uuid.UUID, fn func(u *model.User)) error {
	return r.s.do(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		fn(&u)
		u.UpdatedAt = time.Now()
		st.users[userID] = u
		return nil
	})
}

type privilegeRepo struct{ s *Store }

func (r privilegeRepo) FindAll(ctx context.Context) ([]model.Privilege, error) {
	var out []model.Privilege
	err := r.s.do(ctx, func(st *state) error {
		out = append(out, st.privileges...)
		return nil
	})
	return out, err
}

func (r privilegeRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Privilege, error) {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []model.Privilege
	err := r.s.do(ctx, func(st *state) error {
		for _, p := range st.privileges {
			if want[p.Code] {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (r privilegeRepo) SeedDefaults(ctx context.Context) error {
	return r.s.do(ctx, func(st *state) error {
		have := make(map[string]bool, len(st.privileges))
		for _, p := range st.privileges {
			have[p.Code] = true
		}
		for _, p := range model.DefaultPrivileges {
			if have[p.Code] {
				continue
			}
			p.ID = uint(len(st.privileges) + 1)
			st.privileges = append(st.privileges, p)
		}
		return nil
	})
}
