package repository

import (
	"context"
	"errors"

	"go-offer-match/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup by key finds no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique index rejects a write
	ErrDuplicate = errors.New("duplicate key")
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Count(ctx context.Context) (int64, error)
}

type OfferRepository interface {
	Create(ctx context.Context, offer *model.Offer) error
	Update(ctx context.Context, offer *model.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	// FindByIDForUpdate locks the offer row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	FindByStatus(ctx context.Context, status model.OfferStatus) ([]model.Offer, error)
	CountByStatus(ctx context.Context) (map[model.OfferStatus]int64, error)
}

type MatchRepository interface {
	Create(ctx context.Context, matches []model.Match) error
	// Save writes the status and review fields of existing matches, inserting unknown ones
	Save(ctx context.Context, matches []model.Match) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Match, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Match, error)
	// FindByOffer returns the offer's matches in rank order
	FindByOffer(ctx context.Context, offerID uuid.UUID) ([]model.Match, error)
	FindByOffers(ctx context.Context, offerIDs []uuid.UUID) ([]model.Match, error)
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	UpdatePrivileges(ctx context.Context, userID uuid.UUID, privileges []model.Privilege) error
	UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

type PrivilegeRepository interface {
	FindAll(ctx context.Context) ([]model.Privilege, error)
	FindByCodes(ctx context.Context, codes []string) ([]model.Privilege, error)
	SeedDefaults(ctx context.Context) error
}

// Store groups the repositories behind one unit of work. Repositories taken
// from the Store passed to fn share fn's transaction.
type Store interface {
	Products() ProductRepository
	Offers() OfferRepository
	Matches() MatchRepository
	Users() UserRepository
	Privileges() PrivilegeRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
