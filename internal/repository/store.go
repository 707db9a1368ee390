package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the postgres backed Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db}
}

func (s *gormStore) Products() ProductRepository     { return NewProductRepo(s.db) }
func (s *gormStore) Offers() OfferRepository         { return NewOfferRepo(s.db) }
func (s *gormStore) Matches() MatchRepository        { return NewMatchRepo(s.db) }
func (s *gormStore) Users() UserRepository           { return NewUserRepo(s.db) }
func (s *gormStore) Privileges() PrivilegeRepository { return NewPrivilegeRepo(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{tx})
	})
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
