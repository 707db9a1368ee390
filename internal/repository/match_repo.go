package repository

import (
	"context"

	"go-offer-match/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type matchRepo struct {
	db *gorm.DB
}

func NewMatchRepo(db *gorm.DB) MatchRepository {
	return &matchRepo{db}
}

func (r *matchRepo) Create(ctx context.Context, matches []model.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&matches).Error)
}

func (r *matchRepo) Save(ctx context.Context, matches []model.Match) error {
	if len(matches) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "reviewed_by", "reviewed_at", "updated_at"}),
	}).Create(&matches).Error
	return translate(err)
}

func (r *matchRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	var match model.Match
	if err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &match, nil
}

func (r *matchRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Match, error) {
	var matches []model.Match
	if len(ids) == 0 {
		return matches, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&matches).Error
	return matches, translate(err)
}

func (r *matchRepo) FindByOffer(ctx context.Context, offerID uuid.UUID) ([]model.Match, error) {
	var matches []model.Match
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("rank ASC, created_at ASC").
		Find(&matches).Error
	return matches, translate(err)
}

func (r *matchRepo) FindByOffers(ctx context.Context, offerIDs []uuid.UUID) ([]model.Match, error) {
	var matches []model.Match
	if len(offerIDs) == 0 {
		return matches, nil
	}
	err := r.db.WithContext(ctx).
		Where("offer_id IN ?", offerIDs).
		Order("offer_id, rank ASC, created_at ASC").
		Find(&matches).Error
	return matches, translate(err)
}
