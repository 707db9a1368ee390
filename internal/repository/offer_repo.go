package repository

import (
	"context"

	"go-offer-match/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type offerRepo struct {
	db *gorm.DB
}

func NewOfferRepo(db *gorm.DB) OfferRepository {
	return &offerRepo{db}
}

func (r *offerRepo) Create(ctx context.Context, offer *model.Offer) error {
	return translate(r.db.WithContext(ctx).Create(offer).Error)
}

// Update writes the reconciliation state of the offer. The supplier fields
// are immutable after ingestion.
func (r *offerRepo) Update(ctx context.Context, offer *model.Offer) error {
	res := r.db.WithContext(ctx).Model(&model.Offer{}).
		Where("id = ?", offer.ID).
		Updates(map[string]interface{}{
			"status":        offer.Status,
			"best_match_id": offer.BestMatchID,
			"updated_by":    offer.UpdatedBy,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *offerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var offer model.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &offer, nil
}

func (r *offerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var offer model.Offer
	// Pessimistic lock, released on commit/rollback
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&offer, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &offer, nil
}

func (r *offerRepo) FindByStatus(ctx context.Context, status model.OfferStatus) ([]model.Offer, error) {
	var offers []model.Offer
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Find(&offers).Error
	return offers, translate(err)
}

func (r *offerRepo) CountByStatus(ctx context.Context) (map[model.OfferStatus]int64, error) {
	var rows []struct {
		Status model.OfferStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Offer{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	counts := make(map[model.OfferStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
