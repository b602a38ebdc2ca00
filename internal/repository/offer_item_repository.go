package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type OfferItemRepository struct {
	db *gorm.DB
}

func NewOfferItemRepository(db *gorm.DB) *OfferItemRepository {
	return &OfferItemRepository{db: db}
}

func (r *OfferItemRepository) Create(ctx context.Context, item *domain.OfferItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *OfferItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OfferItem, error) {
	var item domain.OfferItem
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OfferItemRepository) ListByOffer(ctx context.Context, offerID uuid.UUID) ([]domain.OfferItem, error) {
	var items []domain.OfferItem
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("offer_id = ?", offerID).
		Order("position ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

// ShiftPositions moves every item of the offer down by one so a new item
// can take position 0 at the head of the list
func (r *OfferItemRepository) ShiftPositions(ctx context.Context, tx *gorm.DB, offerID uuid.UUID) error {
	return ApplyTenantFilter(ctx, tx.WithContext(ctx).Model(&domain.OfferItem{})).
		Where("offer_id = ?", offerID).
		Update("position", gorm.Expr("position + 1")).Error
}

func (r *OfferItemRepository) Update(ctx context.Context, item *domain.OfferItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *OfferItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.OfferItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
