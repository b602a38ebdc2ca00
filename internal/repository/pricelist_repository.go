package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type PriceListRepository struct {
	db *gorm.DB
}

func NewPriceListRepository(db *gorm.DB) *PriceListRepository {
	return &PriceListRepository{db: db}
}

func (r *PriceListRepository) Create(ctx context.Context, item *domain.PriceListItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *PriceListRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PriceListItem, error) {
	var item domain.PriceListItem
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PriceListRepository) List(ctx context.Context) ([]domain.PriceListItem, error) {
	var items []domain.PriceListItem
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Order("task ASC").
		Find(&items).Error
	return items, err
}

// GetByTask finds a saved price by case-insensitive task name
func (r *PriceListRepository) GetByTask(ctx context.Context, task string) (*domain.PriceListItem, error) {
	var item domain.PriceListItem
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("LOWER(task) = LOWER(?)", task).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PriceListRepository) Update(ctx context.Context, item *domain.PriceListItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *PriceListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.PriceListItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
