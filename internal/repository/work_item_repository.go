package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type WorkItemRepository struct {
	db *gorm.DB
}

func NewWorkItemRepository(db *gorm.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

func (r *WorkItemRepository) Create(ctx context.Context, item *domain.WorkItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *WorkItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	var item domain.WorkItem
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *WorkItemRepository) ListByWork(ctx context.Context, workID uuid.UUID) ([]domain.WorkItem, error) {
	var items []domain.WorkItem
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_id = ?", workID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *WorkItemRepository) Update(ctx context.Context, item *domain.WorkItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// UpdateCompletion writes the derived completion fields only
func (r *WorkItemRepository) UpdateCompletion(ctx context.Context, id uuid.UUID, completedQuantity float64, progress int) error {
	return ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.WorkItem{})).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completed_quantity": completedQuantity,
			"progress":           progress,
		}).Error
}

func (r *WorkItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.WorkItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
