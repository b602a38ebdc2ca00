package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type ToolRepository struct {
	db *gorm.DB
}

func NewToolRepository(db *gorm.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

func (r *ToolRepository) Create(ctx context.Context, tool *domain.Tool) error {
	return r.db.WithContext(ctx).Create(tool).Error
}

func (r *ToolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tool, error) {
	var tool domain.Tool
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&tool, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

func (r *ToolRepository) ListByWork(ctx context.Context, workID uuid.UUID) ([]domain.Tool, error) {
	var tools []domain.Tool
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_id = ?", workID).
		Order("created_at ASC").
		Find(&tools).Error
	return tools, err
}

func (r *ToolRepository) Update(ctx context.Context, tool *domain.Tool) error {
	return r.db.WithContext(ctx).Save(tool).Error
}

func (r *ToolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.Tool{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
