package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type PerformanceRepository struct {
	db *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

func (r *PerformanceRepository) GetByWorkID(ctx context.Context, workID uuid.UUID) (*domain.Performance, error) {
	var perf domain.Performance
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&perf, "work_id = ?", workID).Error
	if err != nil {
		return nil, err
	}
	return &perf, nil
}

// Upsert creates or updates the single performance row of a work
func (r *PerformanceRepository) Upsert(ctx context.Context, perf *domain.Performance) error {
	var existing domain.Performance
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&existing, "work_id = ?", perf.WorkID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(perf).Error
	}
	if err != nil {
		return err
	}

	perf.ID = existing.ID
	perf.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(perf).Error
}

// ListAll returns performance rows across all tenants. Used only by the
// warehouse snapshot job, which runs outside any request context.
func (r *PerformanceRepository) ListAll(ctx context.Context) ([]domain.Performance, error) {
	var perfs []domain.Performance
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&perfs).Error
	return perfs, err
}

func (r *PerformanceRepository) Delete(ctx context.Context, workID uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.Performance{}, "work_id = ?", workID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
