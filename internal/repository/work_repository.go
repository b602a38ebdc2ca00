package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type WorkRepository struct {
	db *gorm.DB
}

func NewWorkRepository(db *gorm.DB) *WorkRepository {
	return &WorkRepository{db: db}
}

// DB exposes the underlying handle for transactional service flows
func (r *WorkRepository) DB() *gorm.DB {
	return r.db
}

func (r *WorkRepository) Create(ctx context.Context, work *domain.Work) error {
	return r.db.WithContext(ctx).Create(work).Error
}

func (r *WorkRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Work, error) {
	var work domain.Work
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&work, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &work, nil
}

func (r *WorkRepository) GetByOfferID(ctx context.Context, offerID uuid.UUID) (*domain.Work, error) {
	var work domain.Work
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&work, "offer_id = ?", offerID).Error
	if err != nil {
		return nil, err
	}
	return &work, nil
}

func (r *WorkRepository) List(ctx context.Context, activeOnly bool, page, pageSize int) ([]domain.Work, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = 20
	}

	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.Work{}))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var works []domain.Work
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&works).Error
	return works, total, err
}

// ListStuck returns works flagged as AI-processing whose last update is
// older than the cutoff. These are conversions that died mid-flight.
func (r *WorkRepository) ListStuck(ctx context.Context, cutoff time.Time) ([]domain.Work, error) {
	var works []domain.Work
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("processing_by_ai = ? AND updated_at < ?", true, cutoff).
		Order("updated_at ASC").
		Find(&works).Error
	return works, err
}

// ListAllActive returns active works across all tenants. Used only by
// background jobs, which run outside any request context.
func (r *WorkRepository) ListAllActive(ctx context.Context) ([]domain.Work, error) {
	var works []domain.Work
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		Find(&works).Error
	return works, err
}

func (r *WorkRepository) Update(ctx context.Context, work *domain.Work) error {
	return r.db.WithContext(ctx).Save(work).Error
}

// UpdateProgress writes only the derived progress percentage
func (r *WorkRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress float64) error {
	return ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.Work{})).
		Where("id = ?", id).
		Update("progress", progress).Error
}

func (r *WorkRepository) SetProcessingByAI(ctx context.Context, id uuid.UUID, processing bool) error {
	return ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.Work{})).
		Where("id = ?", id).
		Update("processing_by_ai", processing).Error
}
