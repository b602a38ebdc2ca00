package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// DB exposes the underlying handle for transactional service flows
func (r *OfferRepository) DB() *gorm.DB {
	return r.db
}

func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	var offer domain.Offer
	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		})
	err := query.First(&offer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// List returns a page of offers for the tenant, newest first
func (r *OfferRepository) List(ctx context.Context, status domain.OfferStatus, page, pageSize int) ([]domain.Offer, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = 20
	}

	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.Offer{}))
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var offers []domain.Offer
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&offers).Error
	return offers, total, err
}

func (r *OfferRepository) Update(ctx context.Context, offer *domain.Offer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

// UpdateTotals writes only the recomputed aggregates
func (r *OfferRepository) UpdateTotals(ctx context.Context, id uuid.UUID, workTotal, materialTotal, totalPrice float64) error {
	return ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.Offer{})).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"work_total":     workTotal,
			"material_total": materialTotal,
			"total_price":    totalPrice,
		}).Error
}

func (r *OfferRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OfferStatus) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.Offer{})).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.Offer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
