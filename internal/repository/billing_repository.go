package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type BillingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) Create(ctx context.Context, billing *domain.Billing) error {
	return r.db.WithContext(ctx).Create(billing).Error
}

func (r *BillingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Billing, error) {
	var billing domain.Billing
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Preload("Items").
		First(&billing, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

func (r *BillingRepository) ListByOffer(ctx context.Context, offerID uuid.UUID) ([]domain.Billing, error) {
	var billings []domain.Billing
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("offer_id = ?", offerID).
		Preload("Items").
		Order("created_at DESC").
		Find(&billings).Error
	return billings, err
}

func (r *BillingRepository) List(ctx context.Context, status domain.BillingStatus) ([]domain.Billing, error) {
	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx))
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var billings []domain.Billing
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Find(&billings).Error
	return billings, err
}

func (r *BillingRepository) Update(ctx context.Context, billing *domain.Billing) error {
	return r.db.WithContext(ctx).Save(billing).Error
}

func (r *BillingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.Billing{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
