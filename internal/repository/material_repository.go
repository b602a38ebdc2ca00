package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	var material domain.Material
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Preload("PriceQuotes", func(db *gorm.DB) *gorm.DB {
			return db.Order("price ASC")
		}).
		First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepository) ListByWork(ctx context.Context, workID uuid.UUID) ([]domain.Material, error) {
	var materials []domain.Material
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_id = ?", workID).
		Preload("PriceQuotes", func(db *gorm.DB) *gorm.DB {
			return db.Order("price ASC")
		}).
		Order("created_at ASC").
		Find(&materials).Error
	return materials, err
}

func (r *MaterialRepository) Update(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.Material{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceQuotes swaps the scraped vendor quotes for a material in one
// transaction, so a half-failed scrape never leaves mixed results
func (r *MaterialRepository) ReplaceQuotes(ctx context.Context, materialID uuid.UUID, quotes []domain.MaterialPriceQuote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ApplyTenantFilter(ctx, tx).
			Delete(&domain.MaterialPriceQuote{}, "material_id = ?", materialID).Error; err != nil {
			return err
		}
		if len(quotes) == 0 {
			return nil
		}
		return tx.Create(&quotes).Error
	})
}
