package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type WorkforceRepository struct {
	db *gorm.DB
}

func NewWorkforceRepository(db *gorm.DB) *WorkforceRepository {
	return &WorkforceRepository{db: db}
}

func (r *WorkforceRepository) Create(ctx context.Context, member *domain.WorkforceMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *WorkforceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkforceMember, error) {
	var member domain.WorkforceMember
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&member, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *WorkforceRepository) List(ctx context.Context) ([]domain.WorkforceMember, error) {
	var members []domain.WorkforceMember
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Order("name ASC").
		Find(&members).Error
	return members, err
}

func (r *WorkforceRepository) GetByEmail(ctx context.Context, email string) (*domain.WorkforceMember, error) {
	var member domain.WorkforceMember
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&member, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByNameInsensitive finds a member by case-insensitive name match.
// Used as the rate-lookup fallback when a diary entry has no snapshot.
func (r *WorkforceRepository) GetByNameInsensitive(ctx context.Context, name string) (*domain.WorkforceMember, error) {
	var member domain.WorkforceMember
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("LOWER(name) = LOWER(?)", name).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *WorkforceRepository) Update(ctx context.Context, member *domain.WorkforceMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *WorkforceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.WorkforceMember{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
