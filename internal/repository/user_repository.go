package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureUser returns the user record for the email, creating it on first
// login. The name is refreshed from the identity token when it changes;
// the super-user flag is only ever set manually and is never touched here.
func (r *UserRepository) EnsureUser(ctx context.Context, email, name string) (*domain.User, error) {
	var existing domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user := &domain.User{Email: email, Name: name}
		if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	if name != "" && name != existing.Name {
		if err := r.db.WithContext(ctx).Model(&domain.User{}).
			Where("id = ?", existing.ID).
			Update("name", name).Error; err != nil {
			return nil, err
		}
		existing.Name = name
	}

	return &existing, nil
}

// EmailExists reports whether a user record exists for the email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}
