package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type DiaryRepository struct {
	db *gorm.DB
}

func NewDiaryRepository(db *gorm.DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

func (r *DiaryRepository) Create(ctx context.Context, entry *domain.WorkDiaryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *DiaryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkDiaryEntry, error) {
	var entry domain.WorkDiaryEntry
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Preload("Photos").
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *DiaryRepository) ListByWork(ctx context.Context, workID uuid.UUID) ([]domain.WorkDiaryEntry, error) {
	var entries []domain.WorkDiaryEntry
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_id = ?", workID).
		Preload("Photos").
		Order("date DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

func (r *DiaryRepository) ListByWorkItem(ctx context.Context, workItemID uuid.UUID) ([]domain.WorkDiaryEntry, error) {
	var entries []domain.WorkDiaryEntry
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_item_id = ?", workItemID).
		Order("date DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// LatestForWorkItem returns the authoritative entry for an item: the one
// with the newest date, ties broken by id. Insertion order must not win
// over the logged date.
func (r *DiaryRepository) LatestForWorkItem(ctx context.Context, workItemID uuid.UUID) (*domain.WorkDiaryEntry, error) {
	var entry domain.WorkDiaryEntry
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_item_id = ?", workItemID).
		Order("date DESC, id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LatestBefore returns the newest entry for the item dated strictly
// before the given date that carries a progress snapshot; entries with
// a null snapshot cannot anchor a cumulative derivation
func (r *DiaryRepository) LatestBefore(ctx context.Context, workItemID uuid.UUID, date time.Time) (*domain.WorkDiaryEntry, error) {
	var entry domain.WorkDiaryEntry
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_item_id = ? AND date < ? AND progress_at_date IS NOT NULL", workItemID, date).
		Order("date DESC, id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *DiaryRepository) ListByGroup(ctx context.Context, workID uuid.UUID, groupNo int) ([]domain.WorkDiaryEntry, error) {
	var entries []domain.WorkDiaryEntry
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_id = ? AND group_no = ?", workID, groupNo).
		Order("date DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// SetGroupAccepted flips the accepted flag on every entry of a group
func (r *DiaryRepository) SetGroupAccepted(ctx context.Context, workID uuid.UUID, groupNo int, accepted bool) (int64, error) {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.WorkDiaryEntry{})).
		Where("work_id = ? AND group_no = ?", workID, groupNo).
		Update("accepted", accepted)
	return result.RowsAffected, result.Error
}

func (r *DiaryRepository) Update(ctx context.Context, entry *domain.WorkDiaryEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *DiaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.WorkDiaryEntry{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DiaryRepository) CreatePhoto(ctx context.Context, photo *domain.DiaryPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *DiaryRepository) GetPhotoByID(ctx context.Context, id uuid.UUID) (*domain.DiaryPhoto, error) {
	var photo domain.DiaryPhoto
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&photo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *DiaryRepository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.DiaryPhoto{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
