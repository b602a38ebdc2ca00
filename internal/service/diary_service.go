package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/mapper"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// completedQuantityEpsilon suppresses writes when the recomputed value
// matches the stored one within rounding noise
const completedQuantityEpsilon = 0.01

type DiaryService struct {
	diaryRepo     *repository.DiaryRepository
	workRepo      *repository.WorkRepository
	workItemRepo  *repository.WorkItemRepository
	workforceRepo *repository.WorkforceRepository
	photoStorage  storage.Storage
	logger        *zap.Logger
}

func NewDiaryService(
	diaryRepo *repository.DiaryRepository,
	workRepo *repository.WorkRepository,
	workItemRepo *repository.WorkItemRepository,
	workforceRepo *repository.WorkforceRepository,
	photoStorage storage.Storage,
	logger *zap.Logger,
) *DiaryService {
	return &DiaryService{
		diaryRepo:     diaryRepo,
		workRepo:      workRepo,
		workItemRepo:  workItemRepo,
		workforceRepo: workforceRepo,
		photoStorage:  photoStorage,
		logger:        logger,
	}
}

// CreateEntry logs a dated progress entry for a work item. The worker's
// current daily rate is frozen into the entry so later registry edits
// don't rewrite historical cost. When no cumulative snapshot is given,
// it is derived from the previous entry plus today's quantity. The
// item's completed quantity is refreshed afterwards.
func (s *DiaryService) CreateEntry(ctx context.Context, workID uuid.UUID, req *domain.CreateDiaryEntryRequest) (*domain.WorkDiaryEntryDTO, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	item, err := s.workItemRepo.GetByID(ctx, req.WorkItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}
	if item.WorkID != workID {
		return nil, ErrInvalidInput
	}

	entry := &domain.WorkDiaryEntry{
		WorkID:         workID,
		WorkItemID:     req.WorkItemID,
		TenantEmail:    tenant,
		Date:           req.Date,
		Quantity:       req.Quantity,
		WorkHours:      req.WorkHours,
		WorkerName:     req.WorkerName,
		WorkerEmail:    req.WorkerEmail,
		ProgressAtDate: req.ProgressAtDate,
		GroupNo:        req.GroupNo,
		Notes:          req.Notes,
	}

	if rate := s.lookupDailyRate(ctx, req.WorkerEmail, req.WorkerName); rate != nil {
		entry.DailyRateSnapshot = rate
	}

	if entry.ProgressAtDate == nil {
		prev := s.PreviousProgressAtDate(ctx, req.WorkItemID, req.Date)
		cumulative := prev + req.Quantity
		entry.ProgressAtDate = &cumulative
	}

	if err := s.diaryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create diary entry: %w", err)
	}

	if _, err := s.RefreshCompletedQuantities(ctx, workID); err != nil {
		s.logger.Warn("failed to refresh completed quantities after entry",
			zap.String("work_id", workID.String()),
			zap.Error(err),
		)
	}

	dto := mapper.ToDiaryEntryDTO(entry)
	return &dto, nil
}

// lookupDailyRate resolves the worker's daily rate from the workforce
// registry, by email first, then by case-insensitive name
func (s *DiaryService) lookupDailyRate(ctx context.Context, email, name string) *float64 {
	if email != "" {
		if member, err := s.workforceRepo.GetByEmail(ctx, email); err == nil {
			return &member.DailyRate
		}
	}
	if name != "" {
		if member, err := s.workforceRepo.GetByNameInsensitive(ctx, name); err == nil {
			return &member.DailyRate
		}
	}
	return nil
}

func (s *DiaryService) GetEntry(ctx context.Context, id uuid.UUID) (*domain.WorkDiaryEntryDTO, error) {
	entry, err := s.diaryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diary entry: %w", err)
	}
	dto := mapper.ToDiaryEntryDTO(entry)
	return &dto, nil
}

func (s *DiaryService) ListEntries(ctx context.Context, workID uuid.UUID) ([]domain.WorkDiaryEntryDTO, error) {
	entries, err := s.diaryRepo.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	dtos := make([]domain.WorkDiaryEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToDiaryEntryDTO(&entries[i])
	}
	return dtos, nil
}

// DeleteEntry removes an entry and refreshes the item's completion
func (s *DiaryService) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	entry, err := s.diaryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get diary entry: %w", err)
	}

	if err := s.diaryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete diary entry: %w", err)
	}
	for i := range entry.Photos {
		if err := s.photoStorage.Delete(ctx, entry.Photos[i].StoragePath); err != nil {
			s.logger.Warn("failed to delete stored photo",
				zap.String("storage_path", entry.Photos[i].StoragePath),
				zap.Error(err),
			)
		}
	}

	if _, err := s.RefreshCompletedQuantities(ctx, entry.WorkID); err != nil {
		s.logger.Warn("failed to refresh completed quantities after delete",
			zap.String("work_id", entry.WorkID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// PreviousProgressAtDate returns the cumulative completed quantity of
// the item as of the newest entry dated strictly before the given date,
// or 0 when no such entry exists
func (s *DiaryService) PreviousProgressAtDate(ctx context.Context, workItemID uuid.UUID, date time.Time) float64 {
	entry, err := s.diaryRepo.LatestBefore(ctx, workItemID, date)
	if err != nil || entry.ProgressAtDate == nil {
		return 0
	}
	return *entry.ProgressAtDate
}

// RefreshCompletedQuantities re-derives every item's completed quantity
// from its latest diary entry (newest date wins, ties broken by id) and
// updates the work's overall progress. Unchanged values within the
// epsilon are not written. Returns how many items changed and the total
// examined.
func (s *DiaryService) RefreshCompletedQuantities(ctx context.Context, workID uuid.UUID) (*domain.RefreshResultDTO, error) {
	items, err := s.workItemRepo.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}

	updated := 0
	var progressSum float64
	for i := range items {
		item := &items[i]

		completed := 0.0
		latest, err := s.diaryRepo.LatestForWorkItem(ctx, item.ID)
		if err == nil && latest.ProgressAtDate != nil {
			completed = *latest.ProgressAtDate
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load latest entry: %w", err)
		}

		progress := domain.ComputeProgress(completed, item.Quantity)
		progressSum += float64(progress)

		if math.Abs(completed-item.CompletedQuantity) < completedQuantityEpsilon && progress == item.Progress {
			continue
		}
		if err := s.workItemRepo.UpdateCompletion(ctx, item.ID, completed, progress); err != nil {
			return nil, fmt.Errorf("failed to update item completion: %w", err)
		}
		updated++
	}

	if len(items) > 0 {
		workProgress := math.Floor(progressSum / float64(len(items)))
		if err := s.workRepo.UpdateProgress(ctx, workID, workProgress); err != nil {
			s.logger.Warn("failed to update work progress",
				zap.String("work_id", workID.String()),
				zap.Error(err),
			)
		}
	}

	return &domain.RefreshResultDTO{UpdatedCount: updated, TotalCount: len(items)}, nil
}

// SetGroupApproval flips the accepted flag on every entry of the group
func (s *DiaryService) SetGroupApproval(ctx context.Context, workID uuid.UUID, groupNo int, accepted bool) (*domain.GroupApprovalDTO, error) {
	affected, err := s.diaryRepo.SetGroupAccepted(ctx, workID, groupNo, accepted)
	if err != nil {
		return nil, fmt.Errorf("failed to set group approval: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GroupApprovalStatus(ctx, workID, groupNo)
}

// GroupApprovalStatus summarizes the approval state of a diary group
func (s *DiaryService) GroupApprovalStatus(ctx context.Context, workID uuid.UUID, groupNo int) (*domain.GroupApprovalDTO, error) {
	entries, err := s.diaryRepo.ListByGroup(ctx, workID, groupNo)
	if err != nil {
		return nil, fmt.Errorf("failed to list group entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	status := &domain.GroupApprovalDTO{
		GroupNo:     groupNo,
		AllAccepted: true,
		Count:       len(entries),
	}
	for i := range entries {
		accepted := entries[i].Accepted != nil && *entries[i].Accepted
		if accepted {
			status.AnyAccepted = true
		} else {
			status.AllAccepted = false
		}
	}
	return status, nil
}

// AttachPhoto stores an uploaded photo and links it to the entry
func (s *DiaryService) AttachPhoto(ctx context.Context, entryID uuid.UUID, filename, contentType string, data io.Reader) (*domain.DiaryPhoto, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	entry, err := s.diaryRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diary entry: %w", err)
	}

	storagePath, size, err := s.photoStorage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photo := &domain.DiaryPhoto{
		DiaryEntryID: entry.ID,
		TenantEmail:  tenant,
		Filename:     filename,
		ContentType:  contentType,
		Size:         size,
		StoragePath:  storagePath,
	}
	if err := s.diaryRepo.CreatePhoto(ctx, photo); err != nil {
		// Don't leave an orphaned blob behind
		if delErr := s.photoStorage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned photo",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to save photo record: %w", err)
	}
	return photo, nil
}

// OpenPhoto returns the stored photo stream and its metadata
func (s *DiaryService) OpenPhoto(ctx context.Context, photoID uuid.UUID) (*domain.DiaryPhoto, io.ReadCloser, error) {
	photo, err := s.diaryRepo.GetPhotoByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get photo: %w", err)
	}
	reader, err := s.photoStorage.Download(ctx, photo.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open photo: %w", err)
	}
	return photo, reader, nil
}
