package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/mapper"
	"github.com/mesterwork/worksite-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StuckWorkThreshold is how long a work may sit in AI processing before
// it counts as stuck
const StuckWorkThreshold = 5 * time.Minute

// PhotoStore removes stored diary photos when their work is deleted
type PhotoStore interface {
	Delete(ctx context.Context, storagePath string) error
}

type WorkService struct {
	db           *gorm.DB
	workRepo     *repository.WorkRepository
	workItemRepo *repository.WorkItemRepository
	offerRepo    *repository.OfferRepository
	diaryRepo    *repository.DiaryRepository
	photoStore   PhotoStore
	logger       *zap.Logger
}

func NewWorkService(
	db *gorm.DB,
	workRepo *repository.WorkRepository,
	workItemRepo *repository.WorkItemRepository,
	offerRepo *repository.OfferRepository,
	diaryRepo *repository.DiaryRepository,
	photoStore PhotoStore,
	logger *zap.Logger,
) *WorkService {
	return &WorkService{
		db:           db,
		workRepo:     workRepo,
		workItemRepo: workItemRepo,
		offerRepo:    offerRepo,
		diaryRepo:    diaryRepo,
		photoStore:   photoStore,
		logger:       logger,
	}
}

// ConvertOfferToWork turns a sent or accepted offer into a managed work.
// Work creation, verbatim item copy, and the offer's move to in_work
// commit or roll back as one transaction; a work never appears with
// partial items.
func (s *WorkService) ConvertOfferToWork(ctx context.Context, offerID uuid.UUID) (*domain.WorkDTO, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	if !offer.Status.IsConvertible() {
		return nil, ErrOfferNotConvertible
	}
	if _, err := s.workRepo.GetByOfferID(ctx, offerID); err == nil {
		return nil, ErrOfferNotConvertible
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing work: %w", err)
	}

	work := &domain.Work{
		TenantEmail: tenant,
		OfferID:     offer.ID,
		Title:       offer.Title,
		Location:    offer.Location,
		IsActive:    true,
		TotalPrice:  offer.TotalPrice,
	}
	for i := range offer.Items {
		src := &offer.Items[i]
		work.Items = append(work.Items, domain.WorkItem{
			TenantEmail:       tenant,
			Name:              src.Name,
			Quantity:          src.Quantity,
			Unit:              src.Unit,
			UnitPrice:         src.UnitPrice,
			MaterialUnitPrice: src.MaterialUnitPrice,
			TotalPrice:        src.TotalPrice,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(work).Error; err != nil {
			return fmt.Errorf("failed to create work: %w", err)
		}
		if err := repository.ApplyTenantFilter(ctx, tx.Model(&domain.Offer{})).
			Where("id = ?", offer.ID).
			Update("status", domain.OfferStatusInWork).Error; err != nil {
			return fmt.Errorf("failed to mark offer in work: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("offer converted to work",
		zap.String("offer_id", offer.ID.String()),
		zap.String("work_id", work.ID.String()),
		zap.String("tenant", tenant),
		zap.Int("item_count", len(work.Items)),
	)

	dto := mapper.ToWorkDTO(work)
	return &dto, nil
}

func (s *WorkService) GetWork(ctx context.Context, id uuid.UUID) (*domain.WorkDTO, error) {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work: %w", err)
	}
	dto := mapper.ToWorkDTO(work)
	return &dto, nil
}

func (s *WorkService) ListWorks(ctx context.Context, activeOnly bool, page, pageSize int) ([]domain.WorkDTO, int64, error) {
	works, total, err := s.workRepo.List(ctx, activeOnly, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list works: %w", err)
	}
	dtos := make([]domain.WorkDTO, len(works))
	for i := range works {
		dtos[i] = mapper.ToWorkDTO(&works[i])
	}
	return dtos, total, nil
}

func (s *WorkService) UpdateWork(ctx context.Context, id uuid.UUID, req *domain.UpdateWorkRequest) (*domain.WorkDTO, error) {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	if req.Title != nil {
		work.Title = *req.Title
	}
	if req.Location != nil {
		work.Location = *req.Location
	}
	if req.StartDate != nil {
		work.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		work.EndDate = req.EndDate
	}
	if req.IsActive != nil {
		work.IsActive = *req.IsActive
	}

	if err := s.workRepo.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to update work: %w", err)
	}

	dto := mapper.ToWorkDTO(work)
	return &dto, nil
}

// ListWorkItems returns the items of a work
func (s *WorkService) ListWorkItems(ctx context.Context, workID uuid.UUID) ([]domain.WorkItemDTO, error) {
	if _, err := s.workRepo.GetByID(ctx, workID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work: %w", err)
	}
	items, err := s.workItemRepo.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	dtos := make([]domain.WorkItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToWorkItemDTO(&items[i])
	}
	return dtos, nil
}

// UpdateWorkItem edits a work item, re-deriving totals and progress
func (s *WorkService) UpdateWorkItem(ctx context.Context, itemID uuid.UUID, req *domain.UpdateWorkItemRequest) (*domain.WorkItemDTO, error) {
	item, err := s.workItemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.MaterialUnitPrice != nil {
		item.MaterialUnitPrice = *req.MaterialUnitPrice
	}
	item.TotalPrice = item.Quantity * (item.UnitPrice + item.MaterialUnitPrice)
	item.Progress = domain.ComputeProgress(item.CompletedQuantity, item.Quantity)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("failed to update work item: %w", err)
		}
		return recomputeWorkTotals(ctx, tx, item.WorkID)
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToWorkItemDTO(item)
	return &dto, nil
}

// DeleteWorkWithRelatedData removes a work and everything hanging off
// it, in a fixed order inside one transaction, then resets the source
// offer to draft so it can be re-converted. Stored photo blobs are
// removed best-effort after the transaction commits.
func (s *WorkService) DeleteWorkWithRelatedData(ctx context.Context, workID uuid.UUID) error {
	work, err := s.workRepo.GetByID(ctx, workID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get work: %w", err)
	}

	// Collect photo storage paths before the rows disappear
	var photoPaths []string
	entries, err := s.diaryRepo.ListByWork(ctx, workID)
	if err != nil {
		return fmt.Errorf("failed to list diary entries: %w", err)
	}
	for i := range entries {
		for j := range entries[i].Photos {
			photoPaths = append(photoPaths, entries[i].Photos[j].StoragePath)
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		scoped := func() *gorm.DB { return repository.ApplyTenantFilter(ctx, tx) }

		if err := scoped().
			Where("diary_entry_id IN (?)",
				repository.ApplyTenantFilter(ctx, tx.Model(&domain.WorkDiaryEntry{})).
					Select("id").Where("work_id = ?", workID),
			).
			Delete(&domain.DiaryPhoto{}).Error; err != nil {
			return fmt.Errorf("failed to delete diary photos: %w", err)
		}
		if err := scoped().Delete(&domain.WorkDiaryEntry{}, "work_id = ?", workID).Error; err != nil {
			return fmt.Errorf("failed to delete diary entries: %w", err)
		}
		if err := scoped().Delete(&domain.WorkItemWorker{}, "work_id = ?", workID).Error; err != nil {
			return fmt.Errorf("failed to delete worker assignments: %w", err)
		}
		if err := scoped().Delete(&domain.Worker{}, "work_id = ?", workID).Error; err != nil {
			return fmt.Errorf("failed to delete workers: %w", err)
		}
		if err := scoped().
			Where("material_id IN (?)",
				repository.ApplyTenantFilter(ctx, tx.Model(&domain.Material{})).
					Select("id").Where("work_id = ?", workID),
			).
			Delete(&domain.MaterialPriceQuote{}).Error; err != nil {
			return fmt.Errorf("failed to delete material quotes: %w", err)
		}
		if err := scoped().Delete(&domain.Material{}, "work_id = ?", workID).Error; err != nil {
			return fmt.Errorf("failed to delete materials: %w", err)
		}
		if err := scoped().Delete(&domain.Tool{}, "work_id = ?", workID).Error; err != nil {
			return fmt.Errorf("failed to delete tools: %w", err)
		}
		if err := scoped().Delete(&domain.Performance{}, "work_id = ?", workID).Error; err != nil {
			return fmt.Errorf("failed to delete performance: %w", err)
		}
		if err := scoped().Delete(&domain.WorkItem{}, "work_id = ?", workID).Error; err != nil {
			return fmt.Errorf("failed to delete work items: %w", err)
		}
		if err := scoped().Delete(&domain.Work{}, "id = ?", workID).Error; err != nil {
			return fmt.Errorf("failed to delete work: %w", err)
		}
		if err := repository.ApplyTenantFilter(ctx, tx.Model(&domain.Offer{})).
			Where("id = ?", work.OfferID).
			Update("status", domain.OfferStatusDraft).Error; err != nil {
			return fmt.Errorf("failed to reset offer status: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, path := range photoPaths {
		if err := s.photoStore.Delete(ctx, path); err != nil {
			s.logger.Warn("failed to delete stored photo",
				zap.String("storage_path", path),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("work deleted with related data",
		zap.String("work_id", workID.String()),
		zap.String("offer_id", work.OfferID.String()),
		zap.Int("photo_count", len(photoPaths)),
	)
	return nil
}

// ListStuckWorks returns works flagged as AI-processing for longer than
// the stuck threshold. They are surfaced for manual remediation only;
// nothing retries them automatically.
func (s *WorkService) ListStuckWorks(ctx context.Context) ([]domain.WorkDTO, error) {
	works, err := s.workRepo.ListStuck(ctx, time.Now().Add(-StuckWorkThreshold))
	if err != nil {
		return nil, fmt.Errorf("failed to list stuck works: %w", err)
	}
	dtos := make([]domain.WorkDTO, len(works))
	for i := range works {
		dtos[i] = mapper.ToWorkDTO(&works[i])
	}
	return dtos, nil
}

// DeleteStuckWork removes a stuck work through the full related-data
// deletion flow. A work that is not stuck is refused.
func (s *WorkService) DeleteStuckWork(ctx context.Context, workID uuid.UUID) error {
	work, err := s.workRepo.GetByID(ctx, workID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get work: %w", err)
	}
	if !work.ProcessingByAI || work.UpdatedAt.After(time.Now().Add(-StuckWorkThreshold)) {
		return ErrWorkNotStuck
	}
	return s.DeleteWorkWithRelatedData(ctx, workID)
}
