package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/clients/textgen"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/mapper"
	"github.com/mesterwork/worksite-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TextGenerator turns free-form job descriptions into structured offer items
type TextGenerator interface {
	GenerateOfferItems(ctx context.Context, prompt textgen.OfferPrompt) (*textgen.OfferDraft, error)
}

type OfferService struct {
	db            *gorm.DB
	offerRepo     *repository.OfferRepository
	itemRepo      *repository.OfferItemRepository
	workRepo      *repository.WorkRepository
	workItemRepo  *repository.WorkItemRepository
	priceListRepo *repository.PriceListRepository
	generator     TextGenerator
	logger        *zap.Logger
}

func NewOfferService(
	db *gorm.DB,
	offerRepo *repository.OfferRepository,
	itemRepo *repository.OfferItemRepository,
	workRepo *repository.WorkRepository,
	workItemRepo *repository.WorkItemRepository,
	priceListRepo *repository.PriceListRepository,
	generator TextGenerator,
	logger *zap.Logger,
) *OfferService {
	return &OfferService{
		db:            db,
		offerRepo:     offerRepo,
		itemRepo:      itemRepo,
		workRepo:      workRepo,
		workItemRepo:  workItemRepo,
		priceListRepo: priceListRepo,
		generator:     generator,
		logger:        logger,
	}
}

// CreateOffer creates a draft offer with its items. Item aggregates and
// offer totals are always derived server-side, never taken from input.
func (s *OfferService) CreateOffer(ctx context.Context, req *domain.CreateOfferRequest) (*domain.OfferWithItemsDTO, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	offer := &domain.Offer{
		TenantEmail:   tenant,
		Title:         req.Title,
		RecipientName: req.RecipientName,
		Location:      req.Location,
		Status:        domain.OfferStatusDraft,
		ValidUntil:    req.ValidUntil,
		Notes:         req.Notes,
	}

	for i, itemReq := range req.Items {
		item := domain.OfferItem{
			TenantEmail:       tenant,
			Name:              itemReq.Name,
			Quantity:          itemReq.Quantity,
			Unit:              itemReq.Unit,
			UnitPrice:         itemReq.UnitPrice,
			MaterialUnitPrice: itemReq.MaterialUnitPrice,
			Position:          i,
		}
		item.RecalculateTotals()
		offer.Items = append(offer.Items, item)
	}
	applyOfferTotals(offer)

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.logger.Info("offer created",
		zap.String("offer_id", offer.ID.String()),
		zap.String("tenant", tenant),
		zap.Int("item_count", len(offer.Items)),
	)

	dto := mapper.ToOfferWithItemsDTO(offer)
	return &dto, nil
}

// CreateOfferFromText generates offer items from a free-form description
// via the text generation provider, seeding known tasks with the
// tenant's saved price list. The raw provider response is stored with
// the offer for audit.
func (s *OfferService) CreateOfferFromText(ctx context.Context, req *domain.CreateOfferFromTextRequest) (*domain.OfferWithItemsDTO, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	prompt := textgen.OfferPrompt{
		Title: req.Title,
		Text:  req.Text,
	}
	if priceList, err := s.priceListRepo.List(ctx); err == nil {
		for _, p := range priceList {
			prompt.PriceHints = append(prompt.PriceHints, textgen.PriceHint{
				Task:              p.Task,
				Unit:              p.Unit,
				UnitPrice:         p.UnitPrice,
				MaterialUnitPrice: p.MaterialUnitPrice,
			})
		}
	} else {
		s.logger.Warn("failed to load price list for generation", zap.Error(err))
	}

	draft, err := s.generator.GenerateOfferItems(ctx, prompt)
	if err != nil {
		s.logger.Error("offer generation failed",
			zap.String("tenant", tenant),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	offer := &domain.Offer{
		TenantEmail:   tenant,
		Title:         req.Title,
		RecipientName: req.RecipientName,
		Location:      req.Location,
		Status:        domain.OfferStatusDraft,
		AIRawResponse: []byte(draft.Raw),
	}
	for i, di := range draft.Items {
		item := domain.OfferItem{
			TenantEmail:       tenant,
			Name:              di.Name,
			Quantity:          di.Quantity,
			Unit:              di.Unit,
			UnitPrice:         di.UnitPrice,
			MaterialUnitPrice: di.MaterialUnitPrice,
			Position:          i,
		}
		item.RecalculateTotals()
		offer.Items = append(offer.Items, item)
	}
	applyOfferTotals(offer)

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create generated offer: %w", err)
	}

	s.logger.Info("offer generated from text",
		zap.String("offer_id", offer.ID.String()),
		zap.String("tenant", tenant),
		zap.Int("item_count", len(offer.Items)),
	)

	dto := mapper.ToOfferWithItemsDTO(offer)
	return &dto, nil
}

func (s *OfferService) GetOffer(ctx context.Context, id uuid.UUID) (*domain.OfferWithItemsDTO, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	dto := mapper.ToOfferWithItemsDTO(offer)
	return &dto, nil
}

func (s *OfferService) ListOffers(ctx context.Context, status domain.OfferStatus, page, pageSize int) ([]domain.OfferDTO, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, ErrInvalidInput
	}
	offers, total, err := s.offerRepo.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list offers: %w", err)
	}
	dtos := make([]domain.OfferDTO, len(offers))
	for i := range offers {
		dtos[i] = mapper.ToOfferDTO(&offers[i])
	}
	return dtos, total, nil
}

func (s *OfferService) UpdateOffer(ctx context.Context, id uuid.UUID, req *domain.UpdateOfferRequest) (*domain.OfferWithItemsDTO, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.RecipientName != nil {
		offer.RecipientName = *req.RecipientName
	}
	if req.Location != nil {
		offer.Location = *req.Location
	}
	if req.ValidUntil != nil {
		offer.ValidUntil = req.ValidUntil
	}
	if req.Notes != nil {
		offer.Notes = *req.Notes
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	dto := mapper.ToOfferWithItemsDTO(offer)
	return &dto, nil
}

// UpdateStatus applies a manual status transition. The in_work status is
// owned by the conversion flow and can't be set by hand.
func (s *OfferService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OfferStatus) (*domain.OfferDTO, error) {
	if !status.IsValid() || status == domain.OfferStatusInWork {
		return nil, ErrInvalidInput
	}

	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer.Status == domain.OfferStatusInWork {
		return nil, ErrConflict
	}

	if err := s.offerRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update offer status: %w", err)
	}
	offer.Status = status

	dto := mapper.ToOfferDTO(offer)
	return &dto, nil
}

// DeleteOffer removes an offer and its items. An offer that already has
// a work must be deleted through the work deletion flow instead.
func (s *OfferService) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get offer: %w", err)
	}
	if offer.Status == domain.OfferStatusInWork {
		return ErrConflict
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.ApplyTenantFilter(ctx, tx).
			Delete(&domain.OfferItem{}, "offer_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete offer items: %w", err)
		}
		if err := repository.ApplyTenantFilter(ctx, tx).
			Delete(&domain.Offer{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete offer: %w", err)
		}
		return nil
	})
}

// AddOfferItem inserts a new item at the head of the offer's item list:
// every existing item shifts down one position and the new item takes
// position 0. When the offer is already in work, the item is mirrored
// into the work as a fresh work item. Shift, insert, mirror, and total
// recomputation commit or roll back together.
func (s *OfferService) AddOfferItem(ctx context.Context, offerID uuid.UUID, req *domain.CreateOfferItemRequest) (*domain.OfferItemDTO, error) {
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

	item := &domain.OfferItem{
		OfferID:           offerID,
		TenantEmail:       tenant,
		Name:              req.Name,
		Quantity:          req.Quantity,
		Unit:              req.Unit,
		UnitPrice:         req.UnitPrice,
		MaterialUnitPrice: req.MaterialUnitPrice,
		Position:          0,
	}
	item.RecalculateTotals()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.ShiftPositions(ctx, tx, offerID); err != nil {
			return fmt.Errorf("failed to shift item positions: %w", err)
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create offer item: %w", err)
		}
		if err := recomputeOfferTotals(ctx, tx, offerID); err != nil {
			return err
		}

		if offer.Status == domain.OfferStatusInWork {
			work, err := s.workRepo.GetByOfferID(ctx, offerID)
			if err != nil {
				return fmt.Errorf("failed to find work for offer: %w", err)
			}
			workItem := &domain.WorkItem{
				WorkID:            work.ID,
				TenantEmail:       tenant,
				Name:              item.Name,
				Quantity:          item.Quantity,
				Unit:              item.Unit,
				UnitPrice:         item.UnitPrice,
				MaterialUnitPrice: item.MaterialUnitPrice,
				TotalPrice:        item.TotalPrice,
			}
			if err := tx.Create(workItem).Error; err != nil {
				return fmt.Errorf("failed to mirror item into work: %w", err)
			}
			if err := recomputeWorkTotals(ctx, tx, work.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToOfferItemDTO(item)
	return &dto, nil
}

// UpdateOfferItem edits an item and recomputes its own and the offer's totals
func (s *OfferService) UpdateOfferItem(ctx context.Context, itemID uuid.UUID, req *domain.UpdateOfferItemRequest) (*domain.OfferItemDTO, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer item: %w", err)
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
	item.RecalculateTotals()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("failed to update offer item: %w", err)
		}
		return recomputeOfferTotals(ctx, tx, item.OfferID)
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToOfferItemDTO(item)
	return &dto, nil
}

// DeleteOfferItem removes an item and recomputes the offer's totals
func (s *OfferService) DeleteOfferItem(ctx context.Context, itemID uuid.UUID) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get offer item: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.ApplyTenantFilter(ctx, tx).
			Delete(&domain.OfferItem{}, "id = ?", itemID).Error; err != nil {
			return fmt.Errorf("failed to delete offer item: %w", err)
		}
		return recomputeOfferTotals(ctx, tx, item.OfferID)
	})
}

// applyOfferTotals sums item aggregates into the offer
func applyOfferTotals(offer *domain.Offer) {
	var workTotal, materialTotal float64
	for i := range offer.Items {
		workTotal += offer.Items[i].WorkTotal
		materialTotal += offer.Items[i].MaterialTotal
	}
	offer.WorkTotal = workTotal
	offer.MaterialTotal = materialTotal
	offer.TotalPrice = workTotal + materialTotal
}

// recomputeOfferTotals re-derives the offer aggregates from its current
// items inside the given transaction
func recomputeOfferTotals(ctx context.Context, tx *gorm.DB, offerID uuid.UUID) error {
	var items []domain.OfferItem
	if err := repository.ApplyTenantFilter(ctx, tx).
		Where("offer_id = ?", offerID).
		Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load items for totals: %w", err)
	}

	var workTotal, materialTotal float64
	for i := range items {
		workTotal += items[i].WorkTotal
		materialTotal += items[i].MaterialTotal
	}

	return repository.ApplyTenantFilter(ctx, tx.Model(&domain.Offer{})).
		Where("id = ?", offerID).
		Updates(map[string]interface{}{
			"work_total":     workTotal,
			"material_total": materialTotal,
			"total_price":    workTotal + materialTotal,
		}).Error
}

// recomputeWorkTotals re-derives the work's total price from its items
func recomputeWorkTotals(ctx context.Context, tx *gorm.DB, workID uuid.UUID) error {
	var items []domain.WorkItem
	if err := repository.ApplyTenantFilter(ctx, tx).
		Where("work_id = ?", workID).
		Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load work items for totals: %w", err)
	}

	var total float64
	for i := range items {
		total += items[i].TotalPrice
	}

	return repository.ApplyTenantFilter(ctx, tx.Model(&domain.Work{})).
		Where("id = ?", workID).
		Update("total_price", total).Error
}
