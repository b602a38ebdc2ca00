package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PriceListService struct {
	priceListRepo *repository.PriceListRepository
	logger        *zap.Logger
}

func NewPriceListService(priceListRepo *repository.PriceListRepository, logger *zap.Logger) *PriceListService {
	return &PriceListService{priceListRepo: priceListRepo, logger: logger}
}

// CreateItem saves a recurring task price. Task names are unique per
// tenant, case-insensitively.
func (s *PriceListService) CreateItem(ctx context.Context, req *domain.CreatePriceListItemRequest) (*domain.PriceListItem, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	if _, err := s.priceListRepo.GetByTask(ctx, req.Task); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing task: %w", err)
	}

	item := &domain.PriceListItem{
		TenantEmail:       tenant,
		Task:              req.Task,
		Unit:              req.Unit,
		UnitPrice:         req.UnitPrice,
		MaterialUnitPrice: req.MaterialUnitPrice,
	}
	if err := s.priceListRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create price list item: %w", err)
	}
	return item, nil
}

func (s *PriceListService) ListItems(ctx context.Context) ([]domain.PriceListItem, error) {
	items, err := s.priceListRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list price list: %w", err)
	}
	return items, nil
}

func (s *PriceListService) UpdateItem(ctx context.Context, id uuid.UUID, req *domain.CreatePriceListItemRequest) (*domain.PriceListItem, error) {
	item, err := s.priceListRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get price list item: %w", err)
	}

	if req.Task != item.Task {
		if existing, err := s.priceListRepo.GetByTask(ctx, req.Task); err == nil && existing.ID != item.ID {
			return nil, ErrConflict
		}
	}

	item.Task = req.Task
	item.Unit = req.Unit
	item.UnitPrice = req.UnitPrice
	item.MaterialUnitPrice = req.MaterialUnitPrice
	if err := s.priceListRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update price list item: %w", err)
	}
	return item, nil
}

func (s *PriceListService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.priceListRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete price list item: %w", err)
	}
	return nil
}
