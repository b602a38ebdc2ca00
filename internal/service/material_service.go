package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/clients/pricescout"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/mapper"
	"github.com/mesterwork/worksite-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PriceScout fetches vendor quotes for batches of materials
type PriceScout interface {
	QuoteBatch(ctx context.Context, queries []pricescout.MaterialQuery) ([]pricescout.QuoteResult, error)
}

type MaterialService struct {
	materialRepo *repository.MaterialRepository
	workRepo     *repository.WorkRepository
	scout        PriceScout
	batchSize    int
	maxMaterials int
	batchDelay   time.Duration
	logger       *zap.Logger
}

func NewMaterialService(
	materialRepo *repository.MaterialRepository,
	workRepo *repository.WorkRepository,
	scout PriceScout,
	batchSize, maxMaterials int,
	batchDelay time.Duration,
	logger *zap.Logger,
) *MaterialService {
	if batchSize < 1 {
		batchSize = 10
	}
	if maxMaterials < 1 {
		maxMaterials = 50
	}
	return &MaterialService{
		materialRepo: materialRepo,
		workRepo:     workRepo,
		scout:        scout,
		batchSize:    batchSize,
		maxMaterials: maxMaterials,
		batchDelay:   batchDelay,
		logger:       logger,
	}
}

func (s *MaterialService) CreateMaterial(ctx context.Context, workID uuid.UUID, req *domain.CreateMaterialRequest) (*domain.MaterialDTO, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}
	if _, err := s.workRepo.GetByID(ctx, workID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	material := &domain.Material{
		WorkID:      workID,
		WorkItemID:  req.WorkItemID,
		TenantEmail: tenant,
		Name:        req.Name,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
	}
	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

func (s *MaterialService) ListMaterials(ctx context.Context, workID uuid.UUID) ([]domain.MaterialDTO, error) {
	materials, err := s.materialRepo.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	dtos := make([]domain.MaterialDTO, len(materials))
	for i := range materials {
		dtos[i] = mapper.ToMaterialDTO(&materials[i])
	}
	return dtos, nil
}

// UpdateMaterial edits quantities and availability. AvailableFull set
// by hand also snaps the available quantity to the needed quantity.
func (s *MaterialService) UpdateMaterial(ctx context.Context, id uuid.UUID, req *domain.UpdateMaterialRequest) (*domain.MaterialDTO, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}

	if req.Quantity != nil {
		material.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		material.UnitPrice = *req.UnitPrice
	}
	if req.AvailableQuantity != nil {
		material.AvailableQuantity = *req.AvailableQuantity
	}
	if req.AvailableFull != nil {
		material.AvailableFull = *req.AvailableFull
		if material.AvailableFull {
			material.AvailableQuantity = material.Quantity
		}
	}
	material.AvailableFull = material.Quantity > 0 && material.AvailableQuantity >= material.Quantity

	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

func (s *MaterialService) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	if err := s.materialRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete material: %w", err)
	}
	return nil
}

// ScoutPrices fetches vendor quotes for the work's materials through
// the scraping provider. Materials are sent in fixed-size batches with
// a throttle delay between them, capped at maxMaterials per run. A
// failed batch is logged and skipped; the run continues so one bad
// batch doesn't lose the rest.
func (s *MaterialService) ScoutPrices(ctx context.Context, workID uuid.UUID) (int, error) {
	materials, err := s.materialRepo.ListByWork(ctx, workID)
	if err != nil {
		return 0, fmt.Errorf("failed to list materials: %w", err)
	}
	if len(materials) == 0 {
		return 0, nil
	}
	if len(materials) > s.maxMaterials {
		materials = materials[:s.maxMaterials]
	}

	quoted := 0
	for start := 0; start < len(materials); start += s.batchSize {
		if start > 0 && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return quoted, ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}

		end := start + s.batchSize
		if end > len(materials) {
			end = len(materials)
		}
		batch := materials[start:end]

		queries := make([]pricescout.MaterialQuery, len(batch))
		for i := range batch {
			queries[i] = pricescout.MaterialQuery{
				ID:   batch[i].ID.String(),
				Name: batch[i].Name,
				Unit: batch[i].Unit,
			}
		}

		results, err := s.scout.QuoteBatch(ctx, queries)
		if err != nil {
			s.logger.Warn("price scouting batch failed",
				zap.String("work_id", workID.String()),
				zap.Int("batch_start", start),
				zap.Error(err),
			)
			continue
		}

		tenant := auth.TenantEmailFromContext(ctx)
		now := time.Now()
		for _, result := range results {
			materialID, err := uuid.Parse(result.MaterialID)
			if err != nil {
				continue
			}
			quotes := make([]domain.MaterialPriceQuote, 0, len(result.Quotes))
			for _, q := range result.Quotes {
				quotes = append(quotes, domain.MaterialPriceQuote{
					MaterialID:  materialID,
					TenantEmail: tenant,
					Vendor:      q.Vendor,
					Price:       q.Price,
					Currency:    q.Currency,
					URL:         q.URL,
					FetchedAt:   now,
				})
			}
			if err := s.materialRepo.ReplaceQuotes(ctx, materialID, quotes); err != nil {
				s.logger.Warn("failed to save quotes",
					zap.String("material_id", result.MaterialID),
					zap.Error(err),
				)
				continue
			}
			quoted++
		}
	}
	return quoted, nil
}
