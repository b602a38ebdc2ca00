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

// PerformanceService maintains per-work profit expectations and serves
// the actual-vs-expected comparison
type PerformanceService struct {
	performanceRepo *repository.PerformanceRepository
	workRepo        *repository.WorkRepository
	profitService   *ProfitService
	logger          *zap.Logger
}

func NewPerformanceService(
	performanceRepo *repository.PerformanceRepository,
	workRepo *repository.WorkRepository,
	profitService *ProfitService,
	logger *zap.Logger,
) *PerformanceService {
	return &PerformanceService{
		performanceRepo: performanceRepo,
		workRepo:        workRepo,
		profitService:   profitService,
		logger:          logger,
	}
}

// PerformanceReport compares expectations with computed actuals
type PerformanceReport struct {
	WorkID                uuid.UUID            `json:"workId"`
	ExpectedProfitPercent float64              `json:"expectedProfitPercent"`
	OfferPrice            float64              `json:"offerPrice"`
	OwnCosts              float64              `json:"ownCosts"`
	Actual                domain.WorkProfitDTO `json:"actual"`
}

// UpdateExpectations upserts the expectation inputs for a work. The
// offer price defaults to the work's contracted total when not given.
func (s *PerformanceService) UpdateExpectations(ctx context.Context, workID uuid.UUID, req *domain.UpdatePerformanceRequest) (*domain.Performance, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	work, err := s.workRepo.GetByID(ctx, workID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	perf, err := s.performanceRepo.GetByWorkID(ctx, workID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		perf = &domain.Performance{
			WorkID:      workID,
			TenantEmail: tenant,
			OfferPrice:  work.TotalPrice,
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get performance: %w", err)
	}

	if req.ExpectedProfitPercent != nil {
		perf.ExpectedProfitPercent = *req.ExpectedProfitPercent
	}
	if req.OfferPrice != nil {
		perf.OfferPrice = *req.OfferPrice
	}
	if req.OwnCosts != nil {
		perf.OwnCosts = *req.OwnCosts
	}

	if err := s.performanceRepo.Upsert(ctx, perf); err != nil {
		return nil, fmt.Errorf("failed to save performance: %w", err)
	}
	return perf, nil
}

// Report returns expectations alongside computed actuals. Missing
// expectations come back zeroed rather than as an error so the
// dashboard always renders.
func (s *PerformanceService) Report(ctx context.Context, workID uuid.UUID) (*PerformanceReport, error) {
	actual, err := s.profitService.CalculateWorkProfit(ctx, workID)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{WorkID: workID, Actual: *actual}
	perf, err := s.performanceRepo.GetByWorkID(ctx, workID)
	if err == nil {
		report.ExpectedProfitPercent = perf.ExpectedProfitPercent
		report.OfferPrice = perf.OfferPrice
		report.OwnCosts = perf.OwnCosts
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("failed to load performance expectations",
			zap.String("work_id", workID.String()),
			zap.Error(err),
		)
	}
	return report, nil
}
