package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// hoursPerWorkDay converts a daily rate into an hourly rate
const hoursPerWorkDay = 8.0

type ProfitService struct {
	workRepo      *repository.WorkRepository
	diaryRepo     *repository.DiaryRepository
	workforceRepo *repository.WorkforceRepository
	logger        *zap.Logger
}

func NewProfitService(
	workRepo *repository.WorkRepository,
	diaryRepo *repository.DiaryRepository,
	workforceRepo *repository.WorkforceRepository,
	logger *zap.Logger,
) *ProfitService {
	return &ProfitService{
		workRepo:      workRepo,
		diaryRepo:     diaryRepo,
		workforceRepo: workforceRepo,
		logger:        logger,
	}
}

// CalculateWorkProfit computes the cost-relative profit of a work.
// Revenue is the diary-logged quantity priced at the matching item's
// unit price; cost is diary labor priced at the frozen daily-rate
// snapshot when present and the current registry rate as fallback. The
// margin is profit relative to COST, not revenue: zero cost yields 0,
// zero revenue with real cost yields -100.
//
// The dashboard must render even when the numbers can't be computed, so
// any internal failure degrades to an all-zeros result instead of an
// error. Only a missing work surfaces as ErrNotFound.
func (s *ProfitService) CalculateWorkProfit(ctx context.Context, workID uuid.UUID) (*domain.WorkProfitDTO, error) {
	work, err := s.workRepo.GetByID(ctx, workID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("profit calculation failed to load work",
			zap.String("work_id", workID.String()),
			zap.Error(err),
		)
		return &domain.WorkProfitDTO{}, nil
	}

	entries, err := s.diaryRepo.ListByWork(ctx, workID)
	if err != nil {
		s.logger.Error("profit calculation failed to load diary",
			zap.String("work_id", workID.String()),
			zap.Error(err),
		)
		return &domain.WorkProfitDTO{}, nil
	}

	items := make(map[uuid.UUID]*domain.WorkItem, len(work.Items))
	for i := range work.Items {
		items[work.Items[i].ID] = &work.Items[i]
	}

	var revenue, cost float64
	for i := range entries {
		entry := &entries[i]
		if item, ok := items[entry.WorkItemID]; ok && item.Quantity > 0 && item.UnitPrice > 0 {
			revenue += entry.Quantity * item.UnitPrice
		}
		if entry.WorkHours <= 0 {
			continue
		}
		rate := s.resolveDailyRate(ctx, entry)
		if rate <= 0 {
			continue
		}
		cost += entry.WorkHours * (rate / hoursPerWorkDay)
	}

	return &domain.WorkProfitDTO{
		TotalRevenue: revenue,
		TotalCost:    cost,
		TotalProfit:  revenue - cost,
		ProfitMargin: profitMargin(revenue, cost),
	}, nil
}

// resolveDailyRate prefers the rate frozen into the entry; entries
// logged before snapshots existed fall back to a case-insensitive name
// match in the workforce registry
func (s *ProfitService) resolveDailyRate(ctx context.Context, entry *domain.WorkDiaryEntry) float64 {
	if entry.DailyRateSnapshot != nil {
		return *entry.DailyRateSnapshot
	}
	if entry.WorkerEmail != "" {
		if member, err := s.workforceRepo.GetByEmail(ctx, entry.WorkerEmail); err == nil {
			return member.DailyRate
		}
	}
	if entry.WorkerName != "" {
		if member, err := s.workforceRepo.GetByNameInsensitive(ctx, entry.WorkerName); err == nil {
			return member.DailyRate
		}
	}
	return 0
}

// profitMargin is profit relative to cost, in percent
func profitMargin(revenue, cost float64) float64 {
	if cost <= 0 {
		return 0
	}
	if revenue <= 0 {
		return -100
	}
	return (revenue/cost - 1) * 100
}
