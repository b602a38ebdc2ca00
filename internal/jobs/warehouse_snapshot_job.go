package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"github.com/mesterwork/worksite-api/internal/warehouse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const warehouseSnapshotTimeout = 15 * time.Minute

// WarehouseSnapshotJob pushes one performance row per active work to the
// reporting warehouse: expected profit inputs next to actuals computed
// from the diary at snapshot time.
type WarehouseSnapshotJob struct {
	workRepo        *repository.WorkRepository
	performanceRepo *repository.PerformanceRepository
	profitService   *service.ProfitService
	client          *warehouse.Client
	logger          *zap.Logger
}

func NewWarehouseSnapshotJob(
	workRepo *repository.WorkRepository,
	performanceRepo *repository.PerformanceRepository,
	profitService *service.ProfitService,
	client *warehouse.Client,
	logger *zap.Logger,
) *WarehouseSnapshotJob {
	return &WarehouseSnapshotJob{
		workRepo:        workRepo,
		performanceRepo: performanceRepo,
		profitService:   profitService,
		client:          client,
		logger:          logger,
	}
}

// Run builds and writes the day's snapshots. Works without a performance
// row are still snapshotted with zeroed expectations so the warehouse
// sees every active work. A per-work profit failure skips that work; a
// warehouse write failure drops the whole day and relies on the next run.
func (j *WarehouseSnapshotJob) Run() {
	if !j.client.IsEnabled() {
		j.logger.Debug("warehouse snapshot skipped, client disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), warehouseSnapshotTimeout)
	defer cancel()

	works, err := j.workRepo.ListAllActive(ctx)
	if err != nil {
		j.logger.Error("warehouse snapshot: failed to list active works", zap.Error(err))
		return
	}

	today := time.Now().UTC()
	snapshots := make([]warehouse.Snapshot, 0, len(works))

	for i := range works {
		work := &works[i]
		workCtx := auth.WithTenantContext(ctx, &auth.TenantContext{
			UserEmail:   work.TenantEmail,
			TenantEmail: work.TenantEmail,
		})

		actual, err := j.profitService.CalculateWorkProfit(workCtx, work.ID)
		if err != nil {
			j.logger.Warn("warehouse snapshot: profit calculation failed",
				zap.String("work_id", work.ID.String()),
				zap.Error(err),
			)
			continue
		}

		snapshot := warehouse.Snapshot{
			TenantEmail:   work.TenantEmail,
			WorkID:        work.ID,
			WorkTitle:     work.Title,
			WorkProgress:  work.Progress,
			ActualRevenue: actual.TotalRevenue,
			ActualCost:    actual.TotalCost,
			ActualProfit:  actual.TotalProfit,
			ProfitMargin:  actual.ProfitMargin,
			SnapshotDate:  today,
		}

		perf, err := j.performanceRepo.GetByWorkID(workCtx, work.ID)
		if err == nil {
			snapshot.ExpectedProfitPercent = perf.ExpectedProfitPercent
			snapshot.OfferPrice = perf.OfferPrice
			snapshot.OwnCosts = perf.OwnCosts
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			j.logger.Warn("warehouse snapshot: failed to load expectations",
				zap.String("work_id", work.ID.String()),
				zap.Error(err),
			)
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := j.client.WriteSnapshots(ctx, snapshots); err != nil {
		j.logger.Error("warehouse snapshot: write failed",
			zap.Int("rows", len(snapshots)),
			zap.Error(err),
		)
		return
	}

	j.logger.Info("warehouse snapshot completed",
		zap.Int("works", len(works)),
		zap.Int("rows_written", len(snapshots)),
	)
}
