package jobs

import (
	"context"
	"time"

	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"go.uber.org/zap"
)

const diaryResyncTimeout = 10 * time.Minute

// DiaryResyncJob recomputes completed quantities and progress for every
// active work from its diary entries. Normal request flow keeps these in
// sync; the job catches drift from manual data fixes and failed refreshes.
type DiaryResyncJob struct {
	workRepo     *repository.WorkRepository
	diaryService *service.DiaryService
	logger       *zap.Logger
}

func NewDiaryResyncJob(
	workRepo *repository.WorkRepository,
	diaryService *service.DiaryService,
	logger *zap.Logger,
) *DiaryResyncJob {
	return &DiaryResyncJob{
		workRepo:     workRepo,
		diaryService: diaryService,
		logger:       logger,
	}
}

// Run refreshes all active works. The job runs outside any request, so it
// builds a tenant context per work to go through the tenant-scoped service
// path. Per-work failures are logged and skipped.
func (j *DiaryResyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), diaryResyncTimeout)
	defer cancel()

	works, err := j.workRepo.ListAllActive(ctx)
	if err != nil {
		j.logger.Error("diary resync: failed to list active works", zap.Error(err))
		return
	}

	var updated, failed int
	for i := range works {
		work := &works[i]
		workCtx := auth.WithTenantContext(ctx, &auth.TenantContext{
			UserEmail:   work.TenantEmail,
			TenantEmail: work.TenantEmail,
		})

		result, err := j.diaryService.RefreshCompletedQuantities(workCtx, work.ID)
		if err != nil {
			failed++
			j.logger.Warn("diary resync: refresh failed",
				zap.String("work_id", work.ID.String()),
				zap.String("tenant_email", work.TenantEmail),
				zap.Error(err),
			)
			continue
		}
		updated += result.UpdatedCount
	}

	j.logger.Info("diary resync completed",
		zap.Int("works", len(works)),
		zap.Int("items_updated", updated),
		zap.Int("works_failed", failed),
	)
}
