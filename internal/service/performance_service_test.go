package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newPerformanceService(t *testing.T, db *gorm.DB) *service.PerformanceService {
	t.Helper()
	return service.NewPerformanceService(
		repository.NewPerformanceRepository(db),
		repository.NewWorkRepository(db),
		newProfitService(t, db),
		zap.NewNop(),
	)
}

func TestUpdateExpectationsUpserts(t *testing.T) {
	db := setupTestDB(t)
	svc := newPerformanceService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	perf, err := svc.UpdateExpectations(ctx, work.ID, &domain.UpdatePerformanceRequest{
		ExpectedProfitPercent: floatPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, perf.ExpectedProfitPercent)
	// Offer price defaults to the work's contracted total
	assert.Equal(t, 17000.0, perf.OfferPrice)

	// Second call updates in place, untouched fields survive
	perf, err = svc.UpdateExpectations(ctx, work.ID, &domain.UpdatePerformanceRequest{
		OwnCosts: floatPtr(3000),
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, perf.ExpectedProfitPercent)
	assert.Equal(t, 3000.0, perf.OwnCosts)

	var count int64
	require.NoError(t, db.Model(&domain.Performance{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateExpectationsUnknownWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newPerformanceService(t, db)
	ctx := tenantCtx("mester@example.com")

	_, err := svc.UpdateExpectations(ctx, uuid.New(), &domain.UpdatePerformanceRequest{
		ExpectedProfitPercent: floatPtr(10),
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestReportCombinesExpectationsAndActuals(t *testing.T) {
	db := setupTestDB(t)
	svc := newPerformanceService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	_, err = svc.UpdateExpectations(ctx, work.ID, &domain.UpdatePerformanceRequest{
		ExpectedProfitPercent: floatPtr(25),
	})
	require.NoError(t, err)

	tiling := findItem(t, items, "Tile laying")
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: tiling.ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), Quantity: 10, WorkHours: 8, DailyRateSnapshot: floatPtr(8000),
	}).Error)

	report, err := svc.Report(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, report.ExpectedProfitPercent)
	assert.Equal(t, 10000.0, report.Actual.TotalRevenue)
	assert.Equal(t, 8000.0, report.Actual.TotalCost)
}

func TestReportWithoutExpectations(t *testing.T) {
	db := setupTestDB(t)
	svc := newPerformanceService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	report, err := svc.Report(ctx, work.ID)
	require.NoError(t, err)
	assert.Zero(t, report.ExpectedProfitPercent)
	assert.Zero(t, report.Actual.TotalRevenue)
}
