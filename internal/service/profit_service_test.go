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

func newProfitService(t *testing.T, db *gorm.DB) *service.ProfitService {
	t.Helper()
	return service.NewProfitService(
		repository.NewWorkRepository(db),
		repository.NewDiaryRepository(db),
		repository.NewWorkforceRepository(db),
		zap.NewNop(),
	)
}

func TestCalculateWorkProfit(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfitService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	tiling := findItem(t, items, "Tile laying")

	// Revenue: 10 m2 at the item's 1000/m2 unit price.
	// Cost: 4 hours at a 16000/day snapshot, 4 * (16000/8) = 8000.
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: tiling.ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), Quantity: 10, WorkHours: 4, DailyRateSnapshot: floatPtr(16000),
	}).Error)

	profit, err := svc.CalculateWorkProfit(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, profit.TotalRevenue)
	assert.Equal(t, 8000.0, profit.TotalCost)
	assert.Equal(t, 2000.0, profit.TotalProfit)
	assert.InDelta(t, 25.0, profit.ProfitMargin, 0.001)
}

func TestCalculateWorkProfitSnapshotBeatsRegistry(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfitService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	// Registry says 99999 now, but the frozen snapshot must win
	require.NoError(t, db.Create(&domain.WorkforceMember{
		TenantEmail: "mester@example.com", Name: "Pista",
		Email: "pista@example.com", DailyRate: 99999,
	}).Error)

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: items[0].ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), WorkHours: 8,
		WorkerEmail: "pista@example.com", DailyRateSnapshot: floatPtr(16000),
	}).Error)

	profit, err := svc.CalculateWorkProfit(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 16000.0, profit.TotalCost)
}

func TestCalculateWorkProfitRegistryFallbackByName(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfitService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	require.NoError(t, db.Create(&domain.WorkforceMember{
		TenantEmail: "mester@example.com", Name: "Pista", DailyRate: 8000,
	}).Error)

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	// Pre-snapshot entry: case-insensitive name match resolves the rate
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: items[0].ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), WorkHours: 8, WorkerName: "PISTA",
	}).Error)

	profit, err := svc.CalculateWorkProfit(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, profit.TotalCost)
}

func TestCalculateWorkProfitZeroCost(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfitService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	tiling := findItem(t, items, "Tile laying")

	// Logged quantity without hours: revenue with no labor cost, margin 0
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: tiling.ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), Quantity: 10,
	}).Error)

	profit, err := svc.CalculateWorkProfit(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, profit.TotalRevenue)
	assert.Zero(t, profit.TotalCost)
	assert.Zero(t, profit.ProfitMargin)
}

func TestCalculateWorkProfitZeroRevenue(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfitService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	// Hours logged but nothing produced: cost without revenue is -100
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: items[0].ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), WorkHours: 8, DailyRateSnapshot: floatPtr(16000),
	}).Error)

	profit, err := svc.CalculateWorkProfit(ctx, work.ID)
	require.NoError(t, err)
	assert.Zero(t, profit.TotalRevenue)
	assert.Equal(t, -100.0, profit.ProfitMargin)
	assert.Equal(t, -16000.0, profit.TotalProfit)
}

func TestCalculateWorkProfitBreakEven(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfitService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	tiling := findItem(t, items, "Tile laying")

	// Revenue 8000 (8 m2 * 1000) equals cost 8000 (4h at 16000/day)
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: tiling.ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), Quantity: 8, WorkHours: 4, DailyRateSnapshot: floatPtr(16000),
	}).Error)

	profit, err := svc.CalculateWorkProfit(ctx, work.ID)
	require.NoError(t, err)
	assert.Zero(t, profit.TotalProfit)
	assert.Zero(t, profit.ProfitMargin)
}

func TestCalculateWorkProfitUnknownWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfitService(t, db)
	ctx := tenantCtx("mester@example.com")

	_, err := svc.CalculateWorkProfit(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCalculateWorkProfitSkipsUnpricedHours(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfitService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	// No snapshot and no registry match: the hours carry no cost
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: items[0].ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), WorkHours: 8, WorkerName: "Unknown Guy",
	}).Error)

	profit, err := svc.CalculateWorkProfit(ctx, work.ID)
	require.NoError(t, err)
	assert.Zero(t, profit.TotalCost)
}
