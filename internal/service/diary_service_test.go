package service_test

import (
	"strings"
	"testing"

	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"github.com/mesterwork/worksite-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDiaryService(t *testing.T, db *gorm.DB) *service.DiaryService {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewDiaryService(
		repository.NewDiaryRepository(db),
		repository.NewWorkRepository(db),
		repository.NewWorkItemRepository(db),
		repository.NewWorkforceRepository(db),
		local,
		zap.NewNop(),
	)
}

func TestCreateEntryDerivesCumulativeProgress(t *testing.T) {
	db := setupTestDB(t)
	svc := newDiaryService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	tiling := findItem(t, items, "Tile laying")

	// Day 1: 5 m2, no explicit snapshot; derived as 0 + 5
	first, err := svc.CreateEntry(ctx, work.ID, &domain.CreateDiaryEntryRequest{
		WorkItemID: tiling.ID,
		Date:       day("2026-08-10"),
		Quantity:   5,
		WorkHours:  8,
	})
	require.NoError(t, err)
	require.NotNil(t, first.ProgressAtDate)
	assert.Equal(t, 5.0, *first.ProgressAtDate)

	// Day 2: 7 more, derived as 5 + 7 = 12
	second, err := svc.CreateEntry(ctx, work.ID, &domain.CreateDiaryEntryRequest{
		WorkItemID: tiling.ID,
		Date:       day("2026-08-11"),
		Quantity:   7,
		WorkHours:  8,
	})
	require.NoError(t, err)
	require.NotNil(t, second.ProgressAtDate)
	assert.Equal(t, 12.0, *second.ProgressAtDate)

	// The item's completion follows the latest entry: 12 of 10 clamps to 100
	got, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	gotTiling := findItem(t, got, "Tile laying")
	assert.Equal(t, 12.0, gotTiling.CompletedQuantity)
	assert.Equal(t, 100, gotTiling.Progress)
}

func TestCreateEntryFreezesDailyRate(t *testing.T) {
	db := setupTestDB(t)
	svc := newDiaryService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	require.NoError(t, db.Create(&domain.WorkforceMember{
		TenantEmail: "mester@example.com",
		Name:        "Pista",
		Email:       "pista@example.com",
		DailyRate:   16000,
	}).Error)

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	entry, err := svc.CreateEntry(ctx, work.ID, &domain.CreateDiaryEntryRequest{
		WorkItemID:  items[0].ID,
		Date:        day("2026-08-10"),
		Quantity:    3,
		WorkHours:   8,
		WorkerEmail: "pista@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, entry.DailyRateSnapshot)
	assert.Equal(t, 16000.0, *entry.DailyRateSnapshot)
}

func TestCreateEntryRejectsItemOfOtherWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newDiaryService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offerA := createSentOffer(t, db, ctx)
	workA, err := workSvc.ConvertOfferToWork(ctx, offerA.ID)
	require.NoError(t, err)

	offerB := createSentOffer(t, db, ctx)
	workB, err := workSvc.ConvertOfferToWork(ctx, offerB.ID)
	require.NoError(t, err)
	itemsB, err := workSvc.ListWorkItems(ctx, workB.ID)
	require.NoError(t, err)

	_, err = svc.CreateEntry(ctx, workA.ID, &domain.CreateDiaryEntryRequest{
		WorkItemID: itemsB[0].ID,
		Date:       day("2026-08-10"),
		Quantity:   1,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestRefreshCompletedQuantities(t *testing.T) {
	db := setupTestDB(t)
	svc := newDiaryService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	tiling := findItem(t, items, "Tile laying")

	// Entries written directly, bypassing the create flow's refresh
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: tiling.ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"), Quantity: 5, ProgressAtDate: floatPtr(5),
	}).Error)
	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: tiling.ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-11"), Quantity: 7, ProgressAtDate: floatPtr(12),
	}).Error)

	result, err := svc.RefreshCompletedQuantities(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)
	assert.Equal(t, 2, result.TotalCount)

	got, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	gotTiling := findItem(t, got, "Tile laying")
	gotGrouting := findItem(t, got, "Grouting")
	assert.Equal(t, 12.0, gotTiling.CompletedQuantity)
	assert.Equal(t, 100, gotTiling.Progress)
	assert.Zero(t, gotGrouting.CompletedQuantity)

	// Work progress is the floored average of item progress: (100+0)/2
	gotWork, err := workSvc.GetWork(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, gotWork.Progress)

	// A second refresh changes nothing
	result, err = svc.RefreshCompletedQuantities(ctx, work.ID)
	require.NoError(t, err)
	assert.Zero(t, result.UpdatedCount)
}

func TestGroupApproval(t *testing.T) {
	db := setupTestDB(t)
	svc := newDiaryService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateEntry(ctx, work.ID, &domain.CreateDiaryEntryRequest{
			WorkItemID: items[0].ID,
			Date:       day("2026-08-10"),
			Quantity:   1,
			GroupNo:    intPtr(1),
		})
		require.NoError(t, err)
	}

	status, err := svc.GroupApprovalStatus(ctx, work.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, status.Count)
	assert.False(t, status.AnyAccepted)
	assert.False(t, status.AllAccepted)

	status, err = svc.SetGroupApproval(ctx, work.ID, 1, true)
	require.NoError(t, err)
	assert.True(t, status.AllAccepted)
	assert.True(t, status.AnyAccepted)

	// Unknown group is not found
	_, err = svc.SetGroupApproval(ctx, work.ID, 99, true)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAttachAndOpenPhoto(t *testing.T) {
	db := setupTestDB(t)
	svc := newDiaryService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	entry, err := svc.CreateEntry(ctx, work.ID, &domain.CreateDiaryEntryRequest{
		WorkItemID: items[0].ID,
		Date:       day("2026-08-10"),
		Quantity:   1,
	})
	require.NoError(t, err)

	photo, err := svc.AttachPhoto(ctx, entry.ID, "wall.jpg", "image/jpeg", strings.NewReader("jpegdata"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), photo.Size)
	assert.NotEmpty(t, photo.StoragePath)

	got, reader, err := svc.OpenPhoto(ctx, photo.ID)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "wall.jpg", got.Filename)
	assert.Equal(t, "image/jpeg", got.ContentType)
}
