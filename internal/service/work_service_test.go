package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePhotoStore struct {
	deleted []string
}

func (f *fakePhotoStore) Delete(_ context.Context, storagePath string) error {
	f.deleted = append(f.deleted, storagePath)
	return nil
}

func newWorkService(t *testing.T, db *gorm.DB) *service.WorkService {
	t.Helper()
	return newWorkServiceWithStore(t, db, &fakePhotoStore{})
}

func newWorkServiceWithStore(t *testing.T, db *gorm.DB, store service.PhotoStore) *service.WorkService {
	t.Helper()
	return service.NewWorkService(
		db,
		repository.NewWorkRepository(db),
		repository.NewWorkItemRepository(db),
		repository.NewOfferRepository(db),
		repository.NewDiaryRepository(db),
		store,
		zap.NewNop(),
	)
}

func createSentOffer(t *testing.T, db *gorm.DB, ctx context.Context) *domain.OfferWithItemsDTO {
	t.Helper()
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title:    "Bathroom renovation",
		Location: "Budapest",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 10, Unit: "m2", UnitPrice: 1000, MaterialUnitPrice: 500},
			{Name: "Grouting", Quantity: 10, Unit: "m2", UnitPrice: 200},
		},
	})
	require.NoError(t, err)
	_, err = offerSvc.UpdateStatus(ctx, offer.ID, domain.OfferStatusSent)
	require.NoError(t, err)
	return offer
}

func TestConvertOfferToWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)

	work, err := svc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.ID, work.OfferID)
	assert.Equal(t, "Bathroom renovation", work.Title)
	assert.True(t, work.IsActive)
	assert.Equal(t, 17000.0, work.TotalPrice)

	// Items are copied verbatim
	items, err := svc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	tiling := findItem(t, items, "Tile laying")
	assert.Equal(t, 15000.0, tiling.TotalPrice)
	assert.Zero(t, tiling.CompletedQuantity)
	assert.Zero(t, tiling.Progress)

	// The source offer moves to in_work
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	got, err := offerSvc.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusInWork, got.Status)
}

func TestConvertOfferToWorkDraftRefused(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offerSvc := newOfferService(t, db, &fakeGenerator{})
	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{Title: "Job"})
	require.NoError(t, err)

	_, err = svc.ConvertOfferToWork(ctx, offer.ID)
	assert.ErrorIs(t, err, service.ErrOfferNotConvertible)
}

func TestConvertOfferToWorkTwiceRefused(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	_, err := svc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	_, err = svc.ConvertOfferToWork(ctx, offer.ID)
	assert.ErrorIs(t, err, service.ErrOfferNotConvertible)
}

func TestDeleteWorkWithRelatedData(t *testing.T) {
	db := setupTestDB(t)
	store := &fakePhotoStore{}
	svc := newWorkServiceWithStore(t, db, store)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := svc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	items, err := svc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	// Hang data off the work: diary entry with a photo, a worker
	// assignment, a material with a quote, a tool, and a performance row
	entry := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: items[0].ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"),
		Photos: []domain.DiaryPhoto{
			{TenantEmail: "mester@example.com", Filename: "wall.jpg", ContentType: "image/jpeg", Size: 10, StoragePath: "photos/wall.jpg"},
		},
	}
	require.NoError(t, db.Create(entry).Error)
	require.NoError(t, db.Create(&domain.WorkItemWorker{
		WorkItemID: items[0].ID, WorkID: work.ID, TenantEmail: "mester@example.com", Name: "Pista",
	}).Error)
	material := &domain.Material{
		WorkID: work.ID, TenantEmail: "mester@example.com", Name: "Tile adhesive",
		PriceQuotes: []domain.MaterialPriceQuote{
			{TenantEmail: "mester@example.com", Vendor: "Depot", Price: 4500, FetchedAt: time.Now()},
		},
	}
	require.NoError(t, db.Create(material).Error)
	require.NoError(t, db.Create(&domain.Tool{
		WorkID: work.ID, TenantEmail: "mester@example.com", Name: "Tile cutter", Quantity: 1,
	}).Error)
	require.NoError(t, db.Create(&domain.Performance{
		WorkID: work.ID, TenantEmail: "mester@example.com", ExpectedProfitPercent: 20,
	}).Error)

	require.NoError(t, svc.DeleteWorkWithRelatedData(ctx, work.ID))

	// Everything hanging off the work is gone
	for _, model := range []interface{}{
		&domain.Work{}, &domain.WorkItem{}, &domain.WorkDiaryEntry{}, &domain.DiaryPhoto{},
		&domain.WorkItemWorker{}, &domain.Material{}, &domain.MaterialPriceQuote{},
		&domain.Tool{}, &domain.Performance{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	// Stored photo blobs are removed after commit
	assert.Equal(t, []string{"photos/wall.jpg"}, store.deleted)

	// The source offer is reset to draft so it can be re-converted
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	got, err := offerSvc.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusDraft, got.Status)
}

func TestDeleteWorkWithRelatedDataRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	store := &fakePhotoStore{}
	svc := newWorkServiceWithStore(t, db, store)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := svc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	items, err := svc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: items[0].ID, TenantEmail: "mester@example.com",
		Date: day("2026-08-10"),
		Photos: []domain.DiaryPhoto{
			{TenantEmail: "mester@example.com", Filename: "wall.jpg", ContentType: "image/jpeg", Size: 10, StoragePath: "photos/wall.jpg"},
		},
	}).Error)
	require.NoError(t, db.Create(&domain.WorkItemWorker{
		WorkItemID: items[0].ID, WorkID: work.ID, TenantEmail: "mester@example.com", Name: "Pista",
	}).Error)
	require.NoError(t, db.Create(&domain.Material{
		WorkID: work.ID, TenantEmail: "mester@example.com", Name: "Tile adhesive",
	}).Error)
	require.NoError(t, db.Create(&domain.Tool{
		WorkID: work.ID, TenantEmail: "mester@example.com", Name: "Tile cutter", Quantity: 1,
	}).Error)
	require.NoError(t, db.Create(&domain.Performance{
		WorkID: work.ID, TenantEmail: "mester@example.com", ExpectedProfitPercent: 20,
	}).Error)

	tracked := []interface{}{
		&domain.Work{}, &domain.WorkItem{}, &domain.WorkDiaryEntry{}, &domain.DiaryPhoto{},
		&domain.WorkItemWorker{}, &domain.Material{}, &domain.Tool{}, &domain.Performance{},
	}
	before := make([]int64, len(tracked))
	for i, model := range tracked {
		require.NoError(t, db.Model(model).Count(&before[i]).Error)
		require.NotZero(t, before[i])
	}

	// Fail the tool delete mid-sequence; earlier steps already ran
	// inside the transaction and must all roll back
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").
		Register("fail_tool_delete", func(tx *gorm.DB) {
			if _, ok := tx.Statement.Dest.(*domain.Tool); ok {
				tx.AddError(errors.New("disk full"))
			}
		}))

	err = svc.DeleteWorkWithRelatedData(ctx, work.ID)
	require.Error(t, err)

	for i, model := range tracked {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Equal(t, before[i], count)
	}

	// No blobs removed, offer still in work
	assert.Empty(t, store.deleted)
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	got, err := offerSvc.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusInWork, got.Status)
}

func TestDeleteStuckWorkRefusesHealthyWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := svc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	err = svc.DeleteStuckWork(ctx, work.ID)
	assert.ErrorIs(t, err, service.ErrWorkNotStuck)
}

func TestDeleteStuckWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := svc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Work{}).
		Where("id = ?", work.ID).
		UpdateColumns(map[string]interface{}{
			"processing_by_ai": true,
			"updated_at":       time.Now().Add(-time.Hour),
		}).Error)

	require.NoError(t, svc.DeleteStuckWork(ctx, work.ID))

	_, err = svc.GetWork(ctx, work.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateWorkItemRederivesProgress(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := svc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	items, err := svc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	tiling := findItem(t, items, "Tile laying")
	require.NoError(t, db.Model(&domain.WorkItem{}).
		Where("id = ?", tiling.ID).
		UpdateColumn("completed_quantity", 5).Error)

	// Shrinking the quantity re-derives progress from the same completion
	updated, err := svc.UpdateWorkItem(ctx, tiling.ID, &domain.UpdateWorkItemRequest{
		Quantity: floatPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, 7500.0, updated.TotalPrice)
}
