package service_test

import (
	"testing"

	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newWorkerService(t *testing.T, db *gorm.DB) *service.WorkerService {
	t.Helper()
	return service.NewWorkerService(
		repository.NewWorkerRepository(db),
		repository.NewWorkRepository(db),
		repository.NewWorkItemRepository(db),
		repository.NewWorkforceRepository(db),
		zap.NewNop(),
	)
}

func TestAssignWorkerMergesSamePerson(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkerService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	tiling := findItem(t, items, "Tile laying")

	first, err := svc.AssignWorker(ctx, work.ID, tiling.ID, "Pista", "pista@example.com", "", "tiler", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	// The same person again merges into the existing assignment
	merged, err := svc.AssignWorker(ctx, work.ID, tiling.ID, "Pista", "pista@example.com", "", "tiler", 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 2, merged.Quantity)

	var count int64
	require.NoError(t, db.Model(&domain.WorkItemWorker{}).
		Where("work_item_id = ? AND name = ? AND email = ?", tiling.ID, "Pista", "pista@example.com").
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// A different person on the same item is a new row
	other, err := svc.AssignWorker(ctx, work.ID, tiling.ID, "Jani", "jani@example.com", "", "tiler", 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	assignments, err := svc.ListAssignments(ctx, tiling.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 2)
}

func TestAssignWorkerFillsFromDirectory(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkerService(t, db)
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	require.NoError(t, db.Create(&domain.WorkforceMember{
		TenantEmail: "mester@example.com", Name: "Pista",
		Email: "pista@example.com", Phone: "+36301234567", Role: "tiler",
	}).Error)

	offer := createSentOffer(t, db, ctx)
	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)
	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)

	assignment, err := svc.AssignWorker(ctx, work.ID, items[0].ID, "", "pista@example.com", "", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "Pista", assignment.Name)
	assert.Equal(t, "+36301234567", assignment.Phone)
	assert.Equal(t, "tiler", assignment.Role)
	require.NotNil(t, assignment.WorkerID)
}

func TestAssignWorkerRejectsItemOfOtherWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newWorkerService(t, db)
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

	_, err = svc.AssignWorker(ctx, workA.ID, itemsB[0].ID, "Pista", "", "", "", 1)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
