package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedWorkWithItem(t *testing.T, db *gorm.DB, tenant string) (*domain.Work, *domain.WorkItem) {
	t.Helper()
	offer := &domain.Offer{TenantEmail: tenant, Title: "Job", Status: domain.OfferStatusInWork}
	require.NoError(t, db.Create(offer).Error)

	work := &domain.Work{TenantEmail: tenant, OfferID: offer.ID, Title: "Job", IsActive: true}
	require.NoError(t, db.Create(work).Error)

	item := &domain.WorkItem{WorkID: work.ID, TenantEmail: tenant, Name: "Tiling", Quantity: 20}
	require.NoError(t, db.Create(item).Error)
	return work, item
}

func floatPtr(f float64) *float64 { return &f }

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDiaryRepositoryLatestForWorkItemDateWins(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDiaryRepository(db)
	ctx := tenantCtx("a@example.com")

	work, item := seedWorkWithItem(t, db, "a@example.com")

	// The newer-dated entry is inserted FIRST: the logged date must win
	// over insertion order
	newer := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
		Date: day("2026-08-12"), Quantity: 7, ProgressAtDate: floatPtr(12),
	}
	require.NoError(t, repo.Create(ctx, newer))

	older := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
		Date: day("2026-08-11"), Quantity: 5, ProgressAtDate: floatPtr(5),
	}
	require.NoError(t, repo.Create(ctx, older))

	latest, err := repo.LatestForWorkItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
	require.NotNil(t, latest.ProgressAtDate)
	assert.Equal(t, 12.0, *latest.ProgressAtDate)
}

func TestDiaryRepositoryLatestBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDiaryRepository(db)
	ctx := tenantCtx("a@example.com")

	work, item := seedWorkWithItem(t, db, "a@example.com")

	first := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
		Date: day("2026-08-10"), ProgressAtDate: floatPtr(5),
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
		Date: day("2026-08-11"), ProgressAtDate: floatPtr(9),
	}
	require.NoError(t, repo.Create(ctx, second))

	// Strictly before: an entry on the same date is excluded
	prev, err := repo.LatestBefore(ctx, item.ID, day("2026-08-11"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, prev.ID)

	_, err = repo.LatestBefore(ctx, item.ID, day("2026-08-10"))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDiaryRepositoryLatestBeforeSkipsNullSnapshots(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDiaryRepository(db)
	ctx := tenantCtx("a@example.com")

	work, item := seedWorkWithItem(t, db, "a@example.com")

	anchored := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
		Date: day("2026-08-10"), ProgressAtDate: floatPtr(5),
	}
	require.NoError(t, repo.Create(ctx, anchored))

	// Newer but snapshot-less, e.g. cleared by a manual correction
	unanchored := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
		Date: day("2026-08-11"),
	}
	require.NoError(t, repo.Create(ctx, unanchored))

	prev, err := repo.LatestBefore(ctx, item.ID, day("2026-08-12"))
	require.NoError(t, err)
	assert.Equal(t, anchored.ID, prev.ID)
	require.NotNil(t, prev.ProgressAtDate)
	assert.Equal(t, 5.0, *prev.ProgressAtDate)
}

func TestDiaryRepositorySetGroupAccepted(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDiaryRepository(db)
	ctx := tenantCtx("a@example.com")

	work, item := seedWorkWithItem(t, db, "a@example.com")

	groupNo := 3
	for i := 0; i < 2; i++ {
		entry := &domain.WorkDiaryEntry{
			WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
			Date: day("2026-08-10"), GroupNo: &groupNo,
		}
		require.NoError(t, repo.Create(ctx, entry))
	}
	ungrouped := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
		Date: day("2026-08-10"),
	}
	require.NoError(t, repo.Create(ctx, ungrouped))

	affected, err := repo.SetGroupAccepted(ctx, work.ID, groupNo, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	entries, err := repo.ListByGroup(ctx, work.ID, groupNo)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotNil(t, e.Accepted)
		assert.True(t, *e.Accepted)
	}

	// The ungrouped entry is untouched
	got, err := repo.GetByID(ctx, ungrouped.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Accepted)
}

func TestDiaryRepositoryDeleteCrossTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDiaryRepository(db)
	ctxA := tenantCtx("a@example.com")
	ctxB := tenantCtx("b@example.com")

	work, item := seedWorkWithItem(t, db, "a@example.com")
	entry := &domain.WorkDiaryEntry{
		WorkID: work.ID, WorkItemID: item.ID, TenantEmail: "a@example.com",
		Date: day("2026-08-10"),
	}
	require.NoError(t, repo.Create(ctxA, entry))

	assert.ErrorIs(t, repo.Delete(ctxB, entry.ID), gorm.ErrRecordNotFound)
	assert.NoError(t, repo.Delete(ctxA, entry.ID))
	assert.ErrorIs(t, repo.Delete(ctxA, uuid.New()), gorm.ErrRecordNotFound)
}
