package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedWork(t *testing.T, db *gorm.DB, tenant string, active bool) *domain.Work {
	t.Helper()
	offer := &domain.Offer{TenantEmail: tenant, Title: "Job", Status: domain.OfferStatusInWork}
	require.NoError(t, db.Create(offer).Error)
	work := &domain.Work{TenantEmail: tenant, OfferID: offer.ID, Title: "Job", IsActive: active}
	require.NoError(t, db.Create(work).Error)
	return work
}

func TestWorkRepositoryListActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewWorkRepository(db)
	ctx := tenantCtx("a@example.com")

	seedWork(t, db, "a@example.com", true)
	seedWork(t, db, "a@example.com", false)

	works, total, err := repo.List(ctx, true, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, works, 1)
	assert.True(t, works[0].IsActive)

	_, totalAll, err := repo.List(ctx, false, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, totalAll)
}

func TestWorkRepositoryListAllActiveSpansTenants(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewWorkRepository(db)

	seedWork(t, db, "a@example.com", true)
	seedWork(t, db, "b@example.com", true)
	seedWork(t, db, "b@example.com", false)

	// Background jobs run without a tenant and see every active work
	works, err := repo.ListAllActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, works, 2)
}

func TestWorkRepositoryListStuck(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewWorkRepository(db)
	ctx := tenantCtx("a@example.com")

	stuck := seedWork(t, db, "a@example.com", true)
	require.NoError(t, db.Model(stuck).
		UpdateColumns(map[string]interface{}{
			"processing_by_ai": true,
			"updated_at":       time.Now().Add(-time.Hour),
		}).Error)

	fresh := seedWork(t, db, "a@example.com", true)
	require.NoError(t, db.Model(fresh).
		UpdateColumn("processing_by_ai", true).Error)

	works, err := repo.ListStuck(ctx, time.Now().Add(-5*time.Minute))
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, stuck.ID, works[0].ID)
}
