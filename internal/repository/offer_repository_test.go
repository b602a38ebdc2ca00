package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createOffer(t *testing.T, repo *repository.OfferRepository, ctx context.Context, tenant, title string) *domain.Offer {
	t.Helper()
	offer := &domain.Offer{
		TenantEmail: tenant,
		Title:       title,
		Status:      domain.OfferStatusDraft,
	}
	require.NoError(t, repo.Create(ctx, offer))
	return offer
}

func TestOfferRepositoryTenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOfferRepository(db)

	ctxA := tenantCtx("a@example.com")
	ctxB := tenantCtx("b@example.com")

	offerA := createOffer(t, repo, ctxA, "a@example.com", "Bathroom renovation")
	createOffer(t, repo, ctxB, "b@example.com", "Roof repair")

	// The owner sees their offer
	got, err := repo.GetByID(ctxA, offerA.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bathroom renovation", got.Title)

	// Another tenant gets not found, never someone else's data
	_, err = repo.GetByID(ctxB, offerA.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Each tenant's list contains only their own offers
	offersA, totalA, err := repo.List(ctxA, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, totalA)
	require.Len(t, offersA, 1)
	assert.Equal(t, "a@example.com", offersA[0].TenantEmail)
}

func TestOfferRepositoryNoTenantMatchesNothing(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOfferRepository(db)

	ctxA := tenantCtx("a@example.com")
	offer := createOffer(t, repo, ctxA, "a@example.com", "Garage build")

	// A context without tenant must not see any rows
	_, err := repo.GetByID(context.Background(), offer.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	offers, total, err := repo.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, offers)
}

func TestOfferRepositoryListFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOfferRepository(db)
	ctx := tenantCtx("a@example.com")

	createOffer(t, repo, ctx, "a@example.com", "Draft one")
	sent := createOffer(t, repo, ctx, "a@example.com", "Sent one")
	require.NoError(t, repo.UpdateStatus(ctx, sent.ID, domain.OfferStatusSent))

	offers, total, err := repo.List(ctx, domain.OfferStatusSent, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, offers, 1)
	assert.Equal(t, "Sent one", offers[0].Title)
}

func TestOfferRepositoryGetByIDOrdersItemsByPosition(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOfferRepository(db)
	ctx := tenantCtx("a@example.com")

	offer := &domain.Offer{
		TenantEmail: "a@example.com",
		Title:       "Kitchen",
		Status:      domain.OfferStatusDraft,
		Items: []domain.OfferItem{
			{TenantEmail: "a@example.com", Name: "Painting", Position: 1},
			{TenantEmail: "a@example.com", Name: "Tiling", Position: 0},
			{TenantEmail: "a@example.com", Name: "Plumbing", Position: 2},
		},
	}
	require.NoError(t, repo.Create(ctx, offer))

	got, err := repo.GetByID(ctx, offer.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "Tiling", got.Items[0].Name)
	assert.Equal(t, "Painting", got.Items[1].Name)
	assert.Equal(t, "Plumbing", got.Items[2].Name)
}

func TestOfferRepositoryUpdateStatusUnknownID(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOfferRepository(db)
	ctx := tenantCtx("a@example.com")

	err := repo.UpdateStatus(ctx, uuid.New(), domain.OfferStatusSent)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
