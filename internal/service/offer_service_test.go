package service_test

import (
	"context"
	"testing"

	"github.com/mesterwork/worksite-api/internal/clients/textgen"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGenerator struct {
	draft *textgen.OfferDraft
	err   error
}

func (f *fakeGenerator) GenerateOfferItems(_ context.Context, _ textgen.OfferPrompt) (*textgen.OfferDraft, error) {
	return f.draft, f.err
}

func newOfferService(t *testing.T, db *gorm.DB, gen service.TextGenerator) *service.OfferService {
	t.Helper()
	return service.NewOfferService(
		db,
		repository.NewOfferRepository(db),
		repository.NewOfferItemRepository(db),
		repository.NewWorkRepository(db),
		repository.NewWorkItemRepository(db),
		repository.NewPriceListRepository(db),
		gen,
		zap.NewNop(),
	)
}

func TestCreateOfferDerivesTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := svc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Bathroom renovation",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 10, Unit: "m2", UnitPrice: 1000, MaterialUnitPrice: 500},
			{Name: "Grouting", Quantity: 10, Unit: "m2", UnitPrice: 200},
		},
	})
	require.NoError(t, err)

	// Aggregates are derived server-side, never taken from input
	assert.Equal(t, 12000.0, offer.WorkTotal)
	assert.Equal(t, 5000.0, offer.MaterialTotal)
	assert.Equal(t, 17000.0, offer.TotalPrice)
	assert.Equal(t, domain.OfferStatusDraft, offer.Status)

	require.Len(t, offer.Items, 2)
	assert.Equal(t, 15000.0, offer.Items[0].TotalPrice)
	assert.Equal(t, 0, offer.Items[0].Position)
	assert.Equal(t, 1, offer.Items[1].Position)
}

func TestCreateOfferRequiresTenant(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(t, db, &fakeGenerator{})

	_, err := svc.CreateOffer(context.Background(), &domain.CreateOfferRequest{Title: "X"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestCreateOfferFromText(t *testing.T) {
	db := setupTestDB(t)
	gen := &fakeGenerator{draft: &textgen.OfferDraft{
		Items: []textgen.DraftItem{
			{Name: "Demolition", Quantity: 1, Unit: "job", UnitPrice: 50000},
		},
		Raw: []byte(`{"items":[]}`),
	}}
	svc := newOfferService(t, db, gen)
	ctx := tenantCtx("mester@example.com")

	offer, err := svc.CreateOfferFromText(ctx, &domain.CreateOfferFromTextRequest{
		Title: "Demo job",
		Text:  "tear down the old bathroom",
	})
	require.NoError(t, err)
	require.Len(t, offer.Items, 1)
	assert.Equal(t, "Demolition", offer.Items[0].Name)
	assert.Equal(t, 50000.0, offer.TotalPrice)
}

func TestCreateOfferFromTextProviderFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(t, db, &fakeGenerator{err: assert.AnError})
	ctx := tenantCtx("mester@example.com")

	_, err := svc.CreateOfferFromText(ctx, &domain.CreateOfferFromTextRequest{
		Title: "Demo job",
		Text:  "tear down the old bathroom",
	})
	assert.ErrorIs(t, err, service.ErrExternalService)
}

func TestUpdateStatusRejectsInWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := svc.CreateOffer(ctx, &domain.CreateOfferRequest{Title: "Job"})
	require.NoError(t, err)

	// in_work is owned by the conversion flow
	_, err = svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusInWork)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	updated, err := svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusSent)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusSent, updated.Status)
}

func TestAddOfferItemInsertsAtHead(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := svc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "First", Quantity: 1, UnitPrice: 100},
			{Name: "Second", Quantity: 1, UnitPrice: 200},
		},
	})
	require.NoError(t, err)

	added, err := svc.AddOfferItem(ctx, offer.ID, &domain.CreateOfferItemRequest{
		Name: "Newest", Quantity: 2, UnitPrice: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, added.Position)

	got, err := svc.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "Newest", got.Items[0].Name)
	assert.Equal(t, "First", got.Items[1].Name)
	assert.Equal(t, 1, got.Items[1].Position)
	assert.Equal(t, "Second", got.Items[2].Name)
	assert.Equal(t, 2, got.Items[2].Position)

	// Offer totals include the new item
	assert.Equal(t, 400.0, got.TotalPrice)
}

func TestAddOfferItemMirrorsIntoWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(t, db, &fakeGenerator{})
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer, err := svc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 10, UnitPrice: 1000, MaterialUnitPrice: 500},
		},
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusAccepted)
	require.NoError(t, err)

	work, err := workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	_, err = svc.AddOfferItem(ctx, offer.ID, &domain.CreateOfferItemRequest{
		Name: "Extra socket", Quantity: 4, UnitPrice: 2500,
	})
	require.NoError(t, err)

	items, err := workSvc.ListWorkItems(ctx, work.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var mirrored *domain.WorkItemDTO
	for i := range items {
		if items[i].Name == "Extra socket" {
			mirrored = &items[i]
		}
	}
	require.NotNil(t, mirrored)
	assert.Equal(t, 10000.0, mirrored.TotalPrice)

	// Work total follows its items
	gotWork, err := workSvc.GetWork(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, gotWork.TotalPrice)
}

func TestUpdateOfferItemRecomputesOfferTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := svc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 10, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)

	item, err := svc.UpdateOfferItem(ctx, offer.Items[0].ID, &domain.UpdateOfferItemRequest{
		Quantity: floatPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, 20000.0, item.TotalPrice)

	got, err := svc.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 20000.0, got.TotalPrice)
}

func TestDeleteOfferRefusedWhenInWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(t, db, &fakeGenerator{})
	workSvc := newWorkService(t, db)
	ctx := tenantCtx("mester@example.com")

	offer, err := svc.CreateOffer(ctx, &domain.CreateOfferRequest{Title: "Job"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, offer.ID, domain.OfferStatusSent)
	require.NoError(t, err)
	_, err = workSvc.ConvertOfferToWork(ctx, offer.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteOffer(ctx, offer.ID), service.ErrConflict)
}
