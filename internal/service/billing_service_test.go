package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/clients/invoicer"
	"github.com/mesterwork/worksite-api/internal/clients/mailer"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeInvoicer struct {
	result   *invoicer.InvoiceResult
	err      error
	requests []invoicer.InvoiceRequest
}

func (f *fakeInvoicer) IssueInvoice(_ context.Context, req invoicer.InvoiceRequest) (*invoicer.InvoiceResult, error) {
	f.requests = append(f.requests, req)
	return f.result, f.err
}

type fakeMailer struct {
	sent []mailer.Message
}

func (f *fakeMailer) SendAsync(msg mailer.Message) {
	f.sent = append(f.sent, msg)
}

func newBillingService(t *testing.T, db *gorm.DB, inv service.Invoicer, ml service.Mailer) *service.BillingService {
	t.Helper()
	return service.NewBillingService(
		repository.NewBillingRepository(db),
		repository.NewOfferRepository(db),
		inv,
		ml,
		zap.NewNop(),
	)
}

func TestCreateBillingCopiesSelectedLines(t *testing.T) {
	db := setupTestDB(t)
	svc := newBillingService(t, db, &fakeInvoicer{}, &fakeMailer{})
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Bathroom renovation",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 10, Unit: "m2", UnitPrice: 1000, MaterialUnitPrice: 500},
			{Name: "Grouting", Quantity: 10, Unit: "m2", UnitPrice: 200},
		},
	})
	require.NoError(t, err)

	billing, err := svc.CreateBilling(ctx, &domain.CreateBillingRequest{
		OfferID:      offer.ID,
		Title:        "First installment",
		OfferItemIDs: []uuid.UUID{offer.Items[0].ID},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BillingStatusDraft, billing.Status)
	require.Len(t, billing.Items, 1)
	assert.Equal(t, "Tile laying", billing.Items[0].Name)
	// The line's unit price is the combined labor + material price
	assert.Equal(t, 1500.0, billing.Items[0].UnitPrice)
	assert.Equal(t, 15000.0, billing.Items[0].TotalPrice)
	assert.Equal(t, 15000.0, billing.TotalPrice)

	// Later offer edits don't reach the drafted billing
	_, err = offerSvc.UpdateOfferItem(ctx, offer.Items[0].ID, &domain.UpdateOfferItemRequest{
		Quantity: floatPtr(20),
	})
	require.NoError(t, err)
	got, err := svc.GetBilling(ctx, billing.ID)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, got.TotalPrice)
}

func TestCreateBillingNoMatchingItems(t *testing.T) {
	db := setupTestDB(t)
	svc := newBillingService(t, db, &fakeInvoicer{}, &fakeMailer{})
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 10, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)

	_, err = svc.CreateBilling(ctx, &domain.CreateBillingRequest{
		OfferID:      offer.ID,
		Title:        "Empty",
		OfferItemIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestIssueBilling(t *testing.T) {
	db := setupTestDB(t)
	inv := &fakeInvoicer{result: &invoicer.InvoiceResult{
		InvoiceNumber: "INV-2026-0042",
		PDFURL:        "https://invoices.example.com/INV-2026-0042.pdf",
	}}
	ml := &fakeMailer{}
	svc := newBillingService(t, db, inv, ml)
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 10, UnitPrice: 1000, MaterialUnitPrice: 500},
		},
	})
	require.NoError(t, err)

	billing, err := svc.CreateBilling(ctx, &domain.CreateBillingRequest{
		OfferID:      offer.ID,
		Title:        "Final",
		OfferItemIDs: []uuid.UUID{offer.Items[0].ID},
	})
	require.NoError(t, err)

	issued, err := svc.IssueBilling(ctx, billing.ID, "customer@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.BillingStatusIssued, issued.Status)
	assert.Equal(t, "INV-2026-0042", issued.InvoiceNumber)
	assert.NotNil(t, issued.IssuedAt)

	require.Len(t, inv.requests, 1)
	assert.Equal(t, "mester@example.com", inv.requests[0].SellerEmail)
	require.Len(t, inv.requests[0].Lines, 1)
	assert.Equal(t, 1500.0, inv.requests[0].Lines[0].UnitPrice)

	require.Len(t, ml.sent, 1)
	assert.Equal(t, "customer@example.com", ml.sent[0].To)
	assert.Contains(t, ml.sent[0].Subject, "INV-2026-0042")
	assert.Equal(t, "https://invoices.example.com/INV-2026-0042.pdf", ml.sent[0].AttachmentURL)
}

func TestIssueBillingNoRecipientSkipsMail(t *testing.T) {
	db := setupTestDB(t)
	inv := &fakeInvoicer{result: &invoicer.InvoiceResult{InvoiceNumber: "INV-1"}}
	ml := &fakeMailer{}
	svc := newBillingService(t, db, inv, ml)
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 1, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)
	billing, err := svc.CreateBilling(ctx, &domain.CreateBillingRequest{
		OfferID:      offer.ID,
		Title:        "Final",
		OfferItemIDs: []uuid.UUID{offer.Items[0].ID},
	})
	require.NoError(t, err)

	_, err = svc.IssueBilling(ctx, billing.ID, "")
	require.NoError(t, err)
	assert.Empty(t, ml.sent)
}

func TestIssueBillingAlreadyIssued(t *testing.T) {
	db := setupTestDB(t)
	inv := &fakeInvoicer{result: &invoicer.InvoiceResult{InvoiceNumber: "INV-1"}}
	svc := newBillingService(t, db, inv, &fakeMailer{})
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 1, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)
	billing, err := svc.CreateBilling(ctx, &domain.CreateBillingRequest{
		OfferID:      offer.ID,
		Title:        "Final",
		OfferItemIDs: []uuid.UUID{offer.Items[0].ID},
	})
	require.NoError(t, err)

	_, err = svc.IssueBilling(ctx, billing.ID, "")
	require.NoError(t, err)

	_, err = svc.IssueBilling(ctx, billing.ID, "")
	assert.ErrorIs(t, err, service.ErrBillingAlreadyIssued)
	require.Len(t, inv.requests, 1)
}

func TestIssueBillingProviderFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := newBillingService(t, db, &fakeInvoicer{err: assert.AnError}, &fakeMailer{})
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 1, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)
	billing, err := svc.CreateBilling(ctx, &domain.CreateBillingRequest{
		OfferID:      offer.ID,
		Title:        "Final",
		OfferItemIDs: []uuid.UUID{offer.Items[0].ID},
	})
	require.NoError(t, err)

	_, err = svc.IssueBilling(ctx, billing.ID, "")
	assert.ErrorIs(t, err, service.ErrExternalService)

	// The billing stays a deletable draft after a failed issue
	got, err := svc.GetBilling(ctx, billing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BillingStatusDraft, got.Status)
	assert.Empty(t, got.InvoiceNumber)
}

func TestDeleteBillingRefusesIssued(t *testing.T) {
	db := setupTestDB(t)
	inv := &fakeInvoicer{result: &invoicer.InvoiceResult{InvoiceNumber: "INV-1"}}
	svc := newBillingService(t, db, inv, &fakeMailer{})
	offerSvc := newOfferService(t, db, &fakeGenerator{})
	ctx := tenantCtx("mester@example.com")

	offer, err := offerSvc.CreateOffer(ctx, &domain.CreateOfferRequest{
		Title: "Job",
		Items: []domain.CreateOfferItemRequest{
			{Name: "Tile laying", Quantity: 1, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)

	draft, err := svc.CreateBilling(ctx, &domain.CreateBillingRequest{
		OfferID:      offer.ID,
		Title:        "Draft",
		OfferItemIDs: []uuid.UUID{offer.Items[0].ID},
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBilling(ctx, draft.ID))
	_, err = svc.GetBilling(ctx, draft.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	issued, err := svc.CreateBilling(ctx, &domain.CreateBillingRequest{
		OfferID:      offer.ID,
		Title:        "Issued",
		OfferItemIDs: []uuid.UUID{offer.Items[0].ID},
	})
	require.NoError(t, err)
	_, err = svc.IssueBilling(ctx, issued.ID, "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteBilling(ctx, issued.ID), service.ErrBillingAlreadyIssued)
}
