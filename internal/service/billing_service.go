package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/clients/invoicer"
	"github.com/mesterwork/worksite-api/internal/clients/mailer"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/mapper"
	"github.com/mesterwork/worksite-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Invoicer issues legal invoices through the external provider
type Invoicer interface {
	IssueInvoice(ctx context.Context, req invoicer.InvoiceRequest) (*invoicer.InvoiceResult, error)
}

// Mailer delivers transactional email, fire-and-forget
type Mailer interface {
	SendAsync(msg mailer.Message)
}

type BillingService struct {
	billingRepo *repository.BillingRepository
	offerRepo   *repository.OfferRepository
	invoicer    Invoicer
	mailer      Mailer
	logger      *zap.Logger
}

func NewBillingService(
	billingRepo *repository.BillingRepository,
	offerRepo *repository.OfferRepository,
	invoicerClient Invoicer,
	mailerClient Mailer,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		billingRepo: billingRepo,
		offerRepo:   offerRepo,
		invoicer:    invoicerClient,
		mailer:      mailerClient,
		logger:      logger,
	}
}

// CreateBilling drafts a billing from selected offer items. Lines are
// copied from the offer at draft time so later offer edits don't change
// an already drafted billing.
func (s *BillingService) CreateBilling(ctx context.Context, req *domain.CreateBillingRequest) (*domain.BillingDTO, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	offer, err := s.offerRepo.GetByID(ctx, req.OfferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	selected := make(map[uuid.UUID]bool, len(req.OfferItemIDs))
	for _, id := range req.OfferItemIDs {
		selected[id] = true
	}

	billing := &domain.Billing{
		TenantEmail: tenant,
		OfferID:     offer.ID,
		Title:       req.Title,
		Status:      domain.BillingStatusDraft,
	}
	var total float64
	for i := range offer.Items {
		item := &offer.Items[i]
		if !selected[item.ID] {
			continue
		}
		itemID := item.ID
		billing.Items = append(billing.Items, domain.BillingItem{
			OfferItemID: &itemID,
			TenantEmail: tenant,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice + item.MaterialUnitPrice,
			TotalPrice:  item.TotalPrice,
		})
		total += item.TotalPrice
	}
	if len(billing.Items) == 0 {
		return nil, fmt.Errorf("%w: no matching offer items", ErrInvalidInput)
	}
	billing.TotalPrice = total

	if err := s.billingRepo.Create(ctx, billing); err != nil {
		return nil, fmt.Errorf("failed to create billing: %w", err)
	}

	dto := mapper.ToBillingDTO(billing)
	return &dto, nil
}

func (s *BillingService) GetBilling(ctx context.Context, id uuid.UUID) (*domain.BillingDTO, error) {
	billing, err := s.billingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get billing: %w", err)
	}
	dto := mapper.ToBillingDTO(billing)
	return &dto, nil
}

func (s *BillingService) ListBillings(ctx context.Context, status domain.BillingStatus) ([]domain.BillingDTO, error) {
	billings, err := s.billingRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list billings: %w", err)
	}
	dtos := make([]domain.BillingDTO, len(billings))
	for i := range billings {
		dtos[i] = mapper.ToBillingDTO(&billings[i])
	}
	return dtos, nil
}

// IssueBilling issues the invoice through the external provider and
// moves the billing to issued. Issuing is deliberately not retried: the
// provider assigns sequential invoice numbers. The notification email
// is fire-and-forget and never fails the flow.
func (s *BillingService) IssueBilling(ctx context.Context, id uuid.UUID, recipientEmail string) (*domain.BillingDTO, error) {
	billing, err := s.billingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get billing: %w", err)
	}
	if billing.Status == domain.BillingStatusIssued {
		return nil, ErrBillingAlreadyIssued
	}

	offer, err := s.offerRepo.GetByID(ctx, billing.OfferID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	lines := make([]invoicer.InvoiceLine, len(billing.Items))
	for i := range billing.Items {
		item := &billing.Items[i]
		lines[i] = invoicer.InvoiceLine{
			Name:       item.Name,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}

	result, err := s.invoicer.IssueInvoice(ctx, invoicer.InvoiceRequest{
		SellerEmail:    billing.TenantEmail,
		BuyerName:      offer.RecipientName,
		Title:          billing.Title,
		Currency:       "HUF",
		Lines:          lines,
		PaymentDueDays: 8,
	})
	if err != nil {
		s.logger.Error("invoice issuing failed",
			zap.String("billing_id", billing.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	now := time.Now()
	billing.Status = domain.BillingStatusIssued
	billing.InvoiceNumber = result.InvoiceNumber
	billing.IssuedAt = &now
	if err := s.billingRepo.Update(ctx, billing); err != nil {
		// The invoice exists upstream; surface the state for manual fix
		s.logger.Error("invoice issued but billing update failed",
			zap.String("billing_id", billing.ID.String()),
			zap.String("invoice_number", result.InvoiceNumber),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update billing after issuing: %w", err)
	}

	if recipientEmail != "" {
		s.mailer.SendAsync(mailer.Message{
			To:            recipientEmail,
			Subject:       fmt.Sprintf("Invoice %s - %s", result.InvoiceNumber, billing.Title),
			HTMLBody:      fmt.Sprintf("<p>Your invoice <strong>%s</strong> has been issued.</p>", result.InvoiceNumber),
			AttachmentURL: result.PDFURL,
		})
	}

	s.logger.Info("billing issued",
		zap.String("billing_id", billing.ID.String()),
		zap.String("invoice_number", result.InvoiceNumber),
	)

	dto := mapper.ToBillingDTO(billing)
	return &dto, nil
}

// DeleteBilling removes a draft billing; issued billings are immutable
func (s *BillingService) DeleteBilling(ctx context.Context, id uuid.UUID) error {
	billing, err := s.billingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get billing: %w", err)
	}
	if billing.Status == domain.BillingStatusIssued {
		return ErrBillingAlreadyIssued
	}
	if err := s.billingRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete billing: %w", err)
	}
	return nil
}
