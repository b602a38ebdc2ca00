package service

import (
	"context"
	"fmt"

	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/clients/payments"
	"go.uber.org/zap"
)

// PaymentProcessor wraps the subscription payment provider
type PaymentProcessor interface {
	CreateCheckoutSession(ctx context.Context, customerEmail, priceID string) (*payments.Session, error)
	CreatePortalSession(ctx context.Context, customerEmail string) (*payments.Session, error)
	VerifyWebhook(payload []byte, signature string) (*payments.WebhookEvent, error)
}

// PaymentService is a thin pass-through to the payment processor; all
// subscription state lives upstream
type PaymentService struct {
	processor PaymentProcessor
	logger    *zap.Logger
}

func NewPaymentService(processor PaymentProcessor, logger *zap.Logger) *PaymentService {
	return &PaymentService{processor: processor, logger: logger}
}

// StartCheckout opens a hosted checkout session for the current user
func (s *PaymentService) StartCheckout(ctx context.Context, priceID string) (string, error) {
	tc, ok := auth.FromContext(ctx)
	if !ok {
		return "", ErrUnauthorized
	}
	session, err := s.processor.CreateCheckoutSession(ctx, tc.UserEmail, priceID)
	if err != nil {
		s.logger.Error("checkout session failed",
			zap.String("user_email", tc.UserEmail),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return session.URL, nil
}

// OpenBillingPortal opens the hosted billing portal for the current user
func (s *PaymentService) OpenBillingPortal(ctx context.Context) (string, error) {
	tc, ok := auth.FromContext(ctx)
	if !ok {
		return "", ErrUnauthorized
	}
	session, err := s.processor.CreatePortalSession(ctx, tc.UserEmail)
	if err != nil {
		s.logger.Error("portal session failed",
			zap.String("user_email", tc.UserEmail),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return session.URL, nil
}

// HandleWebhook verifies and logs a processor event. Subscription state
// stays upstream; the event is acknowledged once verified.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) error {
	event, err := s.processor.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	s.logger.Info("payment webhook received",
		zap.String("type", event.Type),
		zap.String("customer_email", event.CustomerEmail),
	)
	return nil
}
