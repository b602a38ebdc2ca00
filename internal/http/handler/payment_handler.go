package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/service"
	"go.uber.org/zap"
)

// Webhook payloads are small JSON events; 1MB is generous
const maxWebhookBytes = 1 << 20

type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// @Summary Start subscription checkout
// @Description Creates a hosted checkout session with the payment processor and returns its URL.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body domain.CheckoutSessionRequest true "Checkout data"
// @Success 200 {object} domain.RedirectResponse
// @Failure 502 {object} domain.ErrorResponse "Payment processor failed"
// @Security BearerAuth
// @Router /payments/checkout [post]
func (h *PaymentHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	url, err := h.paymentService.StartCheckout(r.Context(), req.PriceID)
	if err != nil {
		h.logger.Error("failed to start checkout", zap.Error(err))
		respondServiceError(w, err, "Checkout session")
		return
	}

	respondJSON(w, http.StatusOK, domain.RedirectResponse{URL: url})
}

// @Summary Open billing portal
// @Description Creates a hosted billing portal session for the current user and returns its URL.
// @Tags Payments
// @Produce json
// @Success 200 {object} domain.RedirectResponse
// @Failure 502 {object} domain.ErrorResponse "Payment processor failed"
// @Security BearerAuth
// @Router /payments/portal [post]
func (h *PaymentHandler) OpenPortal(w http.ResponseWriter, r *http.Request) {
	url, err := h.paymentService.OpenBillingPortal(r.Context())
	if err != nil {
		h.logger.Error("failed to open billing portal", zap.Error(err))
		respondServiceError(w, err, "Portal session")
		return
	}

	respondJSON(w, http.StatusOK, domain.RedirectResponse{URL: url})
}

// Webhook receives processor events. It is mounted outside the
// authenticated routes; the HMAC signature is the only authentication.
// @Summary Payment processor webhook
// @Tags Payments
// @Accept json
// @Success 200
// @Failure 400 {object} domain.ErrorResponse "Invalid signature"
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := h.paymentService.HandleWebhook(payload, r.Header.Get("X-Webhook-Signature")); err != nil {
		h.logger.Warn("rejected payment webhook", zap.Error(err))
		respondServiceError(w, err, "Webhook")
		return
	}

	w.WriteHeader(http.StatusOK)
}
