package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/service"
	"go.uber.org/zap"
)

type BillingHandler struct {
	billingService *service.BillingService
	logger         *zap.Logger
}

func NewBillingHandler(billingService *service.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// @Summary List billings
// @Tags Billing
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, issued)
// @Success 200 {array} domain.BillingDTO
// @Security BearerAuth
// @Router /billings [get]
func (h *BillingHandler) List(w http.ResponseWriter, r *http.Request) {
	var status domain.BillingStatus
	if s := r.URL.Query().Get("status"); s != "" {
		status = domain.BillingStatus(s)
		if status != domain.BillingStatusDraft && status != domain.BillingStatusIssued {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	billings, err := h.billingService.ListBillings(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list billings", zap.Error(err))
		respondServiceError(w, err, "Billing")
		return
	}

	respondJSON(w, http.StatusOK, billings)
}

// @Summary Create billing draft
// @Description Drafts a billing from selected offer items. Lines are copied at draft time, so later offer edits do not change the draft.
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body domain.CreateBillingRequest true "Billing data"
// @Success 201 {object} domain.BillingDTO
// @Failure 400 {object} domain.ErrorResponse "No matching offer items"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /billings [post]
func (h *BillingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBillingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	billing, err := h.billingService.CreateBilling(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create billing", zap.Error(err))
		respondServiceError(w, err, "Offer")
		return
	}

	respondJSON(w, http.StatusCreated, billing)
}

// @Summary Get billing
// @Tags Billing
// @Produce json
// @Param id path string true "Billing ID"
// @Success 200 {object} domain.BillingDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /billings/{id} [get]
func (h *BillingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid billing ID: must be a valid UUID")
		return
	}

	billing, err := h.billingService.GetBilling(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get billing", zap.Error(err), zap.String("billing_id", id.String()))
		respondServiceError(w, err, "Billing")
		return
	}

	respondJSON(w, http.StatusOK, billing)
}

// @Summary Issue billing
// @Description Issues the invoice through the external provider and moves the billing to issued. Issuing is not retried; the provider assigns sequential invoice numbers.
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Billing ID"
// @Param request body domain.IssueBillingRequest false "Issue options"
// @Success 200 {object} domain.BillingDTO
// @Failure 400 {object} domain.ErrorResponse "Billing already issued"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 502 {object} domain.ErrorResponse "Invoice provider failed"
// @Security BearerAuth
// @Router /billings/{id}/issue [post]
func (h *BillingHandler) Issue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid billing ID: must be a valid UUID")
		return
	}

	var req domain.IssueBillingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body is allowed
		req = domain.IssueBillingRequest{}
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	billing, err := h.billingService.IssueBilling(r.Context(), id, req.RecipientEmail)
	if err != nil {
		h.logger.Error("failed to issue billing", zap.Error(err), zap.String("billing_id", id.String()))
		respondServiceError(w, err, "Billing")
		return
	}

	respondJSON(w, http.StatusOK, billing)
}

// @Summary Delete billing draft
// @Description Deletes a draft billing. Issued billings are immutable.
// @Tags Billing
// @Param id path string true "Billing ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse "Billing already issued"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /billings/{id} [delete]
func (h *BillingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid billing ID")
		return
	}

	if err := h.billingService.DeleteBilling(r.Context(), id); err != nil {
		h.logger.Error("failed to delete billing", zap.Error(err), zap.String("billing_id", id.String()))
		respondServiceError(w, err, "Billing")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
