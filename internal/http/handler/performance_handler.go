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

type PerformanceHandler struct {
	performanceService *service.PerformanceService
	logger             *zap.Logger
}

func NewPerformanceHandler(performanceService *service.PerformanceService, logger *zap.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		performanceService: performanceService,
		logger:             logger,
	}
}

// @Summary Update performance expectations
// @Description Sets the expected profit percent, offer price and own costs of a work. The offer price defaults to the contracted total.
// @Tags Performance
// @Accept json
// @Produce json
// @Param id path string true "Work ID"
// @Param request body domain.UpdatePerformanceRequest true "Expectation data"
// @Success 200 {object} domain.Performance
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/performance [put]
func (h *PerformanceHandler) UpdateExpectations(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	var req domain.UpdatePerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	perf, err := h.performanceService.UpdateExpectations(r.Context(), workID, &req)
	if err != nil {
		h.logger.Error("failed to update performance expectations", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, perf)
}

// @Summary Get performance report
// @Description Returns expectations alongside the actual profit figures computed from the diary.
// @Tags Performance
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {object} service.PerformanceReport
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/performance [get]
func (h *PerformanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	report, err := h.performanceService.Report(r.Context(), workID)
	if err != nil {
		h.logger.Error("failed to build performance report", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
