package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/service"
	"go.uber.org/zap"
)

type WorkHandler struct {
	workService   *service.WorkService
	profitService *service.ProfitService
	logger        *zap.Logger
}

func NewWorkHandler(workService *service.WorkService, profitService *service.ProfitService, logger *zap.Logger) *WorkHandler {
	return &WorkHandler{
		workService:   workService,
		profitService: profitService,
		logger:        logger,
	}
}

// @Summary List works
// @Tags Works
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param activeOnly query bool false "Only active works" default(false)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /works [get]
func (h *WorkHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	activeOnly := r.URL.Query().Get("activeOnly") == "true"

	works, total, err := h.workService.ListWorks(r.Context(), activeOnly, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list works", zap.Error(err))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, paginatedResponse(works, page, pageSize, total))
}

// @Summary Convert offer to work
// @Description Creates a work with items copied verbatim from the offer and moves the offer to in_work, all in one transaction.
// @Tags Works
// @Produce json
// @Param offerId path string true "Offer ID"
// @Success 201 {object} domain.WorkDTO
// @Failure 400 {object} domain.ErrorResponse "Offer not convertible"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/from-offer/{offerId} [post]
func (h *WorkHandler) ConvertFromOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := uuid.Parse(chi.URLParam(r, "offerId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offer ID: must be a valid UUID")
		return
	}

	work, err := h.workService.ConvertOfferToWork(r.Context(), offerID)
	if err != nil {
		h.logger.Error("failed to convert offer to work", zap.Error(err), zap.String("offer_id", offerID.String()))
		respondServiceError(w, err, "Offer")
		return
	}

	w.Header().Set("Location", "/api/v1/works/"+work.ID.String())
	respondJSON(w, http.StatusCreated, work)
}

// @Summary Get work
// @Tags Works
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {object} domain.WorkDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id} [get]
func (h *WorkHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	work, err := h.workService.GetWork(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get work", zap.Error(err), zap.String("work_id", id.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// @Summary Update work
// @Tags Works
// @Accept json
// @Produce json
// @Param id path string true "Work ID"
// @Param request body domain.UpdateWorkRequest true "Work data"
// @Success 200 {object} domain.WorkDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id} [put]
func (h *WorkHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	var req domain.UpdateWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	work, err := h.workService.UpdateWork(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update work", zap.Error(err), zap.String("work_id", id.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// @Summary Delete work with related data
// @Description Deletes the work and everything hanging off it (diary entries, photos, workers, materials, tools, performance) and resets the offer to draft, in one transaction. Photo files are removed from storage after commit.
// @Tags Works
// @Param id path string true "Work ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id} [delete]
func (h *WorkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID")
		return
	}

	if err := h.workService.DeleteWorkWithRelatedData(r.Context(), id); err != nil {
		h.logger.Error("failed to delete work", zap.Error(err), zap.String("work_id", id.String()))
		respondServiceError(w, err, "Work")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary List work items
// @Tags Works
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {array} domain.WorkItemDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/items [get]
func (h *WorkHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	items, err := h.workService.ListWorkItems(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list work items", zap.Error(err), zap.String("work_id", id.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// @Summary Update work item
// @Description Updates a work item; total price and progress are recomputed from the new values.
// @Tags Works
// @Accept json
// @Produce json
// @Param itemId path string true "Work item ID"
// @Param request body domain.UpdateWorkItemRequest true "Item data"
// @Success 200 {object} domain.WorkItemDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /work-items/{itemId} [put]
func (h *WorkHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work item ID: must be a valid UUID")
		return
	}

	var req domain.UpdateWorkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.workService.UpdateWorkItem(r.Context(), itemID, &req)
	if err != nil {
		h.logger.Error("failed to update work item", zap.Error(err), zap.String("item_id", itemID.String()))
		respondServiceError(w, err, "Work item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// @Summary Get work profit
// @Description Computes cost-relative profit from diary entries and daily rates. Internal calculation problems degrade to zeroed figures instead of failing the dashboard.
// @Tags Works
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {object} domain.WorkProfitDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/profit [get]
func (h *WorkHandler) Profit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	profit, err := h.profitService.CalculateWorkProfit(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to calculate work profit", zap.Error(err), zap.String("work_id", id.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, profit)
}

// @Summary List stuck conversions
// @Description Lists works still flagged as processing whose conversion died mid-flight.
// @Tags Works
// @Produce json
// @Success 200 {array} domain.WorkDTO
// @Security BearerAuth
// @Router /works/stuck [get]
func (h *WorkHandler) ListStuck(w http.ResponseWriter, r *http.Request) {
	works, err := h.workService.ListStuckWorks(r.Context())
	if err != nil {
		h.logger.Error("failed to list stuck works", zap.Error(err))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, works)
}

// @Summary Delete stuck conversion
// @Description Removes a work left behind by a failed conversion and resets its offer. Refuses works that are not actually stuck.
// @Tags Works
// @Param id path string true "Work ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse "Work is not stuck"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/stuck/{id} [delete]
func (h *WorkHandler) DeleteStuck(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID")
		return
	}

	if err := h.workService.DeleteStuckWork(r.Context(), id); err != nil {
		h.logger.Error("failed to delete stuck work", zap.Error(err), zap.String("work_id", id.String()))
		respondServiceError(w, err, "Work")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
