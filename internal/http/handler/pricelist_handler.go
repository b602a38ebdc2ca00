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

type PriceListHandler struct {
	priceListService *service.PriceListService
	logger           *zap.Logger
}

func NewPriceListHandler(priceListService *service.PriceListService, logger *zap.Logger) *PriceListHandler {
	return &PriceListHandler{
		priceListService: priceListService,
		logger:           logger,
	}
}

// @Summary List price list items
// @Tags PriceList
// @Produce json
// @Success 200 {array} domain.PriceListItem
// @Security BearerAuth
// @Router /price-list [get]
func (h *PriceListHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.priceListService.ListItems(r.Context())
	if err != nil {
		h.logger.Error("failed to list price list items", zap.Error(err))
		respondServiceError(w, err, "Price list item")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// @Summary Create price list item
// @Description Saves a recurring task price. Task names are unique per account, case-insensitively.
// @Tags PriceList
// @Accept json
// @Produce json
// @Param request body domain.CreatePriceListItemRequest true "Item data"
// @Success 201 {object} domain.PriceListItem
// @Failure 409 {object} domain.ErrorResponse "Task already exists"
// @Security BearerAuth
// @Router /price-list [post]
func (h *PriceListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePriceListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.priceListService.CreateItem(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create price list item", zap.Error(err))
		respondServiceError(w, err, "Price list item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// @Summary Update price list item
// @Tags PriceList
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body domain.CreatePriceListItemRequest true "Item data"
// @Success 200 {object} domain.PriceListItem
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Task already exists"
// @Security BearerAuth
// @Router /price-list/{id} [put]
func (h *PriceListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID: must be a valid UUID")
		return
	}

	var req domain.CreatePriceListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.priceListService.UpdateItem(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update price list item", zap.Error(err), zap.String("item_id", id.String()))
		respondServiceError(w, err, "Price list item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// @Summary Delete price list item
// @Tags PriceList
// @Param id path string true "Item ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /price-list/{id} [delete]
func (h *PriceListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.priceListService.DeleteItem(r.Context(), id); err != nil {
		h.logger.Error("failed to delete price list item", zap.Error(err), zap.String("item_id", id.String()))
		respondServiceError(w, err, "Price list item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
