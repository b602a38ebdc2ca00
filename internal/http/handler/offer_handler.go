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

type OfferHandler struct {
	offerService *service.OfferService
	logger       *zap.Logger
}

func NewOfferHandler(offerService *service.OfferService, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
		logger:       logger,
	}
}

// @Summary List offers
// @Tags Offers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(draft, sent, accepted, in_work)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /offers [get]
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
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

	var status domain.OfferStatus
	if s := r.URL.Query().Get("status"); s != "" {
		status = domain.OfferStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	offers, total, err := h.offerService.ListOffers(r.Context(), status, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list offers", zap.Error(err))
		respondServiceError(w, err, "Offer")
		return
	}

	respondJSON(w, http.StatusOK, paginatedResponse(offers, page, pageSize, total))
}

// @Summary Create offer
// @Description Creates a draft offer, optionally with initial items.
// @Tags Offers
// @Accept json
// @Produce json
// @Param request body domain.CreateOfferRequest true "Offer data"
// @Success 201 {object} domain.OfferWithItemsDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /offers [post]
func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	offer, err := h.offerService.CreateOffer(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create offer", zap.Error(err))
		respondServiceError(w, err, "Offer")
		return
	}

	w.Header().Set("Location", "/api/v1/offers/"+offer.ID.String())
	respondJSON(w, http.StatusCreated, offer)
}

// @Summary Create offer from free text
// @Description Sends a free-form job description to the text generation provider and creates a draft offer from the structured items it returns.
// @Tags Offers
// @Accept json
// @Produce json
// @Param request body domain.CreateOfferFromTextRequest true "Offer data with free text"
// @Success 201 {object} domain.OfferWithItemsDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 502 {object} domain.ErrorResponse "Text generation provider failed"
// @Security BearerAuth
// @Router /offers/from-text [post]
func (h *OfferHandler) CreateFromText(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOfferFromTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	offer, err := h.offerService.CreateOfferFromText(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create offer from text", zap.Error(err))
		respondServiceError(w, err, "Offer")
		return
	}

	w.Header().Set("Location", "/api/v1/offers/"+offer.ID.String())
	respondJSON(w, http.StatusCreated, offer)
}

// @Summary Get offer
// @Tags Offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} domain.OfferWithItemsDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /offers/{id} [get]
func (h *OfferHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offer ID: must be a valid UUID")
		return
	}

	offer, err := h.offerService.GetOffer(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get offer", zap.Error(err), zap.String("offer_id", id.String()))
		respondServiceError(w, err, "Offer")
		return
	}

	respondJSON(w, http.StatusOK, offer)
}

// @Summary Update offer
// @Tags Offers
// @Accept json
// @Produce json
// @Param id path string true "Offer ID"
// @Param request body domain.UpdateOfferRequest true "Offer data"
// @Success 200 {object} domain.OfferWithItemsDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /offers/{id} [put]
func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offer ID: must be a valid UUID")
		return
	}

	var req domain.UpdateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	offer, err := h.offerService.UpdateOffer(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update offer", zap.Error(err), zap.String("offer_id", id.String()))
		respondServiceError(w, err, "Offer")
		return
	}

	respondJSON(w, http.StatusOK, offer)
}

// @Summary Update offer status
// @Description Moves the offer between draft, sent and accepted. The in_work status is reserved for conversion and cannot be set here.
// @Tags Offers
// @Accept json
// @Produce json
// @Param id path string true "Offer ID"
// @Param request body domain.UpdateOfferStatusRequest true "Status data"
// @Success 200 {object} domain.OfferDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /offers/{id}/status [put]
func (h *OfferHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offer ID: must be a valid UUID")
		return
	}

	var req domain.UpdateOfferStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	offer, err := h.offerService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update offer status", zap.Error(err), zap.String("offer_id", id.String()))
		respondServiceError(w, err, "Offer")
		return
	}

	respondJSON(w, http.StatusOK, offer)
}

// @Summary Delete offer
// @Description Deletes an offer and its items. Offers already converted to a work cannot be deleted.
// @Tags Offers
// @Param id path string true "Offer ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /offers/{id} [delete]
func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offer ID")
		return
	}

	if err := h.offerService.DeleteOffer(r.Context(), id); err != nil {
		h.logger.Error("failed to delete offer", zap.Error(err), zap.String("offer_id", id.String()))
		respondServiceError(w, err, "Offer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Add offer item
// @Description Inserts a new item at the top of the offer; existing items shift down. If the offer is already in work, the item is mirrored into the work in the same transaction.
// @Tags Offers
// @Accept json
// @Produce json
// @Param id path string true "Offer ID"
// @Param request body domain.CreateOfferItemRequest true "Item data"
// @Success 201 {object} domain.OfferItemDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /offers/{id}/items [post]
func (h *OfferHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offer ID: must be a valid UUID")
		return
	}

	var req domain.CreateOfferItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.offerService.AddOfferItem(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add offer item", zap.Error(err), zap.String("offer_id", id.String()))
		respondServiceError(w, err, "Offer")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// @Summary Update offer item
// @Tags Offers
// @Accept json
// @Produce json
// @Param itemId path string true "Offer item ID"
// @Param request body domain.UpdateOfferItemRequest true "Item data"
// @Success 200 {object} domain.OfferItemDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /offer-items/{itemId} [put]
func (h *OfferHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offer item ID: must be a valid UUID")
		return
	}

	var req domain.UpdateOfferItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.offerService.UpdateOfferItem(r.Context(), itemID, &req)
	if err != nil {
		h.logger.Error("failed to update offer item", zap.Error(err), zap.String("item_id", itemID.String()))
		respondServiceError(w, err, "Offer item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// @Summary Delete offer item
// @Tags Offers
// @Param itemId path string true "Offer item ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /offer-items/{itemId} [delete]
func (h *OfferHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offer item ID")
		return
	}

	if err := h.offerService.DeleteOfferItem(r.Context(), itemID); err != nil {
		h.logger.Error("failed to delete offer item", zap.Error(err), zap.String("item_id", itemID.String()))
		respondServiceError(w, err, "Offer item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
