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

type WorkforceHandler struct {
	workforceService *service.WorkforceService
	logger           *zap.Logger
}

func NewWorkforceHandler(workforceService *service.WorkforceService, logger *zap.Logger) *WorkforceHandler {
	return &WorkforceHandler{
		workforceService: workforceService,
		logger:           logger,
	}
}

// @Summary List workforce members
// @Tags Workforce
// @Produce json
// @Success 200 {array} domain.WorkforceMemberDTO
// @Security BearerAuth
// @Router /workforce [get]
func (h *WorkforceHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.workforceService.ListMembers(r.Context())
	if err != nil {
		h.logger.Error("failed to list workforce members", zap.Error(err))
		respondServiceError(w, err, "Workforce member")
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// @Summary Create workforce member
// @Description Registers a reusable worker. At least one of email or phone is required.
// @Tags Workforce
// @Accept json
// @Produce json
// @Param request body domain.CreateWorkforceMemberRequest true "Member data"
// @Success 201 {object} domain.WorkforceMemberDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /workforce [post]
func (h *WorkforceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWorkforceMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	member, err := h.workforceService.CreateMember(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create workforce member", zap.Error(err))
		respondServiceError(w, err, "Workforce member")
		return
	}

	respondJSON(w, http.StatusCreated, member)
}

// @Summary Get workforce member
// @Tags Workforce
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} domain.WorkforceMemberDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /workforce/{id} [get]
func (h *WorkforceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid member ID: must be a valid UUID")
		return
	}

	member, err := h.workforceService.GetMember(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get workforce member", zap.Error(err), zap.String("member_id", id.String()))
		respondServiceError(w, err, "Workforce member")
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// @Summary Update workforce member
// @Tags Workforce
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body domain.UpdateWorkforceMemberRequest true "Member data"
// @Success 200 {object} domain.WorkforceMemberDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /workforce/{id} [put]
func (h *WorkforceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid member ID: must be a valid UUID")
		return
	}

	var req domain.UpdateWorkforceMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	member, err := h.workforceService.UpdateMember(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update workforce member", zap.Error(err), zap.String("member_id", id.String()))
		respondServiceError(w, err, "Workforce member")
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// @Summary Delete workforce member
// @Tags Workforce
// @Param id path string true "Member ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /workforce/{id} [delete]
func (h *WorkforceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	if err := h.workforceService.DeleteMember(r.Context(), id); err != nil {
		h.logger.Error("failed to delete workforce member", zap.Error(err), zap.String("member_id", id.String()))
		respondServiceError(w, err, "Workforce member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
