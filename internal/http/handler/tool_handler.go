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

type ToolHandler struct {
	toolService *service.ToolService
	logger      *zap.Logger
}

func NewToolHandler(toolService *service.ToolService, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{
		toolService: toolService,
		logger:      logger,
	}
}

// @Summary List tools
// @Tags Tools
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {array} domain.Tool
// @Security BearerAuth
// @Router /works/{id}/tools [get]
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	tools, err := h.toolService.ListTools(r.Context(), workID)
	if err != nil {
		h.logger.Error("failed to list tools", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, tools)
}

// @Summary Add tool
// @Tags Tools
// @Accept json
// @Produce json
// @Param id path string true "Work ID"
// @Param request body domain.CreateToolRequest true "Tool data"
// @Success 201 {object} domain.Tool
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/tools [post]
func (h *ToolHandler) Create(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	var req domain.CreateToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	tool, err := h.toolService.CreateTool(r.Context(), workID, &req)
	if err != nil {
		h.logger.Error("failed to create tool", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusCreated, tool)
}

// @Summary Delete tool
// @Tags Tools
// @Param toolId path string true "Tool ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tools/{toolId} [delete]
func (h *ToolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	toolID, err := uuid.Parse(chi.URLParam(r, "toolId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tool ID")
		return
	}

	if err := h.toolService.DeleteTool(r.Context(), toolID); err != nil {
		h.logger.Error("failed to delete tool", zap.Error(err), zap.String("tool_id", toolID.String()))
		respondServiceError(w, err, "Tool")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
