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

type MaterialHandler struct {
	materialService *service.MaterialService
	logger          *zap.Logger
}

func NewMaterialHandler(materialService *service.MaterialService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		logger:          logger,
	}
}

// @Summary List materials
// @Tags Materials
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {array} domain.MaterialDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/materials [get]
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	materials, err := h.materialService.ListMaterials(r.Context(), workID)
	if err != nil {
		h.logger.Error("failed to list materials", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, materials)
}

// @Summary Add material
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Work ID"
// @Param request body domain.CreateMaterialRequest true "Material data"
// @Success 201 {object} domain.MaterialDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/materials [post]
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	var req domain.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.materialService.CreateMaterial(r.Context(), workID, &req)
	if err != nil {
		h.logger.Error("failed to create material", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusCreated, material)
}

// @Summary Update material
// @Description Updates quantities, price or warehouse availability of a material.
// @Tags Materials
// @Accept json
// @Produce json
// @Param materialId path string true "Material ID"
// @Param request body domain.UpdateMaterialRequest true "Material data"
// @Success 200 {object} domain.MaterialDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /materials/{materialId} [put]
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	materialID, err := uuid.Parse(chi.URLParam(r, "materialId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material ID: must be a valid UUID")
		return
	}

	var req domain.UpdateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.materialService.UpdateMaterial(r.Context(), materialID, &req)
	if err != nil {
		h.logger.Error("failed to update material", zap.Error(err), zap.String("material_id", materialID.String()))
		respondServiceError(w, err, "Material")
		return
	}

	respondJSON(w, http.StatusOK, material)
}

// @Summary Delete material
// @Tags Materials
// @Param materialId path string true "Material ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /materials/{materialId} [delete]
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	materialID, err := uuid.Parse(chi.URLParam(r, "materialId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material ID")
		return
	}

	if err := h.materialService.DeleteMaterial(r.Context(), materialID); err != nil {
		h.logger.Error("failed to delete material", zap.Error(err), zap.String("material_id", materialID.String()))
		respondServiceError(w, err, "Material")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Scout material prices
// @Description Fetches vendor price quotes for the work's materials from the price scouting provider. Materials are sent in batches; a failed batch is logged and skipped. Returns the number of materials that received fresh quotes.
// @Tags Materials
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/materials/scout [post]
func (h *MaterialHandler) ScoutPrices(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	quoted, err := h.materialService.ScoutPrices(r.Context(), workID)
	if err != nil {
		h.logger.Error("failed to scout material prices", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"quotedCount": quoted})
}
