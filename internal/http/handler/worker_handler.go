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

type WorkerHandler struct {
	workerService *service.WorkerService
	logger        *zap.Logger
}

func NewWorkerHandler(workerService *service.WorkerService, logger *zap.Logger) *WorkerHandler {
	return &WorkerHandler{
		workerService: workerService,
		logger:        logger,
	}
}

// @Summary List workers on a work
// @Description Lists the role groups of a work with their assignments.
// @Tags Workers
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {array} domain.Worker
// @Security BearerAuth
// @Router /works/{id}/workers [get]
func (h *WorkerHandler) List(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	workers, err := h.workerService.ListWorkers(r.Context(), workID)
	if err != nil {
		h.logger.Error("failed to list workers", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, workers)
}

// @Summary Assign worker to work item
// @Description Assigns a person to a work item. Contact details of known workforce members are filled in from the register by email.
// @Tags Workers
// @Accept json
// @Produce json
// @Param id path string true "Work ID"
// @Param request body domain.AssignWorkerRequest true "Assignment data"
// @Success 201 {object} domain.WorkItemWorker
// @Failure 400 {object} domain.ErrorResponse "Work item does not belong to the work"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/workers [post]
func (h *WorkerHandler) Assign(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	var req domain.AssignWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	assignment, err := h.workerService.AssignWorker(r.Context(), workID, req.WorkItemID, req.Name, req.Email, req.Phone, req.Role, req.Quantity)
	if err != nil {
		h.logger.Error("failed to assign worker", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusCreated, assignment)
}

// @Summary List assignments on a work item
// @Tags Workers
// @Produce json
// @Param itemId path string true "Work item ID"
// @Success 200 {array} domain.WorkItemWorker
// @Security BearerAuth
// @Router /work-items/{itemId}/workers [get]
func (h *WorkerHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work item ID: must be a valid UUID")
		return
	}

	assignments, err := h.workerService.ListAssignments(r.Context(), itemID)
	if err != nil {
		h.logger.Error("failed to list assignments", zap.Error(err), zap.String("item_id", itemID.String()))
		respondServiceError(w, err, "Work item")
		return
	}

	respondJSON(w, http.StatusOK, assignments)
}

// @Summary Remove worker assignment
// @Tags Workers
// @Param assignmentId path string true "Assignment ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignments/{assignmentId} [delete]
func (h *WorkerHandler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := uuid.Parse(chi.URLParam(r, "assignmentId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid assignment ID")
		return
	}

	if err := h.workerService.RemoveAssignment(r.Context(), assignmentID); err != nil {
		h.logger.Error("failed to remove assignment", zap.Error(err), zap.String("assignment_id", assignmentID.String()))
		respondServiceError(w, err, "Assignment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
