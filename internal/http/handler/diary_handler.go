package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/service"
	"go.uber.org/zap"
)

type DiaryHandler struct {
	diaryService *service.DiaryService
	maxUploadMB  int64
	logger       *zap.Logger
}

func NewDiaryHandler(diaryService *service.DiaryService, maxUploadMB int64, logger *zap.Logger) *DiaryHandler {
	return &DiaryHandler{
		diaryService: diaryService,
		maxUploadMB:  maxUploadMB,
		logger:       logger,
	}
}

// @Summary List diary entries
// @Description Lists the work's diary entries, newest first.
// @Tags Diary
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {array} domain.WorkDiaryEntryDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/diary [get]
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	entries, err := h.diaryService.ListEntries(r.Context(), workID)
	if err != nil {
		h.logger.Error("failed to list diary entries", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// @Summary Create diary entry
// @Description Records daily progress for a work item and resynchronizes the item's completed quantity and progress.
// @Tags Diary
// @Accept json
// @Produce json
// @Param id path string true "Work ID"
// @Param request body domain.CreateDiaryEntryRequest true "Entry data"
// @Success 201 {object} domain.WorkDiaryEntryDTO
// @Failure 400 {object} domain.ErrorResponse "Work item does not belong to the work"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/diary [post]
func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	var req domain.CreateDiaryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	entry, err := h.diaryService.CreateEntry(r.Context(), workID, &req)
	if err != nil {
		h.logger.Error("failed to create diary entry", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// @Summary Get diary entry
// @Tags Diary
// @Produce json
// @Param entryId path string true "Diary entry ID"
// @Success 200 {object} domain.WorkDiaryEntryDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /diary-entries/{entryId} [get]
func (h *DiaryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "entryId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid diary entry ID: must be a valid UUID")
		return
	}

	entry, err := h.diaryService.GetEntry(r.Context(), entryID)
	if err != nil {
		h.logger.Error("failed to get diary entry", zap.Error(err), zap.String("entry_id", entryID.String()))
		respondServiceError(w, err, "Diary entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// @Summary Delete diary entry
// @Description Deletes the entry with its photos and resynchronizes the affected work item.
// @Tags Diary
// @Param entryId path string true "Diary entry ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /diary-entries/{entryId} [delete]
func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "entryId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid diary entry ID")
		return
	}

	if err := h.diaryService.DeleteEntry(r.Context(), entryID); err != nil {
		h.logger.Error("failed to delete diary entry", zap.Error(err), zap.String("entry_id", entryID.String()))
		respondServiceError(w, err, "Diary entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Refresh completed quantities
// @Description Recomputes every work item's completed quantity and progress from the latest diary entries.
// @Tags Diary
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {object} domain.RefreshResultDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/diary/refresh [post]
func (h *DiaryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	result, err := h.diaryService.RefreshCompletedQuantities(r.Context(), workID)
	if err != nil {
		h.logger.Error("failed to refresh completed quantities", zap.Error(err), zap.String("work_id", workID.String()))
		respondServiceError(w, err, "Work")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Set group approval
// @Description Accepts or rejects every diary entry in the group at once.
// @Tags Diary
// @Accept json
// @Produce json
// @Param id path string true "Work ID"
// @Param groupNo path int true "Group number"
// @Param request body domain.SetGroupApprovalRequest true "Approval flag"
// @Success 200 {object} domain.GroupApprovalDTO
// @Failure 404 {object} domain.ErrorResponse "No entries in the group"
// @Security BearerAuth
// @Router /works/{id}/diary/groups/{groupNo}/approval [put]
func (h *DiaryHandler) SetGroupApproval(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	groupNo, err := strconv.Atoi(chi.URLParam(r, "groupNo"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid group number")
		return
	}

	var req domain.SetGroupApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	status, err := h.diaryService.SetGroupApproval(r.Context(), workID, groupNo, req.Accepted)
	if err != nil {
		h.logger.Error("failed to set group approval", zap.Error(err),
			zap.String("work_id", workID.String()), zap.Int("group_no", groupNo))
		respondServiceError(w, err, "Diary group")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// @Summary Get group approval status
// @Tags Diary
// @Produce json
// @Param id path string true "Work ID"
// @Param groupNo path int true "Group number"
// @Success 200 {object} domain.GroupApprovalDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /works/{id}/diary/groups/{groupNo}/approval [get]
func (h *DiaryHandler) GroupApprovalStatus(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work ID: must be a valid UUID")
		return
	}

	groupNo, err := strconv.Atoi(chi.URLParam(r, "groupNo"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid group number")
		return
	}

	status, err := h.diaryService.GroupApprovalStatus(r.Context(), workID, groupNo)
	if err != nil {
		h.logger.Error("failed to get group approval status", zap.Error(err),
			zap.String("work_id", workID.String()), zap.Int("group_no", groupNo))
		respondServiceError(w, err, "Diary group")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// @Summary Upload diary photo
// @Tags Diary
// @Accept multipart/form-data
// @Produce json
// @Param entryId path string true "Diary entry ID"
// @Param file formData file true "Photo to upload"
// @Success 201 {object} domain.DiaryPhoto
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /diary-entries/{entryId}/photos [post]
func (h *DiaryHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "entryId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid diary entry ID: must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	photo, err := h.diaryService.AttachPhoto(r.Context(), entryID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("failed to upload diary photo", zap.Error(err), zap.String("entry_id", entryID.String()))
		respondServiceError(w, err, "Diary entry")
		return
	}

	respondJSON(w, http.StatusCreated, photo)
}

// @Summary Download diary photo
// @Tags Diary
// @Produce application/octet-stream
// @Param photoId path string true "Photo ID"
// @Success 200
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /diary-photos/{photoId} [get]
func (h *DiaryHandler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "photoId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid photo ID: must be a valid UUID")
		return
	}

	photo, reader, err := h.diaryService.OpenPhoto(r.Context(), photoID)
	if err != nil {
		h.logger.Error("failed to download diary photo", zap.Error(err), zap.String("photo_id", photoID.String()))
		respondServiceError(w, err, "Photo")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+photo.Filename+"\"")
	contentType := photo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	_, _ = io.Copy(w, reader)
}
