package handler

import (
	"log/slog"
	"net/http"

	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/httputil"
)

// FileHandler handles uploads, versions and file metadata
type FileHandler struct {
	itemService       driveSvc.ItemService
	versionService    driveSvc.VersionService
	automationService driveSvc.AutomationService
	logger            *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(
	itemService driveSvc.ItemService,
	versionService driveSvc.VersionService,
	automationService driveSvc.AutomationService,
	logger *slog.Logger,
) *FileHandler {
	return &FileHandler{
		itemService:       itemService,
		versionService:    versionService,
		automationService: automationService,
		logger:            logger,
	}
}

// CreateFile registers an uploaded object, replacing a same-named live file
// POST /api/files
// Returns 201 for a new file, 200 when a version was appended
func (h *FileHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req driveSvc.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)

	result, err := h.itemService.CreateOrReplaceFile(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Replaced {
		status = http.StatusOK
	}
	httputil.RespondJSON(w, status, result)
}

// GetFile returns file details with its versions
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "File")
	if !ok {
		return
	}

	details, err := h.versionService.GetFileDetails(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, details)
}

// AppendVersion adds a revision
// POST /api/files/{id}/versions
func (h *FileHandler) AppendVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "File")
	if !ok {
		return
	}

	var req driveSvc.AppendVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.FileID = id

	version, err := h.versionService.AppendVersion(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, version)
}

// ListVersions lists live versions newest first
// GET /api/files/{id}/versions
func (h *FileHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "File")
	if !ok {
		return
	}

	versions, err := h.versionService.ListVersions(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, versions)
}

// AttachThumbnail sets the preview object
// PUT /api/files/{id}/thumbnail
func (h *FileHandler) AttachThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "File")
	if !ok {
		return
	}

	var req struct {
		ThumbnailKey string `json:"thumbnail_key"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	file, err := h.versionService.AttachThumbnail(r.Context(), httputil.GetUserID(r), id, req.ThumbnailKey)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

// UpdateAfterProcessing repoints the file at a processed object
// PUT /api/files/{id}/processed
func (h *FileHandler) UpdateAfterProcessing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "File")
	if !ok {
		return
	}

	var req driveSvc.ProcessedFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.FileID = id

	file, err := h.versionService.UpdateAfterProcessing(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

// MatchActions returns the automation actions for an uploaded file
// GET /api/files/{id}/actions
func (h *FileHandler) MatchActions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "File")
	if !ok {
		return
	}

	actions, err := h.automationService.MatchUpload(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}
