package handler

import (
	"log/slog"
	"net/http"

	models "clouddrive/internal/domain/models/drive"
	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/httputil"
)

// ShareHandler handles public link management and anonymous browsing
type ShareHandler struct {
	sharingService driveSvc.SharingService
	logger         *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(sharingService driveSvc.SharingService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		sharingService: sharingService,
		logger:         logger,
	}
}

// CreateLink issues or refreshes the item's link
// PUT /api/items/{id}/link  body: {"duration": "1h" | "1d" | "7d" | "never"}
func (h *ShareHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Item")
	if !ok {
		return
	}

	var req struct {
		Duration models.LinkDuration `json:"duration"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := h.sharingService.CreateOrRefreshLink(r.Context(), httputil.GetUserID(r), id, req.Duration)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, link)
}

// GetLink returns the item's link
// GET /api/items/{id}/link
func (h *ShareHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Item")
	if !ok {
		return
	}

	link, err := h.sharingService.GetLink(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, link)
}

// RevokeLink removes the item's link
// DELETE /api/items/{id}/link
func (h *ShareHandler) RevokeLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Item")
	if !ok {
		return
	}

	if err := h.sharingService.RevokeLink(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Browse lists a shared item for anonymous viewers
// GET /api/share/{token}?folder_id=...&limit=50&offset=0
func (h *ShareHandler) Browse(w http.ResponseWriter, r *http.Request) {
	token, ok := pathID(w, r, "token", "Share")
	if !ok {
		return
	}

	listing, err := h.sharingService.Browse(r.Context(), token, httputil.QueryString(r, "folder_id"), pageFromQuery(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, listing)
}
