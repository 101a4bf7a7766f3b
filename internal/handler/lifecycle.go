package handler

import (
	"context"
	"log/slog"
	"net/http"

	"clouddrive/internal/domain/services"
	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/httputil"
)

// LifecycleHandler handles star, trash, public and purge requests
type LifecycleHandler struct {
	lifecycleService driveSvc.LifecycleService
	deleter          services.ObjectDeleter
	logger           *slog.Logger
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(lifecycleService driveSvc.LifecycleService, deleter services.ObjectDeleter, logger *slog.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycleService: lifecycleService,
		deleter:          deleter,
		logger:           logger,
	}
}

type toggleFunc func(ctx context.Context, userID string, ids []string, value bool) (*driveSvc.BatchResult, error)

// toggle decodes {"ids": [...], "value": bool}; value defaults to true
func (h *LifecycleHandler) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc) {
	var req BatchRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	value := req.Value == nil || *req.Value

	result, err := fn(r.Context(), httputil.GetUserID(r), req.IDs, value)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// SetStarred stars or unstars items
// POST /api/items/star
func (h *LifecycleHandler) SetStarred(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.lifecycleService.SetStarred)
}

// SetTrashed moves items to or restores them from the bin
// POST /api/items/trash
func (h *LifecycleHandler) SetTrashed(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.lifecycleService.SetTrashed)
}

// SetPublic flags items and their descendants
// POST /api/items/public
func (h *LifecycleHandler) SetPublic(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.lifecycleService.SetPublic)
}

// DeletePermanently purges trashed items
// POST /api/items/delete
func (h *LifecycleHandler) DeletePermanently(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID := httputil.GetUserID(r)

	result, err := h.lifecycleService.DeletePermanently(r.Context(), userID, req.IDs)
	h.release(r.Context(), userID, result)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// EmptyTrash purges everything in the bin
// POST /api/trash/empty
func (h *LifecycleHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	result, err := h.lifecycleService.EmptyTrash(r.Context(), userID)
	h.release(r.Context(), userID, result)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// release hands purged keys to the deleter. Keys from a partial purge are
// released too since their rows are already gone.
func (h *LifecycleHandler) release(ctx context.Context, userID string, result *driveSvc.PurgeResult) {
	if result == nil || len(result.Keys) == 0 {
		return
	}
	if err := h.deleter.DeleteObjects(ctx, userID, result.Keys); err != nil {
		h.logger.Error("failed to release purged objects",
			"user_id", userID,
			"keys", len(result.Keys),
			"error", err,
		)
	}
}
