package handler

import (
	"log/slog"
	"net/http"

	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/httputil"
)

// RuleHandler handles folder automation rules
type RuleHandler struct {
	automationService driveSvc.AutomationService
	logger            *slog.Logger
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(automationService driveSvc.AutomationService, logger *slog.Logger) *RuleHandler {
	return &RuleHandler{
		automationService: automationService,
		logger:            logger,
	}
}

// GetRule returns the folder's rule view
// GET /api/folders/{id}/rule
func (h *RuleHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Folder")
	if !ok {
		return
	}

	view, err := h.automationService.GetRule(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// PutRule replaces the folder's rule and flows
// PUT /api/folders/{id}/rule
func (h *RuleHandler) PutRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Folder")
	if !ok {
		return
	}

	var req driveSvc.UpsertRuleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.FolderID = id

	rule, err := h.automationService.UpsertRule(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, rule)
}

// DeleteRule removes the folder's rule
// DELETE /api/folders/{id}/rule
func (h *RuleHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Folder")
	if !ok {
		return
	}

	if err := h.automationService.DeleteRule(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
