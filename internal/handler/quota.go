package handler

import (
	"log/slog"
	"net/http"

	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/httputil"
)

// QuotaHandler reports storage usage
type QuotaHandler struct {
	quotaService driveSvc.QuotaService
	logger       *slog.Logger
}

// NewQuotaHandler creates a new quota handler
func NewQuotaHandler(quotaService driveSvc.QuotaService, logger *slog.Logger) *QuotaHandler {
	return &QuotaHandler{quotaService: quotaService, logger: logger}
}

// GetUsage returns used bytes against the plan ceiling
// GET /api/usage
func (h *QuotaHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.quotaService.ComputeUsage(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, usage)
}

// EnsurePlan stores the default plan for first-time users
// POST /api/plan
func (h *QuotaHandler) EnsurePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.quotaService.EnsurePlan(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, plan)
}
