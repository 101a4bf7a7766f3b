package handler

import (
	"errors"
	"net/http"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	"clouddrive/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var stateErr *domain.StateError

	switch {
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.As(err, &stateErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, stateErr.Error(), map[string]interface{}{
			"item_id": stateErr.ItemID,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidState):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrExpired), errors.Is(err, domain.ErrGone):
		httputil.RespondError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrResourceExhausted):
		httputil.RespondError(w, http.StatusInsufficientStorage, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pageFromQuery reads limit/offset; bounds are applied by the services
func pageFromQuery(r *http.Request) models.Page {
	return models.Page{
		Limit:  httputil.QueryInt(r, "limit", 0),
		Offset: httputil.QueryInt(r, "offset", 0),
	}
}

// pathID reads a required path parameter, writing a 400 when it is blank
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" ID is required")
		return "", false
	}
	return id, true
}

// BatchRequest is the body of every multi-item lifecycle call
type BatchRequest struct {
	IDs   []string `json:"ids"`
	Value *bool    `json:"value,omitempty"`
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
