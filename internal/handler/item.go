package handler

import (
	"log/slog"
	"net/http"
	"time"

	models "clouddrive/internal/domain/models/drive"
	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/httputil"
)

// ItemHandler handles folder, listing and search requests
type ItemHandler struct {
	itemService driveSvc.ItemService
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService driveSvc.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 with the existing id if the name is taken
func (h *ItemHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req driveSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)

	folder, err := h.itemService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// updateItemBody distinguishes an absent parent_id from an explicit null (move to root)
type updateItemBody struct {
	Name     *string                 `json:"name"`
	Color    *string                 `json:"color"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// UpdateItem renames, recolors or moves an item
// PATCH /api/items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Item")
	if !ok {
		return
	}

	var body updateItemBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := &driveSvc.UpdateItemRequest{
		Name:     body.Name,
		Color:    body.Color,
		Move:     body.ParentID.Present,
		ParentID: body.ParentID.Value,
	}
	item, err := h.itemService.UpdateItem(r.Context(), httputil.GetUserID(r), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// ListRoot lists the root of the caller's drive
// GET /api/drive
func (h *ItemHandler) ListRoot(w http.ResponseWriter, r *http.Request) {
	h.listChildren(w, r, nil)
}

// ListChildren lists a folder's live children
// GET /api/folders/{id}/children?sort=a-z&limit=50&offset=0
func (h *ItemHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Folder")
	if !ok {
		return
	}
	h.listChildren(w, r, &id)
}

func (h *ItemHandler) listChildren(w http.ResponseWriter, r *http.Request, parentID *string) {
	sort := models.SortKey(r.URL.Query().Get("sort"))
	page, err := h.itemService.ListChildren(r.Context(), httputil.GetUserID(r), parentID, sort, pageFromQuery(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, page)
}

// GetBreadcrumbs returns the root-to-item trail
// GET /api/items/{id}/breadcrumbs
func (h *ItemHandler) GetBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Item")
	if !ok {
		return
	}

	crumbs, err := h.itemService.GetBreadcrumbs(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, crumbs)
}

// Search finds live items by name and filters
// GET /api/search?q=report&mime_type=application/pdf&starred=true&parent_id=...&from=...&to=...
func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := &models.SearchFilters{
		Text:     query.Get("q"),
		MimeType: query.Get("mime_type"),
		ParentID: httputil.QueryString(r, "parent_id"),
	}
	if raw := query.Get("starred"); raw != "" {
		filters.IsStarred = models.Bool(raw == "true")
	}
	for key, dest := range map[string]**time.Time{"from": &filters.CreatedFrom, "to": &filters.CreatedTo} {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, key+" must be an RFC 3339 timestamp")
			return
		}
		*dest = &t
	}

	page, err := h.itemService.Search(r.Context(), httputil.GetUserID(r), filters, pageFromQuery(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, page)
}

// ListStarred lists starred items
// GET /api/starred
func (h *ItemHandler) ListStarred(w http.ResponseWriter, r *http.Request) {
	page, err := h.itemService.ListStarred(r.Context(), httputil.GetUserID(r), pageFromQuery(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, page)
}

// ListRecent lists recently opened files
// GET /api/recent
func (h *ItemHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	page, err := h.itemService.ListRecent(r.Context(), httputil.GetUserID(r), pageFromQuery(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, page)
}

// ListTrash lists items in the bin
// GET /api/trash
func (h *ItemHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	page, err := h.itemService.ListTrash(r.Context(), httputil.GetUserID(r), pageFromQuery(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, page)
}

// Touch records that the caller opened an item
// POST /api/items/{id}/touch
func (h *ItemHandler) Touch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Item")
	if !ok {
		return
	}
	if err := h.itemService.Touch(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
