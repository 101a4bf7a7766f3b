package handler

import "net/http"

// Handlers groups every HTTP handler the server mounts
type Handlers struct {
	Items     *ItemHandler
	Lifecycle *LifecycleHandler
	Files     *FileHandler
	Shares    *ShareHandler
	Rules     *RuleHandler
	Quota     *QuotaHandler
}

// RegisterRoutes mounts the drive API on mux (Go 1.22+ patterns)
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	// Health check
	mux.HandleFunc("GET /health", HealthCheck)

	// Folders and listings
	mux.HandleFunc("POST /api/folders", h.Items.CreateFolder)
	mux.HandleFunc("GET /api/drive", h.Items.ListRoot)
	mux.HandleFunc("GET /api/folders/{id}/children", h.Items.ListChildren)
	mux.HandleFunc("PATCH /api/items/{id}", h.Items.UpdateItem)
	mux.HandleFunc("GET /api/items/{id}/breadcrumbs", h.Items.GetBreadcrumbs)
	mux.HandleFunc("POST /api/items/{id}/touch", h.Items.Touch)
	mux.HandleFunc("GET /api/search", h.Items.Search)
	mux.HandleFunc("GET /api/starred", h.Items.ListStarred)
	mux.HandleFunc("GET /api/recent", h.Items.ListRecent)
	mux.HandleFunc("GET /api/trash", h.Items.ListTrash)

	// Lifecycle
	mux.HandleFunc("POST /api/items/star", h.Lifecycle.SetStarred)
	mux.HandleFunc("POST /api/items/trash", h.Lifecycle.SetTrashed)
	mux.HandleFunc("POST /api/items/public", h.Lifecycle.SetPublic)
	mux.HandleFunc("POST /api/items/delete", h.Lifecycle.DeletePermanently)
	mux.HandleFunc("POST /api/trash/empty", h.Lifecycle.EmptyTrash)

	// Files and versions
	mux.HandleFunc("POST /api/files", h.Files.CreateFile)
	mux.HandleFunc("GET /api/files/{id}", h.Files.GetFile)
	mux.HandleFunc("POST /api/files/{id}/versions", h.Files.AppendVersion)
	mux.HandleFunc("GET /api/files/{id}/versions", h.Files.ListVersions)
	mux.HandleFunc("PUT /api/files/{id}/thumbnail", h.Files.AttachThumbnail)
	mux.HandleFunc("PUT /api/files/{id}/processed", h.Files.UpdateAfterProcessing)
	mux.HandleFunc("GET /api/files/{id}/actions", h.Files.MatchActions)

	// Public links
	mux.HandleFunc("PUT /api/items/{id}/link", h.Shares.CreateLink)
	mux.HandleFunc("GET /api/items/{id}/link", h.Shares.GetLink)
	mux.HandleFunc("DELETE /api/items/{id}/link", h.Shares.RevokeLink)
	mux.HandleFunc("GET /api/share/{token}", h.Shares.Browse)

	// Automation rules
	mux.HandleFunc("GET /api/folders/{id}/rule", h.Rules.GetRule)
	mux.HandleFunc("PUT /api/folders/{id}/rule", h.Rules.PutRule)
	mux.HandleFunc("DELETE /api/folders/{id}/rule", h.Rules.DeleteRule)

	// Quota
	mux.HandleFunc("GET /api/usage", h.Quota.GetUsage)
	mux.HandleFunc("POST /api/plan", h.Quota.EnsurePlan)
}
