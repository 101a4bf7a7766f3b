package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// ItemService manages the hierarchical namespace
type ItemService interface {
	// CreateFolder creates a folder under ParentID (nil = root)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*drive.Item, error)

	// CreateOrReplaceFile creates a file, or appends a version when a live
	// file with the same name already sits under the same parent
	CreateOrReplaceFile(ctx context.Context, req *CreateFileRequest) (*FileResult, error)

	// UpdateItem renames, recolors and/or moves an item
	UpdateItem(ctx context.Context, userID, itemID string, req *UpdateItemRequest) (*drive.Item, error)

	// ListChildren lists the live children of a folder (nil = root)
	ListChildren(ctx context.Context, userID string, parentID *string, sort drive.SortKey, page drive.Page) (*drive.ItemPage, error)

	// GetBreadcrumbs returns the root-to-leaf chain ending at itemID
	GetBreadcrumbs(ctx context.Context, userID, itemID string) ([]drive.Crumb, error)

	// Search finds live items by name and filters
	Search(ctx context.Context, userID string, filters *drive.SearchFilters, page drive.Page) (*drive.ItemPage, error)

	// ListStarred lists starred items, alphabetically
	ListStarred(ctx context.Context, userID string, page drive.Page) (*drive.ItemPage, error)

	// ListTrash lists trashed items, most recently edited first
	ListTrash(ctx context.Context, userID string, page drive.Page) (*drive.ItemPage, error)

	// ListRecent lists live files by last opened time
	ListRecent(ctx context.Context, userID string, page drive.Page) (*drive.ItemPage, error)

	// Touch records that the user opened an item. Missing or foreign items are ignored.
	Touch(ctx context.Context, userID, itemID string) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	UserID   string  `json:"-"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
	Name     string  `json:"name"`
	Color    string  `json:"color,omitempty"`
}

// CreateFileRequest is sent by the upload collaborator once bytes are stored
type CreateFileRequest struct {
	UserID     string  `json:"-"`
	ParentID   *string `json:"parent_id,omitempty"`
	Name       string  `json:"name"`
	StorageKey string  `json:"storage_key"`
	Size       int64   `json:"size"`
	MimeType   string  `json:"mime_type"`
}

// FileResult reports whether an upload created a node or a new revision
type FileResult struct {
	File     *drive.Item        `json:"file"`
	Version  *drive.FileVersion `json:"version"`
	Replaced bool               `json:"replaced"`
}

// UpdateItemRequest is a partial update. Nil fields are left unchanged.
// Transport-agnostic: handlers map PATCH tri-state fields onto it.
type UpdateItemRequest struct {
	Name  *string
	Color *string

	// Move is set when the caller asked for a move; ParentID nil then means root
	Move     bool
	ParentID *string
}
