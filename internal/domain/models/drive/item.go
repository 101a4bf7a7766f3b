package drive

import (
	"time"
)

// ItemKind distinguishes folders from files.
type ItemKind string

const (
	KindFolder ItemKind = "folder"
	KindFile   ItemKind = "file"
)

// RootName is the display name of the namespace root.
const RootName = "My Drive"

// Item is a node in a per-owner tree. File-only fields are empty for folders
// and folder-only fields are empty for files.
type Item struct {
	ID       string   `json:"id" db:"id"`
	OwnerID  string   `json:"owner_id" db:"owner_id"`
	Kind     ItemKind `json:"kind" db:"kind"`
	Name     string   `json:"name" db:"name"`
	ParentID *string  `json:"parent_id" db:"parent_id"` // NULL = root level

	// Folder only
	Color string `json:"color,omitempty" db:"color"`
	Path  string `json:"path,omitempty" db:"path"` // Cached ancestor path, advisory

	// File only
	StorageKey       string `json:"storage_key,omitempty" db:"storage_key"`
	CurrentVersionID string `json:"current_version_id,omitempty" db:"current_version_id"`
	Size             int64  `json:"size" db:"size"`
	MimeType         string `json:"mime_type,omitempty" db:"mime_type"`
	ThumbnailKey     string `json:"thumbnail_key,omitempty" db:"thumbnail_key"`

	IsStarred bool `json:"is_starred" db:"is_starred"`
	IsPublic  bool `json:"is_public" db:"is_public"`
	IsDeleted bool `json:"is_deleted" db:"is_deleted"`

	LastEdited time.Time `json:"last_edited" db:"last_edited"`
	LastOpened time.Time `json:"last_opened" db:"last_opened"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsFolder returns true for folder items
func (i *Item) IsFolder() bool {
	return i.Kind == KindFolder
}

// IsFile returns true for file items
func (i *Item) IsFile() bool {
	return i.Kind == KindFile
}

// IsInRoot returns true if the item sits at the namespace root.
func (i *Item) IsInRoot() bool {
	return i.ParentID == nil
}

// SameParent reports whether the item's parent equals parentID (nil = root).
func (i *Item) SameParent(parentID *string) bool {
	if i.ParentID == nil || parentID == nil {
		return i.ParentID == nil && parentID == nil
	}
	return *i.ParentID == *parentID
}

// ChildPath returns the cached path that children of this folder carry.
// Root-level items carry "/".
func (i *Item) ChildPath() string {
	if i.Path == "" || i.Path == "/" {
		return "/" + i.Name
	}
	return i.Path + "/" + i.Name
}

// Crumb is one breadcrumb entry.
type Crumb struct {
	ID   *string `json:"id"` // nil for the root
	Name string  `json:"name"`
}
