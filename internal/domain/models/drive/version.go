package drive

import "time"

// LatestTag marks the single current revision of a file.
const LatestTag = "latest"

// FileVersion is one revision of a file's bytes.
type FileVersion struct {
	ID           string    `json:"id" db:"id"`
	FileID       string    `json:"file_id" db:"file_id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	StorageKey   string    `json:"storage_key" db:"storage_key"`
	Size         int64     `json:"size" db:"size"`
	ThumbnailKey string    `json:"thumbnail_key,omitempty" db:"thumbnail_key"`
	VersionTag   string    `json:"version_tag" db:"version_tag"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	IsDeleted    bool      `json:"is_deleted" db:"is_deleted"`
}

// IsLatest returns true if this version carries the "latest" tag
func (v *FileVersion) IsLatest() bool {
	return v.VersionTag == LatestTag
}

// FileDetails is a file with its parent summary and version history.
type FileDetails struct {
	File     *Item         `json:"file"`
	Parent   *Crumb        `json:"parent"` // nil when the parent row is gone
	Versions []FileVersion `json:"versions"`
}
