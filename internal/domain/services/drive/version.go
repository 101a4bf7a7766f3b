package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// VersionService manages per-file revision history
type VersionService interface {
	// AppendVersion makes storageKey the file's new latest revision
	AppendVersion(ctx context.Context, req *AppendVersionRequest) (*drive.FileVersion, error)

	// ListVersions returns live versions newest first
	ListVersions(ctx context.Context, userID, fileID string) ([]drive.FileVersion, error)

	// AttachThumbnail records a thumbnail on the file and its newest version
	AttachThumbnail(ctx context.Context, userID, fileID, thumbnailKey string) (*drive.Item, error)

	// UpdateAfterProcessing rewrites the file's current object reference
	// without adding a version
	UpdateAfterProcessing(ctx context.Context, req *ProcessedFileRequest) (*drive.Item, error)

	// GetFileDetails returns the file, its parent summary and live versions
	GetFileDetails(ctx context.Context, userID, fileID string) (*drive.FileDetails, error)
}

// AppendVersionRequest adds a revision to an existing file
type AppendVersionRequest struct {
	UserID     string `json:"-"`
	FileID     string `json:"-"`
	StorageKey string `json:"storage_key"`
	Size       int64  `json:"size"`
}

// ProcessedFileRequest is the post-processing callback payload.
// Empty fields are left unchanged.
type ProcessedFileRequest struct {
	UserID     string `json:"-"`
	FileID     string `json:"-"`
	StorageKey string `json:"storage_key"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type,omitempty"`
	Name       string `json:"name,omitempty"`
}
