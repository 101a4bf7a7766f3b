package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// VersionRepository defines data access for file versions
type VersionRepository interface {
	// Create inserts a new version and fills in its ID
	Create(ctx context.Context, version *drive.FileVersion) error

	// GetLatest returns the non-deleted version tagged "latest", or nil
	GetLatest(ctx context.Context, fileID string) (*drive.FileVersion, error)

	// GetNewest returns the most recently created version, or nil
	GetNewest(ctx context.Context, fileID string) (*drive.FileVersion, error)

	// UpdateTag relabels a version
	UpdateTag(ctx context.Context, id, tag string) error

	// UpdateThumbnail sets a version's thumbnail key
	UpdateThumbnail(ctx context.Context, id, thumbnailKey string) error

	// ListByFile returns versions newest first
	ListByFile(ctx context.Context, fileID string, includeDeleted bool) ([]drive.FileVersion, error)

	// DeleteByFile removes every version of a file
	DeleteByFile(ctx context.Context, fileID string) (int64, error)

	// SumSizes sums size over every version row of the owner
	SumSizes(ctx context.Context, ownerID string) (int64, error)
}
