package services

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// ItemAuthorizer checks if a user can act on a drive item.
// Current implementation: ownership-based (user owns the item).
type ItemAuthorizer interface {
	// CanAccessItem returns the item when userID owns it.
	// Missing items yield ErrNotFound, foreign items ErrForbidden.
	CanAccessItem(ctx context.Context, userID, itemID string) (*drive.Item, error)

	// CanAccessFolder is CanAccessItem plus a folder kind check (ErrValidation otherwise).
	CanAccessFolder(ctx context.Context, userID, folderID string) (*drive.Item, error)
}
