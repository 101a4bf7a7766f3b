package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// SharingService issues and resolves public links
type SharingService interface {
	// CreateOrRefreshLink issues a link for the item, rotating any existing token
	CreateOrRefreshLink(ctx context.Context, userID, itemID string, duration drive.LinkDuration) (*drive.PublicLink, error)

	// GetLink returns the item's current link
	GetLink(ctx context.Context, userID, itemID string) (*drive.PublicLink, error)

	// RevokeLink deletes the item's link
	RevokeLink(ctx context.Context, userID, itemID string) error

	// ResolveLink returns the shared root for a token
	ResolveLink(ctx context.Context, token string) (*drive.Item, error)

	// Browse lists the shared root, or a folder beneath it when folderID is set
	Browse(ctx context.Context, token string, folderID *string, page drive.Page) (*drive.SharedListing, error)
}
