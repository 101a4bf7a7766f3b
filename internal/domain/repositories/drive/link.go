package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// LinkRepository defines data access for public links
type LinkRepository interface {
	// GetByItem returns the link for a shared root item
	GetByItem(ctx context.Context, itemID string) (*drive.PublicLink, error)

	// GetByToken returns the link carrying token
	GetByToken(ctx context.Context, token string) (*drive.PublicLink, error)

	// Upsert creates the item's link or rotates token and expiry in place
	Upsert(ctx context.Context, link *drive.PublicLink) error

	// DeleteByItem removes the item's link
	DeleteByItem(ctx context.Context, itemID string) error
}
