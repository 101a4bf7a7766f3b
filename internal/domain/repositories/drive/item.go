package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// ItemRepository defines data access for drive items
type ItemRepository interface {
	// Create inserts a new item and fills in its ID
	Create(ctx context.Context, item *drive.Item) error

	// GetByID retrieves an item by ID regardless of owner.
	// Ownership is checked by the caller.
	GetByID(ctx context.Context, id string) (*drive.Item, error)

	// Update writes every mutable column of the item
	Update(ctx context.Context, item *drive.Item) error

	// Delete removes the item row
	Delete(ctx context.Context, id string) error

	// FindSibling returns the non-deleted item with the given owner, parent,
	// kind and name, or nil if there is none
	FindSibling(ctx context.Context, ownerID string, parentID *string, kind drive.ItemKind, name string) (*drive.Item, error)

	// List returns items matching the query
	List(ctx context.Context, q drive.ItemQuery) ([]drive.Item, error)

	// SumFileSizes sums size over every file item of the owner, trashed included
	SumFileSizes(ctx context.Context, ownerID string) (int64, error)
}
