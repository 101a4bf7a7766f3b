package auth

import (
	"context"
	"fmt"

	"clouddrive/internal/domain"
	"clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
)

// OwnerBasedAuthorizer implements ItemAuthorizer using ownership checks.
// Items never cross owners, so owning an item is the only grant.
type OwnerBasedAuthorizer struct {
	itemRepo driveRepo.ItemRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(itemRepo driveRepo.ItemRepository) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{itemRepo: itemRepo}
}

// CanAccessItem checks if user owns the item
func (a *OwnerBasedAuthorizer) CanAccessItem(ctx context.Context, userID, itemID string) (*drive.Item, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	// GetByID is not owner-scoped, so a foreign item is distinguishable from a missing one
	item, err := a.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		return nil, fmt.Errorf("access denied to item %s: %w", itemID, domain.ErrForbidden)
	}
	return item, nil
}

// CanAccessFolder checks if user owns the item and that it is a folder
func (a *OwnerBasedAuthorizer) CanAccessFolder(ctx context.Context, userID, folderID string) (*drive.Item, error) {
	item, err := a.CanAccessItem(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if !item.IsFolder() {
		return nil, fmt.Errorf("%w: item %s is not a folder", domain.ErrValidation, folderID)
	}
	return item, nil
}
