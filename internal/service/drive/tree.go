package drive

import (
	"context"
	"errors"
	"fmt"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
)

// isDescendant reports whether ancestorID appears on item's parent chain.
// The walk stops at the root, at a missing row, or after maxDepth hops.
func isDescendant(ctx context.Context, items driveRepo.ItemRepository, item *models.Item, ancestorID string, maxDepth int) (bool, error) {
	current := item
	for depth := 0; ; depth++ {
		if current.ParentID == nil {
			return false, nil
		}
		if *current.ParentID == ancestorID {
			return true, nil
		}
		if depth >= maxDepth {
			return false, fmt.Errorf("%w: tree deeper than %d levels", domain.ErrResourceExhausted, maxDepth)
		}

		parent, err := items.GetByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		current = parent
	}
}

// lookupOwned fetches an item for a cascade or batch step.
// Missing and foreign rows return nil so the caller can skip them.
func lookupOwned(ctx context.Context, items driveRepo.ItemRepository, ownerID, id string) (*models.Item, error) {
	item, err := items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, nil
	}
	return item, nil
}

// childIDs lists the ids of every direct child, trashed or not
func childIDs(ctx context.Context, items driveRepo.ItemRepository, ownerID, folderID string) ([]string, error) {
	children, err := items.List(ctx, models.ItemQuery{
		OwnerID:  ownerID,
		ByParent: true,
		ParentID: &folderID,
		Sort:     models.SortOldest,
	})
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", folderID, err)
	}
	ids := make([]string, len(children))
	for i := range children {
		ids[i] = children[i].ID
	}
	return ids, nil
}

// conflict builds the name-collision error for an existing sibling
func conflict(existing *models.Item) error {
	return domain.NewNameConflict(string(existing.Kind), existing.Name, existing.ID)
}
