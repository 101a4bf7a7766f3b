package drive

import (
	"context"
	"fmt"
	"log/slog"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	"clouddrive/internal/domain/repositories"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	driveSvc "clouddrive/internal/domain/services/drive"
)

type lifecycleService struct {
	itemRepo    driveRepo.ItemRepository
	versionRepo driveRepo.VersionRepository
	ruleRepo    driveRepo.RuleRepository
	txManager   repositories.TransactionManager
	clock       Clock
	limits      Limits
	logger      *slog.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	itemRepo driveRepo.ItemRepository,
	versionRepo driveRepo.VersionRepository,
	ruleRepo driveRepo.RuleRepository,
	txManager repositories.TransactionManager,
	clock Clock,
	limits Limits,
	logger *slog.Logger,
) driveSvc.LifecycleService {
	return &lifecycleService{
		itemRepo:    itemRepo,
		versionRepo: versionRepo,
		ruleRepo:    ruleRepo,
		txManager:   txManager,
		clock:       clock,
		limits:      limits,
		logger:      logger,
	}
}

// toggle applies mutate to each listed item in order, one transaction per item.
// mutate reports whether it changed the item; unchanged items are not written.
// The first guard failure aborts the batch with earlier items already saved.
func (s *lifecycleService) toggle(ctx context.Context, userID string, ids []string, mutate func(item *models.Item) (bool, error)) (*driveSvc.BatchResult, error) {
	if err := validateBatch(userID, ids); err != nil {
		return nil, err
	}

	result := &driveSvc.BatchResult{Skipped: []string{}}
	for _, id := range ids {
		err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
			item, err := lookupOwned(ctx, s.itemRepo, userID, id)
			if err != nil {
				return err
			}
			if item == nil {
				result.Skipped = append(result.Skipped, id)
				return nil
			}
			result.Visited++

			changed, err := mutate(item)
			if err != nil || !changed {
				return err
			}
			item.LastEdited = s.clock.Now()
			if err := s.itemRepo.Update(ctx, item); err != nil {
				return err
			}
			result.Updated++
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// SetStarred stars or unstars items. Trashed items cannot be starred.
func (s *lifecycleService) SetStarred(ctx context.Context, userID string, ids []string, starred bool) (*driveSvc.BatchResult, error) {
	result, err := s.toggle(ctx, userID, ids, func(item *models.Item) (bool, error) {
		if starred && item.IsDeleted {
			return false, domain.NewStateError(item.ID,
				fmt.Sprintf("Cannot make '%s' starred while it is in the bin. Please restore it first.", item.Name))
		}
		if item.IsStarred == starred {
			return false, nil
		}
		item.IsStarred = starred
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("items starred", "starred", starred, "updated", result.Updated, "skipped", len(result.Skipped))
	return result, nil
}

// SetTrashed moves items to the bin, or restores them. Starred items cannot be trashed.
func (s *lifecycleService) SetTrashed(ctx context.Context, userID string, ids []string, trashed bool) (*driveSvc.BatchResult, error) {
	result, err := s.toggle(ctx, userID, ids, func(item *models.Item) (bool, error) {
		if trashed && item.IsStarred {
			return false, domain.NewStateError(item.ID,
				fmt.Sprintf("Cannot move '%s' to the bin because it is starred. Please unstar it first.", item.Name))
		}
		if item.IsDeleted == trashed {
			return false, nil
		}
		item.IsDeleted = trashed
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("items trashed", "trashed", trashed, "updated", result.Updated, "skipped", len(result.Skipped))
	return result, nil
}

// SetPublic flags each listed item and cascades to its descendants.
// Only the listed items are guarded against being in the bin.
func (s *lifecycleService) SetPublic(ctx context.Context, userID string, ids []string, public bool) (*driveSvc.BatchResult, error) {
	if err := validateBatch(userID, ids); err != nil {
		return nil, err
	}

	roots := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		roots[id] = struct{}{}
	}

	result := &driveSvc.BatchResult{}
	w := newWalker(s.itemRepo, s.txManager, userID, s.limits.MaxCascadeNodes, s.logger)
	visit := func(ctx context.Context, item *models.Item) error {
		result.Visited++
		if _, isRoot := roots[item.ID]; isRoot && public && item.IsDeleted {
			return domain.NewStateError(item.ID,
				fmt.Sprintf("Cannot make '%s' public while it is in the bin. Please restore it first.", item.Name))
		}
		if item.IsPublic == public {
			return nil
		}
		item.IsPublic = public
		item.LastEdited = s.clock.Now()
		if err := s.itemRepo.Update(ctx, item); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	for _, id := range ids {
		if err := w.apply(ctx, id, visit); err != nil {
			return nil, err
		}
	}
	result.Skipped = append([]string{}, w.skipped...)

	s.logger.Info("public cascade finished",
		"public", public,
		"visited", result.Visited,
		"updated", result.Updated,
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// DeletePermanently purges the listed trashed items with their subtrees.
// Every listed item is checked before anything is removed. On error the
// result still lists the keys of rows already removed.
func (s *lifecycleService) DeletePermanently(ctx context.Context, userID string, ids []string) (*driveSvc.PurgeResult, error) {
	if err := validateBatch(userID, ids); err != nil {
		return nil, err
	}

	var roots []*models.Item
	skipped := []string{}
	for _, id := range ids {
		item, err := lookupOwned(ctx, s.itemRepo, userID, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			skipped = append(skipped, id)
			continue
		}
		if !item.IsDeleted {
			return nil, domain.NewStateError(item.ID,
				fmt.Sprintf("Cannot permanently delete '%s' because it is not in the bin. Move it to the bin first.", item.Name))
		}
		roots = append(roots, item)
	}

	result, err := s.purge(ctx, userID, roots)
	result.Skipped = append(skipped, result.Skipped...)
	return result, err
}

// EmptyTrash purges every trashed item, including live children of trashed folders
func (s *lifecycleService) EmptyTrash(ctx context.Context, userID string) (*driveSvc.PurgeResult, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	trashed, err := s.itemRepo.List(ctx, models.ItemQuery{
		OwnerID: userID,
		Deleted: models.Bool(true),
		Sort:    models.SortOldest,
	})
	if err != nil {
		return nil, err
	}

	roots := make([]*models.Item, len(trashed))
	for i := range trashed {
		roots[i] = &trashed[i]
	}
	return s.purge(ctx, userID, roots)
}

// purge removes each root's subtree, children before parents, one
// transaction per item. Roots nested under another root are folded into it.
func (s *lifecycleService) purge(ctx context.Context, userID string, roots []*models.Item) (*driveSvc.PurgeResult, error) {
	result := &driveSvc.PurgeResult{Keys: []string{}, Skipped: []string{}}

	roots, err := s.topLevel(ctx, roots)
	if err != nil {
		return result, err
	}

	w := newWalker(s.itemRepo, s.txManager, userID, s.limits.MaxCascadeNodes, s.logger)
	var subtrees [][]*models.Item
	for _, root := range roots {
		nodes, err := w.collect(ctx, root.ID)
		if err != nil {
			return result, err
		}
		subtrees = append(subtrees, nodes)
	}
	result.Skipped = append(result.Skipped, w.skipped...)

	keys := newKeySet()
	for _, nodes := range subtrees {
		for i := len(nodes) - 1; i >= 0; i-- {
			removed, versions, err := s.purgeOne(ctx, userID, nodes[i].ID)
			if err != nil {
				result.Keys = keys.keys
				return result, err
			}
			if removed == nil {
				result.Skipped = append(result.Skipped, nodes[i].ID)
				continue
			}
			keys.add(removed...)
			result.ItemsDeleted++
			result.VersionsDeleted += versions
		}
	}
	if keys.keys != nil {
		result.Keys = keys.keys
	}

	s.logger.Info("cascade delete finished",
		"roots", len(roots),
		"items_deleted", result.ItemsDeleted,
		"versions_deleted", result.VersionsDeleted,
		"keys", len(result.Keys),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// purgeOne deletes a single item with its versions and rule, returning the
// object keys it referenced. A nil key slice means the item was already gone.
func (s *lifecycleService) purgeOne(ctx context.Context, userID, id string) ([]string, int64, error) {
	var keys []string
	var versionsDeleted int64
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		item, err := lookupOwned(ctx, s.itemRepo, userID, id)
		if err != nil || item == nil {
			return err
		}
		keys = []string{item.StorageKey, item.ThumbnailKey}

		if item.IsFile() {
			versions, err := s.versionRepo.ListByFile(ctx, item.ID, true)
			if err != nil {
				return err
			}
			for _, v := range versions {
				keys = append(keys, v.StorageKey, v.ThumbnailKey)
			}
			if versionsDeleted, err = s.versionRepo.DeleteByFile(ctx, item.ID); err != nil {
				return err
			}
		} else if err := s.ruleRepo.DeleteByFolder(ctx, item.ID); err != nil {
			return err
		}

		return s.itemRepo.Delete(ctx, item.ID)
	})
	if err != nil {
		return nil, 0, err
	}
	return keys, versionsDeleted, nil
}

// topLevel drops every root that has another root among its ancestors
func (s *lifecycleService) topLevel(ctx context.Context, roots []*models.Item) ([]*models.Item, error) {
	if len(roots) < 2 {
		return roots, nil
	}
	ids := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		ids[root.ID] = struct{}{}
	}

	var out []*models.Item
	for _, root := range roots {
		nested, err := s.hasAncestorIn(ctx, root, ids)
		if err != nil {
			return nil, err
		}
		if !nested {
			out = append(out, root)
		}
	}
	return out, nil
}

func (s *lifecycleService) hasAncestorIn(ctx context.Context, item *models.Item, ids map[string]struct{}) (bool, error) {
	current := item
	for depth := 0; current.ParentID != nil; depth++ {
		if _, ok := ids[*current.ParentID]; ok {
			return true, nil
		}
		if depth >= s.limits.MaxTreeDepth {
			return false, fmt.Errorf("%w: tree deeper than %d levels", domain.ErrResourceExhausted, s.limits.MaxTreeDepth)
		}
		parent, err := lookupOwned(ctx, s.itemRepo, item.OwnerID, *current.ParentID)
		if err != nil || parent == nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}
