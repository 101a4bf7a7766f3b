package drive

import (
	"context"
	"fmt"
	"log/slog"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	"clouddrive/internal/domain/repositories"
	driveRepo "clouddrive/internal/domain/repositories/drive"
)

// walker runs breadth-first walks over owned subtrees with an explicit queue.
// A walker is single-use: its visited set spans every root it is given, so a
// node reachable from two roots is still handled once.
type walker struct {
	itemRepo  driveRepo.ItemRepository
	txManager repositories.TransactionManager
	ownerID   string
	maxNodes  int
	logger    *slog.Logger

	visited map[string]struct{}
	skipped []string
}

func newWalker(itemRepo driveRepo.ItemRepository, txManager repositories.TransactionManager, ownerID string, maxNodes int, logger *slog.Logger) *walker {
	return &walker{
		itemRepo:  itemRepo,
		txManager: txManager,
		ownerID:   ownerID,
		maxNodes:  maxNodes,
		logger:    logger,
		visited:   map[string]struct{}{},
	}
}

// mark records id as visited and reports false if it already was
func (w *walker) mark(id string) (bool, error) {
	if _, seen := w.visited[id]; seen {
		return false, nil
	}
	if len(w.visited) >= w.maxNodes {
		return false, fmt.Errorf("%w: cascade touches more than %d items", domain.ErrResourceExhausted, w.maxNodes)
	}
	w.visited[id] = struct{}{}
	return true, nil
}

func (w *walker) skip(id string) {
	w.skipped = append(w.skipped, id)
	w.logger.Debug("cascade skipped item", "id", id, "owner_id", w.ownerID)
}

// apply visits rootID and every descendant. Each step (fetch, visit, list
// children) is its own transaction, so a failure leaves earlier steps applied.
func (w *walker) apply(ctx context.Context, rootID string, visit func(ctx context.Context, item *models.Item) error) error {
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		fresh, err := w.mark(id)
		if err != nil {
			return err
		}
		if !fresh {
			continue
		}

		var children []string
		err = w.txManager.ExecTx(ctx, func(ctx context.Context) error {
			item, err := lookupOwned(ctx, w.itemRepo, w.ownerID, id)
			if err != nil {
				return err
			}
			if item == nil {
				w.skip(id)
				return nil
			}
			if err := visit(ctx, item); err != nil {
				return err
			}
			if item.IsFolder() {
				children, err = childIDs(ctx, w.itemRepo, w.ownerID, item.ID)
			}
			return err
		})
		if err != nil {
			return err
		}
		queue = append(queue, children...)
	}
	return nil
}

// collect returns rootID's subtree in breadth-first order without writing.
func (w *walker) collect(ctx context.Context, rootID string) ([]*models.Item, error) {
	var nodes []*models.Item
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		fresh, err := w.mark(id)
		if err != nil {
			return nil, err
		}
		if !fresh {
			continue
		}

		item, err := lookupOwned(ctx, w.itemRepo, w.ownerID, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			w.skip(id)
			continue
		}
		nodes = append(nodes, item)

		if item.IsFolder() {
			children, err := childIDs(ctx, w.itemRepo, w.ownerID, item.ID)
			if err != nil {
				return nil, err
			}
			queue = append(queue, children...)
		}
	}
	return nodes, nil
}

// keySet accumulates object keys, dropping blanks and duplicates while
// keeping first-seen order
type keySet struct {
	keys []string
	seen map[string]struct{}
}

func newKeySet() *keySet {
	return &keySet{seen: map[string]struct{}{}}
}

func (k *keySet) add(keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, dup := k.seen[key]; dup {
			continue
		}
		k.seen[key] = struct{}{}
		k.keys = append(k.keys, key)
	}
}
