package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"

	"github.com/google/uuid"
)

// ItemRepository implements drive.ItemRepository in memory
type ItemRepository struct {
	store *Store
}

// NewItemRepository creates an item repository over store
func NewItemRepository(store *Store) driveRepo.ItemRepository {
	return &ItemRepository{store: store}
}

// Create inserts a new item
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if item.ParentID != nil {
		if _, ok := r.store.items[*item.ParentID]; !ok {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
	}
	if other := r.liveSibling(item); other != nil {
		return domain.NewNameConflict(string(item.Kind), item.Name, other.ID)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	r.store.items[item.ID] = *item
	r.store.itemSeq[item.ID] = r.store.next()
	return nil
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return &item, nil
}

// Update writes every mutable column
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.items[item.ID]
	if !ok {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
	}
	if item.IsStarred && item.IsDeleted {
		return domain.NewStateError(item.ID, fmt.Sprintf("'%s' cannot be starred and in the bin at the same time", item.Name))
	}

	updated := *item
	updated.OwnerID = existing.OwnerID
	updated.Kind = existing.Kind
	updated.CreatedAt = existing.CreatedAt
	if other := r.liveSibling(&updated); other != nil {
		return domain.NewNameConflict(string(updated.Kind), updated.Name, other.ID)
	}
	r.store.items[item.ID] = updated
	return nil
}

// liveSibling returns another live item that would share item's owner,
// parent, kind and name, mirroring the partial unique index. Callers hold mu.
func (r *ItemRepository) liveSibling(item *models.Item) *models.Item {
	if item.IsDeleted {
		return nil
	}
	for id, other := range r.store.items {
		if id != item.ID && !other.IsDeleted && other.OwnerID == item.OwnerID &&
			other.Kind == item.Kind && other.Name == item.Name && other.SameParent(item.ParentID) {
			return &other
		}
	}
	return nil
}

// Delete removes the item row
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[id]; !ok {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	for _, other := range r.store.items {
		if other.ParentID != nil && *other.ParentID == id {
			return fmt.Errorf("item %s still has children: %w", id, domain.ErrConflict)
		}
	}
	delete(r.store.items, id)
	delete(r.store.itemSeq, id)

	// Same as the ON DELETE CASCADE foreign keys
	delete(r.store.rules, id)
	for vid, v := range r.store.versions {
		if v.FileID == id {
			delete(r.store.versions, vid)
			delete(r.store.verSeq, vid)
		}
	}
	return nil
}

// FindSibling returns the live item with the same owner, parent, kind and name
func (r *ItemRepository) FindSibling(ctx context.Context, ownerID string, parentID *string, kind models.ItemKind, name string) (*models.Item, error) {
	items, err := r.List(ctx, models.ItemQuery{
		OwnerID:  ownerID,
		ByParent: true,
		ParentID: parentID,
		Kind:     kind,
		Deleted:  models.Bool(false),
		Sort:     models.SortOldest,
	})
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Name == name {
			return &items[i], nil
		}
	}
	return nil, nil
}

// List returns items matching the query
func (r *ItemRepository) List(ctx context.Context, q models.ItemQuery) ([]models.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	needle := strings.ToLower(q.NameLike)
	items := []models.Item{}
	for _, item := range r.store.items {
		switch {
		case item.OwnerID != q.OwnerID:
		case q.ByParent && !item.SameParent(q.ParentID):
		case q.Kind != "" && item.Kind != q.Kind:
		case q.Deleted != nil && item.IsDeleted != *q.Deleted:
		case q.Starred != nil && item.IsStarred != *q.Starred:
		case needle != "" && !strings.Contains(strings.ToLower(item.Name), needle):
		case q.MimeType != "" && item.MimeType != q.MimeType:
		case q.CreatedFrom != nil && item.CreatedAt.Before(*q.CreatedFrom):
		case q.CreatedTo != nil && item.CreatedAt.After(*q.CreatedTo):
		default:
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return r.less(q.Sort, &items[i], &items[j])
	})

	if q.Offset > 0 {
		if q.Offset >= len(items) {
			return []models.Item{}, nil
		}
		items = items[q.Offset:]
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

// less mirrors the postgres ORDER BY clauses; insertion order breaks ties.
func (r *ItemRepository) less(key models.SortKey, a, b *models.Item) bool {
	tie := r.store.itemSeq[a.ID] < r.store.itemSeq[b.ID]
	switch key {
	case models.SortNameDesc:
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an > bn
		}
	case models.SortNewest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
	case models.SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case models.SortLastOpened:
		if a.LastOpened.IsZero() != b.LastOpened.IsZero() {
			return !a.LastOpened.IsZero()
		}
		if !a.LastOpened.Equal(b.LastOpened) {
			return a.LastOpened.After(b.LastOpened)
		}
	case models.SortLastEdited:
		if !a.LastEdited.Equal(b.LastEdited) {
			return a.LastEdited.After(b.LastEdited)
		}
	default:
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
	}
	return tie
}

// SumFileSizes sums size over every file of the owner
func (r *ItemRepository) SumFileSizes(ctx context.Context, ownerID string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var total int64
	for _, item := range r.store.items {
		if item.OwnerID == ownerID && item.IsFile() {
			total += item.Size
		}
	}
	return total, nil
}
