package memory

import (
	"context"
	"fmt"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"

	"github.com/google/uuid"
)

// LinkRepository implements drive.LinkRepository in memory
type LinkRepository struct {
	store *Store
}

// NewLinkRepository creates a link repository over store
func NewLinkRepository(store *Store) driveRepo.LinkRepository {
	return &LinkRepository{store: store}
}

// GetByItem returns the link for a shared root
func (r *LinkRepository) GetByItem(ctx context.Context, itemID string) (*models.PublicLink, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	link, ok := r.store.links[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	return &link, nil
}

// GetByToken returns the link carrying token
func (r *LinkRepository) GetByToken(ctx context.Context, token string) (*models.PublicLink, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, link := range r.store.links {
		if link.Token == token {
			return &link, nil
		}
	}
	return nil, fmt.Errorf("link: %w", domain.ErrNotFound)
}

// Upsert creates the link or rotates token and expiry in place
func (r *LinkRepository) Upsert(ctx context.Context, link *models.PublicLink) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for itemID, other := range r.store.links {
		if other.Token == link.Token && itemID != link.ItemID {
			return fmt.Errorf("token collision: %w", domain.ErrConflict)
		}
	}

	if existing, ok := r.store.links[link.ItemID]; ok {
		link.ID = existing.ID
		link.CreatedAt = existing.CreatedAt
	} else if link.ID == "" {
		link.ID = uuid.NewString()
	}
	r.store.links[link.ItemID] = *link
	return nil
}

// DeleteByItem removes the item's link
func (r *LinkRepository) DeleteByItem(ctx context.Context, itemID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.links[itemID]; !ok {
		return fmt.Errorf("link for item %s: %w", itemID, domain.ErrNotFound)
	}
	delete(r.store.links, itemID)
	return nil
}
