package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	"clouddrive/internal/domain/services"
	driveSvc "clouddrive/internal/domain/services/drive"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type sharingService struct {
	itemRepo   driveRepo.ItemRepository
	linkRepo   driveRepo.LinkRepository
	authorizer services.ItemAuthorizer
	clock      Clock
	limits     Limits
	logger     *slog.Logger
}

// NewSharingService creates a new sharing service
func NewSharingService(
	itemRepo driveRepo.ItemRepository,
	linkRepo driveRepo.LinkRepository,
	authorizer services.ItemAuthorizer,
	clock Clock,
	limits Limits,
	logger *slog.Logger,
) driveSvc.SharingService {
	return &sharingService{
		itemRepo:   itemRepo,
		linkRepo:   linkRepo,
		authorizer: authorizer,
		clock:      clock,
		limits:     limits,
		logger:     logger,
	}
}

// CreateOrRefreshLink issues a fresh token for the item, replacing any previous one
func (s *sharingService) CreateOrRefreshLink(ctx context.Context, userID, itemID string, duration models.LinkDuration) (*models.PublicLink, error) {
	if err := validation.Validate(duration, validation.Required, validation.In(models.ValidLinkDurations...)); err != nil {
		return nil, fmt.Errorf("%w: duration must be one of 1h, 1d, 7d, never", domain.ErrValidation)
	}
	item, err := s.authorizer.CanAccessItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	token, err := newShareToken()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	link := &models.PublicLink{
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		Token:     token,
		ExpiresAt: duration.ExpiresAt(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.linkRepo.Upsert(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("public link issued", "item_id", item.ID, "duration", duration, "expires_at", link.ExpiresAt)
	return link, nil
}

// GetLink returns the item's link
func (s *sharingService) GetLink(ctx context.Context, userID, itemID string) (*models.PublicLink, error) {
	if _, err := s.authorizer.CanAccessItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.linkRepo.GetByItem(ctx, itemID)
}

// RevokeLink deletes the item's link
func (s *sharingService) RevokeLink(ctx context.Context, userID, itemID string) error {
	if _, err := s.authorizer.CanAccessItem(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.linkRepo.DeleteByItem(ctx, itemID); err != nil {
		return err
	}
	s.logger.Info("public link revoked", "item_id", itemID)
	return nil
}

// ResolveLink validates the token and returns the shared root
func (s *sharingService) ResolveLink(ctx context.Context, token string) (*models.Item, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("link: %w", domain.ErrNotFound)
	}

	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.IsExpired(s.clock.Now()) {
		return nil, fmt.Errorf("this link %w", domain.ErrExpired)
	}

	root, err := s.itemRepo.GetByID(ctx, link.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("the shared item no longer exists: %w", domain.ErrGone)
		}
		return nil, err
	}
	if root.IsDeleted {
		return nil, fmt.Errorf("the shared item no longer exists: %w", domain.ErrGone)
	}
	return root, nil
}

// Browse lists the shared root, or a folder inside it. Listings run as the
// owner of the shared root since anonymous viewers have no identity.
func (s *sharingService) Browse(ctx context.Context, token string, folderID *string, page models.Page) (*models.SharedListing, error) {
	root, err := s.ResolveLink(ctx, token)
	if err != nil {
		return nil, err
	}

	current := root
	if folderID = normalizeParentID(folderID); folderID != nil && *folderID != root.ID {
		current, err = s.authorizeDescendant(ctx, root, *folderID)
		if err != nil {
			return nil, err
		}
	}

	listing := &models.SharedListing{Root: root, Current: current, Items: []models.Item{}}
	if current.IsFile() {
		if current.ID != root.ID {
			return nil, fmt.Errorf("%w: item %s is not a folder", domain.ErrValidation, current.ID)
		}
		return listing, nil
	}

	page.ApplyDefaults()
	items, err := s.itemRepo.List(ctx, models.ItemQuery{
		OwnerID:  root.OwnerID,
		ByParent: true,
		ParentID: &current.ID,
		Deleted:  models.Bool(false),
		Sort:     models.SortNewest,
		Limit:    page.Limit + 1,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, err
	}
	itemPage := models.NewItemPage(items, page)
	listing.Items, listing.HasMore = itemPage.Items, itemPage.HasMore
	return listing, nil
}

// authorizeDescendant grants access only to live items under the shared root
func (s *sharingService) authorizeDescendant(ctx context.Context, root *models.Item, itemID string) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != root.OwnerID {
		return nil, fmt.Errorf("item is outside the shared folder: %w", domain.ErrForbidden)
	}

	inside, err := isDescendant(ctx, s.itemRepo, item, root.ID, s.limits.MaxTreeDepth)
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, fmt.Errorf("item is outside the shared folder: %w", domain.ErrForbidden)
	}
	if item.IsDeleted {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	return item, nil
}
