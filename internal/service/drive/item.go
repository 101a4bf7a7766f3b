package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"clouddrive/internal/config"
	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	"clouddrive/internal/domain/repositories"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	"clouddrive/internal/domain/services"
	driveSvc "clouddrive/internal/domain/services/drive"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type itemService struct {
	itemRepo   driveRepo.ItemRepository
	chain      *versionChain
	txManager  repositories.TransactionManager
	authorizer services.ItemAuthorizer
	clock      Clock
	limits     Limits
	logger     *slog.Logger
}

// NewItemService creates a new item service
func NewItemService(
	itemRepo driveRepo.ItemRepository,
	versionRepo driveRepo.VersionRepository,
	txManager repositories.TransactionManager,
	authorizer services.ItemAuthorizer,
	clock Clock,
	limits Limits,
	logger *slog.Logger,
) driveSvc.ItemService {
	return &itemService{
		itemRepo:   itemRepo,
		chain:      &versionChain{itemRepo: itemRepo, versionRepo: versionRepo, clock: clock},
		txManager:  txManager,
		authorizer: authorizer,
		clock:      clock,
		limits:     limits,
		logger:     logger,
	}
}

// resolveParent returns the owned parent folder, or nil for the root
func (s *itemService) resolveParent(ctx context.Context, userID string, parentID *string) (*models.Item, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := s.authorizer.CanAccessFolder(ctx, userID, *parentID)
	if err != nil {
		return nil, fmt.Errorf("invalid parent: %w", err)
	}
	return parent, nil
}

// CreateFolder creates a folder under the requested parent
func (s *itemService) CreateFolder(ctx context.Context, req *driveSvc.CreateFolderRequest) (*models.Item, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ParentID = normalizeParentID(req.ParentID)
	if req.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, nameRules()...),
		validation.Field(&req.Color, validation.RuneLength(0, config.MaxColorLength)),
	)
	if err != nil {
		return nil, invalid(err)
	}

	var folder *models.Item
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		parent, err := s.resolveParent(ctx, req.UserID, req.ParentID)
		if err != nil {
			return err
		}

		existing, err := s.itemRepo.FindSibling(ctx, req.UserID, req.ParentID, models.KindFolder, req.Name)
		if err != nil {
			return fmt.Errorf("check for duplicate names: %w", err)
		}
		if existing != nil {
			return conflict(existing)
		}

		path := "/"
		if parent != nil {
			path = parent.ChildPath()
		}

		now := s.clock.Now()
		folder = &models.Item{
			OwnerID:    req.UserID,
			Kind:       models.KindFolder,
			Name:       req.Name,
			ParentID:   req.ParentID,
			Color:      req.Color,
			Path:       path,
			LastEdited: now,
			LastOpened: now,
			CreatedAt:  now,
		}
		return s.itemRepo.Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"path", folder.Path,
	)
	return folder, nil
}

// CreateOrReplaceFile creates a file, or adds a revision to the live file
// of the same name under the same parent
func (s *itemService) CreateOrReplaceFile(ctx context.Context, req *driveSvc.CreateFileRequest) (*driveSvc.FileResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ParentID = normalizeParentID(req.ParentID)
	if req.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, nameRules()...),
		validation.Field(&req.StorageKey, validation.Required),
		validation.Field(&req.Size, validation.Min(int64(0))),
	)
	if err != nil {
		return nil, invalid(err)
	}

	result := &driveSvc.FileResult{}
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.resolveParent(ctx, req.UserID, req.ParentID); err != nil {
			return err
		}

		existing, err := s.itemRepo.FindSibling(ctx, req.UserID, req.ParentID, models.KindFile, req.Name)
		if err != nil {
			return fmt.Errorf("check for existing file: %w", err)
		}

		if existing != nil {
			if req.MimeType != "" {
				existing.MimeType = req.MimeType
			}
			version, err := s.chain.append(ctx, existing, req.StorageKey, req.Size)
			if err != nil {
				return err
			}
			result.File, result.Version, result.Replaced = existing, version, true
			return nil
		}

		now := s.clock.Now()
		file := &models.Item{
			OwnerID:    req.UserID,
			Kind:       models.KindFile,
			Name:       req.Name,
			ParentID:   req.ParentID,
			MimeType:   req.MimeType,
			LastEdited: now,
			LastOpened: now,
			CreatedAt:  now,
		}
		if err := s.itemRepo.Create(ctx, file); err != nil {
			return err
		}
		version, err := s.chain.append(ctx, file, req.StorageKey, req.Size)
		if err != nil {
			return err
		}
		result.File, result.Version = file, version
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file stored",
		"id", result.File.ID,
		"name", result.File.Name,
		"version_id", result.Version.ID,
		"replaced", result.Replaced,
	)
	return result, nil
}

// UpdateItem renames, recolors and/or moves an item
func (s *itemService) UpdateItem(ctx context.Context, userID, itemID string, req *driveSvc.UpdateItemRequest) (*models.Item, error) {
	if req.Name == nil && req.Color == nil && !req.Move {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	req.ParentID = normalizeParentID(req.ParentID)

	rules := []*validation.FieldRules{}
	if req.Name != nil {
		rules = append(rules, validation.Field(&req.Name, nameRules()...))
	}
	if req.Color != nil {
		rules = append(rules, validation.Field(&req.Color, validation.RuneLength(0, config.MaxColorLength)))
	}
	if err := validation.ValidateStruct(req, rules...); err != nil {
		return nil, invalid(err)
	}

	var item *models.Item
	var changed bool
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.authorizer.CanAccessItem(ctx, userID, itemID)
		if err != nil {
			return err
		}

		if req.Color != nil && *req.Color != item.Color {
			if !item.IsFolder() {
				return fmt.Errorf("%w: only folders have a color", domain.ErrValidation)
			}
			item.Color = *req.Color
			changed = true
		}

		name, parentID := item.Name, item.ParentID
		if req.Name != nil {
			name = *req.Name
		}

		var target *models.Item
		if req.Move && !item.SameParent(req.ParentID) {
			target, err = s.checkMoveTarget(ctx, userID, item, req.ParentID)
			if err != nil {
				return err
			}
			parentID = req.ParentID
		}

		moved := !item.SameParent(parentID)
		if name == item.Name && !moved {
			return s.saveIfChanged(ctx, item, changed)
		}

		existing, err := s.itemRepo.FindSibling(ctx, item.OwnerID, parentID, item.Kind, name)
		if err != nil {
			return fmt.Errorf("check for duplicate names: %w", err)
		}
		if existing != nil && existing.ID != item.ID {
			return conflict(existing)
		}

		item.Name = name
		if moved {
			item.ParentID = parentID
			if item.IsFolder() {
				item.Path = "/"
				if target != nil {
					item.Path = target.ChildPath()
				}
			}
		}
		changed = true
		return s.saveIfChanged(ctx, item, changed)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("item updated",
			"id", item.ID,
			"name", item.Name,
			"parent_id", item.ParentID,
		)
	}
	return item, nil
}

// checkMoveTarget rejects self-parenting and moves into a descendant,
// and returns the target folder (nil for the root)
func (s *itemService) checkMoveTarget(ctx context.Context, userID string, item *models.Item, targetID *string) (*models.Item, error) {
	if targetID == nil {
		return nil, nil
	}
	if *targetID == item.ID {
		return nil, domain.NewStateError(item.ID, fmt.Sprintf("Cannot move '%s' into itself.", item.Name))
	}

	target, err := s.authorizer.CanAccessFolder(ctx, userID, *targetID)
	if err != nil {
		return nil, fmt.Errorf("invalid target folder: %w", err)
	}

	if item.IsFolder() {
		inside, err := isDescendant(ctx, s.itemRepo, target, item.ID, s.limits.MaxTreeDepth)
		if err != nil {
			return nil, err
		}
		if inside {
			return nil, domain.NewStateError(item.ID,
				fmt.Sprintf("Cannot move '%s' into one of its own subfolders.", item.Name))
		}
	}
	return target, nil
}

func (s *itemService) saveIfChanged(ctx context.Context, item *models.Item, changed bool) error {
	if !changed {
		return nil
	}
	item.LastEdited = s.clock.Now()
	return s.itemRepo.Update(ctx, item)
}

// ListChildren lists live children of a folder, or of the root when parentID is nil
func (s *itemService) ListChildren(ctx context.Context, userID string, parentID *string, sort models.SortKey, page models.Page) (*models.ItemPage, error) {
	parentID = normalizeParentID(parentID)
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if sort == "" {
		sort = models.DefaultSortKey
	}
	if err := validation.Validate(sort, validation.In(models.ValidSortKeys...)); err != nil {
		return nil, fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, sort)
	}
	if parentID != nil {
		if _, err := s.authorizer.CanAccessFolder(ctx, userID, *parentID); err != nil {
			return nil, err
		}
	}

	return s.listPage(ctx, models.ItemQuery{
		OwnerID:  userID,
		ByParent: true,
		ParentID: parentID,
		Deleted:  models.Bool(false),
		Sort:     sort,
	}, page)
}

// listPage fetches one extra row to learn whether another page exists
func (s *itemService) listPage(ctx context.Context, q models.ItemQuery, page models.Page) (*models.ItemPage, error) {
	page.ApplyDefaults()
	q.Limit = page.Limit + 1
	q.Offset = page.Offset

	items, err := s.itemRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.NewItemPage(items, page), nil
}

// GetBreadcrumbs walks up from the item and returns root-to-leaf crumbs.
// The walk stops silently at the first ancestor that is missing or foreign.
func (s *itemService) GetBreadcrumbs(ctx context.Context, userID, itemID string) ([]models.Crumb, error) {
	item, err := s.authorizer.CanAccessItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	reversed := []models.Crumb{{ID: &item.ID, Name: item.Name}}
	current := item
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= s.limits.MaxTreeDepth {
			return nil, fmt.Errorf("%w: tree deeper than %d levels", domain.ErrResourceExhausted, s.limits.MaxTreeDepth)
		}
		parent, err := lookupOwned(ctx, s.itemRepo, userID, *current.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		reversed = append(reversed, models.Crumb{ID: &parent.ID, Name: parent.Name})
		current = parent
	}
	reversed = append(reversed, models.Crumb{Name: models.RootName})

	crumbs := make([]models.Crumb, len(reversed))
	for i := range reversed {
		crumbs[len(reversed)-1-i] = reversed[i]
	}
	return crumbs, nil
}

// Search finds live items by name substring and filters
func (s *itemService) Search(ctx context.Context, userID string, filters *models.SearchFilters, page models.Page) (*models.ItemPage, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if filters == nil {
		filters = &models.SearchFilters{}
	}
	if err := filters.Validate(); err != nil {
		return nil, invalid(err)
	}

	q := models.ItemQuery{
		OwnerID:     userID,
		Deleted:     models.Bool(false),
		Starred:     filters.IsStarred,
		NameLike:    strings.TrimSpace(filters.Text),
		MimeType:    strings.TrimSpace(filters.MimeType),
		CreatedFrom: filters.CreatedFrom,
		CreatedTo:   filters.CreatedTo,
		Sort:        models.SortNameAsc,
	}
	if parentID := normalizeParentID(filters.ParentID); parentID != nil {
		q.ByParent = true
		q.ParentID = parentID
	}
	return s.listPage(ctx, q, page)
}

// ListStarred lists starred items alphabetically
func (s *itemService) ListStarred(ctx context.Context, userID string, page models.Page) (*models.ItemPage, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.listPage(ctx, models.ItemQuery{
		OwnerID: userID,
		Starred: models.Bool(true),
		Deleted: models.Bool(false),
		Sort:    models.SortNameAsc,
	}, page)
}

// ListTrash lists trashed items, most recently edited first
func (s *itemService) ListTrash(ctx context.Context, userID string, page models.Page) (*models.ItemPage, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.listPage(ctx, models.ItemQuery{
		OwnerID: userID,
		Deleted: models.Bool(true),
		Sort:    models.SortLastEdited,
	}, page)
}

// ListRecent lists live items, most recently opened first. New items count
// as opened when created.
func (s *itemService) ListRecent(ctx context.Context, userID string, page models.Page) (*models.ItemPage, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.listPage(ctx, models.ItemQuery{
		OwnerID: userID,
		Deleted: models.Bool(false),
		Sort:    models.SortLastOpened,
	}, page)
}

// Touch records an open. Missing or foreign items are ignored.
func (s *itemService) Touch(ctx context.Context, userID, itemID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	item, err := lookupOwned(ctx, s.itemRepo, userID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		s.logger.Debug("touch ignored", "id", itemID)
		return nil
	}

	item.LastOpened = s.clock.Now()
	if err := s.itemRepo.Update(ctx, item); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
