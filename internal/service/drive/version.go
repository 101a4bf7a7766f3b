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
	"github.com/google/uuid"
)

// versionChain owns the relabel-then-insert step shared by uploads and
// explicit version appends. Callers run it inside a transaction.
type versionChain struct {
	itemRepo    driveRepo.ItemRepository
	versionRepo driveRepo.VersionRepository
	clock       Clock
}

// append makes storageKey the newest revision of file and repoints the file at it
func (c *versionChain) append(ctx context.Context, file *models.Item, storageKey string, size int64) (*models.FileVersion, error) {
	latest, err := c.versionRepo.GetLatest(ctx, file.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		if err := c.versionRepo.UpdateTag(ctx, latest.ID, uuid.NewString()); err != nil {
			return nil, fmt.Errorf("relabel latest version: %w", err)
		}
	}

	now := c.clock.Now()
	version := &models.FileVersion{
		FileID:     file.ID,
		OwnerID:    file.OwnerID,
		StorageKey: storageKey,
		Size:       size,
		VersionTag: models.LatestTag,
		CreatedAt:  now,
	}
	if err := c.versionRepo.Create(ctx, version); err != nil {
		return nil, err
	}

	file.CurrentVersionID = version.ID
	file.StorageKey = storageKey
	file.Size = size
	file.LastEdited = now
	if err := c.itemRepo.Update(ctx, file); err != nil {
		return nil, err
	}
	return version, nil
}

type versionService struct {
	chain       *versionChain
	itemRepo    driveRepo.ItemRepository
	versionRepo driveRepo.VersionRepository
	txManager   repositories.TransactionManager
	authorizer  services.ItemAuthorizer
	clock       Clock
	logger      *slog.Logger
}

// NewVersionService creates a new version service
func NewVersionService(
	itemRepo driveRepo.ItemRepository,
	versionRepo driveRepo.VersionRepository,
	txManager repositories.TransactionManager,
	authorizer services.ItemAuthorizer,
	clock Clock,
	logger *slog.Logger,
) driveSvc.VersionService {
	return &versionService{
		chain:       &versionChain{itemRepo: itemRepo, versionRepo: versionRepo, clock: clock},
		itemRepo:    itemRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		authorizer:  authorizer,
		clock:       clock,
		logger:      logger,
	}
}

// authorizeFile checks ownership and that the item is a file
func (s *versionService) authorizeFile(ctx context.Context, userID, fileID string) (*models.Item, error) {
	file, err := s.authorizer.CanAccessItem(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if !file.IsFile() {
		return nil, fmt.Errorf("%w: item %s is not a file", domain.ErrValidation, fileID)
	}
	return file, nil
}

// AppendVersion makes the given object the file's latest revision
func (s *versionService) AppendVersion(ctx context.Context, req *driveSvc.AppendVersionRequest) (*models.FileVersion, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.FileID, validation.Required),
		validation.Field(&req.StorageKey, validation.Required),
		validation.Field(&req.Size, validation.Min(int64(0))),
	)
	if err != nil {
		return nil, invalid(err)
	}

	var version *models.FileVersion
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		file, err := s.authorizeFile(ctx, req.UserID, req.FileID)
		if err != nil {
			return err
		}
		version, err = s.chain.append(ctx, file, req.StorageKey, req.Size)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version appended",
		"file_id", req.FileID,
		"version_id", version.ID,
		"size", version.Size,
	)
	return version, nil
}

// ListVersions returns live versions newest first
func (s *versionService) ListVersions(ctx context.Context, userID, fileID string) ([]models.FileVersion, error) {
	if _, err := s.authorizeFile(ctx, userID, fileID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByFile(ctx, fileID, false)
}

// AttachThumbnail sets the thumbnail on the file and on its newest version.
// Re-attaching the same key writes nothing.
func (s *versionService) AttachThumbnail(ctx context.Context, userID, fileID, thumbnailKey string) (*models.Item, error) {
	thumbnailKey = strings.TrimSpace(thumbnailKey)
	if thumbnailKey == "" {
		return nil, fmt.Errorf("%w: thumbnail key is required", domain.ErrValidation)
	}

	var file *models.Item
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		file, err = s.authorizeFile(ctx, userID, fileID)
		if err != nil {
			return err
		}

		if file.ThumbnailKey != thumbnailKey {
			file.ThumbnailKey = thumbnailKey
			if err := s.itemRepo.Update(ctx, file); err != nil {
				return err
			}
		}

		newest, err := s.versionRepo.GetNewest(ctx, fileID)
		if err != nil {
			return err
		}
		if newest != nil && newest.ThumbnailKey != thumbnailKey {
			return s.versionRepo.UpdateThumbnail(ctx, newest.ID, thumbnailKey)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("thumbnail attached", "file_id", fileID, "thumbnail_key", thumbnailKey)
	return file, nil
}

// UpdateAfterProcessing points the file at a post-processed object.
// The version chain is left untouched.
func (s *versionService) UpdateAfterProcessing(ctx context.Context, req *driveSvc.ProcessedFileRequest) (*models.Item, error) {
	req.Name = strings.TrimSpace(req.Name)
	err := validation.ValidateStruct(req,
		validation.Field(&req.FileID, validation.Required),
		validation.Field(&req.StorageKey, validation.Required),
		validation.Field(&req.Size, validation.Min(int64(0))),
		validation.Field(&req.Name, validation.RuneLength(0, config.MaxItemNameLength), noSlash),
	)
	if err != nil {
		return nil, invalid(err)
	}

	var file *models.Item
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		file, err = s.authorizeFile(ctx, req.UserID, req.FileID)
		if err != nil {
			return err
		}

		if req.Name != "" && req.Name != file.Name {
			existing, err := s.itemRepo.FindSibling(ctx, file.OwnerID, file.ParentID, models.KindFile, req.Name)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != file.ID {
				return conflict(existing)
			}
			file.Name = req.Name
		}
		if req.MimeType != "" {
			file.MimeType = req.MimeType
		}
		file.StorageKey = req.StorageKey
		file.Size = req.Size
		file.LastEdited = s.clock.Now()
		return s.itemRepo.Update(ctx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file updated after processing",
		"file_id", file.ID,
		"storage_key", file.StorageKey,
		"size", file.Size,
	)
	return file, nil
}

// GetFileDetails returns the file, its parent and live versions.
// Public files are readable by anyone signed in.
func (s *versionService) GetFileDetails(ctx context.Context, userID, fileID string) (*models.FileDetails, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	file, err := s.itemRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.IsFile() {
		return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	if file.OwnerID != userID && !file.IsPublic {
		return nil, fmt.Errorf("access denied to file %s: %w", fileID, domain.ErrForbidden)
	}

	details := &models.FileDetails{File: file}
	if file.ParentID == nil {
		details.Parent = &models.Crumb{Name: models.RootName}
	} else {
		parent, err := s.itemRepo.GetByID(ctx, *file.ParentID)
		if err == nil {
			details.Parent = &models.Crumb{ID: &parent.ID, Name: parent.Name}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	details.Versions, err = s.versionRepo.ListByFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}
	return details, nil
}
