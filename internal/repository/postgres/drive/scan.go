package drive

import (
	"time"

	models "clouddrive/internal/domain/models/drive"
	"clouddrive/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, owner_id, kind, name, parent_id, color, path, storage_key,
	current_version_id, size, mime_type, thumbnail_key, is_starred, is_public,
	is_deleted, last_edited, last_opened, created_at`

const versionColumns = `id, file_id, owner_id, storage_key, size, thumbnail_key,
	version_tag, is_deleted, created_at`

const linkColumns = `id, item_id, owner_id, token, expires_at, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	var lastOpened *time.Time
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Kind,
		&item.Name,
		&item.ParentID,
		&item.Color,
		&item.Path,
		&item.StorageKey,
		&item.CurrentVersionID,
		&item.Size,
		&item.MimeType,
		&item.ThumbnailKey,
		&item.IsStarred,
		&item.IsPublic,
		&item.IsDeleted,
		&item.LastEdited,
		&lastOpened,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastOpened != nil {
		item.LastOpened = *lastOpened
	}
	return &item, nil
}

func scanVersion(row pgx.Row) (*models.FileVersion, error) {
	var v models.FileVersion
	err := row.Scan(
		&v.ID,
		&v.FileID,
		&v.OwnerID,
		&v.StorageKey,
		&v.Size,
		&v.ThumbnailKey,
		&v.VersionTag,
		&v.IsDeleted,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanLink(row pgx.Row) (*models.PublicLink, error) {
	var l models.PublicLink
	err := row.Scan(&l.ID, &l.ItemID, &l.OwnerID, &l.Token, &l.ExpiresAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// nullTime maps the zero time to SQL NULL
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// isInvalidUUID treats malformed ids as missing rows
func isInvalidUUID(err error) bool {
	return postgres.IsPgInvalidTextError(err)
}
