package drive

import (
	"context"
	"fmt"
	"log/slog"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	"clouddrive/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new file version repository
func NewVersionRepository(config *postgres.RepositoryConfig) driveRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new version
func (r *PostgresVersionRepository) Create(ctx context.Context, v *models.FileVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (file_id, owner_id, storage_key, size, thumbnail_key, version_tag, is_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, r.tables.FileVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		v.FileID,
		v.OwnerID,
		v.StorageKey,
		v.Size,
		v.ThumbnailKey,
		v.VersionTag,
		v.IsDeleted,
		v.CreatedAt,
	).Scan(&v.ID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("file %s already has a latest version: %w", v.FileID, domain.ErrConflict)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("file %s: %w", v.FileID, domain.ErrNotFound)
		}
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

// GetLatest returns the live version tagged latest, or nil
func (r *PostgresVersionRepository) GetLatest(ctx context.Context, fileID string) (*models.FileVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE file_id = $1 AND version_tag = $2 AND NOT is_deleted
		LIMIT 1
	`, versionColumns, r.tables.FileVersions)
	return r.getOne(ctx, query, fileID, models.LatestTag)
}

// GetNewest returns the most recently created version, or nil
func (r *PostgresVersionRepository) GetNewest(ctx context.Context, fileID string) (*models.FileVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE file_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, versionColumns, r.tables.FileVersions)
	return r.getOne(ctx, query, fileID)
}

func (r *PostgresVersionRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.FileVersion, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// UpdateTag relabels a version
func (r *PostgresVersionRepository) UpdateTag(ctx context.Context, id, tag string) error {
	query := fmt.Sprintf(`UPDATE %s SET version_tag = $1 WHERE id = $2`, r.tables.FileVersions)
	return r.exec(ctx, "update version tag", id, query, tag, id)
}

// UpdateThumbnail sets a version's thumbnail key
func (r *PostgresVersionRepository) UpdateThumbnail(ctx context.Context, id, thumbnailKey string) error {
	query := fmt.Sprintf(`UPDATE %s SET thumbnail_key = $1 WHERE id = $2`, r.tables.FileVersions)
	return r.exec(ctx, "update version thumbnail", id, query, thumbnailKey, id)
}

func (r *PostgresVersionRepository) exec(ctx context.Context, op, id, query string, args ...interface{}) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByFile returns versions newest first
func (r *PostgresVersionRepository) ListByFile(ctx context.Context, fileID string, includeDeleted bool) ([]models.FileVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE file_id = $1 AND ($2 OR NOT is_deleted)
		ORDER BY created_at DESC, id DESC
	`, versionColumns, r.tables.FileVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, fileID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := []models.FileVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// DeleteByFile removes every version of a file
func (r *PostgresVersionRepository) DeleteByFile(ctx context.Context, fileID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE file_id = $1`, r.tables.FileVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, fileID)
	if err != nil {
		return 0, fmt.Errorf("delete versions: %w", err)
	}
	return result.RowsAffected(), nil
}

// SumSizes sums size over every version row of the owner
func (r *PostgresVersionRepository) SumSizes(ctx context.Context, ownerID string) (int64, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(size), 0)::BIGINT FROM %s WHERE owner_id = $1`, r.tables.FileVersions)

	var total int64
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ownerID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum version sizes: %w", err)
	}
	return total, nil
}
