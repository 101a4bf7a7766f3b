package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	"clouddrive/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresItemRepository implements the ItemRepository interface
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(config *postgres.RepositoryConfig) driveRepo.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new item
func (r *PostgresItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, kind, name, parent_id, color, path, storage_key,
			current_version_id, size, mime_type, thumbnail_key, is_starred, is_public,
			is_deleted, last_edited, last_opened, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		item.OwnerID,
		item.Kind,
		item.Name,
		item.ParentID,
		item.Color,
		item.Path,
		item.StorageKey,
		item.CurrentVersionID,
		item.Size,
		item.MimeType,
		item.ThumbnailKey,
		item.IsStarred,
		item.IsPublic,
		item.IsDeleted,
		item.LastEdited,
		nullTime(item.LastOpened),
		item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		if postgres.IsPgDuplicateError(err) {
			return domain.NewNameConflict(string(item.Kind), item.Name, "")
		}
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by ID
func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, itemColumns, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	item, err := scanItem(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || isInvalidUUID(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update writes every mutable column
func (r *PostgresItemRepository) Update(ctx context.Context, item *models.Item) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, color = $3, path = $4, storage_key = $5,
			current_version_id = $6, size = $7, mime_type = $8, thumbnail_key = $9,
			is_starred = $10, is_public = $11, is_deleted = $12,
			last_edited = $13, last_opened = $14
		WHERE id = $15
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		item.Name,
		item.ParentID,
		item.Color,
		item.Path,
		item.StorageKey,
		item.CurrentVersionID,
		item.Size,
		item.MimeType,
		item.ThumbnailKey,
		item.IsStarred,
		item.IsPublic,
		item.IsDeleted,
		item.LastEdited,
		nullTime(item.LastOpened),
		item.ID,
	)
	if err != nil {
		if postgres.IsPgCheckViolation(err) {
			return domain.NewStateError(item.ID, fmt.Sprintf("'%s' cannot be starred and in the bin at the same time", item.Name))
		}
		if postgres.IsPgDuplicateError(err) {
			return domain.NewNameConflict(string(item.Kind), item.Name, "")
		}
		return fmt.Errorf("update item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the item row
func (r *PostgresItemRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("item %s still has children: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// FindSibling returns the live item with the same owner, parent, kind and name
func (r *PostgresItemRepository) FindSibling(ctx context.Context, ownerID string, parentID *string, kind models.ItemKind, name string) (*models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
			AND kind = $3 AND name = $4 AND NOT is_deleted
		ORDER BY created_at
		LIMIT 1
	`, itemColumns, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	item, err := scanItem(executor.QueryRow(ctx, query, ownerID, parentID, kind, name))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find sibling: %w", err)
	}
	return item, nil
}

// List returns items matching the query
func (r *PostgresItemRepository) List(ctx context.Context, q models.ItemQuery) ([]models.Item, error) {
	where := []string{"owner_id = $1"}
	args := []interface{}{q.OwnerID}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ByParent {
		where = append(where, "parent_id IS NOT DISTINCT FROM "+arg(q.ParentID))
	}
	if q.Kind != "" {
		where = append(where, "kind = "+arg(q.Kind))
	}
	if q.Deleted != nil {
		where = append(where, "is_deleted = "+arg(*q.Deleted))
	}
	if q.Starred != nil {
		where = append(where, "is_starred = "+arg(*q.Starred))
	}
	if q.NameLike != "" {
		where = append(where, "name ILIKE "+arg("%"+escapeLike(q.NameLike)+"%"))
	}
	if q.MimeType != "" {
		where = append(where, "mime_type = "+arg(q.MimeType))
	}
	if q.CreatedFrom != nil {
		where = append(where, "created_at >= "+arg(*q.CreatedFrom))
	}
	if q.CreatedTo != nil {
		where = append(where, "created_at <= "+arg(*q.CreatedTo))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s`,
		itemColumns, r.tables.Items, strings.Join(where, " AND "), orderBy(q.Sort))
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + arg(q.Offset)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// SumFileSizes sums size over every file of the owner
func (r *PostgresItemRepository) SumFileSizes(ctx context.Context, ownerID string) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(size), 0)::BIGINT FROM %s
		WHERE owner_id = $1 AND kind = 'file'
	`, r.tables.Items)

	var total int64
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ownerID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum file sizes: %w", err)
	}
	return total, nil
}

// orderBy maps a sort key to an ORDER BY clause. id breaks ties so pages are stable.
func orderBy(sort models.SortKey) string {
	switch sort {
	case models.SortNameDesc:
		return "LOWER(name) DESC, id"
	case models.SortNewest:
		return "created_at DESC, id"
	case models.SortOldest:
		return "created_at ASC, id"
	case models.SortLastOpened:
		return "last_opened DESC NULLS LAST, id"
	case models.SortLastEdited:
		return "last_edited DESC, id"
	default:
		return "LOWER(name) ASC, id"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
