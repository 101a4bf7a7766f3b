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

// PostgresLinkRepository implements the LinkRepository interface
type PostgresLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewLinkRepository creates a new public link repository
func NewLinkRepository(config *postgres.RepositoryConfig) driveRepo.LinkRepository {
	return &PostgresLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByItem returns the link for a shared root
func (r *PostgresLinkRepository) GetByItem(ctx context.Context, itemID string) (*models.PublicLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE item_id = $1`, linkColumns, r.tables.PublicLinks)
	return r.getOne(ctx, query, "item "+itemID, itemID)
}

// GetByToken returns the link carrying token
func (r *PostgresLinkRepository) GetByToken(ctx context.Context, token string) (*models.PublicLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE token = $1`, linkColumns, r.tables.PublicLinks)
	return r.getOne(ctx, query, "link", token)
}

func (r *PostgresLinkRepository) getOne(ctx context.Context, query, what string, arg string) (*models.PublicLink, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	link, err := scanLink(executor.QueryRow(ctx, query, arg))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || isInvalidUUID(err) {
			return nil, fmt.Errorf("%s: %w", what, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// Upsert creates the link or rotates token and expiry in place
func (r *PostgresLinkRepository) Upsert(ctx context.Context, link *models.PublicLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (item_id, owner_id, token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_id) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, r.tables.PublicLinks)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		link.ItemID,
		link.OwnerID,
		link.Token,
		link.ExpiresAt,
		link.CreatedAt,
		link.UpdatedAt,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("token collision: %w", domain.ErrConflict)
		}
		return fmt.Errorf("upsert link: %w", err)
	}
	return nil
}

// DeleteByItem removes the item's link
func (r *PostgresLinkRepository) DeleteByItem(ctx context.Context, itemID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE item_id = $1`, r.tables.PublicLinks)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, itemID)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("link for item %s: %w", itemID, domain.ErrNotFound)
	}
	return nil
}
