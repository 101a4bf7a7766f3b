package drive

import (
	"context"
	"fmt"
	"log/slog"

	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	"clouddrive/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPlanRepository implements the PlanRepository interface
type PostgresPlanRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(config *postgres.RepositoryConfig) driveRepo.PlanRepository {
	return &PostgresPlanRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByOwner returns the owner's plan, or nil
func (r *PostgresPlanRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Plan, error) {
	query := fmt.Sprintf(`
		SELECT owner_id, max_storage_bytes, plan_type, expires_at, created_at
		FROM %s WHERE owner_id = $1
	`, r.tables.Plans)

	var plan models.Plan
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, ownerID).Scan(
		&plan.OwnerID,
		&plan.MaxStorageBytes,
		&plan.PlanType,
		&plan.ExpiresAt,
		&plan.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &plan, nil
}

// CreateIfNotExists inserts the plan unless one exists, then returns the stored plan
func (r *PostgresPlanRepository) CreateIfNotExists(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, max_storage_bytes, plan_type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id) DO NOTHING
	`, r.tables.Plans)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query,
		plan.OwnerID,
		plan.MaxStorageBytes,
		plan.PlanType,
		plan.ExpiresAt,
		plan.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	stored, err := r.GetByOwner(ctx, plan.OwnerID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("plan for %s vanished after insert", plan.OwnerID)
	}
	return stored, nil
}
