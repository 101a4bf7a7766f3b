package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	"clouddrive/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRuleRepository implements the RuleRepository interface
type PostgresRuleRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRuleRepository creates a new folder rule repository
func NewRuleRepository(config *postgres.RepositoryConfig) driveRepo.RuleRepository {
	return &PostgresRuleRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByFolder returns the folder's rule with its flows, or nil
func (r *PostgresRuleRepository) GetByFolder(ctx context.Context, folderID string) (*models.FolderRule, error) {
	return r.get(ctx, folderID, false)
}

// GetActiveByFolder returns the folder's rule only if it is active
func (r *PostgresRuleRepository) GetActiveByFolder(ctx context.Context, folderID string) (*models.FolderRule, error) {
	return r.get(ctx, folderID, true)
}

func (r *PostgresRuleRepository) get(ctx context.Context, folderID string, activeOnly bool) (*models.FolderRule, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, owner_id, is_active, trigger_kind, created_at, updated_at
		FROM %s
		WHERE folder_id = $1 AND (is_active OR NOT $2)
	`, r.tables.FolderRules)

	var rule models.FolderRule
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, folderID, activeOnly).Scan(
		&rule.ID,
		&rule.FolderID,
		&rule.OwnerID,
		&rule.IsActive,
		&rule.TriggerKind,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rule: %w", err)
	}

	flows, err := r.listFlows(ctx, rule.ID)
	if err != nil {
		return nil, err
	}
	rule.Flows = flows
	return &rule, nil
}

func (r *PostgresRuleRepository) listFlows(ctx context.Context, ruleID string) ([]models.FlowStep, error) {
	query := fmt.Sprintf(`
		SELECT id, rule_id, position, filter_field, filter_operator, filter_value, actions
		FROM %s
		WHERE rule_id = $1
		ORDER BY position
	`, r.tables.FlowSteps)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	flows := []models.FlowStep{}
	for rows.Next() {
		var step models.FlowStep
		var actions []byte
		if err := rows.Scan(
			&step.ID,
			&step.RuleID,
			&step.Position,
			&step.Filter.Field,
			&step.Filter.Operator,
			&step.Filter.Value,
			&actions,
		); err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}
		if err := json.Unmarshal(actions, &step.Actions); err != nil {
			return nil, fmt.Errorf("decode flow %s actions: %w", step.ID, err)
		}
		flows = append(flows, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flows: %w", err)
	}
	return flows, nil
}

// Replace upserts the rule and rewrites its flows wholesale
func (r *PostgresRuleRepository) Replace(ctx context.Context, rule *models.FolderRule) error {
	upsert := fmt.Sprintf(`
		INSERT INTO %s (folder_id, owner_id, is_active, trigger_kind, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (folder_id) DO UPDATE
		SET is_active = EXCLUDED.is_active, trigger_kind = EXCLUDED.trigger_kind, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, r.tables.FolderRules)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, upsert,
		rule.FolderID,
		rule.OwnerID,
		rule.IsActive,
		rule.TriggerKind,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", rule.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert rule: %w", err)
	}

	clearFlows := fmt.Sprintf(`DELETE FROM %s WHERE rule_id = $1`, r.tables.FlowSteps)
	if _, err := executor.Exec(ctx, clearFlows, rule.ID); err != nil {
		return fmt.Errorf("clear flows: %w", err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (rule_id, position, filter_field, filter_operator, filter_value, actions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, r.tables.FlowSteps)

	for i := range rule.Flows {
		step := &rule.Flows[i]
		step.RuleID = rule.ID
		step.Position = i
		if step.Actions == nil {
			step.Actions = []models.Action{}
		}
		actions, err := encodeActions(step.Actions)
		if err != nil {
			return fmt.Errorf("encode flow %d actions: %w", i, err)
		}
		if err := executor.QueryRow(ctx, insert,
			step.RuleID,
			step.Position,
			step.Filter.Field,
			step.Filter.Operator,
			step.Filter.Value,
			actions,
		).Scan(&step.ID); err != nil {
			return fmt.Errorf("insert flow %d: %w", i, err)
		}
	}

	return nil
}

// DeleteByFolder removes the rule; flows go with it via ON DELETE CASCADE
func (r *PostgresRuleRepository) DeleteByFolder(ctx context.Context, folderID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE folder_id = $1`, r.tables.FolderRules)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderID); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// encodeActions renders actions as a JSON array with every settings blob
// copied verbatim. json.Marshal would compact the blobs.
func encodeActions(actions []models.Action) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, action := range actions {
		if i > 0 {
			buf.WriteByte(',')
		}
		typ, err := json.Marshal(action.Type)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`{"type":`)
		buf.Write(typ)
		if len(action.Settings) > 0 {
			if !json.Valid(action.Settings) {
				return nil, fmt.Errorf("action %d: settings are not valid JSON", i)
			}
			buf.WriteString(`,"settings":`)
			buf.Write(action.Settings)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
