package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"clouddrive/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Items        string
	FileVersions string
	PublicLinks  string
	Plans        string
	FolderRules  string
	FlowSteps    string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Items:        fmt.Sprintf("%sitems", prefix),
		FileVersions: fmt.Sprintf("%sfile_versions", prefix),
		PublicLinks:  fmt.Sprintf("%spublic_links", prefix),
		Plans:        fmt.Sprintf("%splans", prefix),
		FolderRules:  fmt.Sprintf("%sfolder_rules", prefix),
		FlowSteps:    fmt.Sprintf("%sflow_steps", prefix),
	}
}

// All returns every table in drop order (children first)
func (t *TableNames) All() []string {
	return []string{t.FlowSteps, t.FolderRules, t.PublicLinks, t.FileVersions, t.Items, t.Plans}
}

// CreateConnectionPool creates a pgx pool.
//
// Port 6543 is the Supabase transaction pooler, which rejects prepared
// statements. Unless the connection string sets default_query_exec_mode
// explicitly, those connections fall back to cache_describe.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
