package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// RuleRepository defines data access for folder rules and their flow steps
type RuleRepository interface {
	// GetByFolder returns the folder's rule with flows in position order,
	// or nil if none is configured
	GetByFolder(ctx context.Context, folderID string) (*drive.FolderRule, error)

	// GetActiveByFolder returns the folder's rule only if it is active, else nil
	GetActiveByFolder(ctx context.Context, folderID string) (*drive.FolderRule, error)

	// Replace upserts the rule row, deletes all prior flows and inserts
	// rule.Flows. Callers run it inside a transaction.
	Replace(ctx context.Context, rule *drive.FolderRule) error

	// DeleteByFolder removes the rule and its flows. Missing rules are not an error.
	DeleteByFolder(ctx context.Context, folderID string) error
}
