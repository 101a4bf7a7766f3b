package memory

import (
	"context"
	"fmt"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"

	"github.com/google/uuid"
)

// RuleRepository implements drive.RuleRepository in memory
type RuleRepository struct {
	store *Store
}

// NewRuleRepository creates a rule repository over store
func NewRuleRepository(store *Store) driveRepo.RuleRepository {
	return &RuleRepository{store: store}
}

// GetByFolder returns the folder's rule, or nil
func (r *RuleRepository) GetByFolder(ctx context.Context, folderID string) (*models.FolderRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rule, ok := r.store.rules[folderID]
	if !ok {
		return nil, nil
	}
	out := cloneRule(rule)
	return &out, nil
}

// GetActiveByFolder returns the folder's rule only if it is active
func (r *RuleRepository) GetActiveByFolder(ctx context.Context, folderID string) (*models.FolderRule, error) {
	rule, err := r.GetByFolder(ctx, folderID)
	if err != nil || rule == nil || !rule.IsActive {
		return nil, err
	}
	return rule, nil
}

// Replace upserts the rule and rewrites its flows wholesale
func (r *RuleRepository) Replace(ctx context.Context, rule *models.FolderRule) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[rule.FolderID]; !ok {
		return fmt.Errorf("folder %s: %w", rule.FolderID, domain.ErrNotFound)
	}

	if existing, ok := r.store.rules[rule.FolderID]; ok {
		rule.ID = existing.ID
		rule.CreatedAt = existing.CreatedAt
	} else {
		rule.ID = uuid.NewString()
	}

	for i := range rule.Flows {
		step := &rule.Flows[i]
		step.ID = uuid.NewString()
		step.RuleID = rule.ID
		step.Position = i
		if step.Actions == nil {
			step.Actions = []models.Action{}
		}
	}
	r.store.rules[rule.FolderID] = cloneRule(*rule)
	return nil
}

// DeleteByFolder removes the rule and its flows
func (r *RuleRepository) DeleteByFolder(ctx context.Context, folderID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.rules, folderID)
	return nil
}
