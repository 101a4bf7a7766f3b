package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// AutomationService stores folder rules and matches uploads against them
type AutomationService interface {
	// UpsertRule replaces the folder's rule and flows wholesale
	UpsertRule(ctx context.Context, req *UpsertRuleRequest) (*drive.FolderRule, error)

	// GetRule returns the folder summary; Rule is nil when nothing is configured
	GetRule(ctx context.Context, userID, folderID string) (*drive.RuleView, error)

	// DeleteRule removes the rule. Absent rules are not an error.
	DeleteRule(ctx context.Context, userID, folderID string) error

	// MatchUpload returns the actions of every matching flow, in flow order
	MatchUpload(ctx context.Context, userID, fileID string) ([]drive.Action, error)
}

// UpsertRuleRequest is a complete rule configuration
type UpsertRuleRequest struct {
	UserID   string           `json:"-"`
	FolderID string           `json:"-"`
	IsActive bool             `json:"is_active"`
	Flows    []drive.FlowStep `json:"flows"`
}
