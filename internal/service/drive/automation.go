package drive

import (
	"context"
	"fmt"
	"log/slog"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	"clouddrive/internal/domain/repositories"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	"clouddrive/internal/domain/services"
	driveSvc "clouddrive/internal/domain/services/drive"
)

type automationService struct {
	ruleRepo   driveRepo.RuleRepository
	txManager  repositories.TransactionManager
	authorizer services.ItemAuthorizer
	clock      Clock
	logger     *slog.Logger
}

// NewAutomationService creates a new automation rule service
func NewAutomationService(
	ruleRepo driveRepo.RuleRepository,
	txManager repositories.TransactionManager,
	authorizer services.ItemAuthorizer,
	clock Clock,
	logger *slog.Logger,
) driveSvc.AutomationService {
	return &automationService{
		ruleRepo:   ruleRepo,
		txManager:  txManager,
		authorizer: authorizer,
		clock:      clock,
		logger:     logger,
	}
}

// UpsertRule replaces the folder's rule and every flow step
func (s *automationService) UpsertRule(ctx context.Context, req *driveSvc.UpsertRuleRequest) (*models.FolderRule, error) {
	if err := validateFlows(req.Flows); err != nil {
		return nil, invalid(err)
	}

	flows := make([]models.FlowStep, len(req.Flows))
	for i, step := range req.Flows {
		flows[i] = models.FlowStep{Filter: step.Filter, Actions: step.Actions}
	}

	var rule *models.FolderRule
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.authorizer.CanAccessFolder(ctx, req.UserID, req.FolderID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		rule = &models.FolderRule{
			FolderID:    folder.ID,
			OwnerID:     folder.OwnerID,
			IsActive:    req.IsActive,
			TriggerKind: models.TriggerFileUpload,
			Flows:       flows,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.ruleRepo.Replace(ctx, rule)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder rule saved",
		"folder_id", rule.FolderID,
		"rule_id", rule.ID,
		"active", rule.IsActive,
		"flows", len(rule.Flows),
	)
	return rule, nil
}

// GetRule returns the folder summary with its rule, which is nil when unset
func (s *automationService) GetRule(ctx context.Context, userID, folderID string) (*models.RuleView, error) {
	folder, err := s.authorizer.CanAccessFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	rule, err := s.ruleRepo.GetByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	return &models.RuleView{FolderName: folder.Name, Color: folder.Color, Rule: rule}, nil
}

// DeleteRule removes the folder's rule. Deleting nothing succeeds.
func (s *automationService) DeleteRule(ctx context.Context, userID, folderID string) error {
	if _, err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
		return err
	}
	if err := s.ruleRepo.DeleteByFolder(ctx, folderID); err != nil {
		return err
	}
	s.logger.Info("folder rule deleted", "folder_id", folderID)
	return nil
}

// MatchUpload evaluates the parent folder's active rule against a file
func (s *automationService) MatchUpload(ctx context.Context, userID, fileID string) ([]models.Action, error) {
	file, err := s.authorizer.CanAccessItem(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if !file.IsFile() {
		return nil, fmt.Errorf("%w: item %s is not a file", domain.ErrValidation, fileID)
	}
	if file.ParentID == nil {
		return []models.Action{}, nil
	}

	rule, err := s.ruleRepo.GetActiveByFolder(ctx, *file.ParentID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return []models.Action{}, nil
	}

	actions := matchFlows(rule.Flows, file)
	s.logger.Debug("upload matched",
		"file_id", file.ID,
		"folder_id", rule.FolderID,
		"actions", len(actions),
	)
	return actions, nil
}
