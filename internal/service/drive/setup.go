package drive

import (
	"log/slog"

	"clouddrive/internal/domain/repositories"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/plans"
	authSvc "clouddrive/internal/service/auth"
)

// Repositories is the storage backend the drive services run on
type Repositories struct {
	Items     driveRepo.ItemRepository
	Versions  driveRepo.VersionRepository
	Links     driveRepo.LinkRepository
	Plans     driveRepo.PlanRepository
	Rules     driveRepo.RuleRepository
	TxManager repositories.TransactionManager
}

// Services holds all drive services
type Services struct {
	Items      driveSvc.ItemService
	Versions   driveSvc.VersionService
	Lifecycle  driveSvc.LifecycleService
	Quota      driveSvc.QuotaService
	Sharing    driveSvc.SharingService
	Automation driveSvc.AutomationService
}

// SetupServices wires every drive service over one backend
func SetupServices(repos *Repositories, catalog *plans.Registry, clock Clock, limits Limits, logger *slog.Logger) *Services {
	authorizer := authSvc.NewOwnerBasedAuthorizer(repos.Items)

	return &Services{
		Items:      NewItemService(repos.Items, repos.Versions, repos.TxManager, authorizer, clock, limits, logger),
		Versions:   NewVersionService(repos.Items, repos.Versions, repos.TxManager, authorizer, clock, logger),
		Lifecycle:  NewLifecycleService(repos.Items, repos.Versions, repos.Rules, repos.TxManager, clock, limits, logger),
		Quota:      NewQuotaService(repos.Items, repos.Versions, repos.Plans, catalog, clock, logger),
		Sharing:    NewSharingService(repos.Items, repos.Links, authorizer, clock, limits, logger),
		Automation: NewAutomationService(repos.Rules, repos.TxManager, authorizer, clock, logger),
	}
}
