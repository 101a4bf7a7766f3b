package drive

import (
	"context"
	"log/slog"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/plans"
)

type quotaService struct {
	itemRepo    driveRepo.ItemRepository
	versionRepo driveRepo.VersionRepository
	planRepo    driveRepo.PlanRepository
	catalog     *plans.Registry
	clock       Clock
	logger      *slog.Logger
}

// NewQuotaService creates a new quota service
func NewQuotaService(
	itemRepo driveRepo.ItemRepository,
	versionRepo driveRepo.VersionRepository,
	planRepo driveRepo.PlanRepository,
	catalog *plans.Registry,
	clock Clock,
	logger *slog.Logger,
) driveSvc.QuotaService {
	return &quotaService{
		itemRepo:    itemRepo,
		versionRepo: versionRepo,
		planRepo:    planRepo,
		catalog:     catalog,
		clock:       clock,
		logger:      logger,
	}
}

func (s *quotaService) defaultPlan(userID string) *models.Plan {
	tier := s.catalog.Default()
	return &models.Plan{
		OwnerID:         userID,
		MaxStorageBytes: tier.MaxStorageBytes,
		PlanType:        tier.Type,
		CreatedAt:       s.clock.Now(),
	}
}

// ComputeUsage sums every file (trashed included) plus every retained version.
// The current revision is counted in both sums. The stored plan is reported
// as-is; renewal or downgrade of an expired plan belongs to billing.
func (s *quotaService) ComputeUsage(ctx context.Context, userID string) (*models.Usage, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	plan, err := s.planRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = s.defaultPlan(userID)
	}

	files, err := s.itemRepo.SumFileSizes(ctx, userID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.SumSizes(ctx, userID)
	if err != nil {
		return nil, err
	}

	usage := &models.Usage{
		UsedBytes:    files + versions,
		CeilingBytes: plan.MaxStorageBytes,
		PlanType:     plan.PlanType,
		PlanExpiry:   plan.ExpiresAt,
		PlanExpired:  plan.ExpiresAt != nil && s.clock.Now().After(*plan.ExpiresAt),
	}
	if usage.CeilingBytes > 0 {
		usage.Percentage = float64(usage.UsedBytes) / float64(usage.CeilingBytes) * 100
	}
	return usage, nil
}

// EnsurePlan stores the default tier unless the user already has a plan
func (s *quotaService) EnsurePlan(ctx context.Context, userID string) (*models.Plan, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	plan, err := s.planRepo.CreateIfNotExists(ctx, s.defaultPlan(userID))
	if err != nil {
		return nil, err
	}
	s.logger.Info("plan ensured", "user_id", userID, "plan_type", plan.PlanType)
	return plan, nil
}
