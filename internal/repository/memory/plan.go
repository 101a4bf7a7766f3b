package memory

import (
	"context"

	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
)

// PlanRepository implements drive.PlanRepository in memory
type PlanRepository struct {
	store *Store
}

// NewPlanRepository creates a plan repository over store
func NewPlanRepository(store *Store) driveRepo.PlanRepository {
	return &PlanRepository{store: store}
}

// GetByOwner returns the owner's plan, or nil
func (r *PlanRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Plan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	plan, ok := r.store.plans[ownerID]
	if !ok {
		return nil, nil
	}
	return &plan, nil
}

// CreateIfNotExists inserts the plan unless one exists, then returns the stored plan
func (r *PlanRepository) CreateIfNotExists(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.store.plans[plan.OwnerID]; ok {
		return &existing, nil
	}
	r.store.plans[plan.OwnerID] = *plan
	stored := *plan
	return &stored, nil
}
