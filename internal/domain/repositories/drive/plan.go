package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// PlanRepository defines data access for quota plans
type PlanRepository interface {
	// GetByOwner returns the owner's plan, or nil if none exists yet
	GetByOwner(ctx context.Context, ownerID string) (*drive.Plan, error)

	// CreateIfNotExists inserts plan unless the owner already has one,
	// and returns whichever plan is stored
	CreateIfNotExists(ctx context.Context, plan *drive.Plan) (*drive.Plan, error)
}
