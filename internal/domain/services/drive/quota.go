package drive

import (
	"context"

	"clouddrive/internal/domain/models/drive"
)

// QuotaService reports storage usage against the plan ceiling
type QuotaService interface {
	// ComputeUsage sums live and retained bytes. A missing plan is
	// synthesized from the free tier without being stored.
	ComputeUsage(ctx context.Context, userID string) (*drive.Usage, error)

	// EnsurePlan stores the free tier for the user unless a plan exists
	EnsurePlan(ctx context.Context, userID string) (*drive.Plan, error)
}
