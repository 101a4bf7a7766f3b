package drive

import (
	"context"
	"testing"
	"time"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
)

func TestComputeUsage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	usage, err := env.quotaSvc.ComputeUsage(ctx, alice)
	if err != nil {
		t.Fatalf("ComputeUsage() error = %v", err)
	}
	if usage.UsedBytes != 0 || usage.PlanType != models.PlanFree || usage.CeilingBytes != 10<<30 {
		t.Errorf("empty usage = %+v", usage)
	}

	f := env.file(t, alice, nil, "a.bin", "k/a1", 100)
	env.file(t, alice, nil, "a.bin", "k/a2", 50)
	env.file(t, bob, nil, "b.bin", "k/b", 1000)

	usage, err = env.quotaSvc.ComputeUsage(ctx, alice)
	if err != nil {
		t.Fatalf("ComputeUsage() error = %v", err)
	}
	// current size plus both retained versions
	if usage.UsedBytes != 200 {
		t.Errorf("used = %d, want 200", usage.UsedBytes)
	}

	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{f.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}
	usage, err = env.quotaSvc.ComputeUsage(ctx, alice)
	if err != nil {
		t.Fatalf("ComputeUsage() error = %v", err)
	}
	if usage.UsedBytes != 200 {
		t.Errorf("trashed bytes should still count: used = %d", usage.UsedBytes)
	}

	if _, err := env.lifecycleSvc.DeletePermanently(ctx, alice, []string{f.ID}); err != nil {
		t.Fatalf("DeletePermanently() error = %v", err)
	}
	usage, err = env.quotaSvc.ComputeUsage(ctx, alice)
	if err != nil {
		t.Fatalf("ComputeUsage() error = %v", err)
	}
	if usage.UsedBytes != 0 {
		t.Errorf("used after purge = %d, want 0", usage.UsedBytes)
	}

	_, err = env.quotaSvc.ComputeUsage(ctx, "")
	wantErr(t, err, domain.ErrUnauthorized)
}

func TestComputeUsage_Plans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name        string
		plan        *models.Plan
		wantExpired bool
	}{
		{"active paid plan", &models.Plan{OwnerID: "user-paid", PlanType: models.PlanStandard, MaxStorageBytes: 2 << 40, ExpiresAt: &future}, false},
		{"lifetime plan", &models.Plan{OwnerID: "user-lifetime", PlanType: models.PlanLite, MaxStorageBytes: 100 << 30}, false},
		{"expired plan keeps its tier and expiry", &models.Plan{OwnerID: "user-expired", PlanType: models.PlanBasic, MaxStorageBytes: 200 << 30, ExpiresAt: &past}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.plans.CreateIfNotExists(ctx, tt.plan); err != nil {
				t.Fatalf("CreateIfNotExists() error = %v", err)
			}
			usage, err := env.quotaSvc.ComputeUsage(ctx, tt.plan.OwnerID)
			if err != nil {
				t.Fatalf("ComputeUsage() error = %v", err)
			}
			if usage.PlanType != tt.plan.PlanType {
				t.Errorf("plan type = %s, want %s", usage.PlanType, tt.plan.PlanType)
			}
			if usage.CeilingBytes != tt.plan.MaxStorageBytes {
				t.Errorf("ceiling = %d, want %d", usage.CeilingBytes, tt.plan.MaxStorageBytes)
			}
			switch {
			case tt.plan.ExpiresAt == nil && usage.PlanExpiry != nil:
				t.Errorf("plan expiry = %v, want nil", usage.PlanExpiry)
			case tt.plan.ExpiresAt != nil && (usage.PlanExpiry == nil || !usage.PlanExpiry.Equal(*tt.plan.ExpiresAt)):
				t.Errorf("plan expiry = %v, want %v", usage.PlanExpiry, *tt.plan.ExpiresAt)
			}
			if usage.PlanExpired != tt.wantExpired {
				t.Errorf("plan expired = %v, want %v", usage.PlanExpired, tt.wantExpired)
			}
		})
	}
}

func TestEnsurePlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plan, err := env.quotaSvc.EnsurePlan(ctx, alice)
	if err != nil {
		t.Fatalf("EnsurePlan() error = %v", err)
	}
	if plan.PlanType != models.PlanFree {
		t.Errorf("new plan type = %s, want free", plan.PlanType)
	}

	if _, err := env.plans.CreateIfNotExists(ctx, &models.Plan{OwnerID: bob, PlanType: models.PlanBasic, MaxStorageBytes: 200 << 30}); err != nil {
		t.Fatalf("CreateIfNotExists() error = %v", err)
	}
	plan, err = env.quotaSvc.EnsurePlan(ctx, bob)
	if err != nil {
		t.Fatalf("EnsurePlan() error = %v", err)
	}
	if plan.PlanType != models.PlanBasic {
		t.Errorf("existing plan overwritten with %s", plan.PlanType)
	}
}
