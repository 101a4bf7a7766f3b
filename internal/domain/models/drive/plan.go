package drive

import "time"

// PlanType is the billing tier.
type PlanType string

const (
	PlanFree     PlanType = "free"
	PlanLite     PlanType = "lite"
	PlanBasic    PlanType = "basic"
	PlanStandard PlanType = "standard"
)

// Plan is a per-user quota record.
type Plan struct {
	OwnerID         string     `json:"owner_id" db:"owner_id"`
	MaxStorageBytes int64      `json:"max_storage_bytes" db:"max_storage_bytes"`
	PlanType        PlanType   `json:"plan_type" db:"plan_type"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Usage reports storage consumption against the plan ceiling.
type Usage struct {
	UsedBytes    int64      `json:"used_bytes"`
	CeilingBytes int64      `json:"ceiling_bytes"`
	Percentage   float64    `json:"percentage"`
	PlanType     PlanType   `json:"plan_type"`
	PlanExpiry   *time.Time `json:"plan_expiry,omitempty"`
	PlanExpired  bool       `json:"plan_expired"`
}
