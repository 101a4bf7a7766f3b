// Package plans loads the storage tier catalog embedded in the binary.
package plans

import (
	_ "embed"
	"fmt"
	"strings"

	"clouddrive/internal/domain/models/drive"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogFile []byte

// Tier is one purchasable storage tier
type Tier struct {
	Type            drive.PlanType `yaml:"type"`
	DisplayName     string         `yaml:"display_name"`
	MaxStorageBytes int64          `yaml:"max_storage_bytes"`
}

type catalog struct {
	Default drive.PlanType `yaml:"default"`
	Tiers   []Tier         `yaml:"tiers"`
}

// Registry is the read-only tier catalog. Safe for concurrent use.
type Registry struct {
	tiers       []Tier
	byType      map[drive.PlanType]*Tier
	defaultTier *Tier
}

// NewRegistry parses the embedded catalog
func NewRegistry() (*Registry, error) {
	return Parse(catalogFile)
}

// Parse builds a registry from catalog YAML
func Parse(data []byte) (*Registry, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan catalog: %w", err)
	}

	r := &Registry{
		tiers:  c.Tiers,
		byType: make(map[drive.PlanType]*Tier, len(c.Tiers)),
	}
	for i := range r.tiers {
		tier := &r.tiers[i]
		tier.Type = drive.PlanType(strings.ToLower(string(tier.Type)))
		if tier.MaxStorageBytes <= 0 {
			return nil, fmt.Errorf("tier %s: max_storage_bytes must be positive", tier.Type)
		}
		if _, dup := r.byType[tier.Type]; dup {
			return nil, fmt.Errorf("tier %s defined twice", tier.Type)
		}
		r.byType[tier.Type] = tier
	}

	def, ok := r.Lookup(c.Default)
	if !ok {
		return nil, fmt.Errorf("default tier %q is not defined", c.Default)
	}
	r.defaultTier = r.byType[def.Type]

	return r, nil
}

// Default returns the tier given to users without a plan
func (r *Registry) Default() Tier {
	return *r.defaultTier
}

// Lookup returns a tier by type (case-insensitive)
func (r *Registry) Lookup(planType drive.PlanType) (Tier, bool) {
	tier, ok := r.byType[drive.PlanType(strings.ToLower(string(planType)))]
	if !ok {
		return Tier{}, false
	}
	return *tier, true
}

// Tiers returns every tier in catalog order
func (r *Registry) Tiers() []Tier {
	out := make([]Tier, len(r.tiers))
	copy(out, r.tiers)
	return out
}
