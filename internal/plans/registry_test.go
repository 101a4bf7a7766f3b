package plans

import (
	"strings"
	"testing"

	"clouddrive/internal/domain/models/drive"
)

func TestNewRegistry_EmbeddedCatalog(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	def := r.Default()
	if def.Type != drive.PlanFree {
		t.Errorf("Default().Type = %q, want %q", def.Type, drive.PlanFree)
	}
	if def.MaxStorageBytes != 10*1024*1024*1024 {
		t.Errorf("Default().MaxStorageBytes = %d, want 10 GiB", def.MaxStorageBytes)
	}

	for _, pt := range []drive.PlanType{drive.PlanFree, drive.PlanLite, drive.PlanBasic, drive.PlanStandard} {
		if _, ok := r.Lookup(pt); !ok {
			t.Errorf("Lookup(%q) not found", pt)
		}
	}
	if _, ok := r.Lookup("Standard"); !ok {
		t.Error("Lookup should be case-insensitive")
	}
	if len(r.Tiers()) != 4 {
		t.Errorf("len(Tiers()) = %d, want 4", len(r.Tiers()))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing default",
			yaml:    "default: gold\ntiers:\n  - type: free\n    max_storage_bytes: 10\n",
			wantErr: "default tier",
		},
		{
			name:    "non-positive ceiling",
			yaml:    "default: free\ntiers:\n  - type: free\n    max_storage_bytes: 0\n",
			wantErr: "must be positive",
		},
		{
			name:    "duplicate tier",
			yaml:    "default: free\ntiers:\n  - type: free\n    max_storage_bytes: 1\n  - type: FREE\n    max_storage_bytes: 2\n",
			wantErr: "defined twice",
		},
		{
			name:    "malformed yaml",
			yaml:    "default: [",
			wantErr: "unmarshal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
