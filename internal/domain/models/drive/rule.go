package drive

import (
	"encoding/json"
	"time"
)

// TriggerKind is the event a folder rule reacts to.
type TriggerKind string

// TriggerFileUpload is currently the only trigger.
const TriggerFileUpload TriggerKind = "file_upload"

// FilterField is the file attribute a flow filter inspects.
type FilterField string

const (
	FieldName      FilterField = "name"
	FieldExtension FilterField = "extension"
	FieldMediaType FilterField = "media_type"
	FieldSize      FilterField = "size"
)

// FilterOperator is the comparison a flow filter applies.
type FilterOperator string

const (
	OpEquals      FilterOperator = "eq"
	OpContains    FilterOperator = "contains"
	OpStartsWith  FilterOperator = "starts_with"
	OpEndsWith    FilterOperator = "ends_with"
	OpGreaterThan FilterOperator = "gt"
)

// supportedOperators is the closed field x operator table.
var supportedOperators = map[FilterField][]FilterOperator{
	FieldName:      {OpEquals, OpContains, OpStartsWith, OpEndsWith},
	FieldExtension: {OpEquals},
	FieldMediaType: {OpEquals},
	FieldSize:      {OpGreaterThan},
}

// SupportsOperator reports whether op is defined for the field.
func (f FilterField) SupportsOperator(op FilterOperator) bool {
	for _, candidate := range supportedOperators[f] {
		if candidate == op {
			return true
		}
	}
	return false
}

// ValidFilterFields lists known fields (for validation.In)
var ValidFilterFields = []interface{}{FieldName, FieldExtension, FieldMediaType, FieldSize}

// Filter is one (field, operator, value) predicate.
type Filter struct {
	Field    FilterField    `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

// Action is an opaque instruction for the post-processing collaborator.
// Settings are round-tripped, never interpreted.
type Action struct {
	Type     string          `json:"type"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// FlowStep pairs a filter with the actions to run when it matches.
type FlowStep struct {
	ID       string   `json:"id,omitempty" db:"id"`
	RuleID   string   `json:"rule_id,omitempty" db:"rule_id"`
	Position int      `json:"position" db:"position"`
	Filter   Filter   `json:"filter" db:"filter"`
	Actions  []Action `json:"actions" db:"actions"`
}

// FolderRule is a folder's automation configuration. At most one per folder.
type FolderRule struct {
	ID          string      `json:"id" db:"id"`
	FolderID    string      `json:"folder_id" db:"folder_id"`
	OwnerID     string      `json:"owner_id" db:"owner_id"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	TriggerKind TriggerKind `json:"trigger_kind" db:"trigger_kind"`
	Flows       []FlowStep  `json:"flows"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// RuleView is what getRule returns: folder summary plus the rule,
// where Rule is nil when nothing is configured.
type RuleView struct {
	FolderName string      `json:"folder_name"`
	Color      string      `json:"color"`
	Rule       *FolderRule `json:"rule"`
}
