package config

const (
	// MaxItemNameLength is the maximum length for file and folder names.
	// Fits a PostgreSQL VARCHAR(255) and keeps breadcrumbs readable.
	MaxItemNameLength = 255

	// MaxColorLength bounds the folder color tag (hex code or palette name).
	MaxColorLength = 32

	// MaxFlowSteps is the maximum number of flows a single folder rule can hold.
	MaxFlowSteps = 50

	// MaxActionsPerFlow is the maximum number of actions attached to one flow.
	MaxActionsPerFlow = 20

	// MaxBatchItems is the maximum number of ids a star/trash/public/delete
	// request may name.
	MaxBatchItems = 500

	// DefaultMaxCascadeNodes bounds a single public or delete cascade.
	DefaultMaxCascadeNodes = 10000

	// DefaultMaxTreeDepth bounds ancestor walks (breadcrumbs, move checks,
	// shared-folder descent checks).
	DefaultMaxTreeDepth = 256
)
