package services

import "context"

// ObjectDeleter removes stored objects once their rows are purged.
// Implementations should treat unknown keys as already deleted.
type ObjectDeleter interface {
	DeleteObjects(ctx context.Context, ownerID string, keys []string) error
}
