package objectstore

import (
	"context"
	"log/slog"

	"clouddrive/internal/domain/services"
)

// LogDeleter records purged keys without touching storage.
// It is the default when no purge webhook is configured.
type LogDeleter struct {
	logger *slog.Logger
}

// NewLogDeleter creates a deleter that only logs
func NewLogDeleter(logger *slog.Logger) services.ObjectDeleter {
	return &LogDeleter{logger: logger}
}

func (d *LogDeleter) DeleteObjects(ctx context.Context, ownerID string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	d.logger.Info("objects released", "owner_id", ownerID, "count", len(keys), "keys", keys)
	return nil
}
