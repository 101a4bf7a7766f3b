package drive

import "context"

// LifecycleService enforces flag transitions and runs cascades
type LifecycleService interface {
	// SetStarred stars or unstars items. Fails fast on a trashed item.
	SetStarred(ctx context.Context, userID string, itemIDs []string, starred bool) (*BatchResult, error)

	// SetTrashed moves items to the bin or restores them. Fails fast on a starred item.
	SetTrashed(ctx context.Context, userID string, itemIDs []string, trashed bool) (*BatchResult, error)

	// SetPublic flags items and, for folders, every descendant
	SetPublic(ctx context.Context, userID string, itemIDs []string, public bool) (*BatchResult, error)

	// DeletePermanently purges trashed roots and their subtrees
	DeletePermanently(ctx context.Context, userID string, itemIDs []string) (*PurgeResult, error)

	// EmptyTrash purges every trashed item of the user
	EmptyTrash(ctx context.Context, userID string) (*PurgeResult, error)
}

// BatchResult reports what a flag toggle touched
type BatchResult struct {
	Updated int      `json:"updated"` // rows written
	Visited int      `json:"visited"` // nodes reached, including no-ops
	Skipped []string `json:"skipped"` // ids missing or not owned
}

// PurgeResult lists the object keys left for the object store to delete
type PurgeResult struct {
	Keys            []string `json:"keys"`
	ItemsDeleted    int      `json:"items_deleted"`
	VersionsDeleted int64    `json:"versions_deleted"`
	Skipped         []string `json:"skipped"`
}
