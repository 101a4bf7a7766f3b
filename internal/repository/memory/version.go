package memory

import (
	"context"
	"fmt"
	"sort"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"

	"github.com/google/uuid"
)

// VersionRepository implements drive.VersionRepository in memory
type VersionRepository struct {
	store *Store
}

// NewVersionRepository creates a version repository over store
func NewVersionRepository(store *Store) driveRepo.VersionRepository {
	return &VersionRepository{store: store}
}

// Create inserts a new version
func (r *VersionRepository) Create(ctx context.Context, v *models.FileVersion) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[v.FileID]; !ok {
		return fmt.Errorf("file %s: %w", v.FileID, domain.ErrNotFound)
	}
	if v.IsLatest() && !v.IsDeleted {
		for _, other := range r.store.versions {
			if other.FileID == v.FileID && other.IsLatest() && !other.IsDeleted {
				return fmt.Errorf("file %s already has a latest version: %w", v.FileID, domain.ErrConflict)
			}
		}
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	r.store.versions[v.ID] = *v
	r.store.verSeq[v.ID] = r.store.next()
	return nil
}

// GetLatest returns the live version tagged latest, or nil
func (r *VersionRepository) GetLatest(ctx context.Context, fileID string) (*models.FileVersion, error) {
	for _, v := range r.sorted(fileID, false) {
		if v.IsLatest() {
			return &v, nil
		}
	}
	return nil, nil
}

// GetNewest returns the most recently created version, or nil
func (r *VersionRepository) GetNewest(ctx context.Context, fileID string) (*models.FileVersion, error) {
	versions := r.sorted(fileID, true)
	if len(versions) == 0 {
		return nil, nil
	}
	return &versions[0], nil
}

// UpdateTag relabels a version
func (r *VersionRepository) UpdateTag(ctx context.Context, id, tag string) error {
	return r.update(id, func(v *models.FileVersion) { v.VersionTag = tag })
}

// UpdateThumbnail sets a version's thumbnail key
func (r *VersionRepository) UpdateThumbnail(ctx context.Context, id, thumbnailKey string) error {
	return r.update(id, func(v *models.FileVersion) { v.ThumbnailKey = thumbnailKey })
}

func (r *VersionRepository) update(id string, mutate func(*models.FileVersion)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	v, ok := r.store.versions[id]
	if !ok {
		return fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	mutate(&v)
	r.store.versions[id] = v
	return nil
}

// ListByFile returns versions newest first
func (r *VersionRepository) ListByFile(ctx context.Context, fileID string, includeDeleted bool) ([]models.FileVersion, error) {
	return r.sorted(fileID, includeDeleted), nil
}

func (r *VersionRepository) sorted(fileID string, includeDeleted bool) []models.FileVersion {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	versions := []models.FileVersion{}
	for _, v := range r.store.versions {
		if v.FileID == fileID && (includeDeleted || !v.IsDeleted) {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		a, b := versions[i], versions[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.store.verSeq[a.ID] > r.store.verSeq[b.ID]
	})
	return versions
}

// DeleteByFile removes every version of a file
func (r *VersionRepository) DeleteByFile(ctx context.Context, fileID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for id, v := range r.store.versions {
		if v.FileID == fileID {
			delete(r.store.versions, id)
			delete(r.store.verSeq, id)
			n++
		}
	}
	return n, nil
}

// SumSizes sums size over every version row of the owner
func (r *VersionRepository) SumSizes(ctx context.Context, ownerID string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var total int64
	for _, v := range r.store.versions {
		if v.OwnerID == ownerID {
			total += v.Size
		}
	}
	return total, nil
}
