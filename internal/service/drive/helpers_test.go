package drive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	models "clouddrive/internal/domain/models/drive"
	driveRepo "clouddrive/internal/domain/repositories/drive"
	driveSvc "clouddrive/internal/domain/services/drive"
	"clouddrive/internal/plans"
	"clouddrive/internal/repository/memory"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

// fakeClock advances one millisecond per read so creation order is strict
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	clock *fakeClock

	items    driveRepo.ItemRepository
	versions driveRepo.VersionRepository
	links    driveRepo.LinkRepository
	plans    driveRepo.PlanRepository
	rules    driveRepo.RuleRepository

	itemSvc       driveSvc.ItemService
	versionSvc    driveSvc.VersionService
	lifecycleSvc  driveSvc.LifecycleService
	quotaSvc      driveSvc.QuotaService
	sharingSvc    driveSvc.SharingService
	automationSvc driveSvc.AutomationService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLimits(t, Limits{MaxCascadeNodes: 1000, MaxTreeDepth: 64})
}

func newTestEnvWithLimits(t *testing.T, limits Limits) *testEnv {
	t.Helper()

	store := memory.NewStore()
	tx := memory.NewTransactionManager(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := plans.NewRegistry()
	if err != nil {
		t.Fatalf("plans.NewRegistry() error = %v", err)
	}

	env := &testEnv{
		clock:    newFakeClock(),
		items:    memory.NewItemRepository(store),
		versions: memory.NewVersionRepository(store),
		links:    memory.NewLinkRepository(store),
		plans:    memory.NewPlanRepository(store),
		rules:    memory.NewRuleRepository(store),
	}
	svcs := SetupServices(&Repositories{
		Items:     env.items,
		Versions:  env.versions,
		Links:     env.links,
		Plans:     env.plans,
		Rules:     env.rules,
		TxManager: tx,
	}, catalog, env.clock, limits, logger)

	env.itemSvc = svcs.Items
	env.versionSvc = svcs.Versions
	env.lifecycleSvc = svcs.Lifecycle
	env.quotaSvc = svcs.Quota
	env.sharingSvc = svcs.Sharing
	env.automationSvc = svcs.Automation
	return env
}

func (e *testEnv) folder(t *testing.T, owner string, parent *models.Item, name string) *models.Item {
	t.Helper()
	req := &driveSvc.CreateFolderRequest{UserID: owner, Name: name}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	folder, err := e.itemSvc.CreateFolder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateFolder(%q) error = %v", name, err)
	}
	return folder
}

func (e *testEnv) file(t *testing.T, owner string, parent *models.Item, name, key string, size int64) *models.Item {
	t.Helper()
	req := &driveSvc.CreateFileRequest{
		UserID:     owner,
		Name:       name,
		StorageKey: key,
		Size:       size,
		MimeType:   "application/octet-stream",
	}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	res, err := e.itemSvc.CreateOrReplaceFile(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateOrReplaceFile(%q) error = %v", name, err)
	}
	return res.File
}

func (e *testEnv) get(t *testing.T, id string) *models.Item {
	t.Helper()
	item, err := e.items.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s) error = %v", id, err)
	}
	return item
}

func (e *testEnv) exists(t *testing.T, id string) bool {
	t.Helper()
	_, err := e.items.GetByID(context.Background(), id)
	return err == nil
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

func names(items []models.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
