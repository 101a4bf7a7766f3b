package drive

import (
	"context"
	"errors"
	"sort"
	"testing"

	"clouddrive/internal/domain"
	driveSvc "clouddrive/internal/domain/services/drive"
)

func TestStarAndTrashAreExclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	x := env.file(t, alice, nil, "X", "k/x", 1)

	if _, err := env.lifecycleSvc.SetStarred(ctx, alice, []string{x.ID}, true); err != nil {
		t.Fatalf("SetStarred() error = %v", err)
	}

	_, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{x.ID}, true)
	var stateErr *domain.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("trash starred item error = %v, want StateError", err)
	}
	want := "Cannot move 'X' to the bin because it is starred. Please unstar it first."
	if stateErr.Message != want {
		t.Errorf("message = %q, want %q", stateErr.Message, want)
	}
	if env.get(t, x.ID).IsDeleted {
		t.Fatal("guard failure still trashed the item")
	}

	if _, err := env.lifecycleSvc.SetStarred(ctx, alice, []string{x.ID}, false); err != nil {
		t.Fatalf("unstar error = %v", err)
	}
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{x.ID}, true); err != nil {
		t.Fatalf("trash after unstar error = %v", err)
	}

	_, err = env.lifecycleSvc.SetStarred(ctx, alice, []string{x.ID}, true)
	if !errors.As(err, &stateErr) || stateErr.Message != "Cannot make 'X' starred while it is in the bin. Please restore it first." {
		t.Errorf("star trashed item error = %v", err)
	}

	got := env.get(t, x.ID)
	if got.IsStarred && got.IsDeleted {
		t.Error("item is both starred and trashed")
	}
}

func TestToggles_IdempotentAndSkipping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.file(t, alice, nil, "a", "k/a", 1)
	foreign := env.file(t, bob, nil, "b", "k/b", 1)

	first, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{a.ID, "missing", foreign.ID}, true)
	if err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}
	if first.Updated != 1 || first.Visited != 1 || len(first.Skipped) != 2 {
		t.Errorf("first = %+v, want 1 updated and 2 skipped", first)
	}
	edited := env.get(t, a.ID).LastEdited

	second, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{a.ID}, true)
	if err != nil {
		t.Fatalf("SetTrashed() again error = %v", err)
	}
	if second.Updated != 0 {
		t.Errorf("second trash updated %d items, want 0", second.Updated)
	}
	if !env.get(t, a.ID).LastEdited.Equal(edited) {
		t.Error("idempotent trash bumped lastEdited")
	}
	if env.get(t, foreign.ID).IsDeleted {
		t.Error("foreign item was trashed")
	}

	tests := []struct {
		name   string
		userID string
		ids    []string
		target error
	}{
		{"no user", "", []string{a.ID}, domain.ErrUnauthorized},
		{"empty batch", alice, nil, domain.ErrValidation},
		{"blank id", alice, []string{""}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.lifecycleSvc.SetStarred(ctx, tt.userID, tt.ids, true)
			wantErr(t, err, tt.target)
		})
	}
}

func TestSetTrashed_BatchStopsAtFirstGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.file(t, alice, nil, "a", "k/a", 1)
	starred := env.file(t, alice, nil, "s", "k/s", 1)
	c := env.file(t, alice, nil, "c", "k/c", 1)
	if _, err := env.lifecycleSvc.SetStarred(ctx, alice, []string{starred.ID}, true); err != nil {
		t.Fatalf("SetStarred() error = %v", err)
	}

	_, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{a.ID, starred.ID, c.ID}, true)
	wantErr(t, err, domain.ErrInvalidState)

	if !env.get(t, a.ID).IsDeleted {
		t.Error("item before the failure should stay trashed")
	}
	if env.get(t, c.ID).IsDeleted {
		t.Error("item after the failure should be untouched")
	}
}

func TestSetPublic_Cascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.folder(t, alice, nil, "Shared")
	sub := env.folder(t, alice, root, "Sub")
	f1 := env.file(t, alice, root, "one.txt", "k/1", 1)
	f2 := env.file(t, alice, sub, "two.txt", "k/2", 1)
	binned := env.file(t, alice, sub, "binned.txt", "k/3", 1)
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{binned.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}

	res, err := env.lifecycleSvc.SetPublic(ctx, alice, []string{root.ID}, true)
	if err != nil {
		t.Fatalf("SetPublic() error = %v", err)
	}
	if res.Visited != 5 || res.Updated != 5 {
		t.Errorf("result = %+v, want 5 visited and updated", res)
	}
	for _, id := range []string{root.ID, sub.ID, f1.ID, f2.ID, binned.ID} {
		if !env.get(t, id).IsPublic {
			t.Errorf("item %s not public after cascade", id)
		}
	}

	// A trashed descendant is flipped, a trashed root is not
	_, err = env.lifecycleSvc.SetPublic(ctx, alice, []string{binned.ID}, true)
	wantErr(t, err, domain.ErrInvalidState)

	res, err = env.lifecycleSvc.SetPublic(ctx, alice, []string{sub.ID}, false)
	if err != nil {
		t.Fatalf("SetPublic(false) error = %v", err)
	}
	if res.Updated != 3 {
		t.Errorf("unpublish updated %d, want 3", res.Updated)
	}
	if !env.get(t, root.ID).IsPublic || env.get(t, f2.ID).IsPublic {
		t.Error("unpublish should stop at the subtree root")
	}
}

func TestSetPublic_TrashedRootRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.file(t, alice, nil, "gone.txt", "k/g", 1)
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{f.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}

	_, err := env.lifecycleSvc.SetPublic(ctx, alice, []string{f.ID}, true)
	var stateErr *domain.StateError
	if !errors.As(err, &stateErr) || stateErr.Message != "Cannot make 'gone.txt' public while it is in the bin. Please restore it first." {
		t.Fatalf("SetPublic() on trashed root error = %v", err)
	}
	if env.get(t, f.ID).IsPublic {
		t.Error("rejected root was made public")
	}

	if _, err := env.lifecycleSvc.SetPublic(ctx, alice, []string{f.ID}, false); err != nil {
		t.Errorf("making a trashed item private error = %v", err)
	}
}

func TestSetPublic_OverlappingRootsVisitedOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	root := env.folder(t, alice, nil, "R")
	child := env.folder(t, alice, root, "C")
	env.file(t, alice, child, "f", "k/f", 1)

	res, err := env.lifecycleSvc.SetPublic(ctx, alice, []string{root.ID, child.ID}, true)
	if err != nil {
		t.Fatalf("SetPublic() error = %v", err)
	}
	if res.Visited != 3 {
		t.Errorf("visited = %d, want 3", res.Visited)
	}
}

func TestCascadeBound(t *testing.T) {
	env := newTestEnvWithLimits(t, Limits{MaxCascadeNodes: 3, MaxTreeDepth: 64})
	ctx := context.Background()
	root := env.folder(t, alice, nil, "Big")
	for _, n := range []string{"a", "b", "c", "d"} {
		env.file(t, alice, root, n, "k/"+n, 1)
	}

	_, err := env.lifecycleSvc.SetPublic(ctx, alice, []string{root.ID}, true)
	wantErr(t, err, domain.ErrResourceExhausted)

	t.Run("oversized delete removes nothing", func(t *testing.T) {
		if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{root.ID}, true); err != nil {
			t.Fatalf("SetTrashed: %v", err)
		}
		_, err := env.lifecycleSvc.DeletePermanently(ctx, alice, []string{root.ID})
		wantErr(t, err, domain.ErrResourceExhausted)
		if !env.exists(t, root.ID) {
			t.Error("root was removed")
		}
	})
}

func TestDeletePermanently_FolderWithVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folder := env.folder(t, alice, nil, "Archive")
	var files []string
	var wantKeys []string
	for _, n := range []string{"a", "b", "c"} {
		f := env.file(t, alice, folder, n+".bin", "k/"+n+"-v1", 10)
		env.file(t, alice, folder, n+".bin", "k/"+n+"-v2", 20)
		files = append(files, f.ID)
		wantKeys = append(wantKeys, "k/"+n+"-v1", "k/"+n+"-v2")
	}

	if _, err := env.lifecycleSvc.DeletePermanently(ctx, alice, []string{folder.ID}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("delete of a live folder error = %v, want invalid state", err)
	}
	for _, id := range files {
		if !env.exists(t, id) {
			t.Fatal("guard failure removed a file")
		}
	}

	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{folder.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}
	res, err := env.lifecycleSvc.DeletePermanently(ctx, alice, []string{folder.ID})
	if err != nil {
		t.Fatalf("DeletePermanently() error = %v", err)
	}

	got := append([]string{}, res.Keys...)
	sort.Strings(got)
	sort.Strings(wantKeys)
	if !equalStrings(got, wantKeys) {
		t.Errorf("keys = %v, want %v", got, wantKeys)
	}
	if res.ItemsDeleted != 4 || res.VersionsDeleted != 6 {
		t.Errorf("deleted items=%d versions=%d, want 4 and 6", res.ItemsDeleted, res.VersionsDeleted)
	}
	if env.exists(t, folder.ID) {
		t.Error("folder still exists")
	}
	for _, id := range files {
		if env.exists(t, id) {
			t.Errorf("file %s still exists", id)
		}
		versions, err := env.versions.ListByFile(ctx, id, true)
		if err != nil {
			t.Fatalf("ListByFile() error = %v", err)
		}
		if len(versions) != 0 {
			t.Errorf("file %s kept %d versions", id, len(versions))
		}
	}
}

func TestDeletePermanently_ChecksEveryRootFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	binned := env.file(t, alice, nil, "old", "k/old", 1)
	live := env.file(t, alice, nil, "live", "k/live", 1)
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{binned.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}

	_, err := env.lifecycleSvc.DeletePermanently(ctx, alice, []string{binned.ID, live.ID})
	wantErr(t, err, domain.ErrInvalidState)
	if !env.exists(t, binned.ID) {
		t.Error("trashed root was purged although a later root failed the guard")
	}
}

func TestEmptyTrash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	binnedFolder := env.folder(t, alice, nil, "Old")
	liveChild := env.file(t, alice, binnedFolder, "inner.txt", "k/inner", 5)
	loose := env.file(t, alice, nil, "loose.txt", "k/loose", 5)
	keep := env.file(t, alice, nil, "keep.txt", "k/keep", 5)
	bobs := env.file(t, bob, nil, "bob.txt", "k/bob", 5)

	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{binnedFolder.ID, loose.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}
	if _, err := env.lifecycleSvc.SetTrashed(ctx, bob, []string{bobs.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}

	res, err := env.lifecycleSvc.EmptyTrash(ctx, alice)
	if err != nil {
		t.Fatalf("EmptyTrash() error = %v", err)
	}
	if res.ItemsDeleted != 3 {
		t.Errorf("items deleted = %d, want 3", res.ItemsDeleted)
	}
	for _, id := range []string{binnedFolder.ID, liveChild.ID, loose.ID} {
		if env.exists(t, id) {
			t.Errorf("item %s survived empty trash", id)
		}
	}
	if !env.exists(t, keep.ID) || !env.exists(t, bobs.ID) {
		t.Error("empty trash removed a live or foreign item")
	}

	again, err := env.lifecycleSvc.EmptyTrash(ctx, alice)
	if err != nil {
		t.Fatalf("second EmptyTrash() error = %v", err)
	}
	if again.ItemsDeleted != 0 || len(again.Keys) != 0 {
		t.Errorf("second empty trash = %+v, want nothing", again)
	}
}

func TestDeletePermanently_RemovesFolderRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	folder := env.folder(t, alice, nil, "Inbox")

	_, err := env.automationSvc.UpsertRule(ctx, &driveSvc.UpsertRuleRequest{UserID: alice, FolderID: folder.ID, IsActive: true})
	if err != nil {
		t.Fatalf("UpsertRule() error = %v", err)
	}
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{folder.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}
	if _, err := env.lifecycleSvc.DeletePermanently(ctx, alice, []string{folder.ID}); err != nil {
		t.Fatalf("DeletePermanently() error = %v", err)
	}

	rule, err := env.rules.GetByFolder(ctx, folder.ID)
	if err != nil {
		t.Fatalf("GetByFolder() error = %v", err)
	}
	if rule != nil {
		t.Error("rule survived folder purge")
	}
}

func TestKeySet(t *testing.T) {
	k := newKeySet()
	k.add("a", "", "b", "a")
	k.add("c", "b")
	if !equalStrings(k.keys, []string{"a", "b", "c"}) {
		t.Errorf("keys = %v", k.keys)
	}
}

func TestRestore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	docs := env.folder(t, alice, nil, "Docs")
	old := env.file(t, alice, docs, "plan.txt", "k/plan-1", 1)

	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{old.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}

	t.Run("free name", func(t *testing.T) {
		if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{old.ID}, false); err != nil {
			t.Fatalf("restore error = %v", err)
		}
		if env.get(t, old.ID).IsDeleted {
			t.Error("item still in the bin")
		}
		if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{old.ID}, true); err != nil {
			t.Fatalf("SetTrashed() error = %v", err)
		}
	})

	t.Run("name taken by a live sibling", func(t *testing.T) {
		fresh := env.file(t, alice, docs, "plan.txt", "k/plan-2", 1)

		_, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{old.ID}, false)
		var conflictErr *domain.ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("restore error = %v, want ConflictError", err)
		}
		if conflictErr.ResourceID != fresh.ID {
			t.Errorf("conflict resource = %s, want %s", conflictErr.ResourceID, fresh.ID)
		}
		if !env.get(t, old.ID).IsDeleted {
			t.Error("colliding item left the bin")
		}
	})
}
