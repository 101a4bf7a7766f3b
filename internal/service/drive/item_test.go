package drive

import (
	"context"
	"errors"
	"testing"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
	driveSvc "clouddrive/internal/domain/services/drive"
)

func TestCreateFolder_Paths(t *testing.T) {
	env := newTestEnv(t)

	photos := env.folder(t, alice, nil, "  Photos  ")
	if photos.Name != "Photos" {
		t.Errorf("name = %q, want trimmed %q", photos.Name, "Photos")
	}
	if photos.Path != "/" {
		t.Errorf("root folder path = %q, want /", photos.Path)
	}

	year := env.folder(t, alice, photos, "2024")
	if year.Path != "/Photos" {
		t.Errorf("child path = %q, want /Photos", year.Path)
	}

	march := env.folder(t, alice, year, "March")
	if march.Path != "/Photos/2024" {
		t.Errorf("grandchild path = %q, want /Photos/2024", march.Path)
	}
}

func TestCreateFolder_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	photos := env.folder(t, alice, nil, "Photos")
	doc := env.file(t, alice, nil, "notes.txt", "k/notes", 10)
	bobs := env.folder(t, bob, nil, "Bob's")
	missing := "does-not-exist"

	tests := []struct {
		name   string
		req    *driveSvc.CreateFolderRequest
		target error
	}{
		{"empty name", &driveSvc.CreateFolderRequest{UserID: alice, Name: "   "}, domain.ErrValidation},
		{"slash in name", &driveSvc.CreateFolderRequest{UserID: alice, Name: "a/b"}, domain.ErrValidation},
		{"no user", &driveSvc.CreateFolderRequest{Name: "x"}, domain.ErrUnauthorized},
		{"duplicate at root", &driveSvc.CreateFolderRequest{UserID: alice, Name: "Photos"}, domain.ErrConflict},
		{"missing parent", &driveSvc.CreateFolderRequest{UserID: alice, Name: "x", ParentID: &missing}, domain.ErrNotFound},
		{"parent is a file", &driveSvc.CreateFolderRequest{UserID: alice, Name: "x", ParentID: &doc.ID}, domain.ErrValidation},
		{"foreign parent", &driveSvc.CreateFolderRequest{UserID: alice, Name: "x", ParentID: &bobs.ID}, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.itemSvc.CreateFolder(ctx, tt.req)
			wantErr(t, err, tt.target)
		})
	}

	// Conflict carries the existing id so callers can offer replace
	_, err := env.itemSvc.CreateFolder(ctx, &driveSvc.CreateFolderRequest{UserID: alice, Name: "Photos"})
	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) || conflictErr.ResourceID != photos.ID {
		t.Errorf("conflict error = %v, want ConflictError for %s", err, photos.ID)
	}
}

func TestCreateFolder_TrashedSiblingDoesNotCollide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	old := env.folder(t, alice, nil, "Work")
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{old.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}
	if _, err := env.itemSvc.CreateFolder(ctx, &driveSvc.CreateFolderRequest{UserID: alice, Name: "Work"}); err != nil {
		t.Errorf("CreateFolder() with trashed sibling error = %v", err)
	}

	// Same name, different kind
	env.file(t, alice, nil, "Work", "k/work", 1)
}

func TestCreateOrReplaceFile_ReplaceAppendsVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	docs := env.folder(t, alice, nil, "Docs")

	first := env.file(t, alice, docs, "report.pdf", "k/report-1", 100)

	res, err := env.itemSvc.CreateOrReplaceFile(ctx, &driveSvc.CreateFileRequest{
		UserID:     alice,
		ParentID:   &docs.ID,
		Name:       "report.pdf",
		StorageKey: "k/report-2",
		Size:       250,
		MimeType:   "application/pdf",
	})
	if err != nil {
		t.Fatalf("CreateOrReplaceFile() error = %v", err)
	}
	if !res.Replaced || res.File.ID != first.ID {
		t.Fatalf("replace created a new node: replaced=%v id=%s want %s", res.Replaced, res.File.ID, first.ID)
	}

	stored := env.get(t, first.ID)
	if stored.StorageKey != "k/report-2" || stored.Size != 250 || stored.CurrentVersionID != res.Version.ID {
		t.Errorf("file not repointed: %+v", stored)
	}
	if stored.MimeType != "application/pdf" {
		t.Errorf("mime type = %q, want application/pdf", stored.MimeType)
	}

	versions, err := env.versions.ListByFile(ctx, first.ID, false)
	if err != nil {
		t.Fatalf("ListByFile() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(versions))
	}
	latest := 0
	for _, v := range versions {
		if v.IsLatest() {
			latest++
		}
	}
	if latest != 1 {
		t.Errorf("latest-tagged versions = %d, want exactly 1", latest)
	}
	if !versions[0].IsLatest() || versions[0].StorageKey != "k/report-2" {
		t.Errorf("newest version = %+v, want latest k/report-2", versions[0])
	}
}

func TestUpdateItem_Move(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	photos := env.folder(t, alice, nil, "Photos")
	year := env.folder(t, alice, photos, "2024")
	march := env.folder(t, alice, year, "March")
	other := env.folder(t, alice, nil, "Other")
	bobs := env.folder(t, bob, nil, "Bob")

	move := func(itemID string, target *string) (*models.Item, error) {
		return env.itemSvc.UpdateItem(ctx, alice, itemID, &driveSvc.UpdateItemRequest{Move: true, ParentID: target})
	}

	t.Run("into itself", func(t *testing.T) {
		_, err := move(photos.ID, &photos.ID)
		wantErr(t, err, domain.ErrInvalidState)
	})

	t.Run("into a descendant", func(t *testing.T) {
		_, err := move(photos.ID, &march.ID)
		wantErr(t, err, domain.ErrInvalidState)
		if env.get(t, photos.ID).ParentID != nil {
			t.Error("failed move changed the parent")
		}
	})

	t.Run("same parent is a no-op", func(t *testing.T) {
		before := env.get(t, year.ID)
		got, err := move(year.ID, &photos.ID)
		if err != nil {
			t.Fatalf("move to current parent error = %v", err)
		}
		if !got.LastEdited.Equal(before.LastEdited) {
			t.Error("no-op move bumped lastEdited")
		}
	})

	t.Run("into a foreign folder", func(t *testing.T) {
		_, err := move(year.ID, &bobs.ID)
		wantErr(t, err, domain.ErrForbidden)
	})

	t.Run("valid move recomputes path", func(t *testing.T) {
		got, err := move(year.ID, &other.ID)
		if err != nil {
			t.Fatalf("move error = %v", err)
		}
		if got.ParentID == nil || *got.ParentID != other.ID || got.Path != "/Other" {
			t.Errorf("moved folder parent=%v path=%q", got.ParentID, got.Path)
		}
	})

	t.Run("to root", func(t *testing.T) {
		got, err := move(march.ID, nil)
		if err != nil {
			t.Fatalf("move to root error = %v", err)
		}
		if got.ParentID != nil || got.Path != "/" {
			t.Errorf("moved to root parent=%v path=%q", got.ParentID, got.Path)
		}
	})

	t.Run("collision in target", func(t *testing.T) {
		env.folder(t, alice, other, "March")
		_, err := move(march.ID, &other.ID)
		wantErr(t, err, domain.ErrConflict)
	})
}

func TestUpdateItem_RenameAndRecolor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	work := env.folder(t, alice, nil, "Work")
	env.folder(t, alice, nil, "Home")
	doc := env.file(t, alice, nil, "a.txt", "k/a", 1)

	name := func(s string) *string { return &s }

	if _, err := env.itemSvc.UpdateItem(ctx, alice, work.ID, &driveSvc.UpdateItemRequest{Name: name("Home")}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("rename onto sibling error = %v, want conflict", err)
	}

	got, err := env.itemSvc.UpdateItem(ctx, alice, work.ID, &driveSvc.UpdateItemRequest{Name: name(" Office "), Color: name("#ff0000")})
	if err != nil {
		t.Fatalf("rename error = %v", err)
	}
	if got.Name != "Office" || got.Color != "#ff0000" {
		t.Errorf("got name=%q color=%q", got.Name, got.Color)
	}
	if !got.LastEdited.After(work.LastEdited) {
		t.Error("rename did not bump lastEdited")
	}

	if _, err := env.itemSvc.UpdateItem(ctx, alice, doc.ID, &driveSvc.UpdateItemRequest{Color: name("#00ff00")}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("recolor file error = %v, want validation", err)
	}
	if _, err := env.itemSvc.UpdateItem(ctx, bob, work.ID, &driveSvc.UpdateItemRequest{Name: name("Mine")}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("rename by non-owner error = %v, want forbidden", err)
	}
	if _, err := env.itemSvc.UpdateItem(ctx, alice, work.ID, &driveSvc.UpdateItemRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty update error = %v, want validation", err)
	}
}

func TestListChildren_SortAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.folder(t, alice, nil, "Root")
	for _, n := range []string{"banana", "Apple", "cherry"} {
		env.file(t, alice, root, n, "k/"+n, 1)
	}
	trashed := env.file(t, alice, root, "zz-trashed", "k/z", 1)
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{trashed.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}

	tests := []struct {
		sort models.SortKey
		want []string
	}{
		{models.SortNameAsc, []string{"Apple", "banana", "cherry"}},
		{models.SortNameDesc, []string{"cherry", "banana", "Apple"}},
		{models.SortNewest, []string{"cherry", "Apple", "banana"}},
		{models.SortOldest, []string{"banana", "Apple", "cherry"}},
		{"", []string{"Apple", "banana", "cherry"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			page, err := env.itemSvc.ListChildren(ctx, alice, &root.ID, tt.sort, models.Page{})
			if err != nil {
				t.Fatalf("ListChildren() error = %v", err)
			}
			if got := names(page.Items); !equalStrings(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}

	page, err := env.itemSvc.ListChildren(ctx, alice, &root.ID, models.SortNameAsc, models.Page{Limit: 2})
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	if len(page.Items) != 2 || !page.HasMore || page.NextOffset != 2 {
		t.Errorf("first page = %v has_more=%v next=%d", names(page.Items), page.HasMore, page.NextOffset)
	}
	page, err = env.itemSvc.ListChildren(ctx, alice, &root.ID, models.SortNameAsc, models.Page{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	if len(page.Items) != 1 || page.HasMore {
		t.Errorf("second page = %v has_more=%v", names(page.Items), page.HasMore)
	}

	if _, err := env.itemSvc.ListChildren(ctx, alice, &root.ID, "biggest", models.Page{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown sort error = %v, want validation", err)
	}
	if _, err := env.itemSvc.ListChildren(ctx, bob, &root.ID, "", models.Page{}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("foreign folder error = %v, want forbidden", err)
	}
}

func TestGetBreadcrumbs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.folder(t, alice, nil, "A")
	b := env.folder(t, alice, a, "B")
	f := env.file(t, alice, b, "f.txt", "k/f", 1)

	crumbs, err := env.itemSvc.GetBreadcrumbs(ctx, alice, f.ID)
	if err != nil {
		t.Fatalf("GetBreadcrumbs() error = %v", err)
	}
	got := make([]string, len(crumbs))
	for i, c := range crumbs {
		got[i] = c.Name
	}
	want := []string{models.RootName, "A", "B", "f.txt"}
	if !equalStrings(got, want) {
		t.Errorf("crumbs = %v, want %v", got, want)
	}
	if crumbs[0].ID != nil {
		t.Error("root crumb should have a nil id")
	}

	if _, err := env.itemSvc.GetBreadcrumbs(ctx, bob, f.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("foreign breadcrumbs error = %v, want forbidden", err)
	}
}

func TestSearchAndViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	docs := env.folder(t, alice, nil, "Docs")
	report := env.file(t, alice, docs, "Quarterly Report.pdf", "k/q", 1)
	env.file(t, alice, nil, "report-draft.txt", "k/d", 1)
	env.file(t, alice, nil, "holiday.jpg", "k/h", 1)
	env.file(t, bob, nil, "report-bob.pdf", "k/b", 1)

	page, err := env.itemSvc.Search(ctx, alice, &models.SearchFilters{Text: "REPORT"}, models.Page{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := names(page.Items); !equalStrings(got, []string{"Quarterly Report.pdf", "report-draft.txt"}) {
		t.Errorf("search = %v", got)
	}

	page, err = env.itemSvc.Search(ctx, alice, &models.SearchFilters{Text: "report", ParentID: &docs.ID}, models.Page{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != report.ID {
		t.Errorf("scoped search = %v", names(page.Items))
	}

	if _, err := env.lifecycleSvc.SetStarred(ctx, alice, []string{report.ID}, true); err != nil {
		t.Fatalf("SetStarred() error = %v", err)
	}
	starred, err := env.itemSvc.ListStarred(ctx, alice, models.Page{})
	if err != nil {
		t.Fatalf("ListStarred() error = %v", err)
	}
	if len(starred.Items) != 1 || starred.Items[0].ID != report.ID {
		t.Errorf("starred = %v", names(starred.Items))
	}

	if err := env.itemSvc.Touch(ctx, alice, report.ID); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if err := env.itemSvc.Touch(ctx, bob, report.ID); err != nil {
		t.Errorf("Touch() on foreign item should be ignored, got %v", err)
	}
	recent, err := env.itemSvc.ListRecent(ctx, alice, models.Page{})
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent.Items) == 0 || recent.Items[0].ID != report.ID {
		t.Errorf("recent = %v, want report first", names(recent.Items))
	}
}

func TestListRecent_NewItemsFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	old := env.file(t, alice, nil, "old.txt", "k/old", 1)
	folder := env.folder(t, alice, nil, "Fresh")

	recent, err := env.itemSvc.ListRecent(ctx, alice, models.Page{})
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if got, want := names(recent.Items), []string{"Fresh", "old.txt"}; !equalStrings(got, want) {
		t.Errorf("after new folder: recent = %v, want %v", got, want)
	}

	upload := env.file(t, alice, folder, "upload.png", "k/upload", 1)
	recent, err = env.itemSvc.ListRecent(ctx, alice, models.Page{})
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent.Items) != 3 || recent.Items[0].ID != upload.ID {
		t.Errorf("after upload: recent = %v, want upload.png first", names(recent.Items))
	}

	// Replacing an existing file adds a version without counting as an open
	env.file(t, alice, nil, "old.txt", "k/old-2", 2)
	recent, _ = env.itemSvc.ListRecent(ctx, alice, models.Page{})
	if last := recent.Items[len(recent.Items)-1]; last.ID != old.ID {
		t.Errorf("after replace: last = %s, want old.txt", last.Name)
	}

	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{upload.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}
	recent, _ = env.itemSvc.ListRecent(ctx, alice, models.Page{})
	if got, want := names(recent.Items), []string{"Fresh", "old.txt"}; !equalStrings(got, want) {
		t.Errorf("after trash: recent = %v, want %v", got, want)
	}
}
