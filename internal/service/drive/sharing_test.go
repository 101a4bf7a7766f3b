package drive

import (
	"context"
	"testing"
	"time"

	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"
)

func TestResolveLink_Expiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.file(t, alice, nil, "F.txt", "k/f", 1)

	link, err := env.sharingSvc.CreateOrRefreshLink(ctx, alice, f.ID, models.LinkOneHour)
	if err != nil {
		t.Fatalf("CreateOrRefreshLink() error = %v", err)
	}
	if link.ExpiresAt == nil {
		t.Fatal("one hour link has no expiry")
	}

	root, err := env.sharingSvc.ResolveLink(ctx, link.Token)
	if err != nil {
		t.Fatalf("ResolveLink() error = %v", err)
	}
	if root.ID != f.ID {
		t.Errorf("resolved %s, want %s", root.ID, f.ID)
	}

	env.clock.Advance(61 * time.Minute)
	_, err = env.sharingSvc.ResolveLink(ctx, link.Token)
	wantErr(t, err, domain.ErrExpired)
}

func TestCreateOrRefreshLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.file(t, alice, nil, "F.txt", "k/f", 1)

	first, err := env.sharingSvc.CreateOrRefreshLink(ctx, alice, f.ID, models.LinkSevenDays)
	if err != nil {
		t.Fatalf("CreateOrRefreshLink() error = %v", err)
	}
	second, err := env.sharingSvc.CreateOrRefreshLink(ctx, alice, f.ID, models.LinkNever)
	if err != nil {
		t.Fatalf("refresh error = %v", err)
	}
	if first.Token == second.Token {
		t.Error("refresh kept the old token")
	}
	if second.ExpiresAt != nil {
		t.Error("lifetime link has an expiry")
	}
	if len(second.Token) < 43 {
		t.Errorf("token %q is shorter than 256 bits", second.Token)
	}

	_, err = env.sharingSvc.ResolveLink(ctx, first.Token)
	wantErr(t, err, domain.ErrNotFound)

	stored, err := env.sharingSvc.GetLink(ctx, alice, f.ID)
	if err != nil {
		t.Fatalf("GetLink() error = %v", err)
	}
	if stored.Token != second.Token {
		t.Error("GetLink returned a stale token")
	}

	tests := []struct {
		name     string
		userID   string
		duration models.LinkDuration
		target   error
	}{
		{"unknown duration", alice, "2w", domain.ErrValidation},
		{"empty duration", alice, "", domain.ErrValidation},
		{"foreign item", bob, models.LinkOneDay, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.sharingSvc.CreateOrRefreshLink(ctx, tt.userID, f.ID, tt.duration)
			wantErr(t, err, tt.target)
		})
	}

	if err := env.sharingSvc.RevokeLink(ctx, alice, f.ID); err != nil {
		t.Fatalf("RevokeLink() error = %v", err)
	}
	_, err = env.sharingSvc.ResolveLink(ctx, second.Token)
	wantErr(t, err, domain.ErrNotFound)
}

func TestResolveLink_Gone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.file(t, alice, nil, "F.txt", "k/f", 1)

	link, err := env.sharingSvc.CreateOrRefreshLink(ctx, alice, f.ID, models.LinkNever)
	if err != nil {
		t.Fatalf("CreateOrRefreshLink() error = %v", err)
	}
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{f.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}
	_, err = env.sharingSvc.ResolveLink(ctx, link.Token)
	wantErr(t, err, domain.ErrGone)

	if _, err := env.lifecycleSvc.DeletePermanently(ctx, alice, []string{f.ID}); err != nil {
		t.Fatalf("DeletePermanently() error = %v", err)
	}
	_, err = env.sharingSvc.ResolveLink(ctx, link.Token)
	wantErr(t, err, domain.ErrGone)
}

func TestBrowse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	shared := env.folder(t, alice, nil, "Shared")
	sub := env.folder(t, alice, shared, "Sub")
	env.file(t, alice, shared, "first.txt", "k/1", 1)
	env.file(t, alice, shared, "second.txt", "k/2", 1)
	inner := env.file(t, alice, sub, "inner.txt", "k/3", 1)
	binned := env.folder(t, alice, shared, "Binned")
	outside := env.folder(t, alice, nil, "Private")
	bobs := env.folder(t, bob, nil, "Bob")
	if _, err := env.lifecycleSvc.SetTrashed(ctx, alice, []string{binned.ID}, true); err != nil {
		t.Fatalf("SetTrashed() error = %v", err)
	}

	link, err := env.sharingSvc.CreateOrRefreshLink(ctx, alice, shared.ID, models.LinkNever)
	if err != nil {
		t.Fatalf("CreateOrRefreshLink() error = %v", err)
	}

	listing, err := env.sharingSvc.Browse(ctx, link.Token, nil, models.Page{})
	if err != nil {
		t.Fatalf("Browse() error = %v", err)
	}
	if got := names(listing.Items); !equalStrings(got, []string{"second.txt", "first.txt", "Sub"}) {
		t.Errorf("root listing = %v", got)
	}

	listing, err = env.sharingSvc.Browse(ctx, link.Token, &sub.ID, models.Page{})
	if err != nil {
		t.Fatalf("Browse(sub) error = %v", err)
	}
	if listing.Current.ID != sub.ID || len(listing.Items) != 1 || listing.Items[0].ID != inner.ID {
		t.Errorf("sub listing current=%s items=%v", listing.Current.ID, names(listing.Items))
	}

	listing, err = env.sharingSvc.Browse(ctx, link.Token, nil, models.Page{Limit: 1})
	if err != nil {
		t.Fatalf("Browse() page error = %v", err)
	}
	if len(listing.Items) != 1 || !listing.HasMore {
		t.Errorf("paged listing = %v has_more=%v", names(listing.Items), listing.HasMore)
	}

	tests := []struct {
		name     string
		folderID string
		target   error
	}{
		{"outside the shared root", outside.ID, domain.ErrForbidden},
		{"another owner", bobs.ID, domain.ErrForbidden},
		{"trashed descendant", binned.ID, domain.ErrNotFound},
		{"file descendant", inner.ID, domain.ErrValidation},
		{"missing", "missing", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.folderID
			_, err := env.sharingSvc.Browse(ctx, link.Token, &id, models.Page{})
			wantErr(t, err, tt.target)
		})
	}
}

func TestBrowse_SharedFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.file(t, alice, nil, "solo.pdf", "k/solo", 1)

	link, err := env.sharingSvc.CreateOrRefreshLink(ctx, alice, f.ID, models.LinkOneDay)
	if err != nil {
		t.Fatalf("CreateOrRefreshLink() error = %v", err)
	}
	listing, err := env.sharingSvc.Browse(ctx, link.Token, nil, models.Page{})
	if err != nil {
		t.Fatalf("Browse() error = %v", err)
	}
	if listing.Root.ID != f.ID || len(listing.Items) != 0 {
		t.Errorf("file listing root=%s items=%v", listing.Root.ID, names(listing.Items))
	}
}
