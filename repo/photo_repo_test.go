package repo_test

import (
	"context"
	"testing"

	"github.com/Skryldev/sharebnb/db"
)

func TestPhotoRepo_AddListDelete(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	l := f.create(t, "Studio", 40, "pop")

	p, err := f.photos.Add(ctx, l.ID, "https://img/a.jpg")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.ID == 0 || p.ListingID != l.ID || p.CreatedAt.IsZero() {
		t.Fatalf("unexpected photo: %+v", p)
	}

	if err := f.photos.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.photos.Delete(ctx, p.ID); !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	photos, err := f.photos.ListForListing(ctx, l.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if photos == nil || len(photos) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", photos)
	}
}

func TestPhotoRepo_Add_UnknownListing(t *testing.T) {
	f := newListingFixture(t)
	if _, err := f.photos.Add(context.Background(), 4242, "https://img/x.jpg"); !db.IsForeignKeyViolation(err) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}
