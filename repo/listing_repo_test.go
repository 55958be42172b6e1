package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/internal/testdb"
	"github.com/Skryldev/sharebnb/models"
	"github.com/Skryldev/sharebnb/repo"
	"github.com/Skryldev/sharebnb/sqlbuild"
	"github.com/google/go-cmp/cmp"
)

type listingFixture struct {
	db       *db.DB
	users    repo.UserRepository
	listings repo.ListingRepository
	photos   repo.PhotoRepository
	owner    *models.User
}

func newListingFixture(t *testing.T) *listingFixture {
	t.Helper()
	database := testdb.Open(t)
	f := &listingFixture{
		db:       database,
		users:    repo.NewUserRepo(database),
		listings: repo.NewListingRepo(database),
		photos:   repo.NewPhotoRepo(database),
	}
	f.owner = mustInsertUser(t, f.users, "host")
	return f
}

func (f *listingFixture) create(t *testing.T, name string, price int, genre string) *models.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), models.CreateListingParams{
		Name:        name,
		Description: "A place called " + name,
		Price:       price,
		Street:      "1 Main St",
		City:        "Springfield",
		State:       "OR",
		Zip:         "97477",
		Genre:       genre,
		OwnerID:     f.owner.ID,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return l
}

func listingNames(ls []*models.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Name
	}
	return out
}

func TestListingRepo_CreateAndGet(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	created := f.create(t, "Loft", 80, "jazz")

	if _, err := f.photos.Add(ctx, created.ID, "https://img/1.jpg"); err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if _, err := f.photos.Add(ctx, created.ID, "https://img/2.jpg"); err != nil {
		t.Fatalf("add photo: %v", err)
	}

	got, err := f.listings.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != f.owner.ID || got.Price != 80 || got.Zip != "97477" {
		t.Fatalf("unexpected listing: %+v", got)
	}
	urls := []string{}
	for _, p := range got.Photos {
		urls = append(urls, p.URL)
	}
	if diff := cmp.Diff([]string{"https://img/1.jpg", "https://img/2.jpg"}, urls); diff != "" {
		t.Fatalf("photos mismatch (-want +got):\n%s", diff)
	}
}

func TestListingRepo_Create_UnknownOwner(t *testing.T) {
	f := newListingFixture(t)
	_, err := f.listings.Create(context.Background(), models.CreateListingParams{Name: "x", Price: 1, OwnerID: 4242})
	if !db.IsForeignKeyViolation(err) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestListingRepo_Get_NotFound(t *testing.T) {
	f := newListingFixture(t)
	if _, err := f.listings.Get(context.Background(), 4242); !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Genre matching uses ILIKE, which SQLite lacks; it is covered by the
// sqlbuild tests. Price filters and paging run end to end here.
func TestListingRepo_FindAll_PriceRangeAndPaging(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	for _, l := range []struct {
		name  string
		price int
	}{{"a", 10}, {"b", 50}, {"c", 75}, {"d", 100}, {"e", 200}} {
		f.create(t, l.name, l.price, "rock")
	}

	tests := []struct {
		name   string
		filter models.ListingFilter
		page   models.Page
		want   []string
	}{
		{"no filter", models.ListingFilter{}, models.Page{}, []string{"a", "b", "c", "d", "e"}},
		{"min only", models.ListingFilter{MinPrice: ptr(50)}, models.Page{}, []string{"b", "c", "d", "e"}},
		{"max only", models.ListingFilter{MaxPrice: ptr(75)}, models.Page{}, []string{"a", "b", "c"}},
		{"range", models.ListingFilter{MinPrice: ptr(50), MaxPrice: ptr(100)}, models.Page{}, []string{"b", "c", "d"}},
		{"zero bound applies", models.ListingFilter{MaxPrice: ptr(0)}, models.Page{}, []string{}},
		{"range paged", models.ListingFilter{MinPrice: ptr(50)}, models.Page{Limit: 2, Offset: 1}, []string{"c", "d"}},
		{"unfiltered paged", models.ListingFilter{}, models.Page{Limit: 2, Offset: 4}, []string{"e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.listings.FindAll(ctx, tt.filter, tt.page)
			if err != nil {
				t.Fatalf("find all: %v", err)
			}
			if diff := cmp.Diff(tt.want, listingNames(got)); diff != "" {
				t.Fatalf("names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListingRepo_ListByOwner(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	f.create(t, "mine-1", 10, "pop")
	f.create(t, "mine-2", 20, "pop")

	other := mustInsertUser(t, f.users, "other")
	if _, err := f.listings.Create(ctx, models.CreateListingParams{Name: "theirs", Price: 5, OwnerID: other.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := f.listings.ListByOwner(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if diff := cmp.Diff([]string{"mine-1", "mine-2"}, listingNames(got)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestListingRepo_Update(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	l := f.create(t, "Cabin", 90, "folk")

	updated, err := f.listings.Update(ctx, l.ID, models.UpdateListingParams{
		Price: ptr(0),
		City:  ptr("Eugene"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 0 || updated.City != "Eugene" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Name != "Cabin" || updated.Genre != "folk" || updated.OwnerID != f.owner.ID {
		t.Fatalf("unset fields changed: %+v", updated)
	}
}

func TestListingRepo_Update_Errors(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	l := f.create(t, "Cabin", 90, "folk")

	if _, err := f.listings.Update(ctx, l.ID, models.UpdateListingParams{}); !errors.Is(err, sqlbuild.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := f.listings.Update(ctx, 4242, models.UpdateListingParams{Name: ptr("x")}); !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.listings.Update(ctx, l.ID, models.UpdateListingParams{Price: ptr(-5)}); !db.IsCheckViolation(err) {
		t.Fatalf("expected ErrCheckViolation, got %v", err)
	}
}

func TestListingRepo_Remove_CascadesPhotos(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	l := f.create(t, "Gone", 10, "pop")
	if _, err := f.photos.Add(ctx, l.ID, "https://img/gone.jpg"); err != nil {
		t.Fatalf("add photo: %v", err)
	}

	if err := f.listings.Remove(ctx, l.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := f.listings.Remove(ctx, l.ID); !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
	photos, err := f.photos.ListForListing(ctx, l.ID)
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected photos removed with listing, got %d", len(photos))
	}
}

func TestListingRepo_CreateWithPhotosInTransaction(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	boom := errors.New("upload failed")

	err := f.db.ExecTx(ctx, func(tx *db.Tx) error {
		l, err := repo.NewListingRepo(tx).Create(ctx, models.CreateListingParams{Name: "Tx", Price: 1, OwnerID: f.owner.ID})
		if err != nil {
			return err
		}
		if _, err := repo.NewPhotoRepo(tx).Add(ctx, l.ID, "https://img/tx.jpg"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := f.listings.FindAll(ctx, models.ListingFilter{}, models.Page{})
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected rollback, found %v", listingNames(got))
	}
}
