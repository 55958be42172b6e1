package seed_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/internal/seed"
	"github.com/Skryldev/sharebnb/internal/testdb"
	"github.com/Skryldev/sharebnb/repo"
)

func countRows(t *testing.T, q interface {
	Scan(dest ...any) error
}) int {
	t.Helper()
	var n int
	if err := q.Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestRun_FillsEveryTable(t *testing.T) {
	ctx := context.Background()
	d := testdb.Open(t)

	got, err := seed.Run(ctx, d, seed.Options{
		Count:  7,
		Hasher: auth.NewPasswordHasher(bcrypt.MinCost),
		Rand:   rand.New(rand.NewPCG(1, 2)),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := seed.Counts{Users: 7, Listings: 7, Photos: 7, Bookings: 7, BookableDays: 7, Conversations: 7, Messages: 7}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}

	for table, n := range map[string]int{
		"users": 7, "listings": 7, "photos": 7, "bookings": 7,
		"bookable_days": 7, "conversations": 7, "messages": 7,
	} {
		if c := countRows(t, d.QueryRow(ctx, "SELECT COUNT(*) FROM "+table)); c != n {
			t.Errorf("%s: %d rows, want %d", table, c, n)
		}
	}

	u, err := repo.NewUserRepo(d).GetByUsername(ctx, "username0")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if err := auth.NewPasswordHasher(bcrypt.MinCost).Check(u.PasswordHash, seed.DefaultPassword); err != nil {
		t.Fatalf("seeded password does not verify: %v", err)
	}
}

func TestRun_RepeatedRunsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	d := testdb.Open(t)
	opts := seed.Options{Count: 3, Hasher: auth.NewPasswordHasher(bcrypt.MinCost)}

	for i := 0; i < 2; i++ {
		if _, err := seed.Run(ctx, d, opts); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	n, err := repo.NewUserRepo(d).Count(ctx)
	if err != nil || n != 6 {
		t.Fatalf("Count = %d (%v), want 6", n, err)
	}
	if _, err := repo.NewUserRepo(d).GetByUsername(ctx, "username5"); err != nil {
		t.Fatalf("second run usernames: %v", err)
	}
}

func TestRun_RejectsNonPositiveCount(t *testing.T) {
	d := testdb.Open(t)
	if _, err := seed.Run(context.Background(), d, seed.Options{Count: 0}); err == nil {
		t.Fatal("expected error for zero count")
	}
}
