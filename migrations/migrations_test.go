package migrations_test

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/Skryldev/sharebnb/migrations"
	"github.com/google/go-cmp/cmp"
)

func TestSource_VersionsAreContiguous(t *testing.T) {
	src, err := migrations.Source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	versions := []uint{v}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			t.Fatalf("next(%d): %v", v, err)
		}
		versions = append(versions, next)
		v = next
	}

	if diff := cmp.Diff([]uint{1, 2, 3, 4}, versions); diff != "" {
		t.Fatalf("versions mismatch (-want +got):\n%s", diff)
	}
}

func TestSource_EveryTableCreatedAndDropped(t *testing.T) {
	src, err := migrations.Source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	defer src.Close()

	var up, down strings.Builder
	for v := uint(1); v <= 4; v++ {
		for _, read := range []struct {
			fn  func(uint) (io.ReadCloser, string, error)
			dst *strings.Builder
		}{{src.ReadUp, &up}, {src.ReadDown, &down}} {
			r, _, err := read.fn(v)
			if err != nil {
				t.Fatalf("read %d: %v", v, err)
			}
			b, err := io.ReadAll(r)
			_ = r.Close()
			if err != nil {
				t.Fatalf("read %d: %v", v, err)
			}
			read.dst.Write(b)
		}
	}

	for _, table := range []string{"users", "listings", "photos", "bookings", "bookable_days", "conversations", "messages"} {
		if !strings.Contains(up.String(), "CREATE TABLE "+table+" (") {
			t.Errorf("no CREATE TABLE for %s", table)
		}
		if !strings.Contains(down.String(), "DROP TABLE IF EXISTS "+table+";") {
			t.Errorf("no DROP TABLE for %s", table)
		}
	}
}
