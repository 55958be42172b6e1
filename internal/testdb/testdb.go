// Package testdb opens in-memory SQLite databases carrying a SQLite rendition
// of the marketplace schema, for repository and handler tests.
package testdb

import (
	"context"
	"testing"

	"github.com/Skryldev/sharebnb/db"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT     NOT NULL UNIQUE,
		password_hash TEXT     NOT NULL,
		first_name    TEXT     NOT NULL DEFAULT '',
		last_name     TEXT     NOT NULL DEFAULT '',
		email         TEXT     NOT NULL,
		is_admin      BOOLEAN  NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL
	);
	CREATE TABLE listings (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT    NOT NULL,
		description TEXT    NOT NULL DEFAULT '',
		price       INTEGER NOT NULL CHECK (price >= 0),
		street      TEXT    NOT NULL DEFAULT '',
		city        TEXT    NOT NULL DEFAULT '',
		state       TEXT    NOT NULL DEFAULT '',
		zip         TEXT    NOT NULL DEFAULT '',
		genre       TEXT    NOT NULL DEFAULT '',
		owner_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE
	);
	CREATE TABLE photos (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		listing_id INTEGER  NOT NULL REFERENCES listings (id) ON DELETE CASCADE,
		photo_url  TEXT     NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE bookings (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id   INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		renter_id  INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		listing_id INTEGER NOT NULL REFERENCES listings (id) ON DELETE CASCADE
	);
	CREATE TABLE bookable_days (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		day        DATE    NOT NULL,
		available  BOOLEAN NOT NULL DEFAULT 1,
		listing_id INTEGER NOT NULL REFERENCES listings (id) ON DELETE CASCADE,
		booking_id INTEGER REFERENCES bookings (id) ON DELETE SET NULL
	);
	CREATE TABLE conversations (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		renter_id  INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		owner_id   INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		listing_id INTEGER NOT NULL REFERENCES listings (id) ON DELETE CASCADE
	);
	CREATE TABLE messages (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL REFERENCES conversations (id) ON DELETE CASCADE,
		sender_id       INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		body            TEXT    NOT NULL
	)`

// Open returns a fresh database with foreign keys enforced. It is closed when
// the test ends.
//
// The pool is limited to one connection because every :memory: connection is
// its own database. Callers must close result sets before issuing the next
// statement.
func Open(t testing.TB, hooks ...db.Hook) *db.DB {
	t.Helper()
	dsn, err := db.DSNFor("sqlite3", db.DriverOptions{
		Database: ":memory:",
		Extra:    map[string]string{"_foreign_keys": "on"},
	})
	if err != nil {
		t.Fatalf("testdb: dsn: %v", err)
	}
	d, err := db.Open(db.Config{
		DSN:          dsn,
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
		Hooks:        hooks,
	})
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if _, err := d.Exec(context.Background(), schema); err != nil {
		t.Fatalf("testdb: schema: %v", err)
	}
	return d
}
