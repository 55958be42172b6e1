// Package repo holds the hand-written SQL of every table. Repositories take a
// db.Querier so the same code runs on the pool or inside db.ExecTx.
package repo

import (
	"database/sql"

	"github.com/Skryldev/sharebnb/db"
)

// scanner is satisfied by *db.Row and *db.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// expectAffected turns a write that touched no rows into db.ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}
