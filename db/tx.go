package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx mirrors the DB statement API inside a transaction so repositories work
// unchanged against either through Querier.
type Tx struct {
	sqltx  *sql.Tx
	hooks  hookChain
	errMap ErrorMapper
}

// Raw returns the underlying *sql.Tx.
func (t *Tx) Raw() *sql.Tx { return t.sqltx }

// Exec runs a statement that returns no rows.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return execWith(ctx, t.sqltx, t.hooks, t.errMap, query, args)
}

// Query runs a statement returning rows. The caller must Close the result.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	return queryWith(ctx, t.sqltx, t.hooks, t.errMap, query, args)
}

// QueryRow runs a statement expected to return at most one row.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	return queryRowWith(ctx, t.sqltx, t.hooks, t.errMap, query, args)
}

// Prepare creates a statement bound to the transaction.
func (t *Tx) Prepare(ctx context.Context, query string) (*Stmt, error) {
	s, err := t.sqltx.PrepareContext(ctx, query)
	if err != nil {
		return nil, mapWith(t.errMap, err)
	}
	return &Stmt{stmt: s, query: query, hooks: t.hooks, errMap: t.errMap}, nil
}

// TxOptions sets the isolation level and read-only flag of ExecTx.
type TxOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// ExecTx runs fn in a transaction. It commits when fn returns nil and rolls
// back when fn returns an error or panics. Nested transactions are not
// supported.
//
//	err := d.ExecTx(ctx, func(tx *db.Tx) error {
//	    listings := repo.NewListingRepo(tx)
//	    l, err := listings.Create(ctx, params)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = repo.NewPhotoRepo(tx).Add(ctx, l.ID, url)
//	    return err
//	})
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error, opts ...TxOptions) (err error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()

	var sqlOpts *sql.TxOptions
	if len(opts) > 0 {
		sqlOpts = &sql.TxOptions{Isolation: opts[0].Isolation, ReadOnly: opts[0].ReadOnly}
	}

	sqltx, err := d.sqldb.BeginTx(ctx, sqlOpts)
	if err != nil {
		return d.mapErr(err)
	}
	tx := &Tx{sqltx: sqltx, hooks: d.hooks, errMap: d.errMap}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil {
				err = fmt.Errorf("sharebnb/db: rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return d.mapErr(err)
	}
	if err = sqltx.Commit(); err != nil {
		return d.mapErr(err)
	}
	return nil
}

// Querier is the statement API shared by *DB and *Tx. Repository
// constructors accept it so the same code runs inside and outside
// transactions.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
	Prepare(ctx context.Context, query string) (*Stmt, error)
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Tx)(nil)
)
