// Package db wraps database/sql with context-aware helpers, statement hooks,
// driver-neutral error mapping and transaction management. All SQL stays in
// the repositories; this package never generates statements.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config describes the connection pool.
type Config struct {
	// DSN is the driver-specific data-source name or URL.
	DSN string

	// DriverName is the database/sql driver: "postgres", "pgx" or "sqlite3".
	DriverName string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// DefaultTimeout bounds statements whose context has no deadline.
	// Zero disables it.
	DefaultTimeout time.Duration

	// Hooks run around every statement. Nil entries are skipped.
	Hooks []Hook
}

// ─────────────────────────────────────────────────────────────────────────────
// DB
// ─────────────────────────────────────────────────────────────────────────────

// DB is a concurrency-safe handle over a *sql.DB connection pool.
// Repositories receive it (or a *Tx) through the Querier interface.
type DB struct {
	sqldb  *sql.DB
	cfg    Config
	hooks  hookChain
	errMap ErrorMapper
}

// Open opens the pool described by cfg and pings it once.
// The error mapper is chosen from the registered driver adapters.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sharebnb/db: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("sharebnb/db: DriverName must not be empty")
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sharebnb/db: open %s: %w", cfg.DriverName, err)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	errMap := DefaultErrorMapper()
	if drv, err := LookupDriver(cfg.DriverName); err == nil {
		errMap = ChainMapper(drv.ErrorMapper(), errMap)
	}

	d := &DB{
		sqldb:  sqldb,
		cfg:    cfg,
		hooks:  newHookChain(cfg.Hooks),
		errMap: errMap,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("sharebnb/db: ping: %w", d.mapErr(err))
	}
	return d, nil
}

// Raw exposes the underlying pool, e.g. for migration drivers.
func (d *DB) Raw() *sql.DB { return d.sqldb }

// SetErrorMapper replaces the error mapper.
func (d *DB) SetErrorMapper(m ErrorMapper) { d.errMap = m }

// Close closes every pooled connection.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// Stats returns pool statistics.
func (d *DB) Stats() sql.DBStats { return d.sqldb.Stats() }

// ─────────────────────────────────────────────────────────────────────────────
// Statement execution
// ─────────────────────────────────────────────────────────────────────────────

// Exec runs a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	return execWith(ctx, d.sqldb, d.hooks, d.errMap, query, args)
}

// Query runs a statement returning rows. The caller must Close the result.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	rows, err := queryWith(ctx, d.sqldb, d.hooks, d.errMap, query, args)
	if err != nil {
		cancel()
		return nil, err
	}
	rows.cancel = cancel
	return rows, nil
}

// QueryRow runs a statement expected to return at most one row.
// Scan reports ErrNotFound when nothing matched.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	ctx, cancel := d.withDefaultTimeout(ctx)
	row := queryRowWith(ctx, d.sqldb, d.hooks, d.errMap, query, args)
	row.cancel = cancel
	return row
}

// Prepare creates a prepared statement. The caller must Close it.
func (d *DB) Prepare(ctx context.Context, query string) (*Stmt, error) {
	s, err := d.sqldb.PrepareContext(ctx, query)
	if err != nil {
		return nil, d.mapErr(err)
	}
	return &Stmt{stmt: s, query: query, hooks: d.hooks, errMap: d.errMap}, nil
}

// conn is the method set shared by *sql.DB and *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execWith(ctx context.Context, c conn, hooks hookChain, m ErrorMapper, query string, args []any) (sql.Result, error) {
	start := time.Now()
	hooks.Before(ctx, query, args)
	res, err := c.ExecContext(ctx, query, args...)
	err = mapWith(m, err)
	hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

func queryWith(ctx context.Context, c conn, hooks hookChain, m ErrorMapper, query string, args []any) (*Rows, error) {
	start := time.Now()
	hooks.Before(ctx, query, args)
	rows, err := c.QueryContext(ctx, query, args...)
	err = mapWith(m, err)
	hooks.After(ctx, query, args, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &Rows{Rows: rows, errMap: m}, nil
}

func queryRowWith(ctx context.Context, c conn, hooks hookChain, m ErrorMapper, query string, args []any) *Row {
	start := time.Now()
	hooks.Before(ctx, query, args)
	raw := c.QueryRowContext(ctx, query, args...)
	// Driver errors surface on Scan; report the early ones here too so hooks
	// see failed statements.
	hooks.After(ctx, query, args, time.Since(start), mapWith(m, raw.Err()))
	return &Row{raw: raw, errMap: m}
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch helpers
// ─────────────────────────────────────────────────────────────────────────────

// BatchExec runs query once per item inside a single transaction using one
// prepared statement. Either every row is written or none is.
//
//	err := db.BatchExec(d, ctx, "INSERT INTO photos (listing_id, photo_url) VALUES ($1, $2)", photos,
//	    func(p models.Photo) []any { return []any{p.ListingID, p.URL} })
func BatchExec[T any](d *DB, ctx context.Context, query string, items []T, argsFn func(T) []any) error {
	return d.ExecTx(ctx, func(tx *Tx) error {
		return BatchExecTx(tx, ctx, query, items, argsFn)
	})
}

// BatchExecTx is BatchExec inside an already open transaction.
func BatchExecTx[T any](tx *Tx, ctx context.Context, query string, items []T, argsFn func(T) []any) error {
	if len(items) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(ctx, argsFn(item)...); err != nil {
			return err
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (d *DB) withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.DefaultTimeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.cfg.DefaultTimeout)
}

func (d *DB) mapErr(err error) error { return mapWith(d.errMap, err) }

func mapWith(m ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	return m.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row / Rows / Stmt
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps Scan errors.
type Row struct {
	raw    *sql.Row
	errMap ErrorMapper
	cancel context.CancelFunc
}

// Scan copies the matched row into dest. ErrNotFound means no row matched.
func (r *Row) Scan(dest ...any) error {
	if r.cancel != nil {
		defer r.cancel()
	}
	return mapWith(r.errMap, r.raw.Scan(dest...))
}

// Rows wraps *sql.Rows; Err is mapped and Close releases the statement timeout.
type Rows struct {
	*sql.Rows
	errMap ErrorMapper
	cancel context.CancelFunc
}

// Err returns the mapped iteration error, if any.
func (r *Rows) Err() error { return mapWith(r.errMap, r.Rows.Err()) }

// Close closes the result set.
func (r *Rows) Close() error {
	err := r.Rows.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

// Stmt wraps a prepared *sql.Stmt with hook dispatch and error mapping.
type Stmt struct {
	stmt   *sql.Stmt
	query  string
	hooks  hookChain
	errMap ErrorMapper
}

// Exec runs the prepared statement.
func (s *Stmt) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	res, err := s.stmt.ExecContext(ctx, args...)
	err = mapWith(s.errMap, err)
	s.hooks.After(ctx, s.query, args, time.Since(start), err)
	return res, err
}

// QueryRow runs the prepared statement expecting one row.
func (s *Stmt) QueryRow(ctx context.Context, args ...any) *Row {
	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	raw := s.stmt.QueryRowContext(ctx, args...)
	s.hooks.After(ctx, s.query, args, time.Since(start), mapWith(s.errMap, raw.Err()))
	return &Row{raw: raw, errMap: s.errMap}
}

// Close releases the prepared statement.
func (s *Stmt) Close() error { return s.stmt.Close() }

// ─────────────────────────────────────────────────────────────────────────────
// WithRetry
// ─────────────────────────────────────────────────────────────────────────────

// RetryConfig controls WithRetry.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	// RetryOn selects retryable errors. Nil retries ErrDeadlock,
	// ErrTimeout and ErrConnectionFailed.
	RetryOn func(error) bool
}

// WithRetry calls fn until it succeeds, returns a non-retryable error, the
// attempts run out, or ctx is done. fn must be safe to repeat.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	retryOn := cfg.RetryOn
	if retryOn == nil {
		retryOn = func(err error) bool {
			return IsDeadlock(err) || IsTimeout(err) || IsConnectionFailed(err)
		}
	}
	attempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
		lastErr = fn()
		if lastErr == nil || !retryOn(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("sharebnb/db: giving up after %d attempts: %w", attempts, lastErr)
}
