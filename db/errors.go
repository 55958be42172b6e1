package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("sharebnb/db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("sharebnb/db: duplicate key")

	// ErrForeignKeyViolation is returned when a referenced row is missing or
	// a referencing row still exists.
	ErrForeignKeyViolation = errors.New("sharebnb/db: foreign key violation")

	ErrDeadlock = errors.New("sharebnb/db: deadlock detected")

	// ErrTimeout covers statement timeouts and cancelled contexts.
	ErrTimeout = errors.New("sharebnb/db: query timeout")

	ErrCheckViolation = errors.New("sharebnb/db: check constraint violation")

	ErrConnectionFailed = errors.New("sharebnb/db: connection failed")
)

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsDeadlock(err error) bool            { return errors.Is(err, ErrDeadlock) }
func IsTimeout(err error) bool             { return errors.Is(err, ErrTimeout) }
func IsCheckViolation(err error) bool      { return errors.Is(err, ErrCheckViolation) }
func IsConnectionFailed(err error) bool    { return errors.Is(err, ErrConnectionFailed) }

// DBError pairs a sentinel with the driver error it was derived from, so
// callers can test with errors.Is and still reach the cause via errors.As.
type DBError struct {
	Sentinel error
	Cause    error
	// Constraint is the violated constraint name when the driver reports it.
	Constraint string
}

func (e *DBError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s on %s (cause: %v)", e.Sentinel, e.Constraint, e.Cause)
	}
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

// ErrorMapper translates driver errors into the sentinels above. Errors it
// does not recognise are returned unchanged.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc adapts a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles database/sql and context errors plus the
// PostgreSQL (lib/pq, pgx) and SQLite drivers.
func DefaultErrorMapper() ErrorMapper { return ErrorMapperFunc(defaultMap) }

func defaultMap(err error) error {
	if err == nil {
		return nil
	}
	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}
	if mapped := mapPostgresError(err); mapped != nil {
		return mapped
	}
	if mapped := mapSQLiteError(err); mapped != nil {
		return mapped
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL
// ─────────────────────────────────────────────────────────────────────────────

func mapPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapByPGCode(pgErr.Code, pgErr.ConstraintName, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return mapByPGCode(string(pqErr.Code), pqErr.Constraint, err)
	}
	return mapByPGCode(pgCodeFromString(err.Error()), "", err)
}

// pgCodeFromString extracts the code from messages shaped like
// "ERROR: ... (SQLSTATE 23505)" when the error type was lost on the way.
func pgCodeFromString(s string) string {
	const marker = "(SQLSTATE "
	idx := strings.LastIndex(s, marker)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(marker):]
	if end := strings.Index(rest, ")"); end >= 0 {
		return rest[:end]
	}
	return rest
}

// https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapByPGCode(code, constraint string, cause error) error {
	var sentinel error
	switch code {
	case "23505":
		sentinel = ErrDuplicateKey
	case "23503":
		sentinel = ErrForeignKeyViolation
	case "23514":
		sentinel = ErrCheckViolation
	case "40P01":
		sentinel = ErrDeadlock
	case "57014":
		sentinel = ErrTimeout
	case "08000", "08001", "08003", "08004", "08006", "08007", "08P01":
		sentinel = ErrConnectionFailed
	default:
		return nil
	}
	return &DBError{Sentinel: sentinel, Cause: cause, Constraint: constraint}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (go-sqlite3 reports constraint failures only in the message)
// ─────────────────────────────────────────────────────────────────────────────

func mapSQLiteError(err error) error {
	s := err.Error()
	switch {
	case strings.Contains(s, "UNIQUE constraint failed"):
		return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
	case strings.Contains(s, "FOREIGN KEY constraint failed"):
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: err}
	case strings.Contains(s, "CHECK constraint failed"):
		return &DBError{Sentinel: ErrCheckViolation, Cause: err}
	case strings.Contains(s, "database is locked"):
		return &DBError{Sentinel: ErrDeadlock, Cause: err}
	}
	return nil
}

// ChainMapper tries each mapper in order and returns the first result that
// differs from the input. Errors that are already mapped pass through.
func ChainMapper(mappers ...ErrorMapper) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		var dbe *DBError
		if errors.As(err, &dbe) {
			return err
		}
		for _, m := range mappers {
			if mapped := m.Map(err); mapped != err {
				return mapped
			}
		}
		return err
	})
}
