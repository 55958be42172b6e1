package db

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
)

// Driver describes a database/sql driver the toolkit knows how to talk to:
// how to build its DSN from structured options and how to read its errors.
type Driver interface {
	// Name is the database/sql driver name, e.g. "postgres".
	Name() string

	// DSN builds a data-source name from structured options.
	DSN(opts DriverOptions) (string, error)

	// ErrorMapper translates this driver's errors into the package sentinels.
	ErrorMapper() ErrorMapper
}

// DriverOptions holds connection parameters in driver-neutral form.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// Extra holds driver-specific query parameters.
	Extra map[string]string
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver adds d to the registry, replacing any driver of the same name.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d.Name()] = d
}

// LookupDriver returns the registered driver called name.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("sharebnb/db: driver %q not registered", name)
	}
	return d, nil
}

// DSNFor builds a DSN for the registered driver called name.
func DSNFor(name string, opts DriverOptions) (string, error) {
	drv, err := LookupDriver(name)
	if err != nil {
		return "", err
	}
	return drv.DSN(opts)
}

func init() {
	RegisterDriver(postgresDriver{name: "postgres"})
	RegisterDriver(postgresDriver{name: "pgx"})
	RegisterDriver(sqliteDriver{})
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq as "postgres", pgx stdlib as "pgx")
// ─────────────────────────────────────────────────────────────────────────────

type postgresDriver struct{ name string }

func (d postgresDriver) Name() string { return d.name }

// DSN returns a postgres:// URL. Both lib/pq and pgx accept it.
func (postgresDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("postgres driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, o.Extra[k])
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.User, o.Password),
		Host:     o.Host + ":" + strconv.Itoa(port),
		Path:     "/" + o.Database,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

func (postgresDriver) ErrorMapper() ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if mapped := mapPostgresError(err); mapped != nil {
			return mapped
		}
		return err
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3, used by the test suites)
// ─────────────────────────────────────────────────────────────────────────────

type sqliteDriver struct{}

func (sqliteDriver) Name() string { return "sqlite3" }

func (sqliteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	if len(o.Extra) == 0 {
		return o.Database, nil
	}
	q := url.Values{}
	for k, v := range o.Extra {
		q.Set(k, v)
	}
	return o.Database + "?" + q.Encode(), nil
}

func (sqliteDriver) ErrorMapper() ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if mapped := mapSQLiteError(err); mapped != nil {
			return mapped
		}
		return err
	})
}
