// Package config loads service settings from an optional file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key: SHAREBNB_DATABASE_URL
// sets database.url.
const EnvPrefix = "SHAREBNB"

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit is the sustained per-IP request rate on /auth, per second.
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateBurst      int     `mapstructure:"rate_burst"`
	MaxUploadBytes int64   `mapstructure:"max_upload_bytes"`
}

type DatabaseConfig struct {
	// Driver is "postgres" (lib/pq) or "pgx".
	Driver             string        `mapstructure:"driver"`
	URL                string        `mapstructure:"url"`
	MaxOpenConns       int           `mapstructure:"max_open_conns"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime"`
	DefaultTimeout     time.Duration `mapstructure:"default_timeout"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
	LogArgs            bool          `mapstructure:"log_args"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// StorageConfig leaves uploads disabled while Endpoint is empty.
type StorageConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"server.addr":                   ":3001",
	"server.cors_origin":            "*",
	"server.shutdown_timeout":       "15s",
	"server.rate_limit":             5.0,
	"server.rate_burst":             10,
	"server.max_upload_bytes":       10 << 20,
	"database.driver":               "postgres",
	"database.url":                  "",
	"database.max_open_conns":       25,
	"database.max_idle_conns":       10,
	"database.conn_max_lifetime":    "5m",
	"database.default_timeout":      "10s",
	"database.slow_query_threshold": "200ms",
	"database.log_args":             false,
	"auth.jwt_secret":               "",
	"auth.token_ttl":                "24h",
	"auth.bcrypt_cost":              12,
	"storage.endpoint":              "",
	"storage.access_key_id":         "",
	"storage.secret_access_key":     "",
	"storage.bucket":                "sharebnb-images",
	"storage.region":                "",
	"storage.use_ssl":               true,
	"storage.presign_expiry":        "24h",
	"log.level":                     "info",
	"log.format":                    "json",
}

// Load reads file (any format viper knows; empty skips it), overlays
// <prefix>_* environment variables and validates the result.
func Load(prefix, file string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be postgres or pgx", c.Database.Driver))
	}
	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 characters"))
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		errs = append(errs, errors.New("server.rate_limit and server.rate_burst must be positive"))
	}
	if c.Storage.Endpoint != "" && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required when storage.endpoint is set"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds the process logger described by c.
func NewLogger(c LogConfig, w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return l, nil
}
