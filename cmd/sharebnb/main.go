// Command sharebnb runs the marketplace API and its maintenance tasks.
//
//	sharebnb serve
//	sharebnb migrate up|down [N]|version|force V
//	sharebnb seed --count 10
//
// Settings come from an optional --config file and SHAREBNB_* environment
// variables, e.g. SHAREBNB_DATABASE_URL and SHAREBNB_AUTH_JWT_SECRET.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skryldev/sharebnb/config"
	"github.com/Skryldev/sharebnb/db"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "sharebnb",
	Short:         "ShareBnB marketplace API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json, toml or .env)")
	rootCmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sharebnb:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and installs the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(config.EnvPrefix, configFile)
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openDB opens the pool, retrying while the database is still starting.
func openDB(ctx context.Context, c config.DatabaseConfig, hooks ...db.Hook) (*db.DB, error) {
	var d *db.DB
	err := db.WithRetry(ctx, db.RetryConfig{
		MaxAttempts: 5,
		Delay:       2 * time.Second,
		RetryOn:     func(error) bool { return true },
	}, func() error {
		var err error
		d, err = db.Open(db.Config{
			DSN:             c.URL,
			DriverName:      c.Driver,
			MaxOpenConns:    c.MaxOpenConns,
			MaxIdleConns:    c.MaxIdleConns,
			ConnMaxLifetime: c.ConnMaxLifetime,
			DefaultTimeout:  c.DefaultTimeout,
			Hooks:           hooks,
		})
		if err != nil {
			slog.WarnContext(ctx, "database not ready", "error", err)
		}
		return err
	})
	return d, err
}
