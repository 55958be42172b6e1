package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skryldev/sharebnb/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded schema migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRunner(cmd, func(r *migrations.Runner) error { return r.Up() })
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("down: invalid steps argument %q", args[0])
					}
					steps = n
				}
				return withRunner(cmd, func(r *migrations.Runner) error { return r.Down(steps) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRunner(cmd, func(r *migrations.Runner) error {
					v, dirty, err := r.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version: %d  dirty: %v\n", v, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force V",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("force: invalid version %q", args[0])
				}
				return withRunner(cmd, func(r *migrations.Runner) error { return r.Force(v) })
			},
		},
	)
	return cmd
}

func withRunner(cmd *cobra.Command, fn func(*migrations.Runner) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	database, err := openDB(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	r, err := migrations.New(database.Raw(), logger)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := fn(r); err != nil {
		return err
	}
	logger.InfoContext(cmd.Context(), "migrations: "+cmd.Name()+" completed")
	return nil
}
