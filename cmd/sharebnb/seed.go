package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/internal/seed"
)

func seedCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill every table with random rows in one transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			database, err := openDB(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close()

			counts, err := seed.Run(cmd.Context(), database, seed.Options{
				Count:  count,
				Hasher: auth.NewPasswordHasher(cfg.Auth.BcryptCost),
				Logger: logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows per table; every user's password is %q\n",
				counts.Users, seed.DefaultPassword)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "rows to insert into each table")
	return cmd
}
