package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flatcat/internal/database"
	"flatcat/internal/dialect"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load the demo catalog into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			d, err := dialect.ForDriver(s.driver)
			if err != nil {
				return err
			}
			db, err := database.Connect(s.driver, s.dsn)
			if err != nil {
				return system(fmt.Errorf("connect database: %w", err))
			}
			defer db.Close()

			if err := database.Migrate(db, s.driver); err != nil {
				return system(fmt.Errorf("migrate: %w", err))
			}
			if err := database.Seed(db, d); err != nil {
				return system(fmt.Errorf("seed: %w", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Demo catalog ready")
			return nil
		},
	}
}
