package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flatcat/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
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
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}
