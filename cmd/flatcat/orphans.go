package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOrphansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "Delete direct assignments whose article or category is gone",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			eng, db, err := openEngine(s)
			if err != nil {
				return err
			}
			defer db.Close()

			removed, err := eng.RemoveOrphanedAssignments()
			if err != nil {
				return system(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned assignments\n", removed)
			return nil
		},
	}
}
