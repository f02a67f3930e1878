package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wipe",
		Short: "Empty the denormalized table",
		Long: `Wipe clears article_categories_flat entirely. Direct assignments are
untouched; run rebuild afterwards to repopulate.`,
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

			removed, err := eng.RemoveAllAssignments()
			if err != nil {
				return system(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d flat rows\n", removed)
			return nil
		},
	}
}
