// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Run the full repair sequence",
		Long: `Repair restores the whole derived state in one pass: it deletes orphaned
direct assignments, recomputes every stored category path, wipes the flat
table, and rebuilds it from scratch. The order matters: paths must be
correct before the rebuild reads them.`,
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

			log := slog.With("run", uuid.NewString(), "op", "repair")

			orphans, err := eng.RemoveOrphanedAssignments()
			if err != nil {
				return system(fmt.Errorf("orphan cleanup: %w", err))
			}
			log.Info("orphan cleanup done", "removed", orphans)

			changed, totalCats, err := rebuildPaths(eng, 0, s.pageSize, log)
			if err != nil {
				return system(fmt.Errorf("path rebuild: %w", err))
			}

			wiped, err := eng.RemoveAllAssignments()
			if err != nil {
				return system(fmt.Errorf("wipe: %w", err))
			}
			log.Info("flat table wiped", "removed", wiped)

			inserted, totalAssignments, err := rebuildFlat(cmd.Context(), eng, s.pageSize, 0, nil, log)
			if err != nil {
				return system(fmt.Errorf("flat rebuild: %w", err))
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Repair complete: %d orphans removed, %d of %d paths rewritten, %d flat rows rebuilt from %d assignments\n",
				orphans, changed, totalCats, inserted, totalAssignments)
			return nil
		},
	}
}
