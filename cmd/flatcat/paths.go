// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"flatcat/internal/denorm"
)

func newPathsCmd() *cobra.Command {
	var root int64
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Recompute stored category paths from parent references",
		Long: `Paths walks categories page by page and rewrites any stored path that no
longer matches the live parent chain. With --root it covers only that
category's subtree, the usual follow-up to moving a category.`,
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

			log := slog.With("run", uuid.NewString(), "op", "paths")
			changed, total, err := rebuildPaths(eng, root, s.pageSize, log)
			if err != nil {
				return system(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rewrote %d of %d category paths\n", changed, total)
			return nil
		},
	}
	cmd.Flags().Int64Var(&root, "root", 0, "only rebuild this category's subtree")
	return cmd
}

// rebuildPaths drives the paged path rebuild and reports per-page progress.
func rebuildPaths(eng *denorm.Engine, root, pageSize int64, log *slog.Logger) (changed, total int64, err error) {
	total, err = eng.CountCategoryPaths(root)
	if err != nil {
		return 0, 0, err
	}
	log.Info("path rebuild starting", "categories", total, "root", root, "page_size", pageSize)

	for offset := int64(0); offset < total; offset += pageSize {
		n, err := eng.RebuildCategoryPaths(root, pageSize, offset)
		if err != nil {
			return changed, total, err
		}
		changed += n
		log.Debug("page done", "offset", offset, "rewritten", n)
	}
	log.Info("path rebuild finished", "rewritten", changed)
	return changed, total, nil
}
