// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"flatcat/internal/cache"
	"flatcat/internal/denorm"
)

// checkpointOp keys the rebuild's saved offset in the checkpoint store.
const checkpointOp = "flat"

func newRebuildCmd() *cobra.Command {
	var resume bool
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Insert missing denormalized rows for every assignment",
		Long: `Rebuild pages through all direct assignments and inserts every flat row
the category tree implies but the table is missing. Existing rows are never
touched, so the command is safe to re-run.

Progress is checkpointed in Valkey after each page. With --resume the run
continues from the last saved offset instead of page zero.`,
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

			ctx := cmd.Context()
			log := slog.With("run", uuid.NewString(), "op", "rebuild")

			checkpoints, closeValkey, err := connectCheckpoints(s)
			if err != nil {
				if resume {
					return system(fmt.Errorf("resume needs the checkpoint store: %w", err))
				}
				log.Warn("checkpoint store unavailable, running without resume support", "error", err)
			} else {
				defer closeValkey()
			}

			start := int64(0)
			if checkpoints != nil {
				if resume {
					if offset, ok := checkpoints.Get(ctx, checkpointOp); ok {
						start = offset
						log.Info("resuming from checkpoint", "offset", start)
					}
				} else {
					checkpoints.Clear(ctx, checkpointOp)
				}
			}

			inserted, total, err := rebuildFlat(ctx, eng, s.pageSize, start, checkpoints, log)
			if err != nil {
				return system(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d flat rows across %d assignments\n", inserted, total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "continue from the last checkpoint")
	return cmd
}

// connectCheckpoints dials Valkey and wraps it in a checkpoint store.
func connectCheckpoints(s *settings) (*cache.CheckpointStore, func(), error) {
	client, err := cache.ConnectValkey(s.valkeyHost, s.valkeyPort, s.valkeyPassword)
	if err != nil {
		return nil, nil, err
	}
	store := cache.NewCheckpointStore(client, cache.DefaultCheckpointTTL)
	return store, func() { client.Close() }, nil
}

// rebuildFlat drives the paged closure rebuild from the given offset,
// checkpointing after every page when a store is available.
func rebuildFlat(ctx context.Context, eng *denorm.Engine, pageSize, start int64, checkpoints *cache.CheckpointStore, log *slog.Logger) (inserted, total int64, err error) {
	total, err = eng.CountAssignments()
	if err != nil {
		return 0, 0, err
	}
	log.Info("flat rebuild starting", "assignments", total, "offset", start, "page_size", pageSize)

	for offset := start; offset < total; offset += pageSize {
		n, err := eng.RebuildAllAssignments(pageSize, offset)
		if err != nil {
			return inserted, total, err
		}
		inserted += n
		if checkpoints != nil {
			checkpoints.Set(ctx, checkpointOp, offset+pageSize)
		}
		log.Debug("page done", "offset", offset, "inserted", n)
	}
	if checkpoints != nil {
		checkpoints.Clear(ctx, checkpointOp)
	}
	log.Info("flat rebuild finished", "inserted", inserted)
	return inserted, total, nil
}
