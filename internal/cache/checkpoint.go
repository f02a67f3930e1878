// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// checkpoint.go provides a Valkey-backed checkpoint store for batch rebuilds.
// A full rebuild over a large catalog pages through millions of assignments;
// the store remembers the next page offset per operation so an interrupted
// run can resume instead of starting over.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// checkpointKeyPrefix is the Valkey key prefix for rebuild checkpoints.
	checkpointKeyPrefix = "rebuild:"

	// DefaultCheckpointTTL is how long a checkpoint survives without updates.
	DefaultCheckpointTTL = 24 * time.Hour
)

// CheckpointStore persists rebuild progress in Valkey. All operations are
// best-effort: a checkpoint failure never fails the rebuild itself, the
// worst case is redoing pages that are idempotent anyway.
type CheckpointStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCheckpointStore creates a checkpoint store backed by the given Valkey client.
func NewCheckpointStore(client *redis.Client, ttl time.Duration) *CheckpointStore {
	if ttl == 0 {
		ttl = DefaultCheckpointTTL
	}
	return &CheckpointStore{client: client, ttl: ttl}
}

// Get retrieves the saved offset for an operation. Returns 0 and false on miss.
func (cs *CheckpointStore) Get(ctx context.Context, op string) (int64, bool) {
	val, err := cs.client.Get(ctx, checkpointKeyPrefix+op).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		slog.Warn("checkpoint get error", "op", op, "error", err)
		return 0, false
	}
	offset, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		slog.Warn("checkpoint value malformed", "op", op, "value", val)
		return 0, false
	}
	slog.Debug("checkpoint found", "op", op, "offset", offset)
	return offset, true
}

// Set stores the next offset for an operation with the configured TTL.
func (cs *CheckpointStore) Set(ctx context.Context, op string, offset int64) {
	key := checkpointKeyPrefix + op
	if err := cs.client.Set(ctx, key, strconv.FormatInt(offset, 10), cs.ttl).Err(); err != nil {
		slog.Warn("checkpoint set error", "op", op, "error", err)
	}
}

// Clear removes the checkpoint for a single operation, typically after the
// run finishes cleanly.
func (cs *CheckpointStore) Clear(ctx context.Context, op string) {
	if err := cs.client.Del(ctx, checkpointKeyPrefix+op).Err(); err != nil {
		slog.Warn("checkpoint clear error", "op", op, "error", err)
	}
	slog.Debug("checkpoint cleared", "op", op)
}

// ClearAll removes every stored checkpoint by scanning for the prefix.
// Used before a forced full rebuild, since stale offsets from a prior run
// would skip pages.
func (cs *CheckpointStore) ClearAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cs.client.Scan(ctx, cursor, checkpointKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("checkpoint scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cs.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("checkpoint bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("checkpoints cleared", "deleted", deleted)
	}
}
