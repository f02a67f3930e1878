// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package denorm

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParentCategoryIDs walks the parent chain of a category and returns the
// ids of all ancestors, nearest parent first. A root or unknown id
// yields an empty result. This is the ground truth the materialized
// path column must match.
func (e *Engine) ParentCategoryIDs(categoryID int64) ([]int64, error) {
	return e.parentCategoryIDs(e.db, categoryID)
}

func (e *Engine) parentCategoryIDs(q execer, categoryID int64) ([]int64, error) {
	query := fmt.Sprintf("SELECT parent_id FROM categories WHERE id = %s", e.dialect.Placeholder(1))

	var (
		ids     []int64
		seen    = map[int64]bool{categoryID: true}
		current = categoryID
	)
	for {
		if len(ids) >= e.maxDepth {
			return nil, fmt.Errorf("category %d: %w", categoryID, ErrDepthExceeded)
		}

		var parent sql.NullInt64
		err := q.QueryRow(query, current).Scan(&parent)
		if errors.Is(err, sql.ErrNoRows) {
			// The chain ends at a node that no longer exists.
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parent of category %d: %w", current, err)
		}
		if !parent.Valid {
			return ids, nil
		}

		next := parent.Int64
		if seen[next] {
			return nil, fmt.Errorf("category %d: chain revisits %d: %w", categoryID, next, ErrCyclicTree)
		}
		seen[next] = true
		ids = append(ids, next)
		current = next
	}
}

// ancestorResolver memoizes parent chain walks for the duration of one
// operation. The engine holds no cache beyond that.
func (e *Engine) ancestorResolver(q execer) func(int64) ([]int64, error) {
	cache := make(map[int64][]int64)
	return func(categoryID int64) ([]int64, error) {
		if got, ok := cache[categoryID]; ok {
			return got, nil
		}
		ids, err := e.parentCategoryIDs(q, categoryID)
		if err != nil {
			return nil, err
		}
		cache[categoryID] = ids
		return ids, nil
	}
}

// serializePath renders an ancestor chain in storage form: "|2|1|" for
// nearest parent 2 under root 1, "" when there are no ancestors.
func serializePath(ancestors []int64) string {
	if len(ancestors) == 0 {
		return ""
	}
	parts := make([]string, len(ancestors))
	for i, id := range ancestors {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "|" + strings.Join(parts, "|") + "|"
}
