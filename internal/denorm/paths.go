// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package denorm

import (
	"database/sql"
	"errors"
	"fmt"

	"flatcat/internal/dialect"
)

// RebuildPath recomputes one category's materialized path from its live
// parent chain. It returns 1 when the stored path had drifted and was
// rewritten, 0 when it was already correct or the category is unknown.
func (e *Engine) RebuildPath(categoryID int64) (int64, error) {
	return e.rebuildPath(e.db, categoryID)
}

func (e *Engine) rebuildPath(q execer, categoryID int64) (int64, error) {
	ancestors, err := e.parentCategoryIDs(q, categoryID)
	if err != nil {
		return 0, err
	}
	want := serializePath(ancestors)

	b := dialect.NewBinder(e.dialect)
	query := fmt.Sprintf("SELECT path FROM categories WHERE id = %s", b.Bind(categoryID))
	var stored sql.NullString
	if err := q.QueryRow(query, b.Args()...).Scan(&stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("path of category %d: %w", categoryID, err)
	}

	// Roots store NULL, not the empty string.
	if stored.Valid == (want != "") && stored.String == want {
		return 0, nil
	}

	var pathArg any
	if want != "" {
		pathArg = want
	}
	b = dialect.NewBinder(e.dialect)
	query = fmt.Sprintf("UPDATE categories SET path = %s WHERE id = %s",
		b.Bind(pathArg), b.Bind(categoryID))
	res, err := q.Exec(query, b.Args()...)
	if err != nil {
		return 0, fmt.Errorf("update path of category %d: %w", categoryID, err)
	}
	return rowsAffected(res, fmt.Sprintf("update path of category %d", categoryID))
}

// RebuildCategoryPaths recomputes materialized paths for one page of
// categories ordered by id: the whole tree when rootID is 0, otherwise
// the subtree of rootID (itself included, descendants located via their
// current paths). A limit of 0 disables paging. Each page runs in one
// transaction. It returns the number of categories whose path changed.
func (e *Engine) RebuildCategoryPaths(rootID, limit, offset int64) (int64, error) {
	ids, err := e.categoryPage(rootID, limit, offset)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var changed int64
	err = e.withTx(func(q execer) error {
		for _, id := range ids {
			n, err := e.rebuildPath(q, id)
			if err != nil {
				return err
			}
			changed += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// CountCategoryPaths returns how many categories a full
// RebuildCategoryPaths pass over the same rootID would visit, for
// callers driving a count-then-page loop.
func (e *Engine) CountCategoryPaths(rootID int64) (int64, error) {
	b := dialect.NewBinder(e.dialect)
	query := "SELECT COUNT(*) FROM categories"
	if rootID > 0 {
		query += fmt.Sprintf(" WHERE id = %s OR path LIKE %s",
			b.Bind(rootID), b.Bind(likeSubtree(rootID)))
	}

	var count int64
	if err := e.db.QueryRow(query, b.Args()...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count category paths: %w", err)
	}
	return count, nil
}

func (e *Engine) categoryPage(rootID, limit, offset int64) ([]int64, error) {
	b := dialect.NewBinder(e.dialect)
	query := "SELECT id FROM categories"
	if rootID > 0 {
		query += fmt.Sprintf(" WHERE id = %s OR path LIKE %s",
			b.Bind(rootID), b.Bind(likeSubtree(rootID)))
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += e.dialect.LimitOffset(limit, offset)
	}
	return queryIDs(e.db, query, b.Args()...)
}

// subtreeCategoryIDs returns categoryID itself plus every category whose
// current path places it underneath, descendants ordered by id. The id
// is included whether or not the category still exists, since flat rows
// keyed on it may remain either way.
func (e *Engine) subtreeCategoryIDs(q execer, categoryID int64) ([]int64, error) {
	b := dialect.NewBinder(e.dialect)
	query := fmt.Sprintf("SELECT id FROM categories WHERE path LIKE %s ORDER BY id",
		b.Bind(likeSubtree(categoryID)))
	ids, err := queryIDs(q, query, b.Args()...)
	if err != nil {
		return nil, err
	}
	return append([]int64{categoryID}, ids...), nil
}

// likeSubtree renders the LIKE pattern matching every path that lists
// categoryID as an ancestor.
func likeSubtree(categoryID int64) string {
	return fmt.Sprintf("%%|%d|%%", categoryID)
}
