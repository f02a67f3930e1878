// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package denorm

import (
	"fmt"
	"strings"

	"flatcat/internal/dialect"
)

// ancestorMatch is the join condition tying the directly assigned
// category (alias "assigned") to each of its ancestor-or-self categories
// (alias "anc"): anc either is the assigned category, or appears in the
// assigned category's materialized path.
func (e *Engine) ancestorMatch() string {
	return "anc.id = assigned.id OR assigned.path LIKE " +
		e.dialect.Concat("'%|'", "CAST(anc.id AS TEXT)", "'|%'")
}

// CountAssignments returns the number of direct assignments, which is
// the row space RebuildAllAssignments pages over.
func (e *Engine) CountAssignments() (int64, error) {
	var count int64
	if err := e.db.QueryRow("SELECT COUNT(*) FROM article_categories").Scan(&count); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}

// RebuildAllAssignments derives missing flat rows for one page of direct
// assignments ordered by (article_id, category_id). Rows already present
// are skipped, so the operation is idempotent and safely re-runnable
// after a partial failure. A limit of 0 processes the whole assignment
// table in one statement. It returns the number of rows inserted.
func (e *Engine) RebuildAllAssignments(limit, offset int64) (int64, error) {
	page := ""
	if limit > 0 {
		page = e.dialect.LimitOffset(limit, offset)
	}

	// Inserted rows are ordered by (article, ancestor, assigned category)
	// so ids in the flat table follow a stable sequence.
	query := fmt.Sprintf(`
INSERT INTO article_categories_flat (article_id, category_id, parent_category_id)
SELECT ac.article_id, anc.id, ac.category_id
FROM (
	SELECT article_id, category_id
	FROM article_categories
	ORDER BY article_id, category_id%s
) ac
JOIN categories assigned ON assigned.id = ac.category_id
JOIN categories anc ON %s
LEFT JOIN article_categories_flat existing
	ON existing.article_id = ac.article_id
	AND existing.category_id = anc.id
	AND existing.parent_category_id = ac.category_id
WHERE existing.id IS NULL
ORDER BY ac.article_id, anc.id, ac.category_id`,
		page, e.ancestorMatch())

	var inserted int64
	err := e.withTx(func(q execer) error {
		res, err := q.Exec(query)
		if err != nil {
			return fmt.Errorf("rebuild assignments page: %w", err)
		}
		inserted, err = rowsAffected(res, "rebuild assignments page")
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// AddAssignment inserts the flat rows for an article newly assigned to
// the given categories: one row per category per tree level, duplicates
// skipped. It returns the number of rows inserted.
func (e *Engine) AddAssignment(articleID int64, categoryIDs []int64) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	b := dialect.NewBinder(e.dialect)
	var sb strings.Builder
	sb.WriteString("INSERT INTO article_categories_flat (article_id, category_id, parent_category_id)\n")
	sb.WriteString("SELECT " + b.Bind(articleID) + ", anc.id, assigned.id\n")
	sb.WriteString("FROM categories assigned\n")
	sb.WriteString("JOIN categories anc ON " + e.ancestorMatch() + "\n")
	sb.WriteString("LEFT JOIN article_categories_flat existing\n")
	sb.WriteString("\tON existing.article_id = " + b.Bind(articleID) + "\n")
	sb.WriteString("\tAND existing.category_id = anc.id\n")
	sb.WriteString("\tAND existing.parent_category_id = assigned.id\n")
	sb.WriteString("WHERE assigned.id IN " + b.BindInt64s(categoryIDs) + " AND existing.id IS NULL\n")
	sb.WriteString("ORDER BY anc.id, assigned.id")

	res, err := e.db.Exec(sb.String(), b.Args()...)
	if err != nil {
		return 0, fmt.Errorf("add assignment for article %d: %w", articleID, err)
	}
	return rowsAffected(res, fmt.Sprintf("add assignment for article %d", articleID))
}

// ArticlesUnderCategory returns the distinct ids of articles visible
// under a category through any depth of subcategories, ordered by id.
// This single-join lookup is the read the flat table exists for.
func (e *Engine) ArticlesUnderCategory(categoryID, limit, offset int64) ([]int64, error) {
	b := dialect.NewBinder(e.dialect)
	query := fmt.Sprintf(
		"SELECT DISTINCT article_id FROM article_categories_flat WHERE category_id = %s ORDER BY article_id",
		b.Bind(categoryID))
	if limit > 0 {
		query += e.dialect.LimitOffset(limit, offset)
	}
	return queryIDs(e.db, query, b.Args()...)
}
