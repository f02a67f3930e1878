// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package denorm

import (
	"fmt"
	"sort"
	"strings"

	"flatcat/internal/dialect"
	"flatcat/internal/models"
)

// flatRow is the identity of one derived row, without its surrogate id.
type flatRow struct {
	articleID        int64
	categoryID       int64
	parentCategoryID int64
}

// desiredRows computes the complete set of flat rows the given direct
// assignments justify, using resolve to look up a category's ancestor
// ids nearest-first. The result is sorted by article, then category,
// then assigned category, and carries no duplicates even when the input
// repeats assignments.
func desiredRows(assignments []models.Assignment, resolve func(int64) ([]int64, error)) ([]flatRow, error) {
	seen := make(map[flatRow]struct{})
	var rows []flatRow
	add := func(r flatRow) {
		if _, dup := seen[r]; dup {
			return
		}
		seen[r] = struct{}{}
		rows = append(rows, r)
	}

	for _, a := range assignments {
		ancestors, err := resolve(a.CategoryID)
		if err != nil {
			return nil, err
		}
		add(flatRow{a.ArticleID, a.CategoryID, a.CategoryID})
		for _, anc := range ancestors {
			add(flatRow{a.ArticleID, anc, a.CategoryID})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.articleID != b.articleID {
			return a.articleID < b.articleID
		}
		if a.categoryID != b.categoryID {
			return a.categoryID < b.categoryID
		}
		return a.parentCategoryID < b.parentCategoryID
	})
	return rows, nil
}

// fixAssignments re-derives the flat rows for the given assignments from
// live parent chains and inserts only what is missing. Existing rows are
// never touched, which keeps entries alive that another assignment still
// justifies. It returns the number of rows inserted.
func (e *Engine) fixAssignments(q execer, assignments []models.Assignment) (int64, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	want, err := desiredRows(assignments, e.ancestorResolver(q))
	if err != nil {
		return 0, err
	}

	have, err := e.flatRowsForArticles(q, distinctArticleIDs(assignments))
	if err != nil {
		return 0, err
	}

	var missing []flatRow
	for _, r := range want {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	return e.insertFlatRows(q, missing)
}

func distinctArticleIDs(assignments []models.Assignment) []int64 {
	seen := make(map[int64]struct{}, len(assignments))
	var ids []int64
	for _, a := range assignments {
		if _, dup := seen[a.ArticleID]; dup {
			continue
		}
		seen[a.ArticleID] = struct{}{}
		ids = append(ids, a.ArticleID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// flatRowsForArticles loads the current flat rows of the given articles
// as a set.
func (e *Engine) flatRowsForArticles(q execer, articleIDs []int64) (map[flatRow]struct{}, error) {
	have := make(map[flatRow]struct{})
	if len(articleIDs) == 0 {
		return have, nil
	}

	b := dialect.NewBinder(e.dialect)
	query := "SELECT article_id, category_id, parent_category_id FROM article_categories_flat WHERE article_id IN " +
		b.BindInt64s(articleIDs)
	rows, err := q.Query(query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("load flat rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r flatRow
		if err := rows.Scan(&r.articleID, &r.categoryID, &r.parentCategoryID); err != nil {
			return nil, fmt.Errorf("scan flat row: %w", err)
		}
		have[r] = struct{}{}
	}
	return have, rows.Err()
}

// insertChunk keeps multi-row inserts comfortably under every driver's
// bind parameter limit.
const insertChunk = 200

// insertFlatRows writes the given rows in input order, chunked into
// multi-row statements.
func (e *Engine) insertFlatRows(q execer, rows []flatRow) (int64, error) {
	var total int64
	for start := 0; start < len(rows); start += insertChunk {
		chunk := rows[start:min(start+insertChunk, len(rows))]

		b := dialect.NewBinder(e.dialect)
		var sb strings.Builder
		sb.WriteString("INSERT INTO article_categories_flat (article_id, category_id, parent_category_id) VALUES ")
		for i, r := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "(%s, %s, %s)",
				b.Bind(r.articleID), b.Bind(r.categoryID), b.Bind(r.parentCategoryID))
		}

		res, err := q.Exec(sb.String(), b.Args()...)
		if err != nil {
			return total, fmt.Errorf("insert flat rows: %w", err)
		}
		n, err := rowsAffected(res, "insert flat rows")
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// assignmentsForArticle returns the article's direct assignments whose
// category still exists, ordered by category id. Assignments pointing at
// deleted categories are orphans and justify no flat rows.
func (e *Engine) assignmentsForArticle(q execer, articleID int64) ([]models.Assignment, error) {
	b := dialect.NewBinder(e.dialect)
	query := fmt.Sprintf(`
SELECT ac.article_id, ac.category_id
FROM article_categories ac
JOIN categories c ON c.id = ac.category_id
WHERE ac.article_id = %s
ORDER BY ac.category_id`, b.Bind(articleID))
	return queryAssignments(q, query, b.Args()...)
}

// assignmentsInCategories returns every direct assignment placed in one
// of the given categories, skipping categories that no longer exist.
func (e *Engine) assignmentsInCategories(q execer, categoryIDs []int64) ([]models.Assignment, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	b := dialect.NewBinder(e.dialect)
	query := `
SELECT ac.article_id, ac.category_id
FROM article_categories ac
JOIN categories c ON c.id = ac.category_id
WHERE ac.category_id IN ` + b.BindInt64s(categoryIDs) + `
ORDER BY ac.article_id, ac.category_id`
	return queryAssignments(q, query, b.Args()...)
}

func queryAssignments(q execer, query string, args ...any) ([]models.Assignment, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	defer rows.Close()

	var items []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ArticleID, &a.CategoryID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// RebuildArticleAssignments re-derives the flat rows of one article from
// its current assignments and live parent chains, inserting whatever is
// missing. It returns the number of rows inserted.
func (e *Engine) RebuildArticleAssignments(articleID int64) (int64, error) {
	var inserted int64
	err := e.withTx(func(q execer) error {
		assignments, err := e.assignmentsForArticle(q, articleID)
		if err != nil {
			return err
		}
		inserted, err = e.fixAssignments(q, assignments)
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
