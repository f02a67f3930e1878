// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package denorm

import (
	"fmt"
	"log/slog"

	"flatcat/internal/dialect"
)

// RemoveAssignment deletes the flat rows an article owed to direct
// assignments in the given categories, then re-derives the article's
// surviving assignments so rows still justified by another assignment
// stay present. It returns the net number of rows removed.
func (e *Engine) RemoveAssignment(articleID int64, categoryIDs []int64) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	var net int64
	err := e.withTx(func(q execer) error {
		b := dialect.NewBinder(e.dialect)
		query := fmt.Sprintf(
			"DELETE FROM article_categories_flat WHERE article_id = %s AND parent_category_id IN %s",
			b.Bind(articleID), b.BindInt64s(categoryIDs))
		res, err := q.Exec(query, b.Args()...)
		if err != nil {
			return fmt.Errorf("remove assignment for article %d: %w", articleID, err)
		}
		deleted, err := rowsAffected(res, fmt.Sprintf("remove assignment for article %d", articleID))
		if err != nil {
			return err
		}

		assignments, err := e.assignmentsForArticle(q, articleID)
		if err != nil {
			return err
		}
		restored, err := e.fixAssignments(q, assignments)
		if err != nil {
			return err
		}

		net = deleted - restored
		return nil
	})
	if err != nil {
		return 0, err
	}
	return net, nil
}

// RemoveOldAssignments clears and re-derives every flat row tied to a
// category's subtree. Call it after the category's parent reference has
// been updated: the delete scope comes from the still-stale materialized
// paths, the re-derivation from the live parent chains, so one call
// leaves the flat table correct even before paths are rebuilt. Rows
// under sibling categories outside the subtree are never touched. It
// returns the net number of rows removed.
func (e *Engine) RemoveOldAssignments(categoryID int64) (int64, error) {
	var net int64
	err := e.withTx(func(q execer) error {
		subtree, err := e.subtreeCategoryIDs(q, categoryID)
		if err != nil {
			return err
		}

		b := dialect.NewBinder(e.dialect)
		query := "DELETE FROM article_categories_flat WHERE parent_category_id IN " + b.BindInt64s(subtree)
		res, err := q.Exec(query, b.Args()...)
		if err != nil {
			return fmt.Errorf("remove assignments under category %d: %w", categoryID, err)
		}
		deleted, err := rowsAffected(res, fmt.Sprintf("remove assignments under category %d", categoryID))
		if err != nil {
			return err
		}

		assignments, err := e.assignmentsInCategories(q, subtree)
		if err != nil {
			return err
		}
		restored, err := e.fixAssignments(q, assignments)
		if err != nil {
			return err
		}

		net = deleted - restored
		return nil
	})
	if err != nil {
		return 0, err
	}
	return net, nil
}

// RemoveArticleAssignments unconditionally deletes every flat row of an
// article, for when the article itself is gone. It returns the number of
// rows removed.
func (e *Engine) RemoveArticleAssignments(articleID int64) (int64, error) {
	b := dialect.NewBinder(e.dialect)
	query := fmt.Sprintf("DELETE FROM article_categories_flat WHERE article_id = %s", b.Bind(articleID))
	res, err := e.db.Exec(query, b.Args()...)
	if err != nil {
		return 0, fmt.Errorf("remove rows of article %d: %w", articleID, err)
	}
	return rowsAffected(res, fmt.Sprintf("remove rows of article %d", articleID))
}

// RemoveCategoryAssignments clears the flat rows tied to a deleted
// category's subtree. The work matches a move reconciliation exactly:
// delete by the stale subtree, restore what surviving assignments still
// justify. It delegates accordingly.
func (e *Engine) RemoveCategoryAssignments(categoryID int64) (int64, error) {
	return e.RemoveOldAssignments(categoryID)
}

// RemoveAllAssignments empties the flat table through the dialect's
// fastest wipe, falling back to a plain DELETE when the fast path is
// rejected (TRUNCATE needs table-level privileges on PostgreSQL). It
// returns the number of rows the table held.
func (e *Engine) RemoveAllAssignments() (int64, error) {
	var count int64
	if err := e.db.QueryRow("SELECT COUNT(*) FROM article_categories_flat").Scan(&count); err != nil {
		return 0, fmt.Errorf("count flat rows: %w", err)
	}

	if _, err := e.db.Exec(e.dialect.TruncateTable("article_categories_flat")); err != nil {
		// The one storage failure the engine tolerates.
		slog.Warn("fast wipe rejected, deleting instead", "error", err)
		if _, err := e.db.Exec("DELETE FROM article_categories_flat"); err != nil {
			return 0, fmt.Errorf("wipe flat table: %w", err)
		}
	}
	return count, nil
}

// RemoveOrphanedAssignments deletes direct assignments whose article or
// category no longer exists. This repairs the source table, not the
// derived one; run it before a full rebuild so the rebuild does not
// re-derive garbage. It returns the number of assignments removed.
func (e *Engine) RemoveOrphanedAssignments() (int64, error) {
	var removed int64
	err := e.withTx(func(q execer) error {
		res, err := q.Exec(`
DELETE FROM article_categories
WHERE NOT EXISTS (SELECT 1 FROM articles a WHERE a.id = article_categories.article_id)`)
		if err != nil {
			return fmt.Errorf("remove assignments of missing articles: %w", err)
		}
		n, err := rowsAffected(res, "remove assignments of missing articles")
		if err != nil {
			return err
		}
		removed += n

		res, err = q.Exec(`
DELETE FROM article_categories
WHERE NOT EXISTS (SELECT 1 FROM categories c WHERE c.id = article_categories.category_id)`)
		if err != nil {
			return fmt.Errorf("remove assignments of missing categories: %w", err)
		}
		n, err = rowsAffected(res, "remove assignments of missing categories")
		if err != nil {
			return err
		}
		removed += n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
