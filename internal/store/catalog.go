// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store holds the catalog-owner side of the tables: creating and
// moving categories, creating articles, and editing direct assignments.
// Every mutation here changes source data only; the caller pairs it with
// the matching denorm.Engine operation to keep the flat table consistent.
package store

import (
	"database/sql"
	"fmt"

	"flatcat/internal/dialect"
	"flatcat/internal/models"
)

// CatalogStore manages categories, articles and direct assignments.
type CatalogStore struct {
	db *sql.DB
	d  dialect.Dialect
}

// NewCatalogStore returns a new CatalogStore for the given connection.
func NewCatalogStore(db *sql.DB, d dialect.Dialect) *CatalogStore {
	return &CatalogStore{db: db, d: d}
}

const categoryColumns = `id, parent_id, path, name, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.ParentID, &c.Path, &c.Name, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a category with its externally assigned id.
// The stored path is taken as given; run a path rebuild if it is unknown.
func (s *CatalogStore) CreateCategory(c *models.Category) error {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf(
		"INSERT INTO categories (id, parent_id, path, name) VALUES (%s, %s, %s, %s)",
		b.Bind(c.ID), b.Bind(c.ParentID), b.Bind(c.Path), b.Bind(c.Name),
	)
	if _, err := s.db.Exec(query, b.Args()...); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// FindCategory retrieves a category by id. Returns nil if not found.
func (s *CatalogStore) FindCategory(id int64) (*models.Category, error) {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf("SELECT "+categoryColumns+" FROM categories WHERE id = %s", b.Bind(id))
	c, err := scanCategory(s.db.QueryRow(query, b.Args()...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by id.
func (s *CatalogStore) ListCategories() ([]models.Category, error) {
	rows, err := s.db.Query("SELECT " + categoryColumns + " FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// MoveCategory points a category at a new parent (nil makes it a root).
// The stored paths of the subtree and the flat table are stale afterwards;
// call Engine.RemoveOldAssignments for the category and then rebuild the
// subtree's paths.
func (s *CatalogStore) MoveCategory(id int64, parentID *int64) error {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf(
		"UPDATE categories SET parent_id = %s, updated_at = CURRENT_TIMESTAMP WHERE id = %s",
		b.Bind(parentID), b.Bind(id),
	)
	if _, err := s.db.Exec(query, b.Args()...); err != nil {
		return fmt.Errorf("move category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category row. Follow up with
// Engine.RemoveCategoryAssignments for the flat rows it anchored and
// Engine.RemoveOrphanedAssignments for direct assignments left behind.
func (s *CatalogStore) DeleteCategory(id int64) error {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf("DELETE FROM categories WHERE id = %s", b.Bind(id))
	if _, err := s.db.Exec(query, b.Args()...); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// CreateArticle inserts an article with its externally assigned id.
func (s *CatalogStore) CreateArticle(a *models.Article) error {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf(
		"INSERT INTO articles (id, name, active) VALUES (%s, %s, %s)",
		b.Bind(a.ID), b.Bind(a.Name), b.Bind(a.Active),
	)
	if _, err := s.db.Exec(query, b.Args()...); err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

// FindArticle retrieves an article by id. Returns nil if not found.
func (s *CatalogStore) FindArticle(id int64) (*models.Article, error) {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf(
		"SELECT id, name, active, created_at, updated_at FROM articles WHERE id = %s",
		b.Bind(id),
	)
	var a models.Article
	err := s.db.QueryRow(query, b.Args()...).Scan(&a.ID, &a.Name, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return &a, nil
}

// DeleteArticle removes an article row. Follow up with
// Engine.RemoveArticleAssignments and Engine.RemoveOrphanedAssignments.
func (s *CatalogStore) DeleteArticle(id int64) error {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf("DELETE FROM articles WHERE id = %s", b.Bind(id))
	if _, err := s.db.Exec(query, b.Args()...); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// Assign records a direct assignment. Pair with Engine.AddAssignment.
func (s *CatalogStore) Assign(articleID, categoryID int64) error {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf(
		"INSERT INTO article_categories (article_id, category_id) VALUES (%s, %s)",
		b.Bind(articleID), b.Bind(categoryID),
	)
	if _, err := s.db.Exec(query, b.Args()...); err != nil {
		return fmt.Errorf("assign article %d to category %d: %w", articleID, categoryID, err)
	}
	return nil
}

// Unassign removes a direct assignment if present. Pair with
// Engine.RemoveAssignment so the flat rows follow.
func (s *CatalogStore) Unassign(articleID, categoryID int64) error {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf(
		"DELETE FROM article_categories WHERE article_id = %s AND category_id = %s",
		b.Bind(articleID), b.Bind(categoryID),
	)
	if _, err := s.db.Exec(query, b.Args()...); err != nil {
		return fmt.Errorf("unassign article %d from category %d: %w", articleID, categoryID, err)
	}
	return nil
}

// AssignmentsForArticle returns an article's direct assignments ordered by
// category id.
func (s *CatalogStore) AssignmentsForArticle(articleID int64) ([]models.Assignment, error) {
	b := dialect.NewBinder(s.d)
	query := fmt.Sprintf(
		"SELECT article_id, category_id FROM article_categories WHERE article_id = %s ORDER BY category_id",
		b.Bind(articleID),
	)
	rows, err := s.db.Query(query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
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
