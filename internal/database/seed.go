package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"flatcat/internal/dialect"
	"flatcat/internal/models"
	"flatcat/internal/store"
)

// Seed populates an empty database with a small demo catalog: a category
// tree, a handful of articles and their direct assignments. The flat
// table stays empty; running a rebuild derives it.
func Seed(db *sql.DB, d dialect.Dialect) error {
	// Check if a catalog exists already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	cat := store.NewCatalogStore(db, d)
	parent := func(id int64) *int64 { return &id }
	path := func(p string) *string { return &p }

	// Paths are seeded in their final form so the demo works without a
	// path rebuild first.
	categories := []models.Category{
		{ID: 1, Name: "Catalog"},
		{ID: 2, ParentID: parent(1), Path: path("|1|"), Name: "Clothing"},
		{ID: 3, ParentID: parent(2), Path: path("|2|1|"), Name: "Shirts"},
		{ID: 4, ParentID: parent(2), Path: path("|2|1|"), Name: "Shoes"},
		{ID: 5, ParentID: parent(1), Path: path("|1|"), Name: "Electronics"},
		{ID: 6, ParentID: parent(5), Path: path("|5|1|"), Name: "Audio"},
		{ID: 7, ParentID: parent(5), Path: path("|5|1|"), Name: "Cameras"},
		{ID: 8, ParentID: parent(1), Path: path("|1|"), Name: "Sale"},
	}
	for i := range categories {
		if err := cat.CreateCategory(&categories[i]); err != nil {
			return fmt.Errorf("seed category %d: %w", categories[i].ID, err)
		}
	}

	articles := []models.Article{
		{ID: 100, Name: "Oxford Shirt", Active: true},
		{ID: 101, Name: "Trail Runner", Active: true},
		{ID: 102, Name: "Studio Monitor", Active: true},
		{ID: 103, Name: "Rangefinder Camera", Active: true},
		{ID: 104, Name: "Gift Card", Active: true},
		{ID: 105, Name: "Wireless Earbuds", Active: true},
	}
	for i := range articles {
		if err := cat.CreateArticle(&articles[i]); err != nil {
			return fmt.Errorf("seed article %d: %w", articles[i].ID, err)
		}
	}

	// 105 sits in two categories so a rebuild demonstrates overlapping
	// ancestor rows.
	assignments := []models.Assignment{
		{ArticleID: 100, CategoryID: 3},
		{ArticleID: 101, CategoryID: 4},
		{ArticleID: 102, CategoryID: 6},
		{ArticleID: 103, CategoryID: 7},
		{ArticleID: 104, CategoryID: 1},
		{ArticleID: 105, CategoryID: 6},
		{ArticleID: 105, CategoryID: 8},
	}
	for _, a := range assignments {
		if err := cat.Assign(a.ArticleID, a.CategoryID); err != nil {
			return fmt.Errorf("seed assignment %d->%d: %w", a.ArticleID, a.CategoryID, err)
		}
	}

	slog.Info("database seeded with demo catalog",
		"categories", len(categories),
		"articles", len(articles),
		"assignments", len(assignments),
	)
	return nil
}
