// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Assignment is a direct article-to-category placement made by a shop
// editor. It is the source of truth the denormalized table derives from.
type Assignment struct {
	ArticleID  int64
	CategoryID int64
}

// FlatAssignment is one derived row of the denormalized table. For every
// direct assignment the engine stores one row per tree level: CategoryID
// walks the ancestor chain while ParentCategoryID keeps pointing at the
// category the article was actually assigned to.
type FlatAssignment struct {
	ID               int64
	ArticleID        int64
	CategoryID       int64
	ParentCategoryID int64
}
