// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category is one node of the catalog tree. Path caches the ids of every
// ancestor, nearest parent first, wrapped in delimiters: a category under
// 2 under root 1 carries "|2|1|". Root categories carry a nil Path.
//
// The tree itself belongs to the shop schema; this module only follows
// parent pointers and rewrites Path when asked to.
type Category struct {
	ID        int64
	ParentID  *int64
	Path      *string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PathValue returns the serialized ancestor path, or "" for a root.
func (c *Category) PathValue() string {
	if c.Path == nil {
		return ""
	}
	return *c.Path
}

// IsRoot returns true if the category sits at the top of the tree.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
