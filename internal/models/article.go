// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to the catalog
// tables the denormalization engine reads and maintains.
package models

import "time"

// Article is a catalog product. The engine never writes articles; it only
// joins against them to prune assignments whose article disappeared.
type Article struct {
	ID        int64
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
