// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package dialect

import (
	"fmt"
	"strings"
)

// SQLite is the dialect for SQLite via modernc.org/sqlite.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Placeholder(_ int) string { return "?" }

func (SQLite) Concat(parts ...string) string { return strings.Join(parts, " || ") }

func (SQLite) LimitOffset(limit, offset int64) string {
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

// TruncateTable returns a bare DELETE: SQLite has no TRUNCATE, and an
// unqualified DELETE already takes its internal truncate optimization.
func (SQLite) TruncateTable(table string) string { return "DELETE FROM " + table }
