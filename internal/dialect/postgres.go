// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Postgres is the dialect for PostgreSQL via the pgx stdlib driver.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Postgres) Concat(parts ...string) string { return strings.Join(parts, " || ") }

func (Postgres) LimitOffset(limit, offset int64) string {
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

func (Postgres) TruncateTable(table string) string { return "TRUNCATE TABLE " + table }
