// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package dialect isolates the few pieces of SQL syntax that differ
// between the databases flatcat runs against. The engine assembles its
// own statements; a Dialect only answers how to spell bind markers,
// string concatenation, paging and the fast table wipe.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect answers the syntax questions the engine cannot settle portably.
type Dialect interface {
	// Name identifies the dialect, e.g. "postgres".
	Name() string
	// Placeholder renders the n-th bind marker of a statement, 1-based.
	Placeholder(n int) string
	// Concat renders a string concatenation of the given SQL expressions.
	Concat(parts ...string) string
	// LimitOffset renders a paging clause, leading space included.
	LimitOffset(limit, offset int64) string
	// TruncateTable renders the fastest full-wipe statement for table.
	TruncateTable(table string) string
}

// ForDriver maps a database/sql driver name to its dialect.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "pgx":
		return Postgres{}, nil
	case "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("no dialect for driver %q", driver)
	}
}

// Binder accumulates statement arguments and hands out the matching
// placeholders, so callers can assemble SQL left to right without
// tracking bind positions themselves.
type Binder struct {
	dialect Dialect
	args    []any
}

// NewBinder returns an empty Binder for the given dialect.
func NewBinder(d Dialect) *Binder {
	return &Binder{dialect: d}
}

// Bind registers v as the next argument and returns its placeholder.
func (b *Binder) Bind(v any) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

// BindInt64s registers every id and returns a parenthesized placeholder
// list suitable for an IN clause. The caller must not pass an empty slice.
func (b *Binder) BindInt64s(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = b.Bind(id)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Args returns the arguments bound so far, in placeholder order.
func (b *Binder) Args() []any {
	return b.args
}
