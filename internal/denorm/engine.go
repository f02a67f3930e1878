// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package denorm maintains the denormalized article-category table of a
// shop catalog.
//
// Shops answer "every article under this category, subcategories
// included" on each listing request. Walking the category tree per
// request is too slow, so article_categories_flat keeps one row per
// direct assignment per tree level, ready for a single indexed join.
// The source of truth stays in categories and article_categories; every
// row in the flat table is derived and can be wiped and rebuilt.
package denorm

import (
	"database/sql"
	"errors"
	"fmt"

	"flatcat/internal/dialect"
)

// DefaultMaxDepth bounds ancestor chain walks. A catalog tree deeper
// than this is treated as corrupt.
const DefaultMaxDepth = 500

var (
	// ErrCyclicTree reports a category parent chain that loops back on
	// itself.
	ErrCyclicTree = errors.New("cyclic category parent chain")
	// ErrDepthExceeded reports a parent chain longer than the configured
	// maximum depth.
	ErrDepthExceeded = errors.New("category tree depth limit exceeded")
)

// execer is the slice of database/sql shared by *sql.DB and *sql.Tx that
// the engine's statements run against.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Engine owns all writes to the flat table. Operations are synchronous
// and assume a single writer; the engine keeps no state between calls
// beyond its connection, dialect and knobs.
type Engine struct {
	db       *sql.DB
	dialect  dialect.Dialect
	maxDepth int
	useTx    bool
}

// New returns an Engine over db speaking the given dialect.
// Transactions around multi-statement operations are enabled by default.
func New(db *sql.DB, d dialect.Dialect) *Engine {
	return &Engine{
		db:       db,
		dialect:  d,
		maxDepth: DefaultMaxDepth,
		useTx:    true,
	}
}

// SetMaxDepth overrides the ancestor walk depth limit. Values below 1
// are ignored.
func (e *Engine) SetMaxDepth(n int) {
	if n > 0 {
		e.maxDepth = n
	}
}

// EnableTransactions wraps every multi-statement operation in its own
// transaction. This is the default.
func (e *Engine) EnableTransactions() { e.useTx = true }

// DisableTransactions runs multi-statement operations directly on the
// connection, for callers that already manage an enclosing transaction
// or run on a storage engine without one.
func (e *Engine) DisableTransactions() { e.useTx = false }

// withTx runs fn inside a transaction when transactions are enabled,
// directly on the connection otherwise.
func (e *Engine) withTx(fn func(q execer) error) error {
	if !e.useTx {
		return fn(e.db)
	}

	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// queryIDs runs a query whose single column is an integer id and returns
// the ids in result order.
func queryIDs(q execer, query string, args ...any) ([]int64, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// rowsAffected unwraps a result count with a uniform error context.
func rowsAffected(res sql.Result, what string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return n, nil
}
