package denorm

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentCategoryIDs(t *testing.T) {
	e, db := testEngine(t)
	seedChain(t, db)

	ids, err := e.ParentCategoryIDs(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids)

	ids, err = e.ParentCategoryIDs(1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Unknown id: the chain ends immediately.
	ids, err = e.ParentCategoryIDs(99)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParentCategoryIDsDanglingParent(t *testing.T) {
	e, db := testEngine(t)
	// 7's parent row was deleted; the walk stops at the hole but still
	// reports the dangling id it passed through.
	addCategory(t, db, 7, int64(6), "|6|")

	ids, err := e.ParentCategoryIDs(7)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, ids)
}

func TestParentCategoryIDsCycle(t *testing.T) {
	e, db := testEngine(t)
	addCategory(t, db, 1, int64(2), nil)
	addCategory(t, db, 2, int64(1), nil)

	_, err := e.ParentCategoryIDs(1)
	require.ErrorIs(t, err, ErrCyclicTree)
}

func TestParentCategoryIDsDepthLimit(t *testing.T) {
	e, db := testEngine(t)
	addCategory(t, db, 1, nil, nil)
	for id := int64(2); id <= 6; id++ {
		addCategory(t, db, id, id-1, nil)
	}

	e.SetMaxDepth(3)
	_, err := e.ParentCategoryIDs(6)
	require.ErrorIs(t, err, ErrDepthExceeded)

	e.SetMaxDepth(10)
	ids, err := e.ParentCategoryIDs(6)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, ids)
}

func TestSerializePath(t *testing.T) {
	assert.Equal(t, "", serializePath(nil))
	assert.Equal(t, "|10|", serializePath([]int64{10}))
	assert.Equal(t, "|2|1|", serializePath([]int64{2, 1}))
}

func storedPath(t *testing.T, db *sql.DB, id int64) string {
	t.Helper()
	var path sql.NullString
	require.NoError(t, db.QueryRow("SELECT path FROM categories WHERE id = ?", id).Scan(&path))
	return path.String
}

func TestRebuildPath(t *testing.T) {
	e, db := testEngine(t)
	addCategory(t, db, 1, nil, nil)
	addCategory(t, db, 2, int64(1), "|1|")
	addCategory(t, db, 3, int64(2), "|999|") // stale

	changed, err := e.RebuildPath(3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	assert.Equal(t, "|2|1|", storedPath(t, db, 3))

	// Second run is a no-op.
	changed, err = e.RebuildPath(3)
	require.NoError(t, err)
	assert.Zero(t, changed)

	// Unknown category changes nothing.
	changed, err = e.RebuildPath(99)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestRebuildPathRoot(t *testing.T) {
	e, db := testEngine(t)
	addCategory(t, db, 1, nil, "|9|") // a root wrongly carrying a path

	changed, err := e.RebuildPath(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	var path sql.NullString
	require.NoError(t, db.QueryRow("SELECT path FROM categories WHERE id = 1").Scan(&path))
	assert.False(t, path.Valid, "root path must be NULL")
}

func TestRebuildCategoryPaths(t *testing.T) {
	e, db := testEngine(t)
	seedChain(t, db)
	addCategory(t, db, 4, int64(1), "|1|")

	// Corrupt every stored path; the rebuild recomputes from parent
	// pointers, not from what is stored.
	_, err := db.Exec("UPDATE categories SET path = '|404|'")
	require.NoError(t, err)

	count, err := e.CountCategoryPaths(0)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	var changed int64
	pageSize := int64(2)
	for offset := int64(0); offset < count; offset += pageSize {
		n, err := e.RebuildCategoryPaths(0, pageSize, offset)
		require.NoError(t, err)
		changed += n
	}
	assert.Equal(t, int64(4), changed)
	assert.Equal(t, "", storedPath(t, db, 1))
	assert.Equal(t, "|1|", storedPath(t, db, 2))
	assert.Equal(t, "|2|1|", storedPath(t, db, 3))
	assert.Equal(t, "|1|", storedPath(t, db, 4))
}

func TestRebuildCategoryPathsSubtree(t *testing.T) {
	e, db := testEngine(t)
	seedChain(t, db)
	addCategory(t, db, 4, int64(1), "|1|")

	// Reparent 2 (and implicitly 3) under 4. Stored paths are stale but
	// still locate the moved subtree.
	moveCategory(t, db, 2, int64(4))

	count, err := e.CountCategoryPaths(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	changed, err := e.RebuildCategoryPaths(2, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)
	assert.Equal(t, "|4|1|", storedPath(t, db, 2))
	assert.Equal(t, "|2|4|1|", storedPath(t, db, 3))

	// Categories outside the subtree keep their paths.
	assert.Equal(t, "|1|", storedPath(t, db, 4))
}
