package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForDriver(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{driver: "pgx", name: "postgres"},
		{driver: "sqlite", name: "sqlite"},
		{driver: "mysql", wantErr: true},
		{driver: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := ForDriver(tt.driver)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestPlaceholder(t *testing.T) {
	pg := Postgres{}
	assert.Equal(t, "$1", pg.Placeholder(1))
	assert.Equal(t, "$12", pg.Placeholder(12))

	lite := SQLite{}
	assert.Equal(t, "?", lite.Placeholder(1))
	assert.Equal(t, "?", lite.Placeholder(12))
}

func TestConcat(t *testing.T) {
	want := "'%|'" + " || " + "CAST(c.id AS TEXT)" + " || " + "'|%'"
	assert.Equal(t, want, Postgres{}.Concat("'%|'", "CAST(c.id AS TEXT)", "'|%'"))
	assert.Equal(t, want, SQLite{}.Concat("'%|'", "CAST(c.id AS TEXT)", "'|%'"))
	assert.Equal(t, "a", Postgres{}.Concat("a"))
}

func TestLimitOffset(t *testing.T) {
	assert.Equal(t, " LIMIT 100 OFFSET 0", Postgres{}.LimitOffset(100, 0))
	assert.Equal(t, " LIMIT 50 OFFSET 200", SQLite{}.LimitOffset(50, 200))
}

func TestTruncateTable(t *testing.T) {
	assert.Equal(t, "TRUNCATE TABLE article_categories_flat",
		Postgres{}.TruncateTable("article_categories_flat"))
	assert.Equal(t, "DELETE FROM article_categories_flat",
		SQLite{}.TruncateTable("article_categories_flat"))
}

func TestBinder(t *testing.T) {
	b := NewBinder(Postgres{})
	first := b.Bind(int64(7))
	second := b.Bind("|7|")
	assert.Equal(t, "$1", first)
	assert.Equal(t, "$2", second)
	assert.Equal(t, []any{int64(7), "|7|"}, b.Args())

	b = NewBinder(SQLite{})
	assert.Equal(t, "?", b.Bind(int64(7)))
	assert.Equal(t, "?", b.Bind(int64(8)))
	assert.Len(t, b.Args(), 2)
}

func TestBinderInt64List(t *testing.T) {
	b := NewBinder(Postgres{})
	b.Bind(int64(100))
	list := b.BindInt64s([]int64{3, 5, 10})
	assert.Equal(t, "($2, $3, $4)", list)
	assert.Equal(t, []any{int64(100), int64(3), int64(5), int64(10)}, b.Args())
}
