package database

import (
	"testing"

	"flatcat/internal/dialect"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect("sqlite", testSQLitePath(t))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, "sqlite"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed creates data only when the catalog is empty. Calling it twice
	// verifies idempotency.
	if err := Seed(db, dialect.SQLite{}); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db, dialect.SQLite{}); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	counts := []struct {
		table string
		want  int
	}{
		{"categories", 8},
		{"articles", 6},
		{"article_categories", 7},
	}
	for _, c := range counts {
		var got int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", c.table, err)
		}
		if got != c.want {
			t.Errorf("%s: got %d rows, want %d", c.table, got, c.want)
		}
	}

	// The flat table must stay untouched; deriving it is the engine's job.
	var flatCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM article_categories_flat").Scan(&flatCount); err != nil {
		t.Fatalf("count flat rows: %v", err)
	}
	if flatCount != 0 {
		t.Errorf("expected empty flat table after seed, got %d rows", flatCount)
	}
}
