package seed

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/sensorline/levelquote/internal/db"
	"github.com/sensorline/levelquote/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 35 {
				t.Fatalf("expected 35 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM materials`, nil, 4)
	assertCount(t, database, `SELECT COUNT(*) FROM options`, nil, 7)
	assertCount(t, database, `SELECT COUNT(*) FROM product_families`, nil, 3)
	assertCount(t, database, `SELECT COUNT(*) FROM family_options`, nil, 21)
	assertCount(t, database, `SELECT COUNT(*) FROM product_families WHERE name = ?`, "LS700", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM product_families WHERE base_price IS NULL`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM family_options WHERE adders_json IS NOT NULL`, nil, 1)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
