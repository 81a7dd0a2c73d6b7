package migrations

import (
	"path/filepath"
	"testing"

	"github.com/Simplici0/sumrai/internal/db"
)

func TestUp(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(database); err != nil {
			t.Fatalf("Up() run %d: %v", i+1, err)
		}
	}

	v, err := Version(database)
	if err != nil {
		t.Fatalf("Version(): %v", err)
	}
	if v != 3 {
		t.Fatalf("schema version = %d, want 3", v)
	}

	for _, table := range []string{"users", "catalog_versions", "projects"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
