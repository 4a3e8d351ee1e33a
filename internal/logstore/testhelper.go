package logstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logbot/logbot/internal/logschema"
)

// OpenTestStore creates a migrated SQLite log store in t.TempDir() seeded
// with the schema's sample rows, and registers cleanup.
func OpenTestStore(t *testing.T) *SQLExecutor {
	t.Helper()

	path := filepath.Join(t.TempDir(), "logs.db")
	exec, err := NewSQLiteExecutor(path, false)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = exec.Close() })

	if err := Migrate(exec.DB(), "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, tbl := range logschema.Default().Tables() {
		var b strings.Builder
		b.WriteString(strings.Join(tbl.ColumnNames(), ",") + "\n")
		for _, row := range tbl.Samples {
			b.WriteString(strings.Join(row, ",") + "\n")
		}
		if _, err := exec.ImportCSV(context.Background(), tbl, strings.NewReader(b.String())); err != nil {
			t.Fatalf("seed %s: %v", tbl.Name, err)
		}
	}
	return exec
}
