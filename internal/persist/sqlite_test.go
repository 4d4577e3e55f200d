package persist_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/pattern"
	"github.com/werwolv/patternlang/internal/persist"
)

func fixedReader(b []byte) func() ([]byte, error) {
	return func() ([]byte, error) { return b, nil }
}

func TestExportSQLiteWritesForestAndChildren(t *testing.T) {
	leaf := pattern.NewUnsigned(fixedReader([]byte{0x89}))
	leaf.SetValue(literal.U64(0x89))
	leaf.SetTypeName("u8")
	leaf.SetDisplayName("magic")

	root := pattern.NewStruct([]pattern.Pattern{leaf})
	root.SetTypeName("Header")
	root.SetDisplayName("header")

	path := filepath.Join(t.TempDir(), "export.sqlite")
	if err := persist.ExportSQLite([]pattern.Pattern{root}, path); err != nil {
		t.Fatalf("ExportSQLite: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening exported db: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM patterns`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("row count = %d, want 2 (struct + leaf)", count)
	}

	var childParent sql.NullInt64
	var childName string
	row := db.QueryRow(`SELECT parent_id, variable_name FROM patterns WHERE variable_name = ?`, "magic")
	if err := row.Scan(&childParent, &childName); err != nil {
		t.Fatalf("querying leaf row: %v", err)
	}
	if !childParent.Valid {
		t.Fatalf("leaf row has NULL parent_id, want a reference to the struct row")
	}
}

func TestExportSQLiteEmptyForest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sqlite")
	if err := persist.ExportSQLite(nil, path); err != nil {
		t.Fatalf("ExportSQLite with empty forest: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening exported db: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM patterns`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 0 {
		t.Fatalf("row count = %d, want 0", count)
	}
}
