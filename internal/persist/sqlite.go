// Package persist implements one concrete, owned persisted form for the
// pattern forest (§6.4): a flat SQLite export. The generic JSON/YAML/HTML
// encodings spec §6.4 names stay external collaborators (out of scope);
// this is the one persisted form the repository owns end-to-end, wired as
// the dangerous builtin std::export_sqlite (§6.2/§6.5).
//
// Grounded on the teacher's internal/evaluator/builtins_sql.go: a pure-Go
// database/sql + modernc.org/sqlite driver (no cgo), a registry-of-open-
// handles pattern for multi-statement sessions, and a "dangerous" builtin
// flag gating file-system side effects -- narrowed here from funxy's
// general-purpose std::db query API to one fixed export shape, since the
// pattern language has no query-expression surface of its own to drive a
// general SQL API the way funxy's first-class SqlDB/SqlTx objects can.
package persist

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/werwolv/patternlang/internal/pattern"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS patterns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_id INTEGER,
	offset INTEGER NOT NULL,
	size INTEGER NOT NULL,
	section INTEGER NOT NULL,
	type_name TEXT,
	variable_name TEXT,
	value_display TEXT,
	attributes_json TEXT
);`

// ExportSQLite walks forest (and every composite's descendants) and writes
// one row per pattern into a fresh SQLite database at path, overwriting
// any existing file the same way the teacher's std::db::open truncates a
// freshly-created file rather than appending to a stale one.
func ExportSQLite(forest []pattern.Pattern, path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		cerr := db.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err = db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`INSERT INTO patterns
		(parent_id, offset, size, section, type_name, variable_name, value_display, attributes_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range forest {
		if err = insertPattern(stmt, nil, p); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// insertPattern inserts one pattern row (with parentID, or NULL for a
// top-level pattern) and recurses into struct/union members and array
// entries so the export mirrors the tree, not just its top level.
func insertPattern(stmt *sql.Stmt, parentID *int64, p pattern.Pattern) error {
	attrsJSON, err := attributesJSON(p)
	if err != nil {
		return err
	}

	res, err := stmt.Exec(
		nullableInt64(parentID),
		int64(p.Offset()),
		int64(p.Size()),
		int64(p.Section()),
		p.TypeName(),
		p.DisplayName(),
		p.FormattedValue(),
		attrsJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting pattern %q: %w", p.DisplayName(), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted row id: %w", err)
	}

	for _, child := range children(p) {
		if err := insertPattern(stmt, &id, child); err != nil {
			return err
		}
	}
	return nil
}

// children returns a pattern's direct descendants for composite kinds;
// leaves and bitfield fields have none.
func children(p pattern.Pattern) []pattern.Pattern {
	switch v := p.(type) {
	case *pattern.Struct:
		return v.Members()
	case *pattern.Union:
		return v.Members()
	case pattern.Iteratable:
		return v.Entries()
	case *pattern.Bitfield:
		return v.Fields()
	default:
		return nil
	}
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// attributesJSON renders a pattern's unknown-attribute bag (the only part
// of Attributes with a string-keyed shape worth persisting verbatim; the
// rest -- formatters, transforms -- are function references with nothing
// serializable to say) as a JSON object.
func attributesJSON(p pattern.Pattern) (string, error) {
	unknown := p.Attrs().Unknown
	if len(unknown) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(unknown)
	if err != nil {
		return "", fmt.Errorf("marshaling attributes for %q: %w", p.DisplayName(), err)
	}
	return string(b), nil
}
