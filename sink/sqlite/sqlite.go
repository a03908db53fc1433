// Package sqlite is a minimal sink.Handler backed by modernc.org/sqlite:
// one table per discovered FileMaker table, one TEXT column per
// discovered column, rows keyed by the decoder's row index. Batching
// and type mapping beyond TEXT are out of scope.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/bsm/fmp"
	"github.com/bsm/fmp/sink"
)

// Sink implements sink.Handler over a single SQLite database file. The
// decoder streams one column value at a time, so each write is an
// UPSERT against the row key rather than a single wide-row INSERT.
type Sink struct {
	db *sql.DB

	tableNames map[int]string
}

// Open creates (or reuses) the SQLite database at path.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sink/sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one writer connection

	return &Sink{db: db, tableNames: make(map[int]string)}, nil
}

// CreateSchema creates one table per discovered FileMaker table.
func (s *Sink) CreateSchema(metadata *fmp.Metadata) error {
	for _, t := range metadata.Tables {
		name := sanitizeIdent(t.Name, fmt.Sprintf("table_%d", t.Index))
		s.tableNames[t.Index] = name

		colDefs := []string{`"row" INTEGER PRIMARY KEY`}
		for _, c := range metadata.ColumnsFor(t.Index) {
			ident := sanitizeIdent(c.Name, fmt.Sprintf("col_%d", c.Index))
			colDefs = append(colDefs, fmt.Sprintf("%q TEXT", ident))
		}

		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (%s)`, name, strings.Join(colDefs, ", "))
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("sink/sqlite: create table %s: %w", name, err)
		}
	}
	return nil
}

// HandleValue upserts one (row, column) value into its table, widening
// the row in place across repeated calls for the same row.
func (s *Sink) HandleValue(tableIndex, row int, column fmp.Column, value string) sink.Status {
	name, ok := s.tableNames[tableIndex]
	if !ok {
		return sink.OK
	}
	ident := sanitizeIdent(column.Name, fmt.Sprintf("col_%d", column.Index))

	upsert := fmt.Sprintf(
		`INSERT INTO %q ("row", %q) VALUES (?, ?) ON CONFLICT("row") DO UPDATE SET %q = excluded.%q`,
		name, ident, ident, ident,
	)
	if _, err := s.db.Exec(upsert, row, value); err != nil {
		return sink.Abort
	}
	return sink.OK
}

// Close closes the underlying database.
func (s *Sink) Close() error {
	return s.db.Close()
}

// sanitizeIdent produces a safe SQLite identifier from a discovered
// name, falling back to a synthetic name when empty.
func sanitizeIdent(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	return strings.ReplaceAll(name, `"`, `""`)
}

var _ sink.Handler = (*Sink)(nil)
