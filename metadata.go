package fmp

import "strings"

// ColumnType is the closed set of column types.
type ColumnType byte

const (
	ColumnTypeString ColumnType = iota
	ColumnTypeNumber
	ColumnTypeDate
	ColumnTypeTime
	ColumnTypeContainer
	ColumnTypeCalc
	ColumnTypeSummary
	ColumnTypeGlobal
	ColumnTypeUnknown
)

func columnTypeFromByte(b byte) ColumnType {
	if ColumnType(b) <= ColumnTypeGlobal {
		return ColumnType(b)
	}
	return ColumnTypeUnknown
}

// Table describes one table discovered in the file.
type Table struct {
	Index   int
	Name    string
	Skip    bool
}

// Column describes one column of a table.
type Column struct {
	Index     int
	Name      string
	Type      ColumnType
	Collation byte
}

// Metadata is a table list plus a column list per table. Columns is
// keyed by a table's 1-based position in Tables, not by its Index; use
// ColumnsFor to look columns up by table index.
type Metadata struct {
	Tables  []Table
	Columns map[int][]Column
}

// ColumnsFor returns the column list for a table index, or nil.
func (m *Metadata) ColumnsFor(tableIndex int) []Column {
	if m == nil {
		return nil
	}
	for i, t := range m.Tables {
		if t.Index == tableIndex {
			return m.Columns[i+1]
		}
	}
	return nil
}

func columnByIndex(cols []Column, idx int) *Column {
	for i := range cols {
		if cols[i].Index == idx {
			return &cols[i]
		}
	}
	return nil
}

// metadataExtractor implements chunkConsumer for the single-pass
// metadata discovery traversal.
type metadataExtractor struct {
	fp       *formatParams
	filename string

	tables  []Table        // 1-indexed via tables[i-1]; grown with holes
	columns map[int][]Column // table index -> columns, 1-indexed via columns[t][i-1]

	singleTableSeeded bool
}

func newMetadataExtractor(fp *formatParams, filename string) *metadataExtractor {
	return &metadataExtractor{
		fp:      fp,
		filename: filename,
		columns: make(map[int][]Column),
	}
}

func (e *metadataExtractor) ensureTables(idx int) {
	if idx > len(e.tables) {
		grown := make([]Table, idx)
		copy(grown, e.tables)
		e.tables = grown
	}
}

func (e *metadataExtractor) ensureColumns(tableIdx, colIdx int) {
	cols := e.columns[tableIdx]
	if colIdx > len(cols) {
		grown := make([]Column, colIdx)
		copy(grown, cols)
		cols = grown
		e.columns[tableIdx] = cols
	}
}

func (e *metadataExtractor) handleChunk(c *chunk) chunkStatus {
	if e.fp.versionNum >= 7 {
		return e.handleV7(c)
	}
	return e.handleV3(c)
}

// handleV7 applies the v7+ table/column recognition rules.
func (e *metadataExtractor) handleV7(c *chunk) chunkStatus {
	path := c.path
	vn := e.fp.versionNum

	// Table definition: path[0]==3, path[1]==16, path[2]==5, path[3]>=128.
	if pathValueAt(path, 0, vn) == 3 && pathValueAt(path, 1, vn) == 16 &&
		pathValueAt(path, 2, vn) == 5 && pathValueAt(path, 3, vn) >= 128 {

		if c.typ == chunkFieldRefSimple && c.refSimple == 16 {
			tableIndex := int(pathValueAt(path, 3, vn) - 128)
			e.recordTableName(c, tableIndex)
		}
		return chunkNext
	}

	// Column definition: path[0]>=128 (names the table).
	if pathValueAt(path, 0, vn) >= 128 {
		tableIndex := int(pathValueAt(path, 0, vn) - 128)

		if c.typ == chunkFieldRefSimple && matchStart2(path, vn, 3, 3, 5) {
			columnSeg := path.at(path.level - 1)
			columnIndex := int(pathValue(columnSeg, vn))

			if c.refSimple == 16 {
				e.recordColumnName(tableIndex, columnIndex, c)
			}
		}
		return chunkNext
	}

	// Past the metadata region.
	if v := pathValueAt(path, 0, vn); v > 3 && v < 128 {
		return chunkDone
	}

	return chunkNext
}

func (e *metadataExtractor) recordTableName(c *chunk, tableIndex int) {
	if tableIndex < 1 {
		return
	}
	e.ensureTables(tableIndex)
	t := &e.tables[tableIndex-1]
	t.Index = tableIndex
	t.Name = convert(e.fp.converter, c.data)
	e.ensureColumns(tableIndex, 0)
}

func (e *metadataExtractor) recordColumnName(tableIndex, columnIndex int, c *chunk) {
	if tableIndex < 1 || columnIndex < 1 {
		return
	}
	e.ensureColumns(tableIndex, columnIndex)
	col := &e.columns[tableIndex][columnIndex-1]
	col.Index = columnIndex
	col.Name = convert(e.fp.converter, c.data)
}

// handleV3 applies the pre-v7 recognition rules: a single synthesized
// table named after the source filename with its extension stripped.
func (e *metadataExtractor) handleV3(c *chunk) chunkStatus {
	vn := e.fp.versionNum
	if pathValueAt(c.path, 0, vn) > 3 {
		return chunkDone
	}
	if c.typ != chunkFieldRefSimple {
		return chunkNext
	}

	if !e.singleTableSeeded {
		e.ensureTables(1)
		e.tables[0] = Table{Index: 1, Name: stripExtension(e.filename)}
		e.ensureColumns(1, 0)
		e.singleTableSeeded = true
	}

	if matchStart2(c.path, vn, 3, 3, 5) {
		columnSeg := c.path.at(c.path.level - 1)
		columnIndex := int(pathValue(columnSeg, vn))
		e.recordColumnV3(columnIndex, c)
	}

	return chunkNext
}

func (e *metadataExtractor) recordColumnV3(columnIndex int, c *chunk) {
	if columnIndex < 1 {
		return
	}
	e.ensureColumns(1, columnIndex)
	col := &e.columns[1][columnIndex-1]

	switch c.refSimple {
	case 1:
		col.Name = convert(e.fp.converter, c.data)
		col.Index = columnIndex
	case 2:
		if len(c.data) > 3 {
			col.Type = columnTypeFromByte(c.data[1])
			col.Collation = c.data[3]
		}
	}
}

// stripExtension removes a trailing "." extension from a filename,
// using explicit, unsigned-safe bounds against an empty name.
func stripExtension(name string) string {
	if name == "" {
		return name
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// compact removes zero-index holes from the tables array, preserving
// relative order, and re-keys the columns map by compacted-table
// position, discarding the raw per-table-index mapping entirely once
// re-keyed.
func (e *metadataExtractor) compact() *Metadata {
	compacted := make([]Table, 0, len(e.tables))
	columns := make(map[int][]Column, len(e.columns))

	for _, t := range e.tables {
		if t.Index == 0 {
			continue
		}
		compacted = append(compacted, t)
		newPos := len(compacted)
		columns[newPos] = compactColumns(e.columns[t.Index])
	}

	return &Metadata{Tables: compacted, Columns: columns}
}

func compactColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Index != 0 {
			out = append(out, c)
		}
	}
	return out
}

// DiscoverAllMetadata performs a one-pass metadata extraction.
func (f *File) DiscoverAllMetadata() (*Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	extractor := newMetadataExtractor(f.fp, f.filename)
	if err := traverseBlocks(f.src, f.cache, f.fp, f.numBlocks, f.path, nil, extractor, f.diag); err != nil {
		return nil, err
	}

	meta := extractor.compact()
	f.diag.tableCount(len(meta.Tables))
	return meta, nil
}

// ListTables is a convenience façade over DiscoverAllMetadata.
func (f *File) ListTables() ([]Table, error) {
	meta, err := f.DiscoverAllMetadata()
	if err != nil {
		return nil, err
	}
	return meta.Tables, nil
}

// ListColumns is a convenience façade over DiscoverAllMetadata scoped to
// one table.
func (f *File) ListColumns(tableIndex int) ([]Column, error) {
	meta, err := f.DiscoverAllMetadata()
	if err != nil {
		return nil, err
	}
	return meta.ColumnsFor(tableIndex), nil
}

// FreeMetadata is a documented no-op: Metadata is an ordinary
// garbage-collected value with no manual memory to release.
func FreeMetadata(*Metadata) {}
