package fmp

// HandlerStatus is the closed set of values a value callback can
// return.
type HandlerStatus int

const (
	HandlerOK HandlerStatus = iota
	HandlerAbort
)

// ValueHandler is the per-table value callback.
type ValueHandler func(row, column int, col Column, value string) HandlerStatus

// TableValueHandler is the all-tables value callback.
type TableValueHandler func(tableIndex, row, column int, col Column, value string) HandlerStatus

// tableRowState is the per-table row assembly state.
type tableRowState struct {
	currentRow int
	lastRow    int
	lastColumn int

	longString     []byte
	longStringUsed int

	columns []Column
}

// rowAssembler implements chunkConsumer for the row-emission traversal.
type rowAssembler struct {
	fp       *formatParams
	metadata *Metadata
	handle   TableValueHandler

	states map[int]*tableRowState

	tableFilter int // 0 = all tables (read_all_values); >0 = single table (read_values)
}

func newRowAssembler(fp *formatParams, metadata *Metadata, handle TableValueHandler, tableFilter int) *rowAssembler {
	return &rowAssembler{
		fp:          fp,
		metadata:    metadata,
		handle:      handle,
		states:      make(map[int]*tableRowState),
		tableFilter: tableFilter,
	}
}

func (a *rowAssembler) stateFor(tableIndex int) *tableRowState {
	st, ok := a.states[tableIndex]
	if !ok {
		st = &tableRowState{columns: a.metadata.ColumnsFor(tableIndex)}
		a.states[tableIndex] = st
	}
	return st
}

func (a *rowAssembler) handleChunk(c *chunk) chunkStatus {
	vn := a.fp.versionNum

	var tableIndex int
	if vn >= 7 {
		p0 := pathValueAt(c.path, 0, vn)
		if p0 < 128 {
			return chunkNext
		}
		tableIndex = int(p0 - 128)
	} else {
		if pathValueAt(c.path, 0, vn) > 3 {
			return chunkNext
		}
		tableIndex = 1
	}

	if a.tableFilter != 0 && tableIndex != a.tableFilter {
		return chunkNext
	}

	table := tableByIndex(a.metadata.Tables, tableIndex)
	if table == nil || table.Skip {
		return chunkNext
	}

	if c.typ != chunkFieldRefSimple && c.typ != chunkDataSegment {
		return chunkNext
	}

	state := a.stateFor(tableIndex)
	if state.columns == nil {
		return chunkNext
	}

	return a.processValue(c, tableIndex, table, state)
}

func tableByIndex(tables []Table, idx int) *Table {
	for i := range tables {
		if tables[i].Index == idx {
			return &tables[i]
		}
	}
	return nil
}

// pathRow extracts the row-identifying path segment.
func pathRow(c *chunk) int {
	vn := c.versionNum
	if vn < 7 {
		return int(pathValueAt(c.path, 1, vn))
	}
	return int(pathValueAt(c.path, 2, vn))
}

// isLongStringContinuation determines whether a chunk continues a
// previously started long-string value rather than starting a new one.
func isLongStringContinuation(c *chunk, state *tableRowState) bool {
	if !matchStart1(c.path, c.versionNum, 3, 5) {
		return false
	}
	idx := columnSegmentIndex(c)
	if state.lastColumn == 0 || idx < state.lastColumn {
		return pathRow(c) > state.lastRow
	}
	return pathRow(c) == state.lastRow
}

func columnSegmentIndex(c *chunk) int {
	i := 3
	if c.versionNum < 7 {
		i = 2
	}
	return int(pathValueAt(c.path, i, c.versionNum))
}

// processValue classifies one chunk as a column value or a long-string
// fragment, flushing and advancing row/column state as needed, and
// emits a value to the caller's handler.
func (a *rowAssembler) processValue(c *chunk, tableIndex int, table *Table, state *tableRowState) chunkStatus {
	var longString bool
	var columnIndex int

	switch {
	case isLongStringContinuation(c, state):
		if c.typ == chunkFieldRefSimple && c.refSimple == 0 {
			return chunkNext // rich-text formatting, not real content
		}
		longString = true
		columnIndex = int(pathValueAt(c.path, c.path.level-1, c.versionNum))

	case matchStart1(c.path, c.versionNum, 2, 5):
		switch {
		case c.typ == chunkFieldRefSimple && int(c.refSimple) <= len(state.columns) && c.refSimple != 252:
			columnIndex = int(c.refSimple)
		case c.typ == chunkDataSegment && c.segmentIndex <= len(state.columns):
			columnIndex = c.segmentIndex
		}
	}

	if columnIndex == 0 || columnIndex > len(state.columns) {
		return chunkNext
	}

	column := columnByIndex(state.columns, columnIndex)
	if column == nil {
		return chunkNext
	}

	// Flush boundary: column changed with a pending long-string buffer.
	if column.Index != state.lastColumn && state.longStringUsed > 0 {
		if status := a.flushLongString(tableIndex, state); status == chunkAbort {
			return chunkAbort
		}
	}

	// Row advance.
	row := pathRow(c)
	if row != state.lastRow || column.Index < state.lastColumn {
		state.currentRow++
	}

	var status chunkStatus
	if longString {
		state.longString = append(state.longString, c.data...)
		state.longStringUsed = len(state.longString)
	} else {
		value := convert(a.fp.converter, c.data)
		status = a.emit(tableIndex, state.currentRow, *column, value)
	}

	state.lastRow = row
	state.lastColumn = column.Index

	return status
}

func (a *rowAssembler) flushLongString(tableIndex int, state *tableRowState) chunkStatus {
	if state.lastColumn == 0 {
		state.longString = state.longString[:0]
		state.longStringUsed = 0
		return chunkNext
	}
	col := columnByIndex(state.columns, state.lastColumn)
	if col == nil {
		state.longString = state.longString[:0]
		state.longStringUsed = 0
		return chunkNext
	}

	value := convert(a.fp.converter, state.longString[:state.longStringUsed])
	status := a.emit(tableIndex, state.currentRow, *col, value)

	state.longString = state.longString[:0]
	state.longStringUsed = 0
	return status
}

func (a *rowAssembler) emit(tableIndex, row int, col Column, value string) chunkStatus {
	if a.handle == nil {
		return chunkNext
	}
	if a.handle(tableIndex, row, col.Index, col, value) == HandlerAbort {
		return chunkAbort
	}
	return chunkNext
}

// finalFlush flushes any pending long-string buffers after all blocks
// have been consumed.
func (a *rowAssembler) finalFlush() error {
	for tableIndex, state := range a.states {
		if state.longStringUsed > 0 {
			if status := a.flushLongString(tableIndex, state); status == chunkAbort {
				return newError(ErrUserAborted, nil)
			}
		}
	}
	return nil
}

// ReadAllValues performs a one-pass row emission across every table.
func (f *File) ReadAllValues(metadata *Metadata, handle TableValueHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	assembler := newRowAssembler(f.fp, metadata, handle, 0)
	if err := traverseBlocks(f.src, f.cache, f.fp, f.numBlocks, f.path, nil, assembler, f.diag); err != nil {
		return err
	}
	return assembler.finalFlush()
}

// ReadValues performs a one-pass row emission scoped to one table; the
// callback omits the table index.
func (f *File) ReadValues(metadata *Metadata, tableIndex int, handle ValueHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	wrapped := func(_ int, row, column int, col Column, value string) HandlerStatus {
		if handle == nil {
			return HandlerOK
		}
		return handle(row, column, col, value)
	}

	assembler := newRowAssembler(f.fp, metadata, wrapped, tableIndex)
	if err := traverseBlocks(f.src, f.cache, f.fp, f.numBlocks, f.path, nil, assembler, f.diag); err != nil {
		return err
	}
	return assembler.finalFlush()
}
