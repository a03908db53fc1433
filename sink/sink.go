// Package sink defines the downstream consumer contract for decoded
// FileMaker rows. The decoder package itself knows nothing about SQL,
// files, or any other target; a Handler is the only boundary it talks
// across.
package sink

import "github.com/bsm/fmp"

// Status is the closed set of values a Handler can return from
// HandleValue, mirroring fmp.HandlerStatus at the sink boundary.
type Status int

const (
	OK Status = iota
	Abort
)

// Handler is implemented by anything that wants to receive decoded
// tables, columns, and values. CreateSchema is called once per run,
// before any HandleValue call, with the full metadata; HandleValue is
// called once per emitted value.
type Handler interface {
	CreateSchema(metadata *fmp.Metadata) error
	HandleValue(tableIndex, row int, column fmp.Column, value string) Status
}
