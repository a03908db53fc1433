package fmp

import "go.uber.org/zap"

// diagnostics is a side channel for progress and anomaly logging; it
// never gates control flow.
type diagnostics struct {
	log *zap.SugaredLogger
}

func newDiagnostics(l *zap.SugaredLogger) *diagnostics {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	return &diagnostics{log: l}
}

func (d *diagnostics) sectorCount(n int)       { d.log.Debugw("sector count discovered", "sectors", n) }
func (d *diagnostics) blockLoopDetected(i int) { d.log.Warnw("block chain loop detected", "block", i) }
func (d *diagnostics) tableCount(n int)        { d.log.Debugw("tables discovered", "tables", n) }
func (d *diagnostics) usingMmap(size int64)    { d.log.Infow("opening with mmap source", "file_size", size) }
func (d *diagnostics) usingStream(size int64)  { d.log.Infow("opening with stream source", "file_size", size) }
