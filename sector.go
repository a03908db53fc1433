package fmp

import "io"

// mmapThreshold is the file-size cutover point at which Open selects the
// memory-mapped sector source over the eager stream source.
const mmapThreshold = 100 * 1024 * 1024

// sectorSource is the contract both backends implement: getSector
// returns the raw bytes of 0-based sector i.
type sectorSource interface {
	sectorCount() int
	getSector(i int) ([]byte, error)
	close() error
}

// streamSource eagerly reads every sector into memory during open. It is
// selected for files that comfortably fit in memory.
type streamSource struct {
	sectors [][]byte
}

func newStreamSource(r io.Reader, fileSize int64, sectorSize int) (*streamSource, error) {
	count := int(fileSize) / sectorSize
	buf := make([]byte, int64(count)*int64(sectorSize))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, newError(ErrRead, err)
	}

	sectors := make([][]byte, count)
	for i := 0; i < count; i++ {
		sectors[i] = buf[i*sectorSize : (i+1)*sectorSize]
	}
	return &streamSource{sectors: sectors}, nil
}

func (s *streamSource) sectorCount() int { return len(s.sectors) }

func (s *streamSource) getSector(i int) ([]byte, error) {
	if i < 0 || i >= len(s.sectors) {
		return nil, newError(ErrBadSector, nil)
	}
	return s.sectors[i], nil
}

func (s *streamSource) close() error { return nil }
