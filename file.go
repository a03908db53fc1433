package fmp

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// File is one open FileMaker database. It owns the sector source, the
// decoded-block cache, and the path stack; it is owned exclusively by
// whichever traversal is currently running.
type File struct {
	mu sync.Mutex

	fp       *formatParams
	filename string
	fileSize int64

	src   sectorSource
	cache *blockCache
	path  *pathStack

	numBlocks int

	f *os.File // nil for in-memory buffer opens

	diag *diagnostics
}

// OpenOption configures Open/OpenBuffer.
type OpenOption func(*openConfig)

type openConfig struct {
	logger        *zap.SugaredLogger
	mmapThreshold int64
	hotCacheSize  int
}

// WithLogger injects a structured logger for advisory diagnostics. The
// logger is never consulted for control flow, only for side-channel
// progress and anomaly reporting.
func WithLogger(l *zap.SugaredLogger) OpenOption {
	return func(c *openConfig) { c.logger = l }
}

// WithMmapThreshold overrides the file-size cutover point between the
// eager stream source and the memory-mapped source.
func WithMmapThreshold(bytes int64) OpenOption {
	return func(c *openConfig) { c.mmapThreshold = bytes }
}

// WithHotCacheSize overrides the mapped backend's bounded block cache
// capacity.
func WithHotCacheSize(n int) OpenOption {
	return func(c *openConfig) { c.hotCacheSize = n }
}

func newOpenConfig(opts []OpenOption) *openConfig {
	c := &openConfig{mmapThreshold: mmapThreshold, hotCacheSize: defaultHotCacheSize}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open opens a file from a filesystem path, selecting the stream or
// mapped sector source by file size.
func Open(path string, opts ...OpenOption) (*File, error) {
	cfg := newOpenConfig(opts)
	diag := newDiagnostics(cfg.logger)

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrOpen, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newError(ErrOpen, err)
	}

	filename := filepath.Base(path)

	// The header always occupies the first 1024 bytes regardless of
	// sector size or backend, so it is read directly before either
	// sector source is constructed.
	hdr := make([]byte, headerSize)
	if _, err := readFull(f, hdr); err != nil {
		f.Close()
		return nil, err
	}
	fp, err := parseHeader(hdr)
	if err != nil {
		f.Close()
		return nil, err
	}

	// A successful header parse positions a seekable stream immediately
	// past the throwaway sector. Sector addressing itself is handled
	// uniformly for both backends by firstBlockSectorIndex (traverse.go),
	// so this seek is kept as a literal, auditable side effect rather
	// than something later code depends on; the stream source always
	// reads the whole file from byte 0 regardless of where this leaves
	// the descriptor.
	if _, err := f.Seek(fp.throwawaySectorOffset(), 0); err != nil {
		f.Close()
		return nil, newError(ErrSeek, err)
	}

	var file *File
	if st.Size() > cfg.mmapThreshold {
		diag.usingMmap(st.Size())
		src, err := newMmapSource(f, st.Size(), fp.sectorSize)
		if err != nil {
			f.Close()
			return nil, err
		}
		file, err = finishOpen(fp, src, st.Size(), filename, diag, cfg)
		if err != nil {
			f.Close()
			return nil, err
		}
	} else {
		diag.usingStream(st.Size())
		if _, err := f.Seek(0, 0); err != nil {
			f.Close()
			return nil, newError(ErrSeek, err)
		}
		src, err := newStreamSource(f, st.Size(), fp.sectorSize)
		if err != nil {
			f.Close()
			return nil, err
		}
		file, err = finishOpen(fp, src, st.Size(), filename, diag, cfg)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	file.f = f
	return file, nil
}

// finishOpen validates the sector-count invariant against block 1 and
// assembles the File.
func finishOpen(fp *formatParams, src sectorSource, fileSize int64, filename string, diag *diagnostics, cfg *openConfig) (*File, error) {
	cacheSize := cfg.hotCacheSize
	if _, isStream := src.(*streamSource); isStream {
		cacheSize = src.sectorCount() + 1
	}
	cache := newBlockCache(cacheSize)

	first, err := loadBlock(src, cache, fp, 1)
	if err != nil {
		return nil, err
	}

	extra := 0
	if fp.versionNum < 7 {
		extra = 1
	}
	expectedSize := int64(first.nextID+1+extra) * int64(fp.sectorSize)
	if first.nextID == 0 || expectedSize != fileSize {
		return nil, newError(ErrBadSectorCount, nil)
	}

	diag.sectorCount(first.nextID)

	return &File{
		fp:        fp,
		filename:  filename,
		fileSize:  fileSize,
		src:       src,
		cache:     cache,
		path:      newPathStack(),
		numBlocks: first.nextID,
		diag:      diag,
	}, nil
}

// OpenBuffer opens a file from an in-memory buffer. Only the eager
// stream-style backend is supported for buffer-backed opens, since
// there is no file descriptor to memory-map.
func OpenBuffer(buf []byte, opts ...OpenOption) (*File, error) {
	cfg := newOpenConfig(opts)
	diag := newDiagnostics(cfg.logger)

	if len(buf) < headerSize {
		return nil, newError(ErrNoInMemoryOpenSupport, nil)
	}

	fp, err := parseHeader(buf[:headerSize])
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(buf)
	src, err := newStreamSource(r, int64(len(buf)), fp.sectorSize)
	if err != nil {
		return nil, err
	}

	return finishOpen(fp, src, int64(len(buf)), "", diag, cfg)
}

// Close releases every resource acquired by Open, in reverse order.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.src.close()
	if f.f != nil {
		if cerr := f.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func readFull(f *os.File, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.Read(buf[n:])
		n += m
		if err != nil {
			return n, newError(ErrRead, err)
		}
	}
	return n, nil
}
