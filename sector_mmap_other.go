//go:build !unix

package fmp

import "os"

// On non-Unix platforms there is no mmap(2); Open always falls back to
// the eager stream source regardless of file size.
func newMmapSource(f *os.File, fileSize int64, sectorSize int) (*streamSource, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return nil, newError(ErrSeek, err)
	}
	return newStreamSource(f, fileSize, sectorSize)
}

type blockCache struct{}

const defaultHotCacheSize = 1024

func newBlockCache(size int) *blockCache { return &blockCache{} }

func (b *blockCache) get(idx int) (*block, bool) { return nil, false }
func (b *blockCache) put(idx int, blk *block)    {}
