//go:build unix

package fmp

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sys/unix"
)

// mmapSource projects sectors as read-only sub-slices of a memory
// mapping. It is used when the file size exceeds mmapThreshold.
type mmapSource struct {
	data       []byte
	sectorSize int
	count      int
}

func newMmapSource(f *os.File, fileSize int64, sectorSize int) (*mmapSource, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(fileSize), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, newError(ErrMalloc, err)
	}
	return &mmapSource{
		data:       data,
		sectorSize: sectorSize,
		count:      int(fileSize) / sectorSize,
	}, nil
}

func (s *mmapSource) sectorCount() int { return s.count }

func (s *mmapSource) getSector(i int) ([]byte, error) {
	if i < 0 || i >= s.count {
		return nil, newError(ErrBadSector, nil)
	}
	off := i * s.sectorSize
	return s.data[off : off+s.sectorSize], nil
}

func (s *mmapSource) close() error {
	if s.data == nil {
		return nil
	}
	err := unix.Munmap(s.data)
	s.data = nil
	return err
}

// blockCache keeps hot decoded blocks around. Every block the traversal
// decodes is added to it; once it holds its capacity, the least recently
// used block is evicted and decoded again on demand if needed later.
type blockCache struct {
	cache *lru.Cache[int, *block]
}

// defaultHotCacheSize is the mapped backend's default LRU capacity.
const defaultHotCacheSize = 1024

func newBlockCache(size int) *blockCache {
	if size < 1 {
		size = defaultHotCacheSize
	}
	c, _ := lru.New[int, *block](size)
	return &blockCache{cache: c}
}

func (b *blockCache) get(idx int) (*block, bool) {
	if b == nil || b.cache == nil {
		return nil, false
	}
	return b.cache.Get(idx)
}

func (b *blockCache) put(idx int, blk *block) {
	if b == nil || b.cache == nil {
		return
	}
	b.cache.Add(idx, blk)
}
