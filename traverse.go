package fmp

import "github.com/bits-and-blooms/bitset"

// chunkStatus is the closed set of status codes a chunkConsumer can
// return to the dispatcher.
type chunkStatus int

const (
	chunkNext chunkStatus = iota
	chunkDone
	chunkAbort
)

// chunkConsumer is implemented by the metadata extractor and the row
// assembler.
type chunkConsumer interface {
	handleChunk(c *chunk) chunkStatus
}

// blockHandler is an optional pre-dispatch hook: returning false skips
// chunk dispatch for that block entirely (used by neither extractor
// nor assembler today, kept for pipeline symmetry).
type blockHandler func(b *block) bool

// dispatchBlock resets the path stack to depth 0, then iterates the
// block's chunk chain, maintaining path state and invoking consume for
// each chunk.
func dispatchBlock(path *pathStack, b *block, consume chunkConsumer) chunkStatus {
	path.reset()

	for c := b.chunks; c != nil; {
		c.path = path.snapshot()
		if c.typ == chunkPathPop {
			path.pop()
		}
		if c.typ == chunkPathPush {
			path.push(c.data)
		}

		switch status := consume.handleChunk(c); status {
		case chunkAbort:
			return chunkAbort
		case chunkDone:
			return chunkDone
		default:
			c = c.next
		}
	}
	return chunkNext
}

// traverseBlocks walks the block chain starting at block 1, dispatching
// each block's chunk chain to consume.
//
// Block 1 is special: its next_id field carries the file's total block
// count (validated in finishOpen), not a chain pointer, so the hop from
// block 1 to block 2 is hardcoded rather than following block 1's own
// next_id. Every block after that follows its own next_id normally.
//
// A bitset.BitSet sized to numBlocks tracks visited blocks
// unconditionally (numBlocks bits is negligible, so loop detection
// stays enabled regardless of block count). A 2*numBlocks iteration cap
// remains as a second, independent backstop.
func traverseBlocks(src sectorSource, cache *blockCache, fp *formatParams, numBlocks int, path *pathStack, handle blockHandler, consume chunkConsumer, diag *diagnostics) error {
	visited := bitset.New(uint(numBlocks))
	maxIterations := numBlocks * 2

	next := 1
	for iter := 0; next != 0 && next-1 < numBlocks; iter++ {
		if iter > maxIterations {
			break
		}

		idx := uint(next - 1)
		if visited.Test(idx) {
			diag.blockLoopDetected(next)
			break
		}
		visited.Set(idx)

		b, err := loadBlock(src, cache, fp, next)
		if err != nil {
			return err
		}
		b.thisID = next

		if handle == nil || handle(b) {
			status := dispatchBlock(path, b, consume)
			if status == chunkAbort {
				return newError(ErrUserAborted, nil)
			}
			if status == chunkDone {
				break
			}
		}

		if next == 1 {
			next = 2
		} else {
			next = b.nextID
		}
	}

	return nil
}

// loadBlock fetches block N (1-based) either from the bounded LRU block
// cache or by decoding the underlying sector on demand. The cache is
// sized generously enough to hold every block for the eager stream
// backend, and to a fixed hot-prefix-sized window for the mapped
// backend; plain LRU eviction lets Go's GC reclaim evicted entries.
// firstBlockSectorIndex gives the 0-based sector index of block 1,
// which differs by format family and is applied uniformly to both
// sector source backends so identical inputs yield identical results
// regardless of backend.
func loadBlock(src sectorSource, cache *blockCache, fp *formatParams, thisID int) (*block, error) {
	if blk, ok := cache.get(thisID); ok {
		return blk, nil
	}

	sectorIdx := firstBlockSectorIndex(fp) + (thisID - 1)
	sector, err := src.getSector(sectorIdx)
	if err != nil {
		return nil, err
	}

	blk, err := decodeBlock(sector, fp)
	if err != nil {
		return nil, err
	}

	cache.put(thisID, blk)
	return blk, nil
}

// firstBlockSectorIndex is the 0-based sector index of block 1: sector 0
// is always the header; pre-v7 files additionally reserve sector 1 as a
// throwaway sector.
func firstBlockSectorIndex(fp *formatParams) int {
	if fp.versionNum < 7 {
		return 2
	}
	return 1
}
