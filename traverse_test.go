package fmp

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// fakeSectorSource is an in-memory sectorSource built by hand for
// traversal tests, independent of the stream/mmap backends.
type fakeSectorSource struct {
	sectors [][]byte
}

func (f *fakeSectorSource) sectorCount() int { return len(f.sectors) }
func (f *fakeSectorSource) close() error     { return nil }
func (f *fakeSectorSource) getSector(i int) ([]byte, error) {
	if i < 0 || i >= len(f.sectors) {
		return nil, newError(ErrBadSector, nil)
	}
	return f.sectors[i], nil
}

const fakeSectorSize = 32
const fakeHeadLen = 20

func fakeSector(prevID, nextID uint32) []byte {
	sec := make([]byte, fakeSectorSize)
	binary.BigEndian.PutUint32(sec[4:], prevID)
	binary.BigEndian.PutUint32(sec[8:], nextID)
	return sec
}

type recordingConsumer struct{}

func (recordingConsumer) handleChunk(*chunk) chunkStatus { return chunkNext }

var _ = Describe("traverseBlocks", func() {
	fp := &formatParams{versionNum: 7, sectorSize: fakeSectorSize, headLen: fakeHeadLen, prevOffset: 4, nextOffset: 8, payloadLenOffset: -1}

	It("hardcodes the hop from block 1 to block 2 regardless of block 1's next_id", func() {
		src := &fakeSectorSource{sectors: [][]byte{
			make([]byte, fakeSectorSize), // sector 0: header, unused here
			fakeSector(0, 999),           // sector 1: block 1, next_id holds the total block count
			fakeSector(1, 0),             // sector 2: block 2, terminates the chain
		}}

		var visited []int
		handle := func(b *block) bool { visited = append(visited, b.thisID); return true }

		err := traverseBlocks(src, newBlockCache(4), fp, 2, newPathStack(), handle, recordingConsumer{}, newDiagnostics(nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(visited).To(Equal([]int{1, 2}))
	})

	It("stops and reports a loop rather than spinning forever on a cyclic chain", func() {
		src := &fakeSectorSource{sectors: [][]byte{
			make([]byte, fakeSectorSize),
			fakeSector(0, 999), // block 1
			fakeSector(1, 1),   // block 2 points back at block 1
		}}

		var visited []int
		handle := func(b *block) bool { visited = append(visited, b.thisID); return true }

		err := traverseBlocks(src, newBlockCache(4), fp, 2, newPathStack(), handle, recordingConsumer{}, newDiagnostics(nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(visited).To(Equal([]int{1, 2}))
	})

	It("terminates a single-block file after dispatching block 1 once", func() {
		src := &fakeSectorSource{sectors: [][]byte{
			make([]byte, fakeSectorSize),
			fakeSector(0, 1), // block 1 is the only block
		}}

		var visited []int
		handle := func(b *block) bool { visited = append(visited, b.thisID); return true }

		err := traverseBlocks(src, newBlockCache(4), fp, 1, newPathStack(), handle, recordingConsumer{}, newDiagnostics(nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(visited).To(Equal([]int{1}))
	})
})
