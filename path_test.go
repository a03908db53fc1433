package fmp

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("pathValue", func() {
	It("decodes 1-byte segments as a raw literal", func() {
		Expect(pathValue([]byte{5}, 7)).To(Equal(uint64(5)))
		Expect(pathValue([]byte{200}, 7)).To(Equal(uint64(200)))
	})

	It("decodes 2-byte segments relative to 0x80", func() {
		Expect(pathValue([]byte{0x00, 0x01}, 7)).To(Equal(uint64(0x81)))
		Expect(pathValue([]byte{0x01, 0x00}, 7)).To(Equal(uint64(0x80 + 0x100)))
	})

	It("decodes 3-byte segments differently for v7+ and pre-v7", func() {
		seg := []byte{0x3F, 0x01, 0x02}
		Expect(pathValue(seg, 7)).To(Equal(uint64(0x80 + 0x0102)))
		Expect(pathValue(seg, 5)).To(Equal(uint64(0xC000 + 0x3F0102)))
	})

	It("returns 0 for an unrecognized segment length", func() {
		Expect(pathValue([]byte{1, 2, 3, 4}, 7)).To(Equal(uint64(0)))
		Expect(pathValue(nil, 7)).To(Equal(uint64(0)))
	})
})

var _ = Describe("tableDepth", func() {
	It("subtracts one from the path level for v7+", func() {
		s := snapshot{segments: [][]byte{{1}, {2}, {3}}, level: 3}
		Expect(tableDepth(s, 7)).To(Equal(2))
	})

	It("leaves the path level unchanged pre-v7", func() {
		s := snapshot{segments: [][]byte{{1}, {2}, {3}}, level: 3}
		Expect(tableDepth(s, 5)).To(Equal(3))
	})
})

var _ = Describe("matchStart1 / matchStart2", func() {
	It("matches a v7+ table-prefixed path", func() {
		s := snapshot{segments: [][]byte{{129}, {5}}, level: 2}
		Expect(matchStart1(s, 7, 1, 5)).To(BeTrue())
		Expect(matchStart1(s, 7, 2, 5)).To(BeFalse())
		Expect(matchStart1(s, 7, 1, 6)).To(BeFalse())
	})

	It("requires path[0] to select a table for v7+", func() {
		s := snapshot{segments: [][]byte{{3}, {5}}, level: 2}
		Expect(matchStart1(s, 7, 1, 5)).To(BeFalse())
	})

	It("matches pre-v7 by literal path[0] equality", func() {
		s := snapshot{segments: [][]byte{{3}}, level: 1}
		Expect(matchStart1(s, 5, 1, 3)).To(BeTrue())
	})

	It("matches a two-segment start for v7+", func() {
		s := snapshot{segments: [][]byte{{129}, {3}, {5}}, level: 3}
		Expect(matchStart2(s, 7, 2, 3, 5)).To(BeTrue())
		Expect(matchStart2(s, 7, 2, 5, 3)).To(BeFalse())
	})
})

var _ = Describe("xorBytes", func() {
	It("is its own inverse for any non-zero mask", func() {
		src := []byte("some plaintext payload bytes")
		masked := xorBytes(make([]byte, len(src)), src, 0x5A)
		restored := xorBytes(make([]byte, len(masked)), masked, 0x5A)
		Expect(restored).To(Equal(src))
		Expect(masked).NotTo(Equal(src))
	})

	It("is a no-op copy for a zero mask", func() {
		src := []byte("unmasked")
		out := xorBytes(make([]byte, len(src)), src, 0)
		Expect(out).To(Equal(src))
	})
})
