package fmp

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("stripExtension", func() {
	It("removes a trailing extension", func() {
		Expect(stripExtension("Contacts.fp7")).To(Equal("Contacts"))
	})

	It("leaves a name with no extension unchanged", func() {
		Expect(stripExtension("Contacts")).To(Equal("Contacts"))
	})

	It("leaves a dotfile-style leading dot unchanged", func() {
		Expect(stripExtension(".fp7")).To(Equal(".fp7"))
	})

	It("handles an empty name without underflow", func() {
		Expect(stripExtension("")).To(Equal(""))
	})
})

var _ = Describe("metadataExtractor.compact", func() {
	It("removes zero-index holes and re-keys columns by compacted position", func() {
		e := newMetadataExtractor(&formatParams{versionNum: 7}, "x.fp7")

		// Simulate discovery of tables at sparse indices 2 and 5, with a
		// hole at 1, 3 and 4 (as ensureTables leaves behind).
		e.recordTableName(&chunk{data: []byte("Second")}, 2)
		e.recordTableName(&chunk{data: []byte("Fifth")}, 5)
		e.recordColumnName(2, 1, &chunk{data: []byte("A")})
		e.recordColumnName(5, 1, &chunk{data: []byte("Z")})

		meta := e.compact()
		Expect(meta.Tables).To(HaveLen(2))
		Expect(meta.Tables[0].Name).To(Equal("Second"))
		Expect(meta.Tables[1].Name).To(Equal("Fifth"))

		// Re-keyed by compacted position (1, 2), not original index (2, 5).
		Expect(meta.Columns[1]).To(HaveLen(1))
		Expect(meta.Columns[1][0].Name).To(Equal("A"))
		Expect(meta.Columns[2]).To(HaveLen(1))
		Expect(meta.Columns[2][0].Name).To(Equal("Z"))
		Expect(meta.Columns).NotTo(HaveKey(5))
	})

	It("drops zero-index column holes", func() {
		cols := []Column{{}, {Index: 1, Name: "A"}, {}, {Index: 3, Name: "C"}}
		out := compactColumns(cols)
		Expect(out).To(HaveLen(2))
		Expect(out[0].Name).To(Equal("A"))
		Expect(out[1].Name).To(Equal("C"))
	})
})

var _ = Describe("columnTypeFromByte", func() {
	It("maps recognized bytes to their ColumnType", func() {
		Expect(columnTypeFromByte(0)).To(Equal(ColumnTypeString))
		Expect(columnTypeFromByte(1)).To(Equal(ColumnTypeNumber))
	})

	It("maps out-of-range bytes to ColumnTypeUnknown", func() {
		Expect(columnTypeFromByte(200)).To(Equal(ColumnTypeUnknown))
	})
})
