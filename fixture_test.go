package fmp_test

import (
	"encoding/binary"
	"fmt"
)

// fixture builds a minimal, valid HBAM7 (fp7) in-memory file byte for
// byte, using the same sector/block/chunk layout header.go/block.go/
// chunk.go decode (grounded on original_source/src/fmp.c's HBAM7
// header). fmp has no writer (writing FileMaker files is an explicit
// non-goal), so tests construct fixtures directly rather than through
// the public API.
type fixture struct {
	tableName string
	columns   []string
	rows      [][]string // rows[i][j] is the value for columns[j]
}

const (
	fixtureSectorSize = 4096
	fixtureHeadLen     = 20
	fixtureXorMask     = byte(0x5A)
	fixtureTableIndex  = 1
)

var fixtureMagic = []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01, 0x00, 0x05, 0x00, 0x02, 0x00, 0x02, 0xC0}

func (fx fixture) build() []byte {
	metaPayload := fx.buildMetadataPayload()

	var rowPayloads [][]byte
	for i, row := range fx.rows {
		rowPayloads = append(rowPayloads, fx.buildRowPayload(i, row))
	}

	total := 1 + len(rowPayloads) // block count including the metadata block
	buf := make([]byte, 0, (total+1)*fixtureSectorSize)
	buf = append(buf, fixtureHeaderSector()...)
	buf = append(buf, fixtureSector(0, total, metaPayload)...)

	for i, payload := range rowPayloads {
		blockNum := i + 2
		next := blockNum + 1
		if blockNum == total {
			next = 0
		}
		buf = append(buf, fixtureSector(blockNum, next, payload)...)
	}
	return buf
}

func fixtureHeaderSector() []byte {
	sec := make([]byte, fixtureSectorSize)
	copy(sec, fixtureMagic)
	copy(sec[15:20], []byte("HBAM7"))
	return sec
}

func fixtureSector(prevID, nextID int, plainPayload []byte) []byte {
	sec := make([]byte, fixtureSectorSize)
	binary.BigEndian.PutUint32(sec[4:], uint32(prevID))
	binary.BigEndian.PutUint32(sec[8:], uint32(nextID))

	payload := sec[fixtureHeadLen:]
	for i, c := range plainPayload {
		payload[i] = c ^ fixtureXorMask
	}
	return sec
}

func (fx fixture) buildMetadataPayload() []byte {
	var buf []byte
	buf = append(buf, fxPush1(3)...)
	buf = append(buf, fxPush1(16)...)
	buf = append(buf, fxPush1(5)...)
	buf = append(buf, fxPush2(128+fixtureTableIndex)...)
	buf = append(buf, fxFieldRef(16, []byte(fx.tableName))...)
	buf = append(buf, fxPop(), fxPop(), fxPop(), fxPop())

	for i, name := range fx.columns {
		col := i + 1
		buf = append(buf, fxPush2(128+fixtureTableIndex)...)
		buf = append(buf, fxPush1(3)...)
		buf = append(buf, fxPush1(5)...)
		buf = append(buf, fxPush1(byte(col))...)
		buf = append(buf, fxFieldRef(16, []byte(name))...)
		buf = append(buf, fxPop(), fxPop(), fxPop(), fxPop())
	}
	return buf
}

func (fx fixture) buildRowPayload(rowNum int, values []string) []byte {
	var buf []byte
	buf = append(buf, fxPush2(128+fixtureTableIndex)...)
	buf = append(buf, fxPush1(5)...)
	buf = append(buf, fxPush2(128+rowNum)...)
	for i, v := range values {
		col := byte(i + 1)
		buf = append(buf, fxFieldRef(col, []byte(v))...)
	}
	buf = append(buf, fxPop(), fxPop(), fxPop())
	return buf
}

func fxPush1(v byte) []byte { return []byte{0x01, 1, v} }

func fxPush2(v int) []byte {
	hi := byte(((v - 0x80) >> 8) & 0x7F)
	lo := byte((v - 0x80) & 0xFF)
	return []byte{0x01, 2, hi, lo}
}

func fxPop() byte { return 0x02 }

func fxFieldRef(ref byte, data []byte) []byte {
	out := []byte{0x03, ref}
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(len(data)))
	out = append(out, lenBuf...)
	return append(out, data...)
}

// fxLongStringRow builds the row payload for a single row whose one
// column value is split across consecutive FIELD_REF_SIMPLE chunks.
// Every fragment, including the first, is pushed one path segment
// deeper than a normal column-start chunk (matching
// isLongStringContinuation's matchStart1(path,vn,3,5)); rows.go
// classifies the first fragment as a continuation too, since its
// lastRow/lastColumn bookkeeping starts at zero, exactly the state a
// genuinely new long-string value begins from.
func fxLongStringRow(rowNum int, fragments []string) []byte {
	var buf []byte
	buf = append(buf, fxPush2(128+fixtureTableIndex)...)
	buf = append(buf, fxPush1(5)...)
	buf = append(buf, fxPush2(128+rowNum)...)

	for _, frag := range fragments {
		buf = append(buf, fxPush1(1)...) // column 1, pushed at long-string depth
		buf = append(buf, fxFieldRef(1, []byte(frag))...)
		buf = append(buf, fxPop())
	}

	buf = append(buf, fxPop(), fxPop(), fxPop())
	return buf
}

var _ = fmt.Sprintf // keep fmt imported for fixtures that format values
