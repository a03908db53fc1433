package fmp

import (
	"bytes"
	"io"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const headerSize = 1024

var magic = []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01, 0x00, 0x05, 0x00, 0x02, 0x00, 0x02, 0xC0}

// formatParams holds everything the header parser selects about a file's
// on-disk layout.
type formatParams struct {
	versionNum int
	sectorSize int

	xorMask byte

	prevOffset       int
	nextOffset       int
	payloadLenOffset int // -1 means implicit: sectorSize - headLen
	headLen          int
	sectorIndexShift int

	converter encoding.Encoding // nil for v7+, which uses the built-in SCSU decoder

	versionDate   time.Time
	versionString string
}

// parseHeader validates the 15-byte magic signature, then fills in the
// format parameters for the rest of the pipeline according to the HBAM
// family tag. A tag other than HBAM3/HBAM5/HBAM7 is not rejected; it
// selects the generic pre-v7 parameters.
func parseHeader(buf []byte) (*formatParams, error) {
	if len(buf) < headerSize {
		return nil, newError(ErrRead, io.ErrUnexpectedEOF)
	}
	if !bytes.Equal(buf[:len(magic)], magic) {
		return nil, newError(ErrBadMagic, nil)
	}

	fp := &formatParams{}
	tag := string(buf[15:20])

	switch tag {
	case "HBAM7":
		fp.sectorSize = 4096
		fp.xorMask = 0x5A
		fp.prevOffset = 4
		fp.nextOffset = 8
		fp.payloadLenOffset = -1
		fp.headLen = 20
		if buf[521] == 0x1E {
			fp.versionNum = 12
		} else {
			fp.versionNum = 7
		}
		// No explicit converter: values use the built-in SCSU->UTF-8 decoder.

	case "HBAM3":
		fp.sectorSize = 1024
		fp.prevOffset = 2
		fp.nextOffset = 6
		fp.payloadLenOffset = 12
		fp.headLen = 14
		fp.sectorIndexShift = 1
		fp.versionNum = 3
		fp.converter = charmap.Macintosh

	case "HBAM5":
		fp.sectorSize = 1024
		fp.prevOffset = 2
		fp.nextOffset = 6
		fp.payloadLenOffset = 12
		fp.headLen = 14
		fp.sectorIndexShift = 1
		fp.versionNum = 5
		fp.converter = charmap.Windows1252

	default:
		// Pre-v7 generic family: size/offsets as specified, charset unset
		// (falls back to the MACINTOSH converter, the most common case).
		fp.sectorSize = 1024
		fp.prevOffset = 2
		fp.nextOffset = 6
		fp.payloadLenOffset = 12
		fp.headLen = 14
		fp.sectorIndexShift = 1
		fp.versionNum = 5
		fp.converter = charmap.Macintosh
	}

	fp.versionDate, _ = time.Parse("02-Jan-06", string(bytes.TrimRight(buf[531:538], "\x00 ")))
	fp.versionString = pascalString(buf[541:])

	return fp, nil
}

// pascalString reads a single length-prefixed (Pascal) string starting
// at buf[0].
func pascalString(buf []byte) string {
	if len(buf) == 0 {
		return ""
	}
	n := int(buf[0])
	if n+1 > len(buf) {
		n = len(buf) - 1
	}
	if n < 0 {
		return ""
	}
	return string(buf[1 : 1+n])
}

// throwawaySectorOffset is the position a seekable stream must be
// positioned at immediately after a successful header parse.
func (fp *formatParams) throwawaySectorOffset() int64 {
	if fp.sectorSize == 1024 {
		return int64(2 * fp.sectorSize)
	}
	return int64(fp.sectorSize)
}
