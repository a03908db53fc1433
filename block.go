package fmp

import "encoding/binary"

// block is a decoded sector. thisID is filled in by the traversal once
// the chain position is known.
type block struct {
	thisID  int
	prevID  int
	nextID  int
	deleted bool

	payload []byte
	chunks  *chunk
}

// readUint reads a big-endian unsigned integer of the given width (2 or
// 4 bytes observed across format families) starting at off.
func readUint(buf []byte, off, width int) uint32 {
	switch width {
	case 2:
		return uint32(binary.BigEndian.Uint16(buf[off:]))
	case 4:
		return binary.BigEndian.Uint32(buf[off:])
	default:
		return 0
	}
}

// decodeBlock parses one sector into a block. Header integer widths:
// pre-v7 uses 2-byte prev/next fields at the configured offsets; v7+
// uses 4-byte fields.
//
// The sector payload is XOR-masked as a whole so that the tokenizer in
// decodeChunks always operates on plaintext structure and content; the
// XOR involution itself (xor(xor(b,m),m) == b) is implemented once,
// here, by xorBytes.
func decodeBlock(sector []byte, fp *formatParams) (*block, error) {
	if len(sector) < fp.headLen {
		return nil, newError(ErrBadSector, nil)
	}

	width := 2
	if fp.versionNum >= 7 {
		width = 4
	}

	b := &block{
		prevID: int(readUint(sector, fp.prevOffset, width)),
		nextID: int(readUint(sector, fp.nextOffset, width)),
	}

	// The deletion flag occupies the low bit of the byte immediately
	// preceding the payload in both header families.
	b.deleted = fp.headLen > 0 && sector[fp.headLen-1]&0x01 != 0

	var payloadLen int
	if fp.payloadLenOffset < 0 {
		payloadLen = fp.sectorSize - fp.headLen
	} else {
		payloadLen = int(readUint(sector, fp.payloadLenOffset, 2))
	}
	if payloadLen < 0 || fp.headLen+payloadLen > len(sector) {
		payloadLen = len(sector) - fp.headLen
	}

	src := sector[fp.headLen : fp.headLen+payloadLen]
	b.payload = xorBytes(make([]byte, payloadLen), src, fp.xorMask)

	if !b.deleted {
		b.chunks = decodeChunks(b.payload, fp.versionNum)
	}

	return b, nil
}

// xorBytes writes src XOR mask into dst (byte-wise) and returns dst. A
// mask of 0 is a no-op copy (pre-v7 files carry no mask). Applying it
// twice with the same mask restores the original bytes.
func xorBytes(dst, src []byte, mask byte) []byte {
	if mask == 0 {
		copy(dst, src)
		return dst
	}
	for i, c := range src {
		dst[i] = c ^ mask
	}
	return dst
}
