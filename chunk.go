package fmp

import "encoding/binary"

// chunkType is the closed set of chunk kinds a block payload can carry.
// The literal on-wire byte values are internal to this decoder: the
// real FileMaker token encoding is proprietary, so decodeChunks below
// defines one closed, self-consistent tokenizer over them.
type chunkType byte

const (
	chunkEndOfPayload  chunkType = 0x00
	chunkPathPush      chunkType = 0x01
	chunkPathPop       chunkType = 0x02
	chunkFieldRefSimple chunkType = 0x03
	chunkDataSegment   chunkType = 0x04
	chunkNoop          chunkType = 0x05
)

// chunk is one decoded record inside a block's payload.
type chunk struct {
	typ          chunkType
	data         []byte
	refSimple    byte
	segmentIndex int

	path       snapshot
	versionNum int

	next *chunk
}

// decodeChunks linearly parses a block's payload into a singly linked
// list of chunks. It is pure and deterministic given the payload:
// malformed trailing bytes truncate the chain rather than erroring.
func decodeChunks(payload []byte, versionNum int) *chunk {
	var head, tail *chunk
	pos := 0

	appendChunk := func(c *chunk) {
		c.versionNum = versionNum
		if tail == nil {
			head = c
		} else {
			tail.next = c
		}
		tail = c
	}

	for pos < len(payload) {
		typ := chunkType(payload[pos])
		pos++

		switch typ {
		case chunkEndOfPayload:
			return head

		case chunkPathPush:
			if pos >= len(payload) {
				return head
			}
			segLen := int(payload[pos])
			pos++
			if segLen < 1 || segLen > 3 || pos+segLen > len(payload) {
				return head
			}
			appendChunk(&chunk{typ: typ, data: payload[pos : pos+segLen]})
			pos += segLen

		case chunkPathPop:
			appendChunk(&chunk{typ: typ})

		case chunkFieldRefSimple:
			if pos+3 > len(payload) {
				return head
			}
			ref := payload[pos]
			length := int(binary.BigEndian.Uint16(payload[pos+1:]))
			pos += 3
			if pos+length > len(payload) {
				return head
			}
			appendChunk(&chunk{typ: typ, refSimple: ref, data: payload[pos : pos+length]})
			pos += length

		case chunkDataSegment:
			if pos+4 > len(payload) {
				return head
			}
			segIdx := int(binary.BigEndian.Uint16(payload[pos:]))
			length := int(binary.BigEndian.Uint16(payload[pos+2:]))
			pos += 4
			if pos+length > len(payload) {
				return head
			}
			appendChunk(&chunk{typ: typ, segmentIndex: segIdx, data: payload[pos : pos+length]})
			pos += length

		case chunkNoop:
			if pos+2 > len(payload) {
				return head
			}
			length := int(binary.BigEndian.Uint16(payload[pos:]))
			pos += 2
			if pos+length > len(payload) {
				return head
			}
			appendChunk(&chunk{typ: typ, data: payload[pos : pos+length]})
			pos += length

		default:
			// Unrecognized type code: stop rather than misinterpret the
			// remainder of the payload as something it isn't.
			return head
		}
	}

	return head
}
