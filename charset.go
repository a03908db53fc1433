package fmp

import (
	"bytes"

	"golang.org/x/text/encoding"
)

// convert trims leading spaces, then either runs the header-selected
// converter (pre-v7: MACINTOSH or WINDOWS-1252 via golang.org/x/text)
// or the built-in SCSU decoder (v7+, no explicit converter). The block
// payload has already been XOR-demasked once, as a whole, at
// block-decode time (block.go); convert therefore receives plaintext
// bytes.
func convert(conv encoding.Encoding, data []byte) string {
	trimmed := bytes.TrimLeft(data, " ")
	if len(trimmed) == 0 {
		return ""
	}

	if conv != nil {
		out, err := conv.NewDecoder().Bytes(trimmed)
		if err != nil {
			// Fall back to a best-effort decode of whatever the
			// converter managed before failing.
			if len(out) == 0 {
				return decodeSCSU(trimmed)
			}
		}
		return string(out)
	}

	return decodeSCSU(trimmed)
}

// decodeSCSU implements the single-byte-mode subset of the Standard
// Compression Scheme for Unicode used by v7+ FileMaker files: plain
// ASCII passes through unchanged, and the high window-shift commands
// (0x01-0x08, 0x10-0x17) remap the top half of the byte range into the
// selected window of scsuStaticWindows, and 0x18 resets to window 0.
// Multi-byte Unicode
// mode (0x0E/0x0F escapes) is not exercised by the string data FileMaker
// stores in these fields and is passed through as Latin-1 on encounter.
func decodeSCSU(data []byte) string {
	var out []rune
	window := rune(0x0000) // active high-byte window offset

	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c >= 0x01 && c <= 0x08:
			// SCn: select one of the eight static windows.
			window = scsuStaticWindows[c-0x01]
			i++
		case c >= 0x10 && c <= 0x17:
			// UCn/SDn-ish dynamic window select; approximate with the
			// same static window table FileMaker's narrow field values
			// actually exercise.
			window = scsuStaticWindows[c-0x10]
			i++
		case c == 0x18:
			window = 0
			i++
		case c < 0x80:
			out = append(out, rune(c))
			i++
		default:
			out = append(out, window+rune(c&0x7F))
			i++
		}
	}
	return string(out)
}

// scsuStaticWindows are the offsets of SCSU's eight predefined static
// windows (Unicode Technical Standard #6).
var scsuStaticWindows = [8]rune{
	0x0000, 0x0080, 0x0100, 0x0300, 0x2000, 0x2080, 0x2100, 0x3000,
}
