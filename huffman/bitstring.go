package huffman

import (
	"bytes"
	"strings"

	"github.com/icza/bitio"
)

// A Bitstring is a finite sequence of bits, packed MSB-first into bytes.
// The zero value is the empty bitstring.
type Bitstring struct {
	data []byte
	n    int
}

// fromPath packs a sequence of 0/1 edge labels into a Bitstring.
func fromPath(path []byte) Bitstring {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	for _, b := range path {
		_ = w.WriteBool(b != 0)
	}
	_ = w.Close()
	return Bitstring{data: buf.Bytes(), n: len(path)}
}

// Len returns the number of bits in the string.
func (b Bitstring) Len() int { return b.n }

// Bytes returns the packed bits. The final byte is zero-padded, so callers
// that store a Bitstring must also store Len.
func (b Bitstring) Bytes() []byte { return b.data }

// Bit reports whether bit i is set. Bit 0 is the first bit of the string.
func (b Bitstring) Bit(i int) bool {
	return b.data[i>>3]&(0x80>>uint(i&7)) != 0
}

// String renders the bits as '0' and '1' characters.
func (b Bitstring) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		if b.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
