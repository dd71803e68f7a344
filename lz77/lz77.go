// Package lz77 implements a sliding-window substitution transform.
//
// The compressed form is a sequence of (offset, length, literal) tokens:
// copy length bytes from the already-produced output, starting offset+1
// positions before its end, then append the literal. A copy may overlap the
// bytes it is producing; the run is re-read cyclically in that case.
package lz77

import (
	"bytes"
	"fmt"

	"github.com/chronos-tachyon/assert"

	"github.com/vprotsenko/press"
)

// A Token is the unit of compression.
type Token struct {
	// Offset is the distance from the end of the window to the start of
	// the matched run, counted backward and zero-based.
	Offset byte

	// Length is the number of bytes to copy.
	Length byte

	// Literal is the byte following the copied run, or the final input
	// byte when the match runs into the end of the input.
	Literal byte
}

// A Codec holds the tuning parameters for compression. The zero value
// compresses with a 256-byte window and a 256-byte lookahead; defaults are
// applied on first use.
//
// Both sizes must stay within 256 so that token fields fit in a byte.
// Decompression needs no parameters.
type Codec struct {
	// BufferSize caps the trailing window of already-consumed bytes that
	// matches may reference. The default is 256.
	BufferSize int

	// LookaheadSize bounds the match search ahead of the current
	// position. The default is 256. The longest emitted match is
	// LookaheadSize-1 bytes.
	LookaheadSize int

	window []byte
}

// Reset clears the window, preparing the Codec for a new stream.
func (c *Codec) Reset() {
	c.window = c.window[:0]
}

// CompressTokens compresses src, appending the tokens to dst.
func (c *Codec) CompressTokens(dst []Token, src []byte) ([]Token, error) {
	if len(src) == 0 {
		return dst, fmt.Errorf("lz77: %w", press.ErrEmptyInput)
	}
	if c.BufferSize == 0 {
		c.BufferSize = 256
	}
	if c.LookaheadSize == 0 {
		c.LookaheadSize = 256
	}
	assert.Assertf(c.BufferSize <= 256, "lz77: BufferSize %d does not fit a one-byte offset", c.BufferSize)
	assert.Assertf(c.LookaheadSize <= 256, "lz77: LookaheadSize %d does not fit a one-byte length", c.LookaheadSize)

	c.window = c.window[:0]
	for pos := 0; pos < len(src); {
		t := c.findMatch(src, pos)
		dst = append(dst, t)

		// The copied run and the literal both enter the window.
		n := int(t.Length) + 1
		c.window = append(c.window, src[pos:pos+n]...)
		if len(c.window) > c.BufferSize {
			delta := len(c.window) - c.BufferSize
			copy(c.window, c.window[delta:])
			c.window = c.window[:c.BufferSize]
		}
		pos += n
	}
	c.window = c.window[:0]
	return dst, nil
}

// Compress compresses src into a flat stream of 3-byte records.
func (c *Codec) Compress(src []byte) ([]byte, error) {
	tokens, err := c.CompressTokens(nil, src)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(tokens)*3)
	for _, t := range tokens {
		out = append(out, t.Offset, t.Length, t.Literal)
	}
	return out, nil
}

// findMatch scans the window for the longest run matching src at pos. Every
// window index whose byte equals src[pos] is a candidate start; ties go to
// the earliest-scanned index, which is the most distant offset.
func (c *Codec) findMatch(src []byte, pos int) Token {
	w := c.window
	bestLen := -1
	bestOff := 0
	for i := 0; i < len(w); i++ {
		if w[i] != src[pos] {
			continue
		}
		// The modulo wraps the read back to the start of the run, so a
		// match may copy bytes the copy itself will produce, and never
		// reads past the window's tail.
		span := len(w) - i
		n := 0
		for n < c.LookaheadSize {
			if pos+n >= len(src) || w[i+n%span] != src[pos+n] {
				break
			}
			n++
		}
		if n == c.LookaheadSize {
			n = c.LookaheadSize - 1
		}
		if n > bestLen {
			bestLen = n
			bestOff = len(w) - i - 1
		}
	}

	if bestLen < 0 {
		return Token{Offset: 0, Length: 0, Literal: src[pos]}
	}
	if pos+bestLen == len(src) {
		// The match runs to the end of the input; give back one byte so
		// the token still carries a literal.
		return Token{Offset: byte(bestOff), Length: byte(bestLen - 1), Literal: src[len(src)-1]}
	}
	return Token{Offset: byte(bestOff), Length: byte(bestLen), Literal: src[pos+bestLen]}
}

// Decompress replays a flat stream of 3-byte records.
func Decompress(src []byte) ([]byte, error) {
	return decompress(src, nil)
}

// Decompress implements press.Codec.
func (c *Codec) Decompress(src []byte) ([]byte, error) {
	return decompress(src, nil)
}

// DecompressVerify is Decompress with an integrity check: after every
// record, the reconstructed prefix is compared against the reference copy of
// the expected output, and any divergence fails with press.ErrCorruptStream.
// Well-formed streams never need this; it exists to pin down where a stream
// went bad.
func DecompressVerify(src, want []byte) ([]byte, error) {
	return decompress(src, want)
}

func decompress(src, want []byte) ([]byte, error) {
	if len(src)%3 != 0 {
		return nil, fmt.Errorf("lz77: payload of %d bytes is not a whole number of records: %w", len(src), press.ErrCorruptStream)
	}
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i += 3 {
		offset, length, literal := int(src[i]), int(src[i+1]), src[i+2]
		if length > 0 {
			start := len(out) - offset - 1
			if start < 0 {
				return nil, fmt.Errorf("lz77: record %d references %d bytes before the start of the output: %w", i/3, -start, press.ErrCorruptStream)
			}
			end := start + length
			if end > len(out) {
				end = len(out)
			}
			// Snapshot the run and cycle over it: when length exceeds
			// the back-reference span this re-reads the run just like
			// the encoder's modulo scan.
			run := out[start:end]
			for k := 0; k < length; k++ {
				out = append(out, run[k%len(run)])
			}
		}
		out = append(out, literal)

		if want != nil {
			if len(out) > len(want) || !bytes.Equal(out, want[:len(out)]) {
				return nil, fmt.Errorf("lz77: output diverges from the reference after record %d: %w", i/3, press.ErrCorruptStream)
			}
		}
	}
	return out, nil
}

var _ press.Codec = (*Codec)(nil)
