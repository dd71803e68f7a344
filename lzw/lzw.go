// Package lzw implements an adaptive-dictionary transform.
//
// Unlike canonical LZW, the dictionary is not seeded with a fixed 0-255
// alphabet: it starts with only the byte values that actually occur in the
// input, and that seed set travels in the payload header so the decoder can
// rebuild an index-identical dictionary. Both sides then grow the dictionary
// in lockstep, one entry per emitted code.
package lzw

import (
	"encoding/binary"
	"fmt"

	"github.com/vprotsenko/press"
)

// Payload layout:
//
//	u32le seedLen
//	byte[seedLen] seed bytes
//	u32le codeLen (byte length of the code section)
//	u32be code[codeLen/4]

// A Codec compresses and decompresses byte sequences. It is stateless; the
// zero value is ready to use.
type Codec struct{}

// Seed returns the seed dictionary for src: each distinct byte value present
// in src, in ascending order. The order is arbitrary but must be stable,
// since the serialized seed defines the decoder's dictionary indices.
func Seed(src []byte) []byte {
	var seen [256]bool
	for _, b := range src {
		seen[b] = true
	}
	s := make([]byte, 0, 64)
	for v := 0; v < 256; v++ {
		if seen[v] {
			s = append(s, byte(v))
		}
	}
	return s
}

// A dict is the growing dictionary, ordered by index. Entries are only ever
// appended; existing entries never change. The map mirrors the slice for
// O(1) membership tests — a new entry is always longest-match plus one byte,
// which by construction is not yet present, so indices stay unique.
type dict struct {
	entries [][]byte
	index   map[string]int
}

func newDict(seed []byte) *dict {
	d := &dict{
		entries: make([][]byte, 0, len(seed)+64),
		index:   make(map[string]int, len(seed)*2),
	}
	for _, b := range seed {
		d.add([]byte{b})
	}
	return d
}

func (d *dict) add(entry []byte) {
	d.index[string(entry)] = len(d.entries)
	d.entries = append(d.entries, entry)
}

// longestPrefix returns the index of the longest dictionary entry that is a
// prefix of src. It extends the candidate one byte at a time and stops as
// soon as the extension is no longer in the dictionary, or src is exhausted.
// src must be non-empty and its first byte seeded.
func (d *dict) longestPrefix(src []byte) int {
	n := 1
	for n < len(src) {
		if _, ok := d.index[string(src[:n+1])]; !ok {
			break
		}
		n++
	}
	return d.index[string(src[:n])]
}

// Compress encodes src as a seed dictionary plus a stream of codes.
func (Codec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("lzw: %w", press.ErrEmptyInput)
	}
	seed := Seed(src)
	d := newDict(seed)

	codes := make([]uint32, 0, len(src)/2)
	for i := 0; i < len(src); {
		id := d.longestPrefix(src[i:])
		entry := d.entries[id]
		codes = append(codes, uint32(id))
		i += len(entry)
		if i < len(src) {
			grown := make([]byte, 0, len(entry)+1)
			grown = append(append(grown, entry...), src[i])
			d.add(grown)
		}
	}

	out := make([]byte, 0, 8+len(seed)+4*len(codes))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(seed)))
	out = append(out, seed...)
	out = binary.LittleEndian.AppendUint32(out, uint32(4*len(codes)))
	for _, code := range codes {
		out = binary.BigEndian.AppendUint32(out, code)
	}
	return out, nil
}

// Decompress rebuilds the seed dictionary from the header and replays the
// code stream, growing the dictionary exactly as the encoder did.
//
// A code one past the current dictionary end is not an error: it names the
// entry the encoder was about to create, whose bytes are the previous entry
// plus its own first byte.
func (Codec) Decompress(src []byte) ([]byte, error) {
	if len(src) < 4 {
		return nil, fmt.Errorf("lzw: payload of %d bytes has no header: %w", len(src), press.ErrMalformedHeader)
	}
	seedLen := int(binary.LittleEndian.Uint32(src))
	if seedLen > len(src)-8 {
		return nil, fmt.Errorf("lzw: seed length %d exceeds payload: %w", seedLen, press.ErrMalformedHeader)
	}
	seed := src[4 : 4+seedLen]
	codeLen := int(binary.LittleEndian.Uint32(src[4+seedLen:]))
	rest := src[8+seedLen:]
	if codeLen > len(rest) {
		return nil, fmt.Errorf("lzw: code section length %d exceeds payload: %w", codeLen, press.ErrMalformedHeader)
	}
	if codeLen%4 != 0 {
		return nil, fmt.Errorf("lzw: code section length %d is not a whole number of codes: %w", codeLen, press.ErrMalformedHeader)
	}
	if codeLen == 0 {
		return []byte{}, nil
	}

	d := newDict(seed)
	prev := int(binary.BigEndian.Uint32(rest))
	if prev >= len(d.entries) {
		return nil, fmt.Errorf("lzw: first code %d outside seed dictionary: %w", prev, press.ErrCorruptStream)
	}
	out := make([]byte, 0, codeLen)
	out = append(out, d.entries[prev]...)

	for i := 4; i < codeLen; i += 4 {
		code := int(binary.BigEndian.Uint32(rest[i:]))
		switch {
		case code < len(d.entries):
			entry := d.entries[code]
			p := d.entries[prev]
			grown := make([]byte, 0, len(p)+1)
			grown = append(append(grown, p...), entry[0])
			d.add(grown)
			out = append(out, entry...)
		case code == len(d.entries):
			// Self-referential case: the code's entry is created here.
			p := d.entries[prev]
			grown := make([]byte, 0, len(p)+1)
			grown = append(append(grown, p...), p[0])
			d.add(grown)
			out = append(out, grown...)
		default:
			return nil, fmt.Errorf("lzw: code %d skips ahead of the dictionary (size %d): %w", code, len(d.entries), press.ErrCorruptStream)
		}
		prev = code
	}
	return out, nil
}

var _ press.Codec = Codec{}
