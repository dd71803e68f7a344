package lz77

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/xxHash/xxHash32"

	"github.com/vprotsenko/press"
)

// frameMagic is "LZ77" read little-endian.
const frameMagic = 0x37375a4c

// CompressFrame compresses src and wraps the token stream for storage:
// magic, payload length, payload, then an xxHash32 checksum of the
// uncompressed content. The checksum lets DecompressFrame detect corruption
// without a reference copy of the original.
func (c *Codec) CompressFrame(src []byte) ([]byte, error) {
	payload, err := c.Compress(src)
	if err != nil {
		return nil, err
	}
	dst := make([]byte, 0, len(payload)+12)
	dst = binary.LittleEndian.AppendUint32(dst, frameMagic)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
	dst = append(dst, payload...)
	dst = binary.LittleEndian.AppendUint32(dst, xxHash32.Checksum(src, 0))
	return dst, nil
}

// DecompressFrame unwraps and replays a frame written by CompressFrame.
func DecompressFrame(src []byte) ([]byte, error) {
	if len(src) < 12 {
		return nil, fmt.Errorf("lz77: frame of %d bytes is too short: %w", len(src), press.ErrMalformedHeader)
	}
	if m := binary.LittleEndian.Uint32(src); m != frameMagic {
		return nil, fmt.Errorf("lz77: bad frame magic %08x: %w", m, press.ErrMalformedHeader)
	}
	n := int(binary.LittleEndian.Uint32(src[4:]))
	if n != len(src)-12 {
		return nil, fmt.Errorf("lz77: frame declares %d payload bytes, have %d: %w", n, len(src)-12, press.ErrMalformedHeader)
	}
	out, err := Decompress(src[8 : 8+n])
	if err != nil {
		return nil, err
	}
	sum := binary.LittleEndian.Uint32(src[8+n:])
	if got := xxHash32.Checksum(out, 0); got != sum {
		return nil, fmt.Errorf("lz77: content checksum mismatch (got %08x, want %08x): %w", got, sum, press.ErrCorruptStream)
	}
	return out, nil
}
