// The press package is a small family of lossless compression codecs.
//
// Three independent transforms live in the subpackages:
//   - huffman: a static prefix-code (Huffman) coder
//   - lz77: a sliding-window substitution coder
//   - lzw: an adaptive-dictionary coder with a serialized seed alphabet
//
// The codecs share no state and no wire format; each is a pure
// byte-sequence-to-byte-sequence transform with a symmetric inverse. This
// package defines the interface they present to callers and the errors they
// share. It contains no algorithm code of its own.
package press

import "errors"

// A Codec is a symmetric pair of pure transforms over byte sequences.
// Decompress(Compress(x)) == x for every x of length >= 1.
//
// A Codec value is not safe for concurrent use; give each goroutine its own.
type Codec interface {
	// Compress transforms src into the codec's compressed form.
	Compress(src []byte) ([]byte, error)

	// Decompress inverts Compress.
	Decompress(src []byte) ([]byte, error)
}

// Errors shared by the codec subpackages. Failures wrap these sentinels, so
// callers can match with errors.Is and still see site-specific context.
var (
	// ErrEmptyInput is returned by Compress when src is empty: an empty
	// message has no frequency table, dictionary, or window to build.
	ErrEmptyInput = errors.New("press: empty input")

	// ErrTruncatedStream is returned when a compressed stream ends in the
	// middle of a symbol.
	ErrTruncatedStream = errors.New("press: truncated stream")

	// ErrCorruptStream is returned when a compressed stream is structurally
	// invalid or fails an integrity check.
	ErrCorruptStream = errors.New("press: corrupt stream")

	// ErrMalformedHeader is returned when header lengths imply reading past
	// the end of the payload.
	ErrMalformedHeader = errors.New("press: malformed header")
)

// A ByteStore moves codec inputs and outputs to and from storage. The codecs
// never perform I/O themselves; a host application implements ByteStore (or
// anything like it) and hands the codecs in-memory buffers. Text is UTF-8.
type ByteStore interface {
	ReadText(path string) (string, error)
	ReadBytes(path string) ([]byte, error)
	WriteText(path string, data string) error
	WriteBytes(path string, data []byte) error
}
