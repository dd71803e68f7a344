package lzw

import (
	"bytes"
	stdlzw "compress/lzw"
	"encoding/binary"
	"errors"
	"math/rand"
	"os"
	"testing"

	"github.com/vprotsenko/press"
)

func roundTrip(t *testing.T, src []byte) {
	t.Helper()
	var c Codec
	compressed, err := c.Compress(src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, src)
	}
}

func TestAbracadabra(t *testing.T) {
	src := []byte("abracadabra")
	if got, want := Seed(src), []byte("abcdr"); !bytes.Equal(got, want) {
		t.Fatalf("Seed = %q, want %q", got, want)
	}
	roundTrip(t, src)
}

func TestRoundTrip(t *testing.T) {
	for _, msg := range []string{
		"a",
		"aaaa",
		"abababab",
		"to be or not to be, that is the question",
		"mississippi mississippi mississippi",
	} {
		roundTrip(t, []byte(msg))
	}
}

func TestRoundTripUTF8(t *testing.T) {
	src := []byte(`абракадабра 123 йцукенгшщз, ЧОРНА РАДА — хроніка 1663 року.
The same text switches alphabets: кирилиця, latin, punctuation !@#$%^&*()` + "`~'ʼ")
	roundTrip(t, src)
}

func TestRoundTripFile(t *testing.T) {
	data, err := os.ReadFile("../testdata/sample.txt")
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, data)
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{1, 2, 300, 5000} {
		src := make([]byte, n)
		rng.Read(src)
		roundTrip(t, src)
	}
}

func TestEmptyInput(t *testing.T) {
	var c Codec
	if _, err := c.Compress(nil); !errors.Is(err, press.ErrEmptyInput) {
		t.Fatalf("got %v, want ErrEmptyInput", err)
	}
}

// TestUnknownCode feeds the decoder a code that names the entry it is about
// to create: seed {a}, codes [0, 1]. Code 1 does not exist when it arrives;
// its entry is dictionary[0] + dictionary[0][0] = "aa".
func TestUnknownCode(t *testing.T) {
	payload := binary.LittleEndian.AppendUint32(nil, 1)
	payload = append(payload, 'a')
	payload = binary.LittleEndian.AppendUint32(payload, 8)
	payload = binary.BigEndian.AppendUint32(payload, 0)
	payload = binary.BigEndian.AppendUint32(payload, 1)

	var c Codec
	got, err := c.Decompress(payload)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "aaa" {
		t.Fatalf("got %q, want %q", got, "aaa")
	}

	// The compressor produces the same situation for a run of one symbol.
	roundTrip(t, []byte("aaaa"))
}

func TestMonotonicDictionaryGrowth(t *testing.T) {
	src := []byte("abracadabra abracadabra to be or not to be")
	seed := Seed(src)
	d := newDict(seed)
	prev := len(d.entries)
	for i := 0; i < len(src); {
		id := d.longestPrefix(src[i:])
		entry := d.entries[id]
		i += len(entry)
		if i < len(src) {
			grown := make([]byte, 0, len(entry)+1)
			grown = append(append(grown, entry...), src[i])
			d.add(grown)
		}
		if len(d.entries) < prev {
			t.Fatalf("dictionary shrank: %d -> %d", prev, len(d.entries))
		}
		prev = len(d.entries)
		if len(d.entries) > i+len(seed) {
			t.Fatalf("dictionary has %d entries after %d bytes (seed %d)",
				len(d.entries), i, len(seed))
		}
	}
}

func TestMalformedHeader(t *testing.T) {
	var c Codec
	header := func(seedLen uint32, seed string, codeLen uint32, codes ...byte) []byte {
		p := binary.LittleEndian.AppendUint32(nil, seedLen)
		p = append(p, seed...)
		p = binary.LittleEndian.AppendUint32(p, codeLen)
		return append(p, codes...)
	}
	cases := map[string][]byte{
		"no header":         {1, 2, 3},
		"seed too long":     append(binary.LittleEndian.AppendUint32(nil, 100), 'a', 'b'),
		"codes too long":    header(1, "a", 100),
		"ragged code bytes": header(1, "a", 6, 0, 0, 0, 0, 0, 0),
	}
	for name, payload := range cases {
		if _, err := c.Decompress(payload); !errors.Is(err, press.ErrMalformedHeader) {
			t.Errorf("%s: got %v, want ErrMalformedHeader", name, err)
		}
	}
}

func TestCorruptCodes(t *testing.T) {
	var c Codec

	// First code outside the seed dictionary.
	payload := binary.LittleEndian.AppendUint32(nil, 1)
	payload = append(payload, 'a')
	payload = binary.LittleEndian.AppendUint32(payload, 4)
	payload = binary.BigEndian.AppendUint32(payload, 7)
	if _, err := c.Decompress(payload); !errors.Is(err, press.ErrCorruptStream) {
		t.Errorf("got %v, want ErrCorruptStream", err)
	}

	// A later code skipping past the next entry to be created.
	payload = binary.LittleEndian.AppendUint32(nil, 1)
	payload = append(payload, 'a')
	payload = binary.LittleEndian.AppendUint32(payload, 8)
	payload = binary.BigEndian.AppendUint32(payload, 0)
	payload = binary.BigEndian.AppendUint32(payload, 5)
	if _, err := c.Decompress(payload); !errors.Is(err, press.ErrCorruptStream) {
		t.Errorf("got %v, want ErrCorruptStream", err)
	}
}

// BenchmarkCompress reports this codec's ratio next to the standard
// library's LZW on the same data.
func BenchmarkCompress(b *testing.B) {
	data, err := os.ReadFile("../testdata/sample.txt")
	if err != nil {
		b.Fatal(err)
	}

	var c Codec
	compressed, err := c.Compress(data)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportMetric(float64(len(data))/float64(len(compressed)), "ratio")

	var buf bytes.Buffer
	w := stdlzw.NewWriter(&buf, stdlzw.LSB, 8)
	if _, err := w.Write(data); err != nil {
		b.Fatal(err)
	}
	w.Close()
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "stdlib-lzw-ratio")

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Compress(data); err != nil {
			b.Fatal(err)
		}
	}
}
