// Package huffman implements a static prefix-code transform.
//
// Encode builds a code tree from the symbol frequencies of the message and
// returns the coded bitstring together with the tree; Decode walks the same
// tree to recover the message. The tree is never serialized: how a host
// stores it is outside this package.
package huffman

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/chronos-tachyon/assert"
	"github.com/icza/bitio"

	"github.com/vprotsenko/press"
)

// A SymbolFreq is one row of a frequency table.
type SymbolFreq struct {
	Sym byte
	P   float64 // occurrences of Sym divided by message length
}

// A FreqTable lists each distinct symbol of a message with its probability,
// in order of first appearance. The order matters: it is the tie-break for
// equal-probability nodes during tree construction, so keeping it stable
// keeps the produced codes deterministic.
type FreqTable []SymbolFreq

// Frequencies builds the frequency table for msg.
func Frequencies(msg []byte) (FreqTable, error) {
	if len(msg) == 0 {
		return nil, fmt.Errorf("huffman: %w", press.ErrEmptyInput)
	}
	var counts [256]int
	order := make([]byte, 0, 64)
	for _, b := range msg {
		if counts[b] == 0 {
			order = append(order, b)
		}
		counts[b]++
	}
	table := make(FreqTable, 0, len(order))
	for _, b := range order {
		table = append(table, SymbolFreq{Sym: b, P: float64(counts[b]) / float64(len(msg))})
	}
	return table, nil
}

// Kind distinguishes the two node variants.
type Kind uint8

const (
	Leaf Kind = iota
	Internal
)

// A Node is one node of the code tree. Children are owned by their parent;
// the tree is strict, with no sharing and no cycles.
type Node struct {
	Kind Kind
	P    float64

	// Sym holds the symbol for a leaf. For an internal node it is the
	// concatenation of the descendants' symbols, used only as a merge key
	// during construction.
	Sym []byte

	Left  *Node // the 0 edge
	Right *Node // the 1 edge
}

// Build constructs the code tree for a frequency table. At each step the two
// lowest-probability nodes are merged, ties broken by current list order:
// the lowest becomes the right (1) child, the second-lowest the left (0)
// child, and the merged node goes to the end of the working list.
func Build(table FreqTable) *Node {
	assert.Assertf(len(table) > 0, "huffman: Build called with an empty frequency table")

	nodes := make([]*Node, 0, len(table))
	for _, sf := range table {
		nodes = append(nodes, &Node{Kind: Leaf, P: sf.P, Sym: []byte{sf.Sym}})
	}

	for len(nodes) > 1 {
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].P < nodes[j].P })
		right, left := nodes[0], nodes[1]
		key := make([]byte, 0, len(right.Sym)+len(left.Sym))
		key = append(append(key, right.Sym...), left.Sym...)
		merged := &Node{
			Kind:  Internal,
			P:     right.P + left.P,
			Sym:   key,
			Left:  left,
			Right: right,
		}
		nodes = append(nodes[2:], merged)
	}
	return nodes[0]
}

// A CodeTable maps each symbol to its bitstring. No code is a prefix of
// another, because codes are assigned only at leaves.
type CodeTable map[byte]Bitstring

// Codes derives the code table from a tree built by Build. The walk is
// iterative: skewed frequency distributions produce deeply skewed trees, and
// recursion depth would track tree depth.
//
// A single-symbol tree has no splits; its lone symbol gets the one-bit code
// "0", since an empty code cannot be decoded unambiguously.
func Codes(root *Node) CodeTable {
	assert.Assertf(root != nil, "huffman: Codes called with a nil tree")

	table := make(CodeTable)
	if root.Kind == Leaf {
		table[root.Sym[0]] = fromPath([]byte{0})
		return table
	}

	type frame struct {
		n    *Node
		next uint8 // 0: left pending, 1: right pending, 2: done
	}
	stack := make([]frame, 0, 64)
	stack = append(stack, frame{n: root})
	path := make([]byte, 0, 64)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.n.Kind == Leaf {
			table[top.n.Sym[0]] = fromPath(path)
			top.next = 2
		}
		switch top.next {
		case 0:
			top.next = 1
			path = append(path, 0)
			stack = append(stack, frame{n: top.n.Left})
		case 1:
			top.next = 2
			path = append(path, 1)
			stack = append(stack, frame{n: top.n.Right})
		default:
			stack = stack[:len(stack)-1]
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}
	return table
}

// Encode compresses msg, returning the coded bitstring and the tree needed
// to decode it.
func Encode(msg []byte) (Bitstring, *Node, error) {
	table, err := Frequencies(msg)
	if err != nil {
		return Bitstring{}, nil, err
	}
	root := Build(table)
	codes := Codes(root)

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	n := 0
	for _, b := range msg {
		c := codes[b]
		for i := 0; i < c.Len(); i++ {
			_ = w.WriteBool(c.Bit(i))
		}
		n += c.Len()
	}
	_ = w.Close()
	return Bitstring{data: buf.Bytes(), n: n}, root, nil
}

// Decode walks the tree over bits, emitting a symbol at each leaf. It fails
// with press.ErrTruncatedStream if the bits run out mid-symbol.
func Decode(bits Bitstring, root *Node) ([]byte, error) {
	assert.Assertf(root != nil, "huffman: Decode called with a nil tree")

	if root.Kind == Leaf {
		// Single-symbol tree: one symbol per bit.
		out := make([]byte, bits.Len())
		for i := range out {
			out[i] = root.Sym[0]
		}
		return out, nil
	}

	r := bitio.NewReader(bytes.NewReader(bits.data))
	out := make([]byte, 0, bits.Len()/2)
	n := root
	for i := 0; i < bits.n; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, fmt.Errorf("huffman: bit %d unreadable: %w", i, press.ErrTruncatedStream)
		}
		if bit {
			n = n.Right
		} else {
			n = n.Left
		}
		if n.Kind == Leaf {
			out = append(out, n.Sym[0])
			n = root
		}
	}
	if n != root {
		return nil, fmt.Errorf("huffman: stream ends mid-symbol after %d bits: %w", bits.n, press.ErrTruncatedStream)
	}
	return out, nil
}

// CompressedBits returns the exact size in bits of msg encoded with codes.
func CompressedBits(msg []byte, codes CodeTable) int {
	var counts [256]int
	for _, b := range msg {
		counts[b]++
	}
	total := 0
	for sym, c := range codes {
		total += counts[sym] * c.Len()
	}
	return total
}

// Savings reports the fraction of the raw size saved by encoding msg with
// codes: 1 - compressedBits/(8*len(msg)).
func Savings(msg []byte, codes CodeTable) float64 {
	return 1 - float64(CompressedBits(msg, codes))/float64(8*len(msg))
}
