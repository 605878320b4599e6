// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// buildTestTree constructs a small variable-length prefix code over five
// delta values, the same shape a HuffmanProvider would hand back for
// a sensor kind.
func buildTestTree() *Tree {
	b := NewBuilder()
	b.Insert("0", 0)
	b.Insert("100", 1)
	b.Insert("101", -1)
	b.Insert("110", 2)
	b.Insert("111", -2)
	return b.Build()
}

func TestBitReaderMSBFirst(t *testing.T) {
	// 0xA5 = 1010_0101, padded into a 16-bit word with trailing zeros.
	r := NewBitReader([]uint16{0xA500})
	want := []int{1, 0, 1, 0, 0, 1, 0, 1}
	for i, w := range want {
		bit, err := r.ReadBit()
		assert.NoError(t, err)
		assert.Equalf(t, w, bit, "bit %d", i)
	}
}

func TestBitReaderReadWord16(t *testing.T) {
	r := NewBitReader([]uint16{0x1234, 0xABCD})
	w, err := r.ReadWord16()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), w)
	w, err = r.ReadWord16()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), w)
}

func TestBitReaderExhausted(t *testing.T) {
	r := NewBitReader([]uint16{0xFFFF})
	for i := 0; i < 16; i++ {
		if _, err := r.ReadBit(); err != nil {
			t.Fatalf("unexpected error at bit %d: %v", i, err)
		}
	}
	if _, err := r.ReadBit(); err != ErrExhausted {
		t.Fatalf("ReadBit past end = %v, want ErrExhausted", err)
	}
}

func TestTreeDecode(t *testing.T) {
	tree := buildTestTree()

	// Encode "100" (value 1) then "0" (value 0) then "111" (value -2)
	// packed MSB-first into one word: 100 0 111 => 1000111, pad to 16 bits.
	r := NewBitReader([]uint16{0b1000_1110_0000_0000})

	v, err := tree.Decode(r)
	assert.NoError(t, err)
	assert.Equal(t, int16(1), v)

	v, err = tree.Decode(r)
	assert.NoError(t, err)
	assert.Equal(t, int16(0), v)

	v, err = tree.Decode(r)
	assert.NoError(t, err)
	assert.Equal(t, int16(-2), v)
}

func TestTreeDecodeExhaustedMidSymbol(t *testing.T) {
	tree := buildTestTree()
	r := NewBitReader([]uint16{})
	if _, err := tree.Decode(r); err != ErrExhausted {
		t.Fatalf("Decode on empty stream = %v, want ErrExhausted", err)
	}
}

func TestBuilderRejectsAmbiguousCodes(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for prefix conflict")
		}
	}()
	b := NewBuilder()
	b.Insert("0", 1)
	b.Insert("00", 2) // "0" is already a leaf; "00" can never be reached
}

// TestHuffmanRoundTripProperty checks that a randomly generated
// sequence of deltas, encoded against buildTestTree's code table and
// packed into 16-bit words, decodes back to the same deltas in the
// same order. It compares each decoded delta; it does not assert on
// the running reconstructed sample.
func TestHuffmanRoundTripProperty(t *testing.T) {
	codes := []struct {
		code  string
		value int16
	}{
		{"0", 0}, {"100", 1}, {"101", -1}, {"110", 2}, {"111", -2},
	}

	rapid.Check(t, func(rt *rapid.T) {
		tree := buildTestTree()
		n := rapid.IntRange(1, 64).Draw(rt, "n")

		var bitstring string
		var deltas []int16
		for i := 0; i < n; i++ {
			pick := codes[rapid.IntRange(0, len(codes)-1).Draw(rt, "pick")]
			bitstring += pick.code
			deltas = append(deltas, pick.value)
		}

		words := packBits(bitstring)
		r := NewBitReader(words)

		first := int16(100)
		running := first
		for i, want := range deltas {
			got, err := tree.Decode(r)
			if err != nil {
				rt.Fatalf("decode %d: %v", i, err)
			}
			if got != want {
				rt.Fatalf("decode %d = %d, want %d", i, got, want)
			}
			running += got
		}
		_ = running
	})
}

// packBits packs a string of '0'/'1' characters into big-endian 16-bit
// words, MSB first, padding the final word with zero bits.
func packBits(s string) []uint16 {
	n := (len(s) + 15) / 16
	words := make([]uint16, n)
	for i, c := range s {
		if c == '1' {
			word, bit := i/16, 15-i%16
			words[word] |= 1 << uint(bit)
		}
	}
	return words
}
