// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import "fmt"

// A node is one entry in a Tree's arena. Leaves carry a signed delta
// Value; internal nodes carry indices of their children. The arena
// representation (DESIGN NOTES §9, "deep object graphs → arena +
// indices") avoids a pointer-chasing tree of heap objects, which
// matters here because Decode runs once per sample on the hot path.
type node struct {
	left, right int32
	isLeaf      bool
	value       int16
}

// A Tree is a binary Huffman code tree over signed delta values, built
// once per run by the HuffmanProvider collaborator and shared read-only
// across all events. The root is always at index 0.
type Tree struct {
	nodes []node
}

// Decode walks the tree from the root, consuming bits from r (0 takes
// the left child, 1 takes the right), until it reaches a leaf, and
// returns the leaf's value. It returns ErrExhausted if the bit stream
// runs out before a leaf is reached.
func (t *Tree) Decode(r *BitReader) (int16, error) {
	if len(t.nodes) == 0 {
		return 0, fmt.Errorf("huffman: empty tree")
	}
	idx := int32(0)
	for {
		n := t.nodes[idx]
		if n.isLeaf {
			return n.value, nil
		}
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			idx = n.left
		} else {
			idx = n.right
		}
	}
}

// NumNodes returns the number of nodes in the tree's arena, mostly
// useful for tests and sanity checks.
func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

// A Builder constructs a Tree from a set of (code, value) pairs, where
// code is a string of '0'/'1' characters giving the path from the root.
// This is the shape a HuffmanProvider collaborator loads from its
// backing store (a DB table or, in this repo's file-backed adapter, a
// YAML document) and turns into a Tree once per run.
type Builder struct {
	nodes []node
}

// NewBuilder returns a Builder with an empty root node.
func NewBuilder() *Builder {
	return &Builder{nodes: []node{{left: -1, right: -1}}}
}

// Insert adds a leaf reachable by code, creating internal nodes along
// the path as needed. It panics if code is empty or already leads to
// an existing leaf (a malformed or ambiguous code table), since this
// only runs once at start-of-run over data the collaborator is trusted
// to have validated.
func (b *Builder) Insert(code string, value int16) {
	if code == "" {
		panic("huffman: empty code")
	}
	idx := int32(0)
	for i := 0; i < len(code); i++ {
		n := &b.nodes[idx]
		if n.isLeaf {
			panic(fmt.Sprintf("huffman: code %q conflicts with a shorter existing code", code))
		}
		var next int32
		switch code[i] {
		case '0':
			next = n.left
		case '1':
			next = n.right
		default:
			panic(fmt.Sprintf("huffman: invalid code character %q in %q", code[i], code))
		}
		if next == -1 {
			// append may move the arena, so link the child by index
			// rather than through n.
			b.nodes = append(b.nodes, node{left: -1, right: -1})
			next = int32(len(b.nodes) - 1)
			if code[i] == '0' {
				b.nodes[idx].left = next
			} else {
				b.nodes[idx].right = next
			}
		}
		idx = next
	}
	n := &b.nodes[idx]
	if !n.isLeaf && (n.left != -1 || n.right != -1) {
		panic(fmt.Sprintf("huffman: code %q is a prefix of a longer existing code", code))
	}
	n.isLeaf = true
	n.value = value
}

// Build finalizes the tree. The Builder must not be reused afterward.
func (b *Builder) Build() *Tree {
	return &Tree{nodes: b.nodes}
}
