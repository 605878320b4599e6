// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daqframe

import (
	"encoding/binary"
	"fmt"
)

// wordDecoder is a cursor over a byte slice that reads big-endian
// fixed-width fields, advancing past each one. It is the same idiom as
// a bufDecoder: rather than tracking an explicit offset, it reslices
// its buffer as it consumes it.
type wordDecoder struct {
	buf []byte
}

func (d *wordDecoder) skip(n int) {
	d.buf = d.buf[n:]
}

func (d *wordDecoder) u16() uint16 {
	x := binary.BigEndian.Uint16(d.buf)
	d.buf = d.buf[2:]
	return x
}

func (d *wordDecoder) u32() uint32 {
	x := binary.BigEndian.Uint32(d.buf)
	d.buf = d.buf[4:]
	return x
}

func (d *wordDecoder) u32s(x []uint32) {
	for i := range x {
		x[i] = binary.BigEndian.Uint32(d.buf[i*4:])
	}
	d.buf = d.buf[len(x)*4:]
}

func (d *wordDecoder) u32If(cond bool) uint32 {
	if cond {
		return d.u32()
	}
	return 0
}

func (d *wordDecoder) len() int {
	return len(d.buf)
}

func readEventHeader(buf []byte) (eventHeader, int, error) {
	if len(buf) < headerPrefixWords*4 {
		return eventHeader{}, 0, fmt.Errorf("%w: truncated header prefix (%d bytes)", ErrFileError, len(buf))
	}
	d := wordDecoder{buf: buf}
	var h eventHeader
	h.Size = d.u32()
	h.Magic = d.u32()
	h.HeadSize = d.u32()

	switch h.HeadSize {
	case headerSizeV1, headerSizeV2:
	default:
		return eventHeader{}, 0, fmt.Errorf("%w: bad header size %d", ErrFileError, h.HeadSize)
	}
	if len(buf) < int(h.HeadSize) {
		return eventHeader{}, 0, fmt.Errorf("%w: truncated header, want %d bytes have %d", ErrFileError, h.HeadSize, len(buf))
	}

	h.Version = d.u32()
	h.Type = d.u32()
	h.RunNumber = d.u32()
	d.u32s(h.ID[:])
	d.u32s(h.TriggerPattern[:])
	h.DetectorPattern = d.u32()
	d.u32s(h.TypeAttribute[:])
	h.LDCID = d.u32()
	h.GDCID = d.u32()
	h.Timestamp = d.u32()

	if h.HeadSize == headerSizeV2 {
		d.u32s(h.Reserved[:])
	}

	if int(h.Size) < int(h.HeadSize) {
		return eventHeader{}, 0, fmt.Errorf("%w: event size %d smaller than header size %d", ErrFileError, h.Size, h.HeadSize)
	}

	return h, int(h.HeadSize), nil
}

func readEquipmentHeader(buf []byte) (equipmentHeader, error) {
	if len(buf) < equipmentHeaderWords*4 {
		return equipmentHeader{}, fmt.Errorf("%w: truncated equipment header (%d bytes)", ErrFileError, len(buf))
	}
	d := wordDecoder{buf: buf}
	var h equipmentHeader
	h.Size = d.u32()
	h.Type = d.u32()
	h.ID = d.u32()
	d.u32s(h.TypeAttribute[:])
	h.BasicElementSize = d.u32()
	if int(h.Size) < equipmentHeaderWords*4 {
		return equipmentHeader{}, fmt.Errorf("%w: equipment size %d smaller than header", ErrFileError, h.Size)
	}
	return h, nil
}

// FlipWords returns a copy of words with each consecutive pair of
// 16-bit halves swapped, i.e. the endian flip spec.md §4.1 requires
// when transferring a 32-bit-word payload into the decoder's 16-bit
// word buffer. Swapping disjoint pairs is its own inverse: calling
// FlipWords twice reproduces the original sequence (spec.md §8).
func FlipWords(words []uint16) []uint16 {
	out := make([]uint16, len(words))
	copy(out, words)
	for i := 0; i+1 < len(out); i += 2 {
		out[i], out[i+1] = out[i+1], out[i]
	}
	return out
}

// bytesToWords reinterprets a big-endian byte payload as a sequence of
// 16-bit words.
func bytesToWords(buf []byte) []uint16 {
	words := make([]uint16, len(buf)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(buf[i*2:])
	}
	return words
}
