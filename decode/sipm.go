// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"

	"github.com/next-exp/rawdaq/huffman"
	"github.com/next-exp/rawdaq/layout"
	"github.com/next-exp/rawdaq/rawevent"
)

// A SipmFecResult holds one FEC's 32 decoded sample streams (one half
// of a SiPM FEB) before interleaving with its partner FEC.
type SipmFecResult struct {
	FecID    int
	Channels [][]int16 // indexed 0..SipmsPerFec-1; nil if never active
	Seen     []bool
}

// DecodeHotelSipmStream decodes the legacy, non-zero-suppressed SiPM
// payload: bufferSamples slices of SipmsPerFec plain samples each, no
// channel mask (spec.md §4.3).
func DecodeHotelSipmStream(payload []uint16, fecID int, bufferSamples int) (*SipmFecResult, error) {
	want := bufferSamples * layout.SipmsPerFec
	if len(payload) < want {
		return nil, fmt.Errorf("%w: hotel sipm fec %d: payload has %d words, want %d", ErrEventError, fecID, len(payload), want)
	}

	channels := make([][]int16, layout.SipmsPerFec)
	seen := make([]bool, layout.SipmsPerFec)
	for ch := range channels {
		channels[ch] = make([]int16, bufferSamples)
		seen[ch] = true
	}

	ptr := 0
	for t := 0; t < bufferSamples; t++ {
		for ch := 0; ch < layout.SipmsPerFec; ch++ {
			channels[ch][t] = int16(payload[ptr])
			ptr++
		}
	}
	return &SipmFecResult{FecID: fecID, Channels: channels, Seen: seen}, nil
}

// DecodeIndiaSipmStream decodes the India/Juliett Huffman-compressed,
// zero-suppressed SiPM payload for one FEC: a per-slice 32-bit channel
// mask (two 16-bit words, one FEC's half of the FEB's logical 64-bit
// mask), followed by a Huffman-coded delta for each active channel.
// Unlike the PMT variant there is no "first sample absolute" special
// case: every decoded value is lastValues[ch]+delta, and lastValues
// must already be zeroed by the caller at event start and is mutated
// in place so it carries forward across slices within the event
// (spec.md §4.3).
func DecodeIndiaSipmStream(payload []uint16, fecID int, bufferSamples int, tree *huffman.Tree, lastValues []int16) (*SipmFecResult, error) {
	if len(lastValues) != layout.SipmsPerFec {
		panic(fmt.Sprintf("decode: DecodeIndiaSipmStream: lastValues has length %d, want %d", len(lastValues), layout.SipmsPerFec))
	}

	channels := make([][]int16, layout.SipmsPerFec)
	seen := make([]bool, layout.SipmsPerFec)

	br := huffman.NewBitReader(payload)
	for t := 0; t < bufferSamples; t++ {
		lo, err := br.ReadWord16()
		if err != nil {
			return nil, fmt.Errorf("%w: india sipm fec %d: reading mask at slice %d: %v", ErrEventError, fecID, t, err)
		}
		hi, err := br.ReadWord16()
		if err != nil {
			return nil, fmt.Errorf("%w: india sipm fec %d: reading mask at slice %d: %v", ErrEventError, fecID, t, err)
		}

		for ch := 0; ch < layout.SipmsPerFec; ch++ {
			var active bool
			if ch < 16 {
				active = lo&(1<<uint(ch)) != 0
			} else {
				active = hi&(1<<uint(ch-16)) != 0
			}
			if !active {
				continue
			}
			if channels[ch] == nil {
				channels[ch] = make([]int16, bufferSamples)
				seen[ch] = true
			}
			delta, err := tree.Decode(br)
			if err != nil {
				return nil, fmt.Errorf("%w: india sipm fec %d: channel %d huffman decode at slice %d: %v", ErrEventError, fecID, ch, t, err)
			}
			lastValues[ch] += delta
		}

		// Every channel ever seen carries its last decoded value
		// forward into slices where it did not report.
		for ch, present := range channels {
			if present != nil {
				channels[ch][t] = lastValues[ch]
			}
		}
	}
	return &SipmFecResult{FecID: fecID, Channels: channels, Seen: seen}, nil
}

// AssembleSipmFeb interleaves FEB feb's two FEC streams (a serving
// output channels 2k, b serving 2k+1, per spec.md §4.3) into the 64
// Digits reported for that FEB. Both streams must be present; a FEB
// with only one FEC reporting is an EventError and yields no Digits
// (the orchestrator drops such a FEB under either discard policy).
func AssembleSipmFeb(feb int, a, b *SipmFecResult, bufferSamples int) ([]*rawevent.Digit, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: sipm feb %d: missing a FEC partner", ErrEventError, feb)
	}

	digits := make([]*rawevent.Digit, 0, layout.SipmsPerFeb)
	for k := 0; k < layout.SipmsPerFec; k++ {
		digits = append(digits, assembleSipmChannel(feb, 2*k, a, k, bufferSamples))
		digits = append(digits, assembleSipmChannel(feb, 2*k+1, b, k, bufferSamples))
	}
	return digits, nil
}

func assembleSipmChannel(feb, outCh int, fec *SipmFecResult, srcCh, bufferSamples int) *rawevent.Digit {
	samples := fec.Channels[srcCh]
	active := fec.Seen[srcCh]
	if samples == nil {
		samples = make([]int16, bufferSamples)
	}
	return &rawevent.Digit{
		ElecID:  layout.ComputeSipmElecID(feb, outCh),
		Active:  active,
		Samples: samples,
	}
}
