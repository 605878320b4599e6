// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"

	"github.com/next-exp/rawdaq/huffman"
	"github.com/next-exp/rawdaq/layout"
	"github.com/next-exp/rawdaq/rawevent"
	"github.com/next-exp/rawdaq/timebase"
)

// A PmtResult holds the Digits decoded from one PMT FEC's payload, and
// the FEC-wide channel mask used to build them.
type PmtResult struct {
	Digits []*rawevent.Digit
	Mask   *rawevent.ChannelMaskVec
}

// DecodeHotelPmt decodes the legacy, non-zero-suppressed Hotel payload:
// one mask word followed by one sample per active channel, repeated
// for bufferSamples time slices, in FEC physical channel order
// (spec.md §4.2).
func DecodeHotelPmt(payload []uint16, fecID int, fw layout.Firmware, bufferSamples int) (*PmtResult, error) {
	mask := rawevent.NewChannelMaskVec(fecID, layout.PmtsPerFec)
	waveforms := make([][]int16, layout.PmtsPerFec)
	seen := make([]bool, layout.PmtsPerFec)

	ptr := 0
	for t := 0; t < bufferSamples; t++ {
		if ptr >= len(payload) {
			return nil, fmt.Errorf("%w: hotel pmt fec %d: payload exhausted at slice %d", ErrEventError, fecID, t)
		}
		maskWord := payload[ptr]
		ptr++
		slice := decodeMaskWord(fecID, maskWord)
		for ch := 0; ch < layout.PmtsPerFec; ch++ {
			if !slice.Active(ch) {
				continue
			}
			mask.Set(ch, true)
			if !seen[ch] {
				waveforms[ch] = make([]int16, bufferSamples)
				seen[ch] = true
			}
			if ptr >= len(payload) {
				return nil, fmt.Errorf("%w: hotel pmt fec %d: payload exhausted reading channel %d at slice %d", ErrEventError, fecID, ch, t)
			}
			waveforms[ch][t] = int16(payload[ptr])
			ptr++
		}
	}
	return buildPmtResult(fecID, fw, waveforms, seen, mask), nil
}

// DecodeHotelZSPmt decodes the Hotel zero-suppressed payload: a
// sequence of (timeUs, maskWord, samples...) entries, one per slice
// that actually reported data. Absent slices are left zero-filled
// (spec.md §4.2).
func DecodeHotelZSPmt(payload []uint16, fecID int, fw layout.Firmware, bufferSamples int) (*PmtResult, error) {
	mask := rawevent.NewChannelMaskVec(fecID, layout.PmtsPerFec)
	waveforms := make([][]int16, layout.PmtsPerFec)
	seen := make([]bool, layout.PmtsPerFec)

	ptr := 0
	for ptr < len(payload) {
		if ptr+2 > len(payload) {
			return nil, fmt.Errorf("%w: hotel-zs pmt fec %d: truncated slice header", ErrEventError, fecID)
		}
		timeUs := payload[ptr]
		maskWord := payload[ptr+1]
		ptr += 2
		t := timebase.SampleIndexFromMicros(float64(timeUs))
		slice := decodeMaskWord(fecID, maskWord)

		for ch := 0; ch < layout.PmtsPerFec; ch++ {
			if !slice.Active(ch) {
				continue
			}
			mask.Set(ch, true)
			if !seen[ch] {
				waveforms[ch] = make([]int16, bufferSamples)
				seen[ch] = true
			}
			if ptr >= len(payload) {
				return nil, fmt.Errorf("%w: hotel-zs pmt fec %d: truncated sample for channel %d", ErrEventError, fecID, ch)
			}
			sample := int16(payload[ptr])
			ptr++
			if t >= 0 && t < bufferSamples {
				waveforms[ch][t] = sample
			}
		}
	}
	return buildPmtResult(fecID, fw, waveforms, seen, mask), nil
}

// DecodeIndiaJuliettPmt decodes the India/Juliett Huffman-compressed,
// zero-suppressed PMT payload: a per-slice mask word, each active
// channel's first sample stored as a raw 16-bit absolute value and
// every subsequent sample as a Huffman-coded delta from the channel's
// previous value (spec.md §4.2).
func DecodeIndiaJuliettPmt(payload []uint16, fecID int, fw layout.Firmware, bufferSamples int, tree *huffman.Tree) (*PmtResult, error) {
	mask := rawevent.NewChannelMaskVec(fecID, layout.PmtsPerFec)
	waveforms := make([][]int16, layout.PmtsPerFec)
	seen := make([]bool, layout.PmtsPerFec)
	lastValues := make([]int16, layout.PmtsPerFec)
	haveValue := make([]bool, layout.PmtsPerFec)

	br := huffman.NewBitReader(payload)
	for t := 0; t < bufferSamples; t++ {
		maskWord, err := br.ReadWord16()
		if err != nil {
			return nil, fmt.Errorf("%w: india pmt fec %d: reading mask at slice %d: %v", ErrEventError, fecID, t, err)
		}
		slice := decodeMaskWord(fecID, maskWord)
		for ch := 0; ch < layout.PmtsPerFec; ch++ {
			if !slice.Active(ch) {
				continue
			}
			mask.Set(ch, true)
			if !seen[ch] {
				waveforms[ch] = make([]int16, bufferSamples)
				seen[ch] = true
			}

			var sample int16
			if !haveValue[ch] {
				w, err := br.ReadWord16()
				if err != nil {
					return nil, fmt.Errorf("%w: india pmt fec %d: channel %d absolute sample: %v", ErrEventError, fecID, ch, err)
				}
				sample = int16(w)
			} else {
				delta, err := tree.Decode(br)
				if err != nil {
					return nil, fmt.Errorf("%w: india pmt fec %d: channel %d huffman decode: %v", ErrEventError, fecID, ch, err)
				}
				sample = lastValues[ch] + delta
			}
			lastValues[ch] = sample
			haveValue[ch] = true
			waveforms[ch][t] = sample
		}
	}
	return buildPmtResult(fecID, fw, waveforms, seen, mask), nil
}

// decodeMaskWord unpacks a single 16-bit PMT mask word (spec.md §4.2)
// through rawevent.ChannelMaskVec.FromUint16, rather than hand-rolling
// the bit test at every call site.
func decodeMaskWord(fecID int, maskWord uint16) *rawevent.ChannelMaskVec {
	slice := rawevent.NewChannelMaskVec(fecID, layout.PmtsPerFec)
	slice.FromUint16(maskWord)
	return slice
}

func buildPmtResult(fecID int, fw layout.Firmware, waveforms [][]int16, seen []bool, mask *rawevent.ChannelMaskVec) *PmtResult {
	res := &PmtResult{Mask: mask}
	for ch, ok := range seen {
		if !ok {
			continue
		}
		res.Digits = append(res.Digits, &rawevent.Digit{
			ElecID:  layout.ComputePmtElecID(fecID, ch, fw),
			Active:  true,
			Samples: waveforms[ch],
			Mask:    mask,
		})
	}
	return res
}
