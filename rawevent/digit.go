// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rawevent defines the per-event data model produced by the raw
// DAQ decoder: per-sensor waveforms (Digit), their collections, and the
// event-level metadata they are gathered under.
package rawevent

import "fmt"

// A Digit is one sensor's digitized waveform for a single event.
//
// Once a Digit is emitted by a decoder, len(Samples) equals the sample
// count agreed for its DigitKind within that event; decoders zero-fill
// slices that were never written rather than leaving them short.
type Digit struct {
	// ElecID is the electronics id of the sensor, assigned by
	// computePmtElecID or the SiPM FEB/channel numbering scheme.
	ElecID int

	// Active reports whether this sensor had any signal reported in
	// the event (as opposed to being zero-filled because it never
	// appeared in a zero-suppressed payload).
	Active bool

	// Samples is the signed 16-bit waveform, indexed 0..N-1.
	Samples []int16

	// Mask records which channels of the PMT FEC were active in any
	// slice of the payload this Digit was built from. The PMT decoders
	// set it for every firmware variant; SiPM Digits leave it nil.
	Mask *ChannelMaskVec
}

// NSamples returns len(d.Samples).
func (d *Digit) NSamples() int {
	return len(d.Samples)
}

func (d *Digit) String() string {
	return fmt.Sprintf("Digit{elec=%d active=%v n=%d}", d.ElecID, d.Active, len(d.Samples))
}

// A DigitKind identifies which of the four per-event waveform
// collections a Digit belongs to.
type DigitKind int

const (
	KindPMT DigitKind = iota
	KindBLR
	KindSiPM
	KindExternalPMT
)

func (k DigitKind) String() string {
	switch k {
	case KindPMT:
		return "pmt"
	case KindBLR:
		return "blr"
	case KindSiPM:
		return "sipm"
	case KindExternalPMT:
		return "external_pmt"
	default:
		return fmt.Sprintf("DigitKind(%d)", int(k))
	}
}

// A DigitCollection is an ordered sequence of Digits of one Kind for a
// single event. Decoders may append more than one Digit for the same
// ElecID (e.g. a FEC reporting the same channel across two equipment
// blocks); Merge resolves that down to one Digit per ElecID.
type DigitCollection struct {
	Kind   DigitKind
	Digits []*Digit
}

// NewDigitCollection returns an empty collection of the given kind.
func NewDigitCollection(kind DigitKind) *DigitCollection {
	return &DigitCollection{Kind: kind}
}

// Add appends d to the collection. No uniqueness is enforced here; call
// Merge once decoding for the event is complete.
func (dc *DigitCollection) Add(d *Digit) {
	dc.Digits = append(dc.Digits, d)
}

// Merge collapses repeated entries for the same ElecID into one,
// keeping the first position an ElecID was seen at but the most recently
// added Digit's content. This matches the source behavior of decoders
// that may revisit a channel (e.g. a late-arriving equipment block
// correcting an earlier zero-fill).
func (dc *DigitCollection) Merge() {
	if len(dc.Digits) == 0 {
		return
	}
	order := make([]int, 0, len(dc.Digits))
	byID := make(map[int]*Digit, len(dc.Digits))
	for _, d := range dc.Digits {
		if _, ok := byID[d.ElecID]; !ok {
			order = append(order, d.ElecID)
		}
		byID[d.ElecID] = d
	}
	merged := make([]*Digit, len(order))
	for i, id := range order {
		merged[i] = byID[id]
	}
	dc.Digits = merged
}

// Len returns the number of Digits currently in the collection.
func (dc *DigitCollection) Len() int {
	return len(dc.Digits)
}
