// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timebase reconciles the per-FEC circular-buffer bookkeeping
// (FirstFT, PreTrgSamples) into sample offsets, and converts slice
// times reported in microseconds into sample indices (spec.md §4.7).
package timebase

import "time"

// ClockTick is the electronics' PMT sampling period, used to convert a
// zero-suppressed slice's reported time (in microseconds) into a
// sample index.
//
// spec.md §9 notes the source declares CLOCK_TICK but never defines
// it. 25ns (a 40MHz ADC clock, typical for this class of front-end
// electronics) is this repository's documented placeholder — confirm
// against the electronics specification before relying on it for
// physics results.
const ClockTick = 25 * time.Nanosecond

// SipmDecimationRatio is the fixed ratio between the PMT sample period
// and the SiPM sample period. Like ClockTick, its exact value is not
// given in the source and must be confirmed against the electronics
// specification; 40 is this repository's placeholder.
const SipmDecimationRatio = 40

// RingSize is the size of the circular electronics sample buffer.
const RingSize = 65536

// SampleIndexFromMicros converts a zero-suppressed slice's reported
// time (microseconds) into a PMT sample index via ClockTick.
func SampleIndexFromMicros(timeUs float64) int {
	ticksPerUs := 1e-6 / ClockTick.Seconds()
	return roundToInt(timeUs * ticksPerUs)
}

func roundToInt(x float64) int {
	if x < 0 {
		return int(x - 0.5)
	}
	return int(x + 0.5)
}

// SipmSliceIndex derives the SiPM slice index from a PMT sample index,
// per spec.md §4.3's computeSipmTime (divide by the decimation ratio).
func SipmSliceIndex(pmtSampleIndex int) int {
	return pmtSampleIndex / SipmDecimationRatio
}

// A RingContext holds the per-event circular-buffer constants needed
// to map an output sample index to its position in the FEC's 65536-
// sample electronics ring (spec.md §3, "CircularBuffer context").
type RingContext struct {
	FirstFT       int // FEC's start index into the ring for this event
	PreTrgSamples int
	BufferSamples int
	FThm          int // half-MHz coarse counter, carried through unused by the formulas below
}

// NewRingContext computes FirstFT = FT - PreTrgSamples (mod RingSize)
// from the FEC's reported FT and FThm (spec.md §4.7).
func NewRingContext(ft, fThm, preTrgSamples, bufferSamples int) RingContext {
	return RingContext{
		FirstFT:       mod(ft-preTrgSamples, RingSize),
		PreTrgSamples: preTrgSamples,
		BufferSamples: bufferSamples,
		FThm:          fThm,
	}
}

// ElectronicsPosition returns the ring-buffer position corresponding to
// output sample index i: (FirstFT + i) mod RingSize. This wraps
// correctly even when FirstFT+BufferSamples exceeds RingSize.
func (rc RingContext) ElectronicsPosition(i int) int {
	return mod(rc.FirstFT+i, RingSize)
}

func mod(x, m int) int {
	x %= m
	if x < 0 {
		x += m
	}
	return x
}
