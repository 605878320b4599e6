// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawevent

// An EventHeader carries the per-event metadata that accompanies the
// Digit collections to the sink: which run and event this is, when it
// was captured, what fired it, and which equipment blocks reported an
// error bit.
type EventHeader struct {
	// RunNumber identifies the data-taking run.
	RunNumber int

	// EventNumber is the DAQ's own event counter, unique within a run
	// (and within a single GDC source in two-file mode).
	EventNumber int

	// Timestamp is the 64-bit DAQ timestamp for the event.
	Timestamp uint64

	// TriggerType is the trigger-equipment trigger type code.
	TriggerType int

	// FiredChannels lists the trigger channels that fired this event.
	FiredChannels []int

	// TriggerInfo holds the (name, value) configuration pairs read
	// from the trigger equipment payload.
	TriggerInfo []TriggerPair

	// EquipmentErrors maps equipment id to whether its error bit was
	// set for this event.
	EquipmentErrors map[int]bool
}

// A TriggerPair is one named configuration value from the trigger
// equipment payload.
type TriggerPair struct {
	Name  string
	Value int32
}

// NewEventHeader returns an EventHeader for the given run, ready to
// accumulate per-equipment error bits.
func NewEventHeader(runNumber, eventNumber int) *EventHeader {
	return &EventHeader{
		RunNumber:       runNumber,
		EventNumber:     eventNumber,
		EquipmentErrors: make(map[int]bool),
	}
}

// SetEquipmentError records whether equipment id eqID raised its error
// bit in this event.
func (h *EventHeader) SetEquipmentError(eqID int, errored bool) {
	h.EquipmentErrors[eqID] = errored
}

// AnyEquipmentError reports whether any equipment block in the event
// raised its error bit.
func (h *EventHeader) AnyEquipmentError() bool {
	for _, errored := range h.EquipmentErrors {
		if errored {
			return true
		}
	}
	return false
}
