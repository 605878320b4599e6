// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawevent

import "github.com/next-exp/rawdaq/huffman"

// An Event is the orchestrator's final, per-event product: the
// decoded Digit collections plus the header, ready for the sink
// (spec.md §6.2).
type Event struct {
	Header *EventHeader

	Pmt  *DigitCollection // KindPMT
	Blr  *DigitCollection // KindBLR, a mirror of Pmt
	Ext  *DigitCollection // KindExternalPMT; nil if no external channel configured
	SiPM *DigitCollection // KindSiPM
}

// NewEvent returns an Event with its PMT/BLR/SiPM collections
// initialized empty and no external-PMT collection.
func NewEvent(header *EventHeader) *Event {
	return &Event{
		Header: header,
		Pmt:    NewDigitCollection(KindPMT),
		Blr:    NewDigitCollection(KindBLR),
		SiPM:   NewDigitCollection(KindSiPM),
	}
}

// A SensorMap is the run-scoped, read-only collaborator mapping
// between the electronics-id space produced by the decoders and the
// sensor-id space used by downstream analysis (spec.md §6.3).
type SensorMap interface {
	ElecToSensor(elecID int) (sensorID int, ok bool)
	SensorToElec(sensorID int) (elecID int, ok bool)
	NumberOfPmts() int
	NumberOfSipms() int
}

// A HuffmanProvider supplies the per-sensor-kind Huffman decode tree
// for a run (spec.md §6.3). Trees are read-only after the run starts.
type HuffmanProvider interface {
	GetHuffman(run int, kind DigitKind) (*huffman.Tree, error)
}

// A Sink is the out-of-scope archive writer's contract: it receives
// one fully assembled Event per accepted super-event (spec.md §6.2,
// §6.3).
type Sink interface {
	Write(ev *Event) error
}
