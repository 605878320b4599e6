// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package recordsink

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/next-exp/rawdaq/rawevent"
)

func sampleEvent(run, evt int) *rawevent.Event {
	h := rawevent.NewEventHeader(run, evt)
	ev := rawevent.NewEvent(h)
	ev.Pmt.Add(&rawevent.Digit{ElecID: 502, Active: true, Samples: []int16{1, 2, 3}})
	return ev
}

func TestMemorySinkPreservesOrder(t *testing.T) {
	var m Memory
	require.NoError(t, m.Write(sampleEvent(1, 1)))
	require.NoError(t, m.Write(sampleEvent(1, 2)))
	require.Len(t, m.Events, 2)
	assert.Equal(t, 1, m.Events[0].Header.EventNumber)
	assert.Equal(t, 2, m.Events[1].Header.EventNumber)
}

func TestJSONFileWritesOneObjectPerLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	sink, err := CreateJSONFile(path)
	require.NoError(t, err)
	require.NoError(t, sink.Write(sampleEvent(7, 1)))
	require.NoError(t, sink.Write(sampleEvent(7, 2)))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)

	var je jsonEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &je))
	assert.Equal(t, 7, je.RunNumber)
	assert.Equal(t, 1, je.EventNumber)
	require.Len(t, je.Pmt, 1)
	assert.Equal(t, 502, je.Pmt[0].ElecID)
}

type fakeSensorMap struct{}

func (fakeSensorMap) ElecToSensor(elecID int) (int, bool) {
	if elecID == 502 {
		return 9001, true
	}
	return 0, false
}
func (fakeSensorMap) SensorToElec(sensorID int) (int, bool) { return 0, false }
func (fakeSensorMap) NumberOfPmts() int                     { return 0 }
func (fakeSensorMap) NumberOfSipms() int                    { return 0 }

func TestJSONFileWithSensorMapResolvesSensorID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	sink, err := CreateJSONFile(path)
	require.NoError(t, err)
	sink.WithSensorMap(fakeSensorMap{})
	require.NoError(t, sink.Write(sampleEvent(7, 1)))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var je jsonEvent
	require.NoError(t, json.Unmarshal(data, &je))
	require.Len(t, je.Pmt, 1)
	assert.Equal(t, 9001, je.Pmt[0].SensorID)
}
