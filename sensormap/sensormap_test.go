// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sensormap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
num_pmts: 2
num_sipms: 1
sensors:
  - {elec_id: 502, sensor_id: 1001}
  - {elec_id: 503, sensor_id: 1002}
  - {elec_id: 2010, sensor_id: 5000}
`

func TestLoadFileMapBijection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	m, err := LoadFileMap(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumberOfPmts())
	assert.Equal(t, 1, m.NumberOfSipms())

	sid, ok := m.ElecToSensor(502)
	assert.True(t, ok)
	assert.Equal(t, 1001, sid)

	eid, ok := m.SensorToElec(5000)
	assert.True(t, ok)
	assert.Equal(t, 2010, eid)

	_, ok = m.ElecToSensor(9999)
	assert.False(t, ok)
}

func TestLoadFileMapDuplicateElecIDIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensors.yaml")
	dup := sampleYAML + "  - {elec_id: 502, sensor_id: 9999}\n"
	require.NoError(t, os.WriteFile(path, []byte(dup), 0o644))

	_, err := LoadFileMap(path)
	assert.Error(t, err)
}
