// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersSummarize(t *testing.T) {
	c := NewCounters()
	c.RecordEvent(10)
	c.RecordEvent(20)
	c.RecordSkipped()
	c.RecordEventError("sipm")
	c.RecordFileError()

	s := c.Summarize()
	assert.Equal(t, 3, s.EventsSeen)
	assert.Equal(t, 2, s.EventsAccepted)
	assert.Equal(t, 1, s.EventsSkipped)
	assert.Equal(t, 1, s.FileErrors)
	assert.Equal(t, 1, s.EventErrors)
	assert.Equal(t, 1, s.EquipmentErrors["sipm"])
	assert.InDelta(t, 15.0, s.MeanDigits, 1e-9)
}

func TestSummaryStringDoesNotPanicOnEmptyCounters(t *testing.T) {
	c := NewCounters()
	assert.NotPanics(t, func() {
		_ = c.Summarize().String()
	})
}
