// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigitCollectionMergeKeepsFirstOrderLatestContent(t *testing.T) {
	dc := NewDigitCollection(KindPMT)
	dc.Add(&Digit{ElecID: 10, Samples: []int16{1, 2, 3}})
	dc.Add(&Digit{ElecID: 20, Samples: []int16{4, 5, 6}})
	dc.Add(&Digit{ElecID: 10, Samples: []int16{9, 9, 9}, Active: true})

	dc.Merge()

	assert.Equal(t, 2, dc.Len())
	assert.Equal(t, 10, dc.Digits[0].ElecID)
	assert.Equal(t, []int16{9, 9, 9}, dc.Digits[0].Samples)
	assert.True(t, dc.Digits[0].Active)
	assert.Equal(t, 20, dc.Digits[1].ElecID)
}

func TestDigitCollectionMergeEmpty(t *testing.T) {
	dc := NewDigitCollection(KindSiPM)
	dc.Merge()
	assert.Equal(t, 0, dc.Len())
}

func TestDigitKindString(t *testing.T) {
	cases := map[DigitKind]string{
		KindPMT:         "pmt",
		KindBLR:         "blr",
		KindSiPM:        "sipm",
		KindExternalPMT: "external_pmt",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("DigitKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestEventHeaderAnyEquipmentError(t *testing.T) {
	h := NewEventHeader(12, 1)
	assert.False(t, h.AnyEquipmentError())

	h.SetEquipmentError(3, false)
	assert.False(t, h.AnyEquipmentError())

	h.SetEquipmentError(7, true)
	assert.True(t, h.AnyEquipmentError())
}
