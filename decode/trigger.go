// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"
	"strings"

	"github.com/next-exp/rawdaq/rawevent"
)

// triggerNameWords is the fixed width, in 16-bit words, of a trigger
// config entry's ASCII name field. The source format does not spell
// this out explicitly; 4 words (8 bytes) is this decoder's recorded
// choice, wide enough for names like "DEADTIME" or "PRESCALE" (see
// DESIGN.md).
const triggerNameWords = 4

// A TriggerResult holds the fields decoded out of a trigger equipment
// block: the trigger type word, the list of fired channel numbers, and
// the trailing (name, value) configuration entries (spec.md §4.5).
type TriggerResult struct {
	Type          int
	FiredChannels []int
	Config        []rawevent.TriggerPair
}

// DecodeTrigger decodes a trigger equipment payload: a type word, a
// 32-bit fired-channel mask (two 16-bit words), and a tail of
// fixed-length-name/32-bit-value configuration pairs. An empty payload
// is not an error; it yields a zero-value TriggerResult (spec.md §7:
// trigger equipment is optional per event).
func DecodeTrigger(payload []uint16) (*TriggerResult, error) {
	if len(payload) == 0 {
		return &TriggerResult{}, nil
	}
	if len(payload) < 3 {
		return nil, fmt.Errorf("%w: trigger: payload has %d words, need at least 3 for type+mask", ErrEventError, len(payload))
	}

	res := &TriggerResult{Type: int(payload[0])}
	maskLo, maskHi := payload[1], payload[2]
	mask := uint32(maskLo) | uint32(maskHi)<<16
	for ch := 0; ch < 32; ch++ {
		if mask&(1<<uint(ch)) != 0 {
			res.FiredChannels = append(res.FiredChannels, ch)
		}
	}

	ptr := 3
	for ptr+triggerNameWords+2 <= len(payload) {
		name := wordsToASCII(payload[ptr : ptr+triggerNameWords])
		ptr += triggerNameWords
		value := int32(uint32(payload[ptr])<<16 | uint32(payload[ptr+1]))
		ptr += 2
		res.Config = append(res.Config, rawevent.TriggerPair{Name: name, Value: value})
	}
	if ptr != len(payload) {
		return nil, fmt.Errorf("%w: trigger: %d trailing words do not form a complete config entry", ErrEventError, len(payload)-ptr)
	}
	return res, nil
}

// wordsToASCII packs big-endian 16-bit words into bytes and trims
// trailing NUL/space padding.
func wordsToASCII(words []uint16) string {
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w&0xff))
	}
	return strings.TrimRight(string(b), "\x00 ")
}
