// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package daqframe parses the DATE binary event framing: the nested
// super-event / sub-event / equipment headers and the payload regions
// they bound (spec.md §4.1, §6.1).
package daqframe

import "fmt"

// eventHeader is the DATE super-event/sub-event header. Both levels
// share this layout; a sub-event is distinguished only by a non-zero
// GDCID. The header is either 68 bytes (17 words, the legacy format) or
// 80 bytes (20 words, format 3.14), discriminated by the self-declared
// HeadSize field.
type eventHeader struct {
	Size            uint32
	Magic           uint32
	HeadSize        uint32 // 68 or 80: how many bytes this header occupies
	Version         uint32
	Type            uint32 // DAQ event type, see EventType
	RunNumber       uint32
	ID              [2]uint32
	TriggerPattern  [2]uint32
	DetectorPattern uint32
	TypeAttribute   [3]uint32
	LDCID           uint32
	GDCID           uint32
	Timestamp       uint32
	// Reserved holds the extra 3 words (12 bytes) present only in the
	// 80-byte format 3.14 header. Reader.Next takes Reserved[0] as the
	// upper 32 bits of the event timestamp; the other two are unused.
	Reserved [3]uint32
}

const (
	headerSizeV1 = 68 // 17 words, legacy format
	headerSizeV2 = 80 // 20 words, format 3.14

	// headerPrefixWords is how many words we must read before we know
	// HeadSize and can decide how much more to read.
	headerPrefixWords = 3
)

// equipmentHeader is the DATE equipment header: 28 bytes (7 words).
type equipmentHeader struct {
	Size             uint32
	Type             uint32 // encodes EquipmentKind (low byte) and Firmware (next byte)
	ID               uint32 // equipment/FEC id
	TypeAttribute    [3]uint32
	BasicElementSize uint32
}

const equipmentHeaderWords = 7 // 28 bytes

// An EventType is the DAQ's classification of a super-event, read from
// eventHeader.Type. The orchestrator gates on this (spec.md §4.1).
type EventType uint32

const (
	EventTypePhysics     EventType = 7
	EventTypeCalibration EventType = 10
)

// Selected reports whether et is one of the event types the
// orchestrator accepts for decoding (physics or calibration); all
// others are skipped, not treated as an error.
func (et EventType) Selected() bool {
	return et == EventTypePhysics || et == EventTypeCalibration
}

func (et EventType) String() string {
	switch et {
	case EventTypePhysics:
		return "physics"
	case EventTypeCalibration:
		return "calibration"
	default:
		return fmt.Sprintf("EventType(%d)", uint32(et))
	}
}

// An EquipmentKind identifies which decoder a piece of equipment
// payload belongs to.
type EquipmentKind int

const (
	EquipmentUnknown EquipmentKind = iota
	EquipmentPMTFec
	EquipmentSiPMFec
	EquipmentTrigger
)

func (k EquipmentKind) String() string {
	switch k {
	case EquipmentPMTFec:
		return "pmt-fec"
	case EquipmentSiPMFec:
		return "sipm-fec"
	case EquipmentTrigger:
		return "trigger"
	default:
		return "unknown"
	}
}

func decodeEquipmentKind(rawType uint32) EquipmentKind {
	switch rawType & 0xff {
	case 1:
		return EquipmentPMTFec
	case 2:
		return EquipmentSiPMFec
	case 3:
		return EquipmentTrigger
	default:
		return EquipmentUnknown
	}
}

func decodeFirmware(rawType uint32) int {
	return int((rawType >> 8) & 0xff)
}

// errorBit extracts the per-equipment error flag (spec.md §4.1: "one
// bit in equipmentTypeAttribute"), bit 0 of the first attribute word.
func errorBit(attr [3]uint32) bool {
	return attr[0]&0x1 != 0
}
