// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orchestrator

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/next-exp/rawdaq/huffman"
	"github.com/next-exp/rawdaq/internal/config"
	"github.com/next-exp/rawdaq/layout"
	"github.com/next-exp/rawdaq/rawevent"
	"github.com/next-exp/rawdaq/recordsink"
)

// The builders below assemble synthetic DATE byte streams the same way
// daqframe's own tests do; they are reproduced here rather than
// imported because the fields they poke (header size, equipment type
// byte) are daqframe package-internal.

type headerBuilder struct {
	runNumber, eventID, ldcID, gdcID, typ uint32
}

func (b headerBuilder) build(body []byte) []byte {
	const headSize = 68
	total := headSize + len(body)
	buf := &bytes.Buffer{}
	put := func(v uint32) { binary.Write(buf, binary.BigEndian, v) }
	put(uint32(total)) // Size
	put(0xDA7A)        // Magic
	put(headSize)      // HeadSize
	put(3)              // Version
	put(b.typ)          // Type
	put(b.runNumber)    // RunNumber
	put(b.eventID)
	put(0) // ID[2]
	put(0)
	put(0) // TriggerPattern[2]
	put(0) // DetectorPattern
	put(0)
	put(0)
	put(0) // TypeAttribute[3]
	put(b.ldcID)
	put(b.gdcID)
	put(0) // Timestamp
	buf.Write(body)
	return buf.Bytes()
}

type equipBuilder struct {
	kind     byte
	firmware byte
	fecID    uint32
	errorBit bool
	payload  []uint16
}

func (e equipBuilder) build() []byte {
	payload := wordsToBytes(e.payload)
	total := 28 + len(payload)
	buf := &bytes.Buffer{}
	put := func(v uint32) { binary.Write(buf, binary.BigEndian, v) }
	put(uint32(total))
	put(uint32(e.kind) | uint32(e.firmware)<<8)
	put(e.fecID)
	attr0 := uint32(0)
	if e.errorBit {
		attr0 = 1
	}
	put(attr0)
	put(0)
	put(0)
	put(0) // BasicElementSize
	buf.Write(payload)
	return buf.Bytes()
}

func wordsToBytes(words []uint16) []byte {
	buf := make([]byte, len(words)*2)
	for i, w := range words {
		binary.BigEndian.PutUint16(buf[i*2:], w)
	}
	return buf
}

// flipWords mirrors daqframe.FlipWords: the wire payload is built
// pre-flip, the reader flips it back.
func flipWords(words []uint16) []uint16 {
	out := make([]uint16, len(words))
	copy(out, words)
	for i := 0; i+1 < len(out); i += 2 {
		out[i], out[i+1] = out[i+1], out[i]
	}
	return out
}

// hotelPmtPayload builds a one-slice Hotel PMT payload (matches
// decode.DecodeHotelPmt with bufferSamples=1): a mask word selecting
// channel 0, then that channel's single sample.
func hotelPmtPayload(sample uint16) []uint16 {
	return flipWords([]uint16{0x0001, sample})
}

// hotelSipmPayload builds a one-slice Hotel SiPM payload: SipmsPerFec
// plain samples, no mask.
func hotelSipmPayload(base int16) []uint16 {
	words := make([]uint16, layout.SipmsPerFec)
	for i := range words {
		words[i] = uint16(base) + uint16(i)
	}
	return flipWords(words)
}

func buildSuperEvent(typ uint32, runNumber, eventID uint32, equip ...[]byte) []byte {
	var body bytes.Buffer
	for _, e := range equip {
		body.Write(e)
	}
	sub := headerBuilder{ldcID: 1}.build(body.Bytes())
	return headerBuilder{runNumber: runNumber, eventID: eventID, typ: typ}.build(sub)
}

// noopHuffman implements rawevent.HuffmanProvider without ever being
// called: every fixture in this file uses Hotel firmware, which never
// reaches the India/Juliett (compressed) decode path.
type noopHuffman struct{}

func (noopHuffman) GetHuffman(run int, kind rawevent.DigitKind) (*huffman.Tree, error) {
	panic("noopHuffman: GetHuffman should not be called by hotel-only fixtures")
}

const physicsType = 7 // daqframe.EventTypePhysics

func TestOrchestratorTwoFileStrictAlternation(t *testing.T) {
	var fileA, fileB bytes.Buffer
	for i := uint32(0); i < 3; i++ {
		eqA := equipBuilder{kind: 1, fecID: 5, payload: hotelPmtPayload(uint16(10 + i))}.build()
		fileA.Write(buildSuperEvent(physicsType, 100, i+1, eqA))

		eqB := equipBuilder{kind: 1, fecID: 5, payload: hotelPmtPayload(uint16(20 + i))}.build()
		fileB.Write(buildSuperEvent(physicsType, 200, i+1, eqB))
	}

	cfg := config.Default()
	cfg.TwoFiles = true
	cfg.ReadSipms = false
	cfg.BufferSamples = 1

	sink := &recordsink.Memory{}
	o := New(cfg, sink, noopHuffman{}, nil)
	_, err := o.Run(bytes.NewReader(fileA.Bytes()), bytes.NewReader(fileB.Bytes()))
	require.NoError(t, err)

	require.Len(t, sink.Events, 6)
	wantRuns := []int{100, 200, 100, 200, 100, 200}
	for i, ev := range sink.Events {
		assert.Equalf(t, wantRuns[i], ev.Header.RunNumber, "event %d", i)
	}
}

func TestOrchestratorDiscardPolicyDropsErroredSipmFeb(t *testing.T) {
	fecBase := 10
	// FEB 0 is served by FECs 10 (A) and 11 (B); FEC 10 reports an
	// error bit. FEB 1 is served by FECs 12/13 and reports cleanly.
	eqs := []equipBuilder{
		{kind: 2, fecID: uint32(fecBase), errorBit: true, payload: hotelSipmPayload(1)},
		{kind: 2, fecID: uint32(fecBase + 1), payload: hotelSipmPayload(100)},
		{kind: 2, fecID: uint32(fecBase + 2), payload: hotelSipmPayload(1)},
		{kind: 2, fecID: uint32(fecBase + 3), payload: hotelSipmPayload(100)},
	}
	var blocks [][]byte
	for _, e := range eqs {
		blocks = append(blocks, e.build())
	}
	stream := buildSuperEvent(physicsType, 1, 1, blocks...)

	cfg := config.Default()
	cfg.ReadPmts = false
	cfg.BufferSamples = 1
	cfg.SipmFecBase = fecBase
	cfg.DiscardErr = true

	sink := &recordsink.Memory{}
	o := New(cfg, sink, noopHuffman{}, nil)
	summary, err := o.Run(bytes.NewReader(stream), nil)
	require.NoError(t, err)
	require.Len(t, sink.Events, 1)

	ev := sink.Events[0]
	assert.Equal(t, 1, summary.EventErrors)
	assert.Equal(t, 1, summary.EquipmentErrors["sipm"])

	feb0Elec := layout.ComputeSipmElecID(0, 0)
	feb1Elec := layout.ComputeSipmElecID(1, 0)
	var sawFeb0, sawFeb1 bool
	for _, d := range ev.SiPM.Digits {
		if d.ElecID == feb0Elec {
			sawFeb0 = true
		}
		if d.ElecID == feb1Elec {
			sawFeb1 = true
		}
	}
	assert.False(t, sawFeb0, "feb 0 should have been dropped by the discard policy")
	assert.True(t, sawFeb1, "feb 1 should have decoded normally")
}

func TestOrchestratorIndiaFirmwareWithoutHuffmanProviderRecordsEventError(t *testing.T) {
	// Firmware tag 2 is layout.FWIndia: a valid, documented firmware
	// variant read straight off the wire, not malformed input. With no
	// Huffman provider configured (the out-of-the-box zero-value
	// Config), decoding it must record an event error, not panic.
	eq := equipBuilder{kind: 1, firmware: 2, fecID: 5, payload: []uint16{0, 0}}.build()
	stream := buildSuperEvent(physicsType, 1, 1, eq)

	cfg := config.Default()
	cfg.ReadSipms = false
	cfg.BufferSamples = 1

	sink := &recordsink.Memory{}
	o := New(cfg, sink, nil, nil)
	summary, err := o.Run(bytes.NewReader(stream), nil)
	require.NoError(t, err)
	require.Len(t, sink.Events, 1)
	assert.Equal(t, 1, summary.EventErrors)
	assert.Equal(t, 1, summary.EquipmentErrors["pmt"])
	assert.Empty(t, sink.Events[0].Pmt.Digits)
}

func TestOrchestratorSkipConsumesLeadingEvents(t *testing.T) {
	var stream bytes.Buffer
	for i := uint32(0); i < 3; i++ {
		eq := equipBuilder{kind: 1, fecID: 5, payload: hotelPmtPayload(uint16(i))}.build()
		stream.Write(buildSuperEvent(physicsType, 1, i+1, eq))
	}

	cfg := config.Default()
	cfg.ReadSipms = false
	cfg.BufferSamples = 1
	cfg.Skip = 2

	sink := &recordsink.Memory{}
	o := New(cfg, sink, noopHuffman{}, nil)
	_, err := o.Run(bytes.NewReader(stream.Bytes()), nil)
	require.NoError(t, err)
	require.Len(t, sink.Events, 1)
	assert.Equal(t, 3, sink.Events[0].Header.EventNumber)
}
