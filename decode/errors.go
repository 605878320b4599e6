// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decode implements the firmware-dependent channel decoders:
// PMT (Hotel, Hotel-ZS, India/Juliett compressed), SiPM (Hotel,
// India/Juliett compressed), and the trigger-equipment decoder
// (spec.md §4.2, §4.3, §4.5).
package decode

import "errors"

// ErrEventError is wrapped by any error spec.md §7 classifies as an
// EventError: a localized decode failure (exhausted Huffman stream, a
// channel mask implying more channels than the FEC has, a missing
// SiPM FEC partner). The orchestrator counts each one as an event
// error and emits no Digits for the equipment block (or SiPM FEB) it
// came from, under either discard policy; it does not substitute
// zero-filled waveforms for them. It never aborts the file for these.
var ErrEventError = errors.New("decode: event error")
