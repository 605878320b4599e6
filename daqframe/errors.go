// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daqframe

import "errors"

// ErrFileError is wrapped by any error that spec.md §7 classifies as a
// FileError: an unreadable or size-inconsistent header, or EOF inside
// an equipment payload. Callers (the orchestrator) treat this as fatal
// to the current input file.
var ErrFileError = errors.New("daqframe: file error")
