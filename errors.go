// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import "errors"

// Sentinel errors for the fatal conditions a read can hit. A malformed
// schema file or an unrecognised type string are deliberately not sentinel
// errors here: both are non-fatal and are absorbed by the resolver (an
// empty Structure, or an EMPTY field, respectively) rather than surfaced to
// the caller.
var (
	// ErrMissingMagic is returned when an EXPA or CHNK section header's
	// magic number doesn't match.
	ErrMissingMagic = errors.New("expa: missing magic header")

	// ErrStructureSizeMismatch is returned when a table's declared row_size
	// disagrees with its resolved Structure's computed row size.
	ErrStructureSizeMismatch = errors.New("expa: structure size mismatch")

	// ErrTruncated is returned when the container's byte stream ends before
	// a section that was declared to be present.
	ErrTruncated = errors.New("expa: truncated container")
)
