// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package datafile is the low-level byte plumbing underneath an EXPA
// container: an offset-tracked writer and a whole-file mmap reader. It
// knows nothing about rows, structures, or types -- that domain logic lives
// in the root package, which calls down into datafile only for raw
// reads/writes and alignment bookkeeping. Keeping this package ignorant of
// Structure avoids an import cycle back up to it.
package datafile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const defaultBufferSize = 1 << 20

// Magic values for the two container section headers (spec: GLOSSARY).
const (
	MagicEXPA uint32 = 0x41505845
	MagicCHNK uint32 = 0x4B4E4843
)

// AlignUp rounds off up to the next multiple of step. A step of 0 is
// treated as "no alignment required".
func AlignUp(off uint32, step uint32) uint32 {
	if step == 0 {
		return off
	}
	rem := off % step
	if rem == 0 {
		return off
	}
	return off + (step - rem)
}

// Writer is an offset-tracked, buffered byte sink for serialising a
// container: every write advances an internal cursor that callers can read
// back via Offset, which is what lets the row codec compute CHNKEntry
// offsets as it goes.
type Writer struct {
	w   *bufio.Writer
	off uint32
}

// NewWriter wraps f for buffered, offset-tracked writes.
func NewWriter(f io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(f, defaultBufferSize)}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() uint32 { return w.off }

// AlignTo pads with zero bytes until Offset() is a multiple of step.
func (w *Writer) AlignTo(step uint32) error {
	target := AlignUp(w.off, step)
	if target == w.off {
		return nil
	}
	return w.WriteBytes(make([]byte, target-w.off))
}

// WriteUint32 writes v little-endian.
func (w *Writer) WriteUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteBytes writes b verbatim.
func (w *Writer) WriteBytes(b []byte) error {
	n, err := w.w.Write(b)
	w.off += uint32(n)
	if err != nil {
		return fmt.Errorf("datafile: write: %w", err)
	}
	return nil
}

// Flush flushes any buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("datafile: flush: %w", err)
	}
	return nil
}
