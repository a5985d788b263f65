// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/bpowers/expa/internal/exp/mmap"
)

// Reader gives whole-file, mmap-backed, read-only access to a container
// image. The container reader needs the entire file up front (CHNK payloads
// at the end of the file are matched to pointer slots in the row regions
// before rows are decoded), so there's no partial or streaming read path.
type Reader struct {
	m *mmap.ReaderAt
}

// OpenReader maps path into memory read-only.
func OpenReader(path string) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open(%s): %w", path, err)
	}

	if m.Len() > 0 {
		if err := unix.Madvise(m.Data(), syscall.MADV_SEQUENTIAL); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("madvise: %w", err)
		}
	}

	return &Reader{m: m}, nil
}

// Data returns the whole mapped file.
func (r *Reader) Data() []byte { return r.m.Data() }

// Len returns the size of the mapped file in bytes.
func (r *Reader) Len() int { return r.m.Len() }

// Close unmaps the file.
func (r *Reader) Close() error { return r.m.Close() }
