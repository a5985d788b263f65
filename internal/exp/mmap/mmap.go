// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmap memory-maps whole files read-only, so a container's entire
// byte stream is readable as one backing array without a read syscall per
// access.
package mmap

import (
	"fmt"
	"os"
	"syscall"
)

// ReaderAt is a read-only view of a memory-mapped file.
type ReaderAt struct {
	data []byte
	f    *os.File
}

// Open maps path into memory read-only. The caller must call Close when
// done to unmap and release the file descriptor.
func Open(path string) (*ReaderAt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s): %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("f.Stat: %w", err)
	}

	size := fi.Size()
	if size == 0 {
		return &ReaderAt{f: f}, nil
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("syscall.Mmap: %w", err)
	}

	return &ReaderAt{data: data, f: f}, nil
}

// Data returns the entire mapped file as a byte slice. The slice is valid
// until Close is called.
func (r *ReaderAt) Data() []byte { return r.data }

// Len returns the size of the mapped file in bytes.
func (r *ReaderAt) Len() int { return len(r.data) }

// Close unmaps the file and closes its descriptor.
func (r *ReaderAt) Close() error {
	var munmapErr error
	if r.data != nil {
		munmapErr = syscall.Munmap(r.data)
		r.data = nil
	}
	fileErr := r.f.Close()
	if munmapErr != nil {
		return munmapErr
	}
	return fileErr
}
