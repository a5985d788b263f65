// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import (
	"io"
	"log/slog"
)

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ReadOption configures a read_expa_32/read_expa_64 call.
type ReadOption func(*readOptions)

type readOptions struct {
	schemaRoot string
	logger     *slog.Logger
}

// WithSchemaRoot sets the directory a `structures/` schema folder is
// resolved under, rather than resolving it against the process's current
// directory. The default is ".".
func WithSchemaRoot(root string) ReadOption {
	return func(opts *readOptions) {
		opts.schemaRoot = root
	}
}

// WithReadLogger sets an optional logger for diagnostics during a read
// (missing or malformed schema files). If not provided, no logging output
// is produced.
func WithReadLogger(logger *slog.Logger) ReadOption {
	return func(opts *readOptions) {
		opts.logger = logger
	}
}

func newReadOptions(opts ...ReadOption) readOptions {
	options := readOptions{
		schemaRoot: ".",
		logger:     defaultLogger(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WriteOption configures a write_expa_32/write_expa_64 call.
type WriteOption func(*writeOptions)

type writeOptions struct {
	logger *slog.Logger
}

// WithWriteLogger sets an optional logger for progress updates during a
// write. If not provided, no logging output is produced.
func WithWriteLogger(logger *slog.Logger) WriteOption {
	return func(opts *writeOptions) {
		opts.logger = logger
	}
}

func newWriteOptions(opts ...WriteOption) writeOptions {
	options := writeOptions{
		logger: defaultLogger(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
