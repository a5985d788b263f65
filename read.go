// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

// ReadExpa32 reads an EXPA container in the 32-bit alignment dialect: no
// in-band schema, so every table's row layout is resolved from the schema
// index (see WithSchemaRoot).
func ReadExpa32(path string, opts ...ReadOption) (*TableFile, error) {
	return readContainer(path, Dialect32, opts...)
}

// ReadExpa64 reads an EXPA container in the 64-bit alignment dialect: each
// table carries its own schema preamble, reconciled against the schema
// index when one resolves (see ReconcileInBand).
func ReadExpa64(path string, opts ...ReadOption) (*TableFile, error) {
	return readContainer(path, Dialect64, opts...)
}
