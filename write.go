// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

// WriteExpa32 writes tf to path in the 32-bit alignment dialect. The
// output is written to a temp file in the same directory and renamed into
// place once complete, so a failed write never leaves a partial file at
// path.
func WriteExpa32(tf *TableFile, path string, opts ...WriteOption) error {
	return writeContainer(tf, path, Dialect32, opts...)
}

// WriteExpa64 writes tf to path in the 64-bit alignment dialect, embedding
// each table's schema preamble ahead of its rows.
func WriteExpa64(tf *TableFile, path string, opts ...WriteOption) error {
	return writeContainer(tf, path, Dialect64, opts...)
}
