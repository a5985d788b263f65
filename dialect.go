// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

// Dialect distinguishes the two EXPA container variants: the alignment
// step used between sections, and whether each table carries an in-band
// schema preamble ahead of its rows.
type Dialect struct {
	AlignStep           uint32
	HasStructureSection bool
}

// Dialect32 is the 32-bit alignment dialect: no in-band schema, so every
// table's Structure must come from the external schema index.
var Dialect32 = Dialect{AlignStep: 4, HasStructureSection: false}

// Dialect64 is the 64-bit alignment dialect: every table carries a schema
// preamble (field count + EntryType codes) ahead of its rows, reconciled
// against the external schema index when available (ReconcileInBand).
var Dialect64 = Dialect{AlignStep: 8, HasStructureSection: true}
