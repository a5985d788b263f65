// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package expa reads and writes EXPA containers: a proprietary tabular
// binary format used to ship fixed-width row data alongside a CHNK section
// holding the variable-length payloads (strings, int arrays) those rows
// point into.
//
// An EXPA file looks like:
//
//	┌───────────────────┐
//	│ EXPA header       │
//	├───────────────────┤
//	│ table 0 header    │
//	│ table 0 rows      │
//	├───────────────────┤
//	│ table 1 header    │
//	│ table 1 rows      │
//	│        ...        │
//	├───────────────────┤
//	│ CHNK header       │
//	├───────────────────┤
//	│ CHNK entries       │
//	└───────────────────┘
//
// Two dialects exist. The 32-bit dialect aligns sections to 4 bytes and
// carries no in-band schema: row layout must come from an external schema
// index (see StructureResolver). The 64-bit dialect aligns to 8 bytes and
// embeds a schema preamble (a field count followed by that many EntryType
// codes) ahead of each table's rows, which is reconciled against the
// external schema (if any) for human-readable field names.
//
// Row cells are packed left to right with type-specific alignment; runs of
// consecutive bool cells share 32-bit words instead of costing a byte each.
// Strings and int arrays store an 8-byte pointer slot in the row and their
// actual bytes in the trailing CHNK section; on read those pointer slots are
// resolved against an in-memory table built while walking the CHNK entries,
// so Structure.DecodeRow never has to consult the file format directly.
package expa
