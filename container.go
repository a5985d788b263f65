// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bpowers/expa/internal/datafile"
)

// readContainer parses a whole EXPA container image for one dialect: header,
// per-table metadata and row regions, and the trailing CHNK section, which
// it resolves into an in-memory pointer-patch table before decoding rows.
func readContainer(path string, dialect Dialect, opts ...ReadOption) (*TableFile, error) {
	options := newReadOptions(opts...)

	r, err := datafile.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("datafile.OpenReader(%s): %w", path, err)
	}
	defer r.Close()

	data := r.Data()

	if len(data) < 8 {
		return nil, fmt.Errorf("%w: file too short for an EXPA header", ErrTruncated)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != datafile.MagicEXPA {
		return nil, fmt.Errorf("%w: not an EXPA container", ErrMissingMagic)
	}
	tableCount := binary.LittleEndian.Uint32(data[4:8])
	cursor := uint32(8)

	resolver := NewStructureResolver(options.schemaRoot, WithResolverLogger(options.logger))

	type pendingTable struct {
		name       string
		structure  Structure
		dataOffset uint32
		rowSize    uint32
		rowCount   uint32
	}
	pending := make([]pendingTable, 0, tableCount)

	for i := uint32(0); i < tableCount; i++ {
		cursor = datafile.AlignUp(cursor, dialect.AlignStep)

		nameSize, err := readU32(data, cursor)
		if err != nil {
			return nil, fmt.Errorf("table %d: name_size: %w", i, err)
		}
		cursor += 4
		nameBytes, err := readBytes(data, cursor, nameSize)
		if err != nil {
			return nil, fmt.Errorf("table %d: name: %w", i, err)
		}
		cursor += nameSize
		name := cStringFromBytes(nameBytes)

		var inBand Structure
		if dialect.HasStructureSection {
			fieldCount, err := readU32(data, cursor)
			if err != nil {
				return nil, fmt.Errorf("table %q: field_count: %w", name, err)
			}
			cursor += 4
			fields := make([]StructureEntry, fieldCount)
			for j := uint32(0); j < fieldCount; j++ {
				code, err := readU32(data, cursor)
				if err != nil {
					return nil, fmt.Errorf("table %q: field %d type: %w", name, j, err)
				}
				cursor += 4
				t := EntryType(code)
				fields[j] = StructureEntry{Name: fmt.Sprintf("%s %d", t, j), Type: t}
			}
			inBand = Structure{Fields: fields}
		}

		fileBased := resolver.Resolve(path, name)
		structure := fileBased
		if dialect.HasStructureSection {
			structure = ReconcileInBand(fileBased, inBand)
		}

		rowSize, err := readU32(data, cursor)
		if err != nil {
			return nil, fmt.Errorf("table %q: row_size: %w", name, err)
		}
		cursor += 4
		rowCount, err := readU32(data, cursor)
		if err != nil {
			return nil, fmt.Errorf("table %q: row_count: %w", name, err)
		}
		cursor += 4

		cursor = datafile.AlignUp(cursor, 8)
		dataOffset := cursor

		if structure.EncodedRowSize() != roundUp8(rowSize) {
			return nil, fmt.Errorf("%w: table %q declares row_size %d (encoded %d), structure computes %d",
				ErrStructureSizeMismatch, name, rowSize, roundUp8(rowSize), structure.EncodedRowSize())
		}

		rowRegionLen := uint64(rowCount) * uint64(roundUp8(rowSize))
		if uint64(cursor)+rowRegionLen > uint64(len(data)) {
			return nil, fmt.Errorf("%w: table %q row region extends past end of file", ErrTruncated, name)
		}
		cursor += uint32(rowRegionLen)

		pending = append(pending, pendingTable{
			name:       name,
			structure:  structure,
			dataOffset: dataOffset,
			rowSize:    rowSize,
			rowCount:   rowCount,
		})
	}

	cursor = datafile.AlignUp(cursor, dialect.AlignStep)
	if cursor+8 > uint32(len(data)) {
		return nil, fmt.Errorf("%w: file too short for a CHNK header", ErrTruncated)
	}
	if binary.LittleEndian.Uint32(data[cursor:cursor+4]) != datafile.MagicCHNK {
		return nil, fmt.Errorf("%w: missing CHNK header", ErrMissingMagic)
	}
	chnkEntryCount := binary.LittleEndian.Uint32(data[cursor+4 : cursor+8])
	cursor += 8

	patches := make(chnkPatches, chnkEntryCount)
	for i := uint32(0); i < chnkEntryCount; i++ {
		rowOffset, err := readU32(data, cursor)
		if err != nil {
			return nil, fmt.Errorf("chnk entry %d: row_offset: %w", i, err)
		}
		cursor += 4
		payloadSize, err := readU32(data, cursor)
		if err != nil {
			return nil, fmt.Errorf("chnk entry %d: payload_size: %w", i, err)
		}
		cursor += 4
		payload, err := readBytes(data, cursor, payloadSize)
		if err != nil {
			return nil, fmt.Errorf("chnk entry %d: payload: %w", i, err)
		}
		cursor += payloadSize

		patches[rowOffset] = payload
	}

	tables := make([]Table, len(pending))
	for i, pt := range pending {
		rowSize := roundUp8(pt.rowSize)
		rows := make([]Row, pt.rowCount)
		for j := uint32(0); j < pt.rowCount; j++ {
			baseOffset := pt.dataOffset + j*rowSize
			rowBytes, err := readBytes(data, baseOffset, rowSize)
			if err != nil {
				return nil, fmt.Errorf("table %q row %d: %w", pt.name, j, err)
			}
			row, err := pt.structure.DecodeRow(rowBytes, baseOffset, patches)
			if err != nil {
				return nil, fmt.Errorf("table %q row %d: %w", pt.name, j, err)
			}
			rows[j] = row
		}
		tables[i] = Table{Name: pt.name, Structure: pt.structure, Rows: rows}
	}

	return &TableFile{Tables: tables}, nil
}

// writeContainer serialises a TableFile as a whole EXPA container image for
// one dialect: header, per-table metadata and rows, then the accumulated
// CHNK section, written atomically via a temp file and rename.
func writeContainer(tf *TableFile, path string, dialect Dialect, opts ...WriteOption) error {
	options := newWriteOptions(opts...)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("filepath.Abs: %w", err)
	}
	dir := filepath.Dir(absPath)
	tmp, err := os.CreateTemp(dir, "expa-write.*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp(%s): %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	w := datafile.NewWriter(tmp)

	if err := w.WriteUint32(datafile.MagicEXPA); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(tf.Tables))); err != nil {
		return err
	}

	var chnkEntries []CHNKEntry

	for _, table := range tf.Tables {
		if err := w.AlignTo(dialect.AlignStep); err != nil {
			return err
		}

		nameSize := roundUp4(uint32(len(table.Name)) + 1)
		if err := w.WriteUint32(nameSize); err != nil {
			return err
		}
		nameBuf := make([]byte, nameSize)
		copy(nameBuf, table.Name)
		if err := w.WriteBytes(nameBuf); err != nil {
			return err
		}

		if dialect.HasStructureSection {
			if err := w.WriteUint32(uint32(len(table.Structure.Fields))); err != nil {
				return err
			}
			for _, f := range table.Structure.Fields {
				if err := w.WriteUint32(uint32(f.Type)); err != nil {
					return err
				}
			}
		}

		rowSize := table.Structure.rawSize()
		if err := w.WriteUint32(rowSize); err != nil {
			return err
		}
		if err := w.WriteUint32(uint32(len(table.Rows))); err != nil {
			return err
		}

		if err := w.AlignTo(8); err != nil {
			return err
		}

		encodedRowSize := table.Structure.EncodedRowSize()
		buf := make([]byte, encodedRowSize)
		for _, row := range table.Rows {
			baseOffset := w.Offset()
			entries, err := table.Structure.EncodeRow(baseOffset, buf, row)
			if err != nil {
				return fmt.Errorf("table %q: %w", table.Name, err)
			}
			chnkEntries = append(chnkEntries, entries...)
			if err := w.WriteBytes(buf); err != nil {
				return err
			}
		}

		options.logger.Debug("expa: wrote table", "name", table.Name, "rows", len(table.Rows))
	}

	if err := w.AlignTo(dialect.AlignStep); err != nil {
		return err
	}
	if err := w.WriteUint32(datafile.MagicCHNK); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(chnkEntries))); err != nil {
		return err
	}
	for _, e := range chnkEntries {
		if err := w.WriteUint32(e.RowOffset); err != nil {
			return err
		}
		if err := w.WriteUint32(uint32(len(e.Payload))); err != nil {
			return err
		}
		if err := w.WriteBytes(e.Payload); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, absPath); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}

func readU32(data []byte, off uint32) (uint32, error) {
	if uint64(off)+4 > uint64(len(data)) {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(data[off : off+4]), nil
}

func readBytes(data []byte, off, n uint32) ([]byte, error) {
	if uint64(off)+uint64(n) > uint64(len(data)) {
		return nil, ErrTruncated
	}
	return data[off : off+n], nil
}

func cStringFromBytes(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
