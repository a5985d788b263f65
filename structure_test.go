// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructure_S1_ScalarRow(t *testing.T) {
	s := Structure{Fields: []StructureEntry{
		{Name: "a", Type: INT32},
		{Name: "b", Type: INT16},
		{Name: "c", Type: INT8},
	}}
	require.Equal(t, uint32(8), s.EncodedRowSize())

	row := Row{Int32Value(42), Int16Value(-1), Int8Value(7)}
	dst := make([]byte, s.EncodedRowSize())
	entries, err := s.EncodeRow(0, dst, row)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Equal(t, []byte{0x2A, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0x07, 0xCC}, dst)

	decoded, err := s.DecodeRow(dst, 0, nil)
	require.NoError(t, err)
	require.Equal(t, row, decoded)
}

func TestStructure_S2_BoolPacking33(t *testing.T) {
	fields := make([]StructureEntry, 33)
	row := make(Row, 33)
	for i := range fields {
		fields[i] = StructureEntry{Name: "b", Type: BOOL}
		row[i] = BoolValue(i%2 == 0)
	}
	row[32] = BoolValue(true)
	s := Structure{Fields: fields}

	require.Equal(t, uint32(8), s.EncodedRowSize())

	dst := make([]byte, s.EncodedRowSize())
	_, err := s.EncodeRow(0, dst, row)
	require.NoError(t, err)

	decoded, err := s.DecodeRow(dst, 0, nil)
	require.NoError(t, err)
	require.Equal(t, row, decoded)

	// second word holds only bit 0 (the 33rd bool).
	require.Equal(t, byte(1), dst[4]&1)
	require.Equal(t, byte(0), dst[5])
	require.Equal(t, byte(0), dst[6])
	require.Equal(t, byte(0), dst[7])
}

func TestStructure_S3_BoolThenInt(t *testing.T) {
	s := Structure{Fields: []StructureEntry{
		{Name: "b0", Type: BOOL},
		{Name: "b1", Type: BOOL},
		{Name: "n", Type: INT32},
	}}
	row := Row{BoolValue(true), BoolValue(true), Int32Value(9)}

	dst := make([]byte, s.EncodedRowSize())
	_, err := s.EncodeRow(0, dst, row)
	require.NoError(t, err)

	require.Equal(t, []byte{0x03, 0x00, 0x00, 0x00}, dst[0:4])
	require.Equal(t, []byte{0x09, 0x00, 0x00, 0x00}, dst[4:8])
}

func TestStructure_S4_StringCell(t *testing.T) {
	s := Structure{Fields: []StructureEntry{{Name: "s", Type: STRING}}}
	row := Row{StringValue("hi")}

	dst := make([]byte, s.EncodedRowSize())
	entries, err := s.EncodeRow(100, dst, row)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 8), dst)
	require.Len(t, entries, 1)
	require.Equal(t, uint32(100), entries[0].RowOffset)
	require.Equal(t, []byte{0x68, 0x69, 0x00, 0x00}, entries[0].Payload)

	patches := chnkPatches{entries[0].RowOffset: entries[0].Payload}
	decoded, err := s.DecodeRow(dst, 100, patches)
	require.NoError(t, err)
	require.Equal(t, "hi", decoded[0].Str)
}

func TestStructure_S5_EmptyStringCell(t *testing.T) {
	s := Structure{Fields: []StructureEntry{{Name: "s", Type: STRING}}}
	row := Row{StringValue("")}

	dst := make([]byte, s.EncodedRowSize())
	entries, err := s.EncodeRow(0, dst, row)
	require.NoError(t, err)
	require.Empty(t, entries)

	decoded, err := s.DecodeRow(dst, 0, nil)
	require.NoError(t, err)
	require.Equal(t, "", decoded[0].Str)
}

func TestStructure_S6_IntArrayCell(t *testing.T) {
	s := Structure{Fields: []StructureEntry{{Name: "xs", Type: INT_ARRAY}}}
	row := Row{IntArrayValue([]int32{1, 2, 3})}

	dst := make([]byte, s.EncodedRowSize())
	entries, err := s.EncodeRow(0, dst, row)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x03, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}, dst)
	require.Len(t, entries, 1)
	require.Equal(t, uint32(8), entries[0].RowOffset)
	require.Equal(t, []byte{
		0x01, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x03, 0x00, 0x00, 0x00,
	}, entries[0].Payload)

	patches := chnkPatches{entries[0].RowOffset: entries[0].Payload}
	decoded, err := s.DecodeRow(dst, 0, patches)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3}, decoded[0].IntVec)
}

func TestStructure_SizeLaw(t *testing.T) {
	s := Structure{Fields: []StructureEntry{
		{Name: "a", Type: FLOAT},
		{Name: "b", Type: BOOL},
		{Name: "c", Type: STRING},
		{Name: "d", Type: INT_ARRAY},
	}}
	row := Row{FloatValue(1.5), BoolValue(true), StringValue("x"), IntArrayValue([]int32{7})}

	dst := make([]byte, s.EncodedRowSize())
	_, err := s.EncodeRow(0, dst, row)
	require.NoError(t, err)
	// every byte of dst got initialized (no panic on out-of-range write),
	// and the size matches what EncodeRow/DecodeRow both assume.
	require.Equal(t, int(s.EncodedRowSize()), len(dst))
}

func TestStructure_AlignmentOfEachField(t *testing.T) {
	s := Structure{Fields: []StructureEntry{
		{Name: "a", Type: INT8},
		{Name: "b", Type: INT32},
		{Name: "c", Type: INT8},
		{Name: "d", Type: STRING},
	}}
	row := Row{Int8Value(1), Int32Value(2), Int8Value(3), StringValue("")}

	dst := make([]byte, s.EncodedRowSize())
	_, err := s.EncodeRow(0, dst, row)
	require.NoError(t, err)

	decoded, err := s.DecodeRow(dst, 0, nil)
	require.NoError(t, err)
	require.Equal(t, row, decoded)
}

func TestStructure_RejectsWrongRowLength(t *testing.T) {
	s := Structure{Fields: []StructureEntry{{Name: "a", Type: INT32}}}
	dst := make([]byte, s.EncodedRowSize())
	_, err := s.EncodeRow(0, dst, Row{})
	require.Error(t, err)
}

func TestStructure_RejectsKindMismatch(t *testing.T) {
	s := Structure{Fields: []StructureEntry{{Name: "a", Type: INT32}}}
	dst := make([]byte, s.EncodedRowSize())
	_, err := s.EncodeRow(0, dst, Row{StringValue("nope")})
	require.Error(t, err)
}
