// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bpowers/expa/internal/bytesutil"
	"github.com/bpowers/expa/internal/unsafestring"
	"github.com/bpowers/expa/internal/zero"
)

// StructureEntry names one field of a row and gives its on-disk type.
type StructureEntry struct {
	Name string
	Type EntryType
}

// Structure is an ordered, immutable row layout: a sequence of typed
// fields. Field order defines on-disk order.
type Structure struct {
	Fields []StructureEntry
}

// Row is one table row: one EntryValue per field of its Structure, in
// field order.
type Row []EntryValue

// CHNKEntry is a deferred pointer-patch record produced while encoding a
// row: RowOffset is the absolute file offset of the row's 8-byte pointer
// slot (written as zero), and Payload is the data that slot refers to,
// stored in the CHNK section. On read, DecodeRow finds the payload by
// looking up the slot's offset in a chnkPatches table.
type CHNKEntry struct {
	RowOffset uint32
	Payload   []byte
}

// paddingByte fills freshly allocated row buffers so that unread alignment
// holes are deterministic rather than whatever garbage the allocator left
// behind.
const paddingByte = 0xCC

func alignUp(off, align uint32) uint32 {
	if align == 0 {
		return off
	}
	rem := off % align
	if rem == 0 {
		return off
	}
	return off + (align - rem)
}

// roundUp4 and roundUp8 round n up to the next multiple of 4 and 8,
// respectively -- used for row-size rounding and string-payload padding.
func roundUp4(n uint32) uint32 { return alignUp(n, 4) }
func roundUp8(n uint32) uint32 { return alignUp(n, 8) }

// EncodedRowSize returns the byte size of one encoded row for this
// Structure, rounded up to 8.
func (s Structure) EncodedRowSize() uint32 {
	return roundUp8(s.rawSize())
}

// rawSize is the row size before the final round-up-to-8 -- this is what
// the container writes as a table's row_size field.
func (s Structure) rawSize() uint32 {
	var offset uint32
	var bitCounter int

	for _, f := range s.Fields {
		if f.Type != BOOL || bitCounter >= 32 {
			if bitCounter > 0 {
				offset += 4
				bitCounter = 0
			}
			offset = alignUp(offset, f.Type.align())
		}

		if f.Type == BOOL {
			bitCounter++
		} else {
			offset += f.Type.size()
		}
	}

	if bitCounter > 0 {
		offset += 4
	}

	return offset
}

// EncodeRow writes exactly EncodedRowSize() bytes into dst (which must be
// at least that long) and returns the CHNK entries the row's string and
// int-array cells produced. baseOffset is the row's absolute offset in the
// output file, used to compute each CHNKEntry's RowOffset.
func (s Structure) EncodeRow(baseOffset uint32, dst []byte, row Row) ([]CHNKEntry, error) {
	if len(row) != len(s.Fields) {
		return nil, fmt.Errorf("expa: row has %d cells, structure has %d fields", len(row), len(s.Fields))
	}
	size := s.EncodedRowSize()
	if uint32(len(dst)) < size {
		return nil, fmt.Errorf("expa: dst too short to encode row: %d < %d", len(dst), size)
	}
	for i := range dst[:size] {
		dst[i] = paddingByte
	}

	var (
		offset       uint32
		bitCounter   int
		boolWord     uint32
		chunkEntries []CHNKEntry
	)

	flushBool := func() {
		binary.LittleEndian.PutUint32(dst[offset:offset+4], boolWord)
		offset += 4
		bitCounter = 0
		boolWord = 0
	}

	for i, f := range s.Fields {
		val := row[i]
		if wantKind := kindFor(f.Type); val.Kind != wantKind {
			return nil, fmt.Errorf("expa: field %q wants %s-kind value, got kind %d", f.Name, f.Type, val.Kind)
		}

		if f.Type != BOOL || bitCounter >= 32 {
			if bitCounter > 0 {
				flushBool()
			}
			offset = alignUp(offset, f.Type.align())
		}

		switch f.Type {
		case INT8:
			dst[offset] = byte(val.I8)
		case INT16:
			binary.LittleEndian.PutUint16(dst[offset:offset+2], uint16(val.I16))
		case INT32:
			binary.LittleEndian.PutUint32(dst[offset:offset+4], uint32(val.I32))
		case FLOAT:
			binary.LittleEndian.PutUint32(dst[offset:offset+4], math.Float32bits(val.F32))
		case STRING, STRING2, STRING3:
			zero.Bytes(dst[offset : offset+8])
			if val.Str != "" {
				chunkEntries = append(chunkEntries, CHNKEntry{
					RowOffset: baseOffset + offset,
					Payload:   stringPayload(val.Str),
				})
			}
		case INT_ARRAY:
			binary.LittleEndian.PutUint32(dst[offset:offset+4], uint32(len(val.IntVec)))
			zero.Bytes(dst[offset+4 : offset+16])
			if len(val.IntVec) > 0 {
				chunkEntries = append(chunkEntries, CHNKEntry{
					RowOffset: baseOffset + offset + 8,
					Payload:   intArrayPayload(val.IntVec),
				})
			}
		case BOOL:
			if val.Bool {
				boolWord |= 1 << uint(bitCounter)
			}
		case EMPTY, UNK0, UNK1:
			// no storage
		}

		if f.Type == BOOL {
			bitCounter++
		} else {
			offset += f.Type.size()
		}
	}

	if bitCounter > 0 {
		flushBool()
	}

	return chunkEntries, nil
}

// chnkPatches maps the absolute file offset of an in-row pointer slot to
// the payload bytes it refers to. The container reader builds this while
// walking the CHNK section; Structure.DecodeRow consults it instead of
// treating row bytes as live pointers, keeping string and int-array payload
// resolution a pure lookup rather than raw pointer arithmetic over the file
// buffer.
type chnkPatches map[uint32][]byte

// DecodeRow reads one row out of src (which must be at least
// EncodedRowSize() bytes) starting at file offset baseOffset, resolving any
// string/int-array cells against patches.
func (s Structure) DecodeRow(src []byte, baseOffset uint32, patches chnkPatches) (Row, error) {
	size := s.EncodedRowSize()
	if uint32(len(src)) < size {
		return nil, fmt.Errorf("expa: src too short to decode row: %d < %d", len(src), size)
	}

	row := make(Row, len(s.Fields))
	var offset uint32
	var bitCounter int

	for i, f := range s.Fields {
		if f.Type != BOOL || bitCounter >= 32 {
			if bitCounter > 0 {
				offset += 4
				bitCounter = 0
			}
			offset = alignUp(offset, f.Type.align())
		}

		switch f.Type {
		case INT8:
			row[i] = Int8Value(int8(src[offset]))
		case INT16:
			row[i] = Int16Value(int16(binary.LittleEndian.Uint16(src[offset : offset+2])))
		case INT32:
			row[i] = Int32Value(int32(binary.LittleEndian.Uint32(src[offset : offset+4])))
		case FLOAT:
			row[i] = FloatValue(math.Float32frombits(binary.LittleEndian.Uint32(src[offset : offset+4])))
		case STRING, STRING2, STRING3:
			row[i] = StringValue(readPatchedString(patches, baseOffset+offset))
		case INT_ARRAY:
			count := binary.LittleEndian.Uint32(src[offset : offset+4])
			row[i] = IntArrayValue(readPatchedIntArray(patches, baseOffset+offset+8, count))
		case BOOL:
			word := binary.LittleEndian.Uint32(src[offset : offset+4])
			row[i] = BoolValue((word>>uint(bitCounter))&1 == 1)
		case EMPTY, UNK0, UNK1:
			row[i] = NoneValue()
		}

		if f.Type == BOOL {
			bitCounter++
		} else {
			offset += f.Type.size()
		}
	}

	return row, nil
}

func readPatchedString(patches chnkPatches, slot uint32) string {
	payload, ok := patches[slot]
	if !ok {
		return ""
	}
	s, _, _ := bytesutil.Cut(payload, 0)
	return string(s)
}

func readPatchedIntArray(patches chnkPatches, slot uint32, count uint32) []int32 {
	if count == 0 {
		return nil
	}
	payload, ok := patches[slot]
	if !ok {
		return nil
	}
	out := make([]int32, count)
	for i := range out {
		off := i * 4
		if off+4 > len(payload) {
			break
		}
		out[i] = int32(binary.LittleEndian.Uint32(payload[off : off+4]))
	}
	return out
}

// stringPayload returns the CHNK payload for a string cell: the UTF-8
// bytes, a trailing NUL, zero-padded to a 4-byte multiple.
func stringPayload(s string) []byte {
	raw := unsafestring.ToBytes(s)
	padded := roundUp4(uint32(len(raw)) + 1)
	out := make([]byte, padded)
	copy(out, raw)
	// out[len(raw)] and beyond are already zero (the NUL terminator plus padding)
	return out
}

// intArrayPayload returns the CHNK payload for an int-array cell: count*4
// bytes of raw little-endian i32 values.
func intArrayPayload(vals []int32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], uint32(v))
	}
	return out
}
