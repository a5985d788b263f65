// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

// EntryType tags the type of a single cell in a row, and determines its
// on-disk size and alignment.
type EntryType uint32

const (
	UNK0 EntryType = iota
	UNK1
	INT32
	INT16
	INT8
	FLOAT
	STRING3
	STRING
	STRING2
	BOOL
	EMPTY

	// INT_ARRAY is not assigned a small contiguous code in the original
	// format -- it's stored out of line from the other types.
	INT_ARRAY EntryType = 100
)

func (t EntryType) String() string {
	switch t {
	case UNK0:
		return "unk0"
	case UNK1:
		return "unk1"
	case INT32:
		return "int32"
	case INT16:
		return "int16"
	case INT8:
		return "int8"
	case FLOAT:
		return "float"
	case STRING3:
		return "string3"
	case STRING:
		return "string"
	case STRING2:
		return "string2"
	case BOOL:
		return "bool"
	case EMPTY:
		return "empty"
	case INT_ARRAY:
		return "int array"
	default:
		return "invalid"
	}
}

// size returns the on-disk storage width of the type, in bytes. BOOL
// returns 0 here: its footprint depends on how many consecutive BOOL
// fields share a word, which Structure computes separately.
func (t EntryType) size() uint32 {
	switch t {
	case INT8:
		return 1
	case INT16:
		return 2
	case INT32:
		return 4
	case FLOAT:
		return 4
	case STRING, STRING2, STRING3:
		return 8
	case INT_ARRAY:
		return 16
	default:
		// BOOL, EMPTY, UNK0, UNK1
		return 0
	}
}

// align returns the byte alignment required for the type's first byte.
func (t EntryType) align() uint32 {
	switch t {
	case INT8:
		return 1
	case INT16:
		return 2
	case INT32:
		return 4
	case FLOAT:
		return 4
	case BOOL:
		return 4
	case STRING, STRING2, STRING3:
		return 8
	case INT_ARRAY:
		return 8
	default:
		// EMPTY, UNK0, UNK1
		return 0
	}
}

// entryTypeByName is the fixed type-string-to-EntryType map a schema file's
// field types are translated through.
var entryTypeByName = map[string]EntryType{
	"byte":      INT8,
	"short":     INT16,
	"int":       INT32,
	"int array": INT_ARRAY,
	"float":     FLOAT,
	"int8":      INT8,
	"int16":     INT16,
	"int32":     INT32,
	"bool":      BOOL,
	"empty":     EMPTY,
	"string":    STRING,
	"string2":   STRING2,
	"string3":   STRING3,
}

// lookupEntryType translates a schema type string to an EntryType,
// demoting anything it doesn't recognise to EMPTY.
func lookupEntryType(s string) EntryType {
	if t, ok := entryTypeByName[s]; ok {
		return t
	}
	return EMPTY
}
