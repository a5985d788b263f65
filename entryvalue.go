// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import "fmt"

// ValueKind tags which field of an EntryValue is active.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindFloat
	KindString
	KindIntArray
)

// EntryValue is a tagged union over the handful of primitive
// representations a row cell can hold. Exactly one field is meaningful,
// selected by Kind; the codec asserts Kind matches the paired
// StructureEntry's type rather than carrying an interface{}.
type EntryValue struct {
	Kind ValueKind

	Bool   bool
	I8     int8
	I16    int16
	I32    int32
	F32    float32
	Str    string
	IntVec []int32
}

func NoneValue() EntryValue              { return EntryValue{Kind: KindNone} }
func BoolValue(v bool) EntryValue        { return EntryValue{Kind: KindBool, Bool: v} }
func Int8Value(v int8) EntryValue        { return EntryValue{Kind: KindInt8, I8: v} }
func Int16Value(v int16) EntryValue      { return EntryValue{Kind: KindInt16, I16: v} }
func Int32Value(v int32) EntryValue      { return EntryValue{Kind: KindInt32, I32: v} }
func FloatValue(v float32) EntryValue    { return EntryValue{Kind: KindFloat, F32: v} }
func StringValue(v string) EntryValue    { return EntryValue{Kind: KindString, Str: v} }
func IntArrayValue(v []int32) EntryValue { return EntryValue{Kind: KindIntArray, IntVec: v} }

// IsNone reports whether the value represents the absence of data (as
// produced by an EMPTY/UNK0/UNK1 field).
func (v EntryValue) IsNone() bool { return v.Kind == KindNone }

func (v EntryValue) String() string {
	switch v.Kind {
	case KindNone:
		return "<none>"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt8:
		return fmt.Sprintf("%d", v.I8)
	case KindInt16:
		return fmt.Sprintf("%d", v.I16)
	case KindInt32:
		return fmt.Sprintf("%d", v.I32)
	case KindFloat:
		return fmt.Sprintf("%g", v.F32)
	case KindString:
		return v.Str
	case KindIntArray:
		return fmt.Sprintf("%v", v.IntVec)
	default:
		return "?"
	}
}

// kindFor returns the ValueKind an EntryValue must carry to be valid for a
// field of the given EntryType.
func kindFor(t EntryType) ValueKind {
	switch t {
	case BOOL:
		return KindBool
	case INT8:
		return KindInt8
	case INT16:
		return KindInt16
	case INT32:
		return KindInt32
	case FLOAT:
		return KindFloat
	case STRING, STRING2, STRING3:
		return KindString
	case INT_ARRAY:
		return KindIntArray
	default:
		// EMPTY, UNK0, UNK1
		return KindNone
	}
}
