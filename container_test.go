// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTableFile() *TableFile {
	partyStructure := Structure{Fields: []StructureEntry{
		{Name: "id", Type: INT32},
		{Name: "name", Type: STRING},
		{Name: "active", Type: BOOL},
	}}
	itemsStructure := Structure{Fields: []StructureEntry{
		{Name: "price", Type: INT16},
		{Name: "tags", Type: INT_ARRAY},
	}}

	return &TableFile{Tables: []Table{
		{
			Name:      "party",
			Structure: partyStructure,
			Rows: []Row{
				{Int32Value(1), StringValue("aela"), BoolValue(true)},
				{Int32Value(2), StringValue(""), BoolValue(false)},
				{Int32Value(3), StringValue("borric"), BoolValue(true)},
			},
		},
		{
			Name:      "items",
			Structure: itemsStructure,
			Rows: []Row{
				{Int16Value(100), IntArrayValue([]int32{1, 2, 3})},
				{Int16Value(-5), IntArrayValue(nil)},
			},
		},
	}}
}

func writeMatchingSchema(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, "structures")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "structure.json"), []byte(`{".*": "tables.json"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.json"), []byte(`{
		"party": {"id": "int32", "name": "string", "active": "bool"},
		"items": {"price": "short", "tags": "int array"}
	}`), 0o644))
}

func TestRoundTrip_Dialect32(t *testing.T) {
	root := t.TempDir()
	writeMatchingSchema(t, root)
	path := filepath.Join(root, "out.mbe")

	tf := sampleTableFile()
	require.NoError(t, WriteExpa32(tf, path))

	got, err := ReadExpa32(path, WithSchemaRoot(root))
	require.NoError(t, err)
	require.Len(t, got.Tables, 2)
	require.Equal(t, tf.Tables[0].Name, got.Tables[0].Name)
	require.Equal(t, tf.Tables[0].Structure, got.Tables[0].Structure)
	require.Equal(t, tf.Tables[0].Rows, got.Tables[0].Rows)
	require.Equal(t, tf.Tables[1].Structure, got.Tables[1].Structure)
	require.Equal(t, tf.Tables[1].Rows, got.Tables[1].Rows)
}

func TestRoundTrip_Dialect64_NoSchemaNeeded(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "out64.mbe")

	tf := sampleTableFile()
	require.NoError(t, WriteExpa64(tf, path))

	got, err := ReadExpa64(path, WithSchemaRoot(root))
	require.NoError(t, err)
	require.Len(t, got.Tables, 2)

	for i, table := range tf.Tables {
		require.Equal(t, table.Name, got.Tables[i].Name)
		require.Equal(t, table.Rows, got.Tables[i].Rows)
		require.Len(t, got.Tables[i].Structure.Fields, len(table.Structure.Fields))
		for j, f := range table.Structure.Fields {
			require.Equal(t, f.Type, got.Tables[i].Structure.Fields[j].Type)
		}
	}
}

func TestRoundTrip_Dialect64_SchemaNamesPreserved(t *testing.T) {
	root := t.TempDir()
	writeMatchingSchema(t, root)
	path := filepath.Join(root, "out64named.mbe")

	tf := sampleTableFile()
	require.NoError(t, WriteExpa64(tf, path))

	got, err := ReadExpa64(path, WithSchemaRoot(root))
	require.NoError(t, err)
	require.Equal(t, tf.Tables[0].Structure, got.Tables[0].Structure)
}

func TestIdempotence_WriteReadWriteByteIdentical(t *testing.T) {
	root := t.TempDir()
	writeMatchingSchema(t, root)
	pathA := filepath.Join(root, "a.mbe")
	pathB := filepath.Join(root, "b.mbe")

	tf := sampleTableFile()
	require.NoError(t, WriteExpa32(tf, pathA))

	got, err := ReadExpa32(pathA, WithSchemaRoot(root))
	require.NoError(t, err)
	require.NoError(t, WriteExpa32(got, pathB))

	bytesA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	bytesB, err := os.ReadFile(pathB)
	require.NoError(t, err)
	require.Equal(t, bytesA, bytesB)
}

func TestReadExpa32_MissingMagic(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bad.mbe")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 0, 0, 0, 0, 0, 0}, 0o644))

	_, err := ReadExpa32(path)
	require.ErrorIs(t, err, ErrMissingMagic)
}

func TestTableFile_Lookup(t *testing.T) {
	tf := sampleTableFile()
	table, ok := tf.Lookup("items")
	require.True(t, ok)
	require.Equal(t, "items", table.Name)

	_, ok = tf.Lookup("nonexistent")
	require.False(t, ok)
}
