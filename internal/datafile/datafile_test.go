// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, uint32(0), AlignUp(0, 4))
	require.Equal(t, uint32(4), AlignUp(1, 4))
	require.Equal(t, uint32(4), AlignUp(4, 4))
	require.Equal(t, uint32(8), AlignUp(5, 4))
	require.Equal(t, uint32(8), AlignUp(1, 8))
	require.Equal(t, uint32(3), AlignUp(3, 0))
}

func TestWriterTracksOffsetAndAligns(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteUint32(MagicEXPA))
	require.Equal(t, uint32(4), w.Offset())

	require.NoError(t, w.WriteBytes([]byte{1, 2, 3}))
	require.Equal(t, uint32(7), w.Offset())

	require.NoError(t, w.AlignTo(8))
	require.Equal(t, uint32(8), w.Offset())

	require.NoError(t, w.Flush())
	require.Equal(t, 8, buf.Len())
}

func TestReaderRoundTrip(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "datafile-*.bin")
	require.NoError(t, err)
	_, err = f.Write([]byte{0x45, 0x58, 0x50, 0x41, 1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := OpenReader(f.Name())
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 8, r.Len())
	require.Equal(t, []byte{0x45, 0x58, 0x50, 0x41, 1, 2, 3, 4}, r.Data())
}

func TestReaderEmptyFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "datafile-empty-*.bin")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := OpenReader(f.Name())
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 0, r.Len())
}

func TestReaderMissingFile(t *testing.T) {
	_, err := OpenReader("/nonexistent/path/to/file")
	require.Error(t, err)
}
