package recio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTableFile(t *testing.T, eng *Engine, rowLength int64) *FileState {
	t.Helper()
	file, _ := openMemFile(t, eng, HDUBinaryTable)
	file.DataStart = 0
	file.RowLength = rowLength
	file.NumRows = 2
	return file
}

func TestWriteTableBytesGrowsNumRows(t *testing.T) {
	eng := newTestEngine(t, 4, 2880, 8*2880)
	file := newTestTableFile(t, eng, 10)

	require.NoError(t, eng.WriteTableBytes(file, 1, 1, 10, []byte("0123456789")))
	require.Equal(t, int64(2), file.NumRows)

	require.NoError(t, eng.WriteTableBytes(file, 5, 1, 10, []byte("ABCDEFGHIJ")))
	require.Equal(t, int64(5), file.NumRows)
}

func TestReadTableBytesRejectsRowOverrun(t *testing.T) {
	eng := newTestEngine(t, 4, 2880, 8*2880)
	file := newTestTableFile(t, eng, 10)

	dst := make([]byte, 10)
	err := eng.ReadTableBytes(file, 5, 1, 10, dst)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBadRowNum)
}

func TestReadTableBytesRoundTrip(t *testing.T) {
	eng := newTestEngine(t, 4, 2880, 8*2880)
	file := newTestTableFile(t, eng, 10)

	require.NoError(t, eng.WriteTableBytes(file, 1, 1, 10, []byte("HELLOWORLD")))

	dst := make([]byte, 10)
	require.NoError(t, eng.ReadTableBytes(file, 1, 1, 10, dst))
	require.Equal(t, []byte("HELLOWORLD"), dst)
}

func TestTableBytesRejectsInvalidArgs(t *testing.T) {
	eng := newTestEngine(t, 4, 2880, 8*2880)
	file := newTestTableFile(t, eng, 10)

	dst := make([]byte, 1)
	require.ErrorIs(t, eng.ReadTableBytes(file, 0, 1, 1, dst), ErrBadRowNum)
	require.ErrorIs(t, eng.ReadTableBytes(file, 1, 0, 1, dst), ErrBadElemNum)
	require.ErrorIs(t, eng.ReadTableBytes(file, 1, 1, 0, dst[:0]), ErrBadElemNum)
}
