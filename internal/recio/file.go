package recio

import (
	"github.com/google/uuid"
	"github.com/kmilos/fitsrec/internal/storage"
)

// EOFMode controls how load_record (spec.md §4.2) treats a miss at or
// beyond logfilesize.
type EOFMode int

const (
	// ReportEOF fails with ErrEndOfFile rather than extend the file.
	ReportEOF EOFMode = iota
	// IgnoreEOF treats the miss as a sparse extension: the slot is
	// initialized with fill bytes and marked dirty.
	IgnoreEOF
)

// HDUType mirrors the HDU contract's hdutype field (spec.md §6):
// consumed read-only by the core except to pick the fill byte (I7).
type HDUType int

const (
	HDUImage HDUType = iota
	HDUASCIITable
	HDUBinaryTable
)

// fillByte returns the I7 fill byte for this HDU type.
func (t HDUType) fillByte() byte {
	if t == HDUASCIITable {
		return 0x20
	}
	return 0x00
}

// HDUMover is the HDU contract's move_to_hdu collaborator (spec.md §6),
// invoked when a file's HDU position drifts from the core's cached
// CurHDU. Out of scope for this package; consumed only.
type HDUMover interface {
	MoveToHDU(file *FileState, hduNumber int) error
}

// FileState is the per-open-file state the core reads and mutates
// (spec.md §3, "File state"). Ownership of the struct is external (the
// caller allocates it via Engine.OpenFile); the engine mutates the
// fields documented as core-owned.
type FileState struct {
	// ID distinguishes concurrently open files in logs/metrics/traces.
	ID uuid.UUID

	// Driver is the storage driver contract consumed by the core.
	Driver storage.Driver

	// BytePos is the logical read/write cursor.
	BytePos int64

	// ioPos is the last known storage-driver position, used to elide
	// redundant seeks.
	ioPos int64

	// FileSize is the byte length of the on-disk file.
	FileSize int64

	// LogFileSize is the largest offset a buffer has been associated
	// with; may exceed FileSize when buffers sit beyond EOF (I4).
	LogFileSize int64

	// curBuf is the slot index pinned as this file's current buffer,
	// or -1 if the file has no resident buffer yet.
	curBuf int

	// HDU metadata, read-only to the core except NumRows (mutated by
	// WriteTableBytes, spec.md §4.9).
	CurHDU    int
	HDUType   HDUType
	DataStart int64
	RowLength int64
	NumRows   int64

	// Mover is consulted when CurHDU drifts from what the caller's HDU
	// layer reports; nil is legal when the caller never repositions.
	Mover HDUMover
}

// recordOf returns the record number covering byte offset pos, given
// the engine's configured record length.
func recordOf(pos int64, recordLength int64) int64 {
	return pos / recordLength
}
