// Package storage defines the byte-addressable storage driver contract
// consumed by the engine (spec.md §6, "Storage driver contract") and
// the concrete drivers that satisfy it: a real file on disk and an
// in-memory driver for tests.
package storage

import "errors"

// ErrShortReadWrite is returned when the driver could not transfer
// exactly the requested number of bytes.
var ErrShortReadWrite = errors.New("storage: short read or write")

// Driver is the byte-addressable storage the engine mediates access to.
// Implementations need not be goroutine-safe; the engine serializes all
// calls into a single driver per file.
type Driver interface {
	// Seek sets the driver's position to pos.
	Seek(pos int64) error

	// Read reads exactly len(dst) bytes at the current position,
	// advancing it. Returns ErrShortReadWrite on a short read.
	Read(dst []byte) error

	// Write writes exactly len(src) bytes at the current position,
	// advancing it.
	Write(src []byte) error

	// Flush forces any buffering below the driver out to storage.
	Flush() error

	// Size returns the current on-disk length of the underlying file.
	Size() (int64, error)

	// Close releases any resources held by the driver.
	Close() error
}
