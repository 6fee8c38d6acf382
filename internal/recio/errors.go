package recio

import "errors"

// Sentinel errors distinguished by spec.md §6. Storage-driver errors
// propagate unchanged (wrapped with %w at the call site), rather than
// being folded into this set.
var (
	ErrNegFilePos   = errors.New("recio: negative file position")
	ErrEndOfFile    = errors.New("recio: end of file")
	ErrTooManyFiles = errors.New("recio: too many files open for the buffer pool")
	ErrBadRowNum    = errors.New("recio: row number out of range")
	ErrBadElemNum   = errors.New("recio: element/char count out of range")
)
