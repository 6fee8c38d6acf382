// Package recio implements the buffered record I/O engine: a
// process-wide pool of fixed-size record buffers mediating all byte
// reads and writes performed against open FITS-like files.
//
// It provides cached small-access I/O, a direct bypass for large
// transfers, dirty write-back with sparse EOF extension, and
// machine-independent typed numeric I/O.
package recio
