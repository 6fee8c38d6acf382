//go:build linux

package storage

import "golang.org/x/sys/unix"

// directIOFlag returns the O_DIRECT open flag on Linux when requested.
// The engine's own direct path (spec.md §4.4.2) bypasses the buffer
// pool purely by transfer size; on Linux we additionally honor
// cfg.StorageConfig.DirectIO at the storage layer by opening the whole
// file with O_DIRECT, so every transfer through this driver, cached
// record loads and flushes as well as large transfers, skips the page
// cache.
func directIOFlag(directIO bool) int {
	if !directIO {
		return 0
	}
	return unix.O_DIRECT
}
