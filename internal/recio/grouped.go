package recio

import "fmt"

// advanceCursor moves file.bytepos forward by n bytes without copying
// any payload, loading whatever records that span covers. It backs the
// inter-group gap skip in the grouped transfer (spec.md §4.4.4).
func (eng *Engine) advanceCursor(file *FileState, n int64, eofMode EOFMode) error {
	remaining := n
	for remaining > 0 {
		if file.curBuf < 0 {
			return fmt.Errorf("recio: advanceCursor: file has no current buffer")
		}
		s := &eng.slots[file.curBuf]
		off := file.BytePos - s.record*eng.recordLength
		space := eng.recordLength - off

		step := min64(remaining, space)
		file.BytePos += step
		remaining -= step

		if remaining > 0 {
			next := recordOf(file.BytePos, eng.recordLength)
			if err := eng.loadRecord(file, next, eofMode); err != nil {
				return err
			}
		}
	}
	return nil
}

// PutBytesGrouped implements spec.md §4.4.4: writes ngroups groups of
// gsize bytes from src through the cache, skipping offset bytes between
// consecutive groups. Used for column-oriented writes into row-major
// table files.
func (eng *Engine) PutBytesGrouped(file *FileState, gsize int, ngroups int, offset int64, src []byte) error {
	eng.lockPool()
	defer eng.unlockPool()

	if gsize < 0 || ngroups < 0 {
		return fmt.Errorf("recio: PutBytesGrouped: gsize and ngroups must be non-negative")
	}
	if int64(len(src)) < int64(gsize)*int64(ngroups) {
		return fmt.Errorf("recio: PutBytesGrouped: src too short for %d groups of %d bytes", ngroups, gsize)
	}

	for g := 0; g < ngroups; g++ {
		group := src[g*gsize : (g+1)*gsize]
		if err := eng.putBytesSmall(file, group); err != nil {
			return err
		}
		if g < ngroups-1 && offset > 0 {
			if err := eng.advanceCursor(file, offset, IgnoreEOF); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetBytesGrouped implements spec.md §4.4.4's read counterpart.
func (eng *Engine) GetBytesGrouped(file *FileState, gsize int, ngroups int, offset int64, dst []byte) error {
	eng.lockPool()
	defer eng.unlockPool()

	if gsize < 0 || ngroups < 0 {
		return fmt.Errorf("recio: GetBytesGrouped: gsize and ngroups must be non-negative")
	}
	if int64(len(dst)) < int64(gsize)*int64(ngroups) {
		return fmt.Errorf("recio: GetBytesGrouped: dst too short for %d groups of %d bytes", ngroups, gsize)
	}

	for g := 0; g < ngroups; g++ {
		group := dst[g*gsize : (g+1)*gsize]
		if err := eng.getBytesSmall(file, group); err != nil {
			return err
		}
		if g < ngroups-1 && offset > 0 {
			if err := eng.advanceCursor(file, offset, ReportEOF); err != nil {
				return err
			}
		}
	}
	return nil
}
