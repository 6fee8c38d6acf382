package recio

import "fmt"

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// PutBytes implements spec.md §4.4: small cached writes go through the
// pool, large writes (len(src) >= MINDIRECT) bypass it.
func (eng *Engine) PutBytes(file *FileState, src []byte) error {
	eng.lockPool()
	defer eng.unlockPool()

	if int64(len(src)) >= eng.minDirect {
		return eng.putBytesLarge(file, src)
	}
	return eng.putBytesSmall(file, src)
}

// GetBytes implements spec.md §4.4.3.
func (eng *Engine) GetBytes(file *FileState, dst []byte) error {
	eng.lockPool()
	defer eng.unlockPool()

	if int64(len(dst)) >= eng.minDirect {
		return eng.getBytesLarge(file, dst)
	}
	return eng.getBytesSmall(file, dst)
}

// putBytesSmall implements spec.md §4.4.1. Assumes eng.mu held.
func (eng *Engine) putBytesSmall(file *FileState, src []byte) error {
	remaining := src
	for len(remaining) > 0 {
		if file.curBuf < 0 {
			return fmt.Errorf("recio: putBytesSmall: file has no current buffer")
		}
		s := &eng.slots[file.curBuf]
		off := file.BytePos - s.record*eng.recordLength
		space := eng.recordLength - off

		n := int64(len(remaining))
		if n > space {
			n = space
		}

		copy(s.bytes[off:off+n], remaining[:n])
		s.dirty = true
		file.BytePos += n
		remaining = remaining[n:]

		if len(remaining) > 0 {
			next := recordOf(file.BytePos, eng.recordLength)
			if err := eng.loadRecord(file, next, IgnoreEOF); err != nil {
				return err
			}
		}
	}
	return nil
}

// getBytesSmall implements spec.md §4.4.3's small-read path.
func (eng *Engine) getBytesSmall(file *FileState, dst []byte) error {
	remaining := dst
	for len(remaining) > 0 {
		if file.curBuf < 0 {
			return fmt.Errorf("recio: getBytesSmall: file has no current buffer")
		}
		s := &eng.slots[file.curBuf]
		off := file.BytePos - s.record*eng.recordLength
		space := eng.recordLength - off

		n := int64(len(remaining))
		if n > space {
			n = space
		}

		copy(remaining[:n], s.bytes[off:off+n])
		file.BytePos += n
		remaining = remaining[n:]

		if len(remaining) > 0 {
			next := recordOf(file.BytePos, eng.recordLength)
			if err := eng.loadRecord(file, next, ReportEOF); err != nil {
				return err
			}
		}
	}
	return nil
}

// putBytesLarge implements spec.md §4.4.2, the direct-write path.
func (eng *Engine) putBytesLarge(file *FileState, src []byte) error {
	if file.curBuf < 0 {
		return fmt.Errorf("recio: putBytesLarge: file has no current buffer")
	}

	origBytePos := file.BytePos
	n := int64(len(src))
	origIdx := file.curBuf
	recstart := eng.slots[origIdx].record
	recend := (file.BytePos + n - 1) / eng.recordLength
	bufoff := file.BytePos - recstart*eng.recordLength
	space := eng.recordLength - bufoff

	// Step 2: fill the remainder of the current slot.
	head := min64(space, n)
	if head > 0 {
		s := &eng.slots[origIdx]
		copy(s.bytes[bufoff:bufoff+head], src[:head])
		s.dirty = true
	}

	// Step 3: flush and invalidate every overlapping slot for this file,
	// including the current one -- it gets rebound at the end.
	for i := range eng.slots {
		s := &eng.slots[i]
		if s.owner == file && s.record >= recstart && s.record <= recend {
			if s.dirty {
				if err := eng.flushSlot(i); err != nil {
					return err
				}
			}
			s.owner = nil
		}
	}

	// Step 4: write whole records directly.
	writePos := file.BytePos + head
	remaining := n - head
	nwrite := int64(0)
	if remaining > 0 {
		nwrite = ((remaining - 1) / eng.recordLength) * eng.recordLength
	}
	if nwrite > 0 {
		if file.ioPos != writePos {
			if err := file.Driver.Seek(writePos); err != nil {
				return fmt.Errorf("recio: seek direct write: %w", err)
			}
			file.ioPos = writePos
		}
		if err := file.Driver.Write(src[head : head+nwrite]); err != nil {
			return fmt.Errorf("recio: direct write: %w", err)
		}
		file.ioPos += nwrite
		eng.stats.FlushBytes += nwrite
		if eng.metrics != nil {
			eng.metrics.FlushBytes.Add(float64(nwrite))
		}
	}

	// Step 5: advance io_pos (folded into the write above when nwrite>0;
	// when nwrite==0 io_pos is unchanged, as spec.md intends).
	if writePos+nwrite > file.FileSize {
		file.FileSize = writePos + nwrite
	}

	// Step 6: the final partial record.
	tailStart := head + nwrite
	tail := src[tailStart:]
	tailPos := writePos + nwrite // == recend*recordLength

	s := &eng.slots[origIdx]
	if len(tail) == 0 {
		// The write landed exactly on a record boundary: recend's
		// record was already written out (directly above, or via the
		// step-3 flush when it coincided with origIdx). s.bytes still
		// holds that same content, so rebind it clean rather than
		// overwriting it with fill bytes -- doing so would shadow
		// good on-disk data with a dirty all-fill slot.
		s.dirty = false
	} else {
		if tailPos >= file.FileSize {
			fill := file.HDUType.fillByte()
			for i := range s.bytes {
				s.bytes[i] = fill
			}
		} else {
			if file.ioPos != tailPos {
				if err := file.Driver.Seek(tailPos); err != nil {
					return fmt.Errorf("recio: seek tail record: %w", err)
				}
				file.ioPos = tailPos
			}
			if err := file.Driver.Read(s.bytes); err != nil {
				return fmt.Errorf("recio: read tail record: %w", err)
			}
			file.ioPos += eng.recordLength
		}
		copy(s.bytes[:len(tail)], tail)
		s.dirty = true
	}
	s.owner = file
	s.record = recend

	file.curBuf = origIdx
	eng.promoteToYoungest(origIdx)

	// Step 7.
	if end := (recend + 1) * eng.recordLength; end > file.LogFileSize {
		file.LogFileSize = end
	}
	file.BytePos = origBytePos + n

	return nil
}

// getBytesLarge implements spec.md §4.4.3's large-read path.
func (eng *Engine) getBytesLarge(file *FileState, dst []byte) error {
	if file.curBuf < 0 {
		return fmt.Errorf("recio: getBytesLarge: file has no current buffer")
	}

	n := int64(len(dst))
	recstart := eng.slots[file.curBuf].record
	recend := (file.BytePos + n - 1) / eng.recordLength

	if recend*eng.recordLength+eng.recordLength > file.LogFileSize || file.BytePos+n > file.LogFileSize {
		return fmt.Errorf("recio: %w: direct read past logical size", ErrEndOfFile)
	}

	// Flush (but keep bound) any dirty slot overlapping the read range.
	for i := range eng.slots {
		s := &eng.slots[i]
		if s.owner == file && s.record >= recstart && s.record <= recend && s.dirty {
			if err := eng.flushSlot(i); err != nil {
				return err
			}
		}
	}

	if file.ioPos != file.BytePos {
		if err := file.Driver.Seek(file.BytePos); err != nil {
			return fmt.Errorf("recio: seek direct read: %w", err)
		}
		file.ioPos = file.BytePos
	}
	if err := file.Driver.Read(dst); err != nil {
		return fmt.Errorf("recio: direct read: %w", err)
	}
	file.ioPos += n
	file.BytePos += n

	// Re-establish the current-buffer invariant (I6) for the record now
	// covering bytepos; the record is guaranteed resident on disk since
	// the read above just succeeded against it.
	return eng.loadRecord(file, recordOf(file.BytePos-1, eng.recordLength), IgnoreEOF)
}
