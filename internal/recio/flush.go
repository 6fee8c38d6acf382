package recio

import (
	"context"
	"fmt"

	"github.com/kmilos/fitsrec/internal/logger"
	"github.com/kmilos/fitsrec/internal/metrics"
)

// flushSlot implements spec.md §4.5. Assumes eng.mu held.
func (eng *Engine) flushSlot(idx int) error {
	s := &eng.slots[idx]
	if !s.dirty {
		return nil
	}

	start := eng.clock.Now()
	defer func() {
		eng.otel.RecordFlushDuration(context.Background(), eng.clock.Now().Sub(start).Seconds(), metrics.FileIDAttribute(s.owner.ID.String()))
	}()

	file := s.owner
	filepos := s.record * eng.recordLength

	if filepos <= file.FileSize {
		if file.ioPos != filepos {
			if err := file.Driver.Seek(filepos); err != nil {
				return fmt.Errorf("recio: seek flush: %w", err)
			}
			file.ioPos = filepos
		}
		if err := file.Driver.Write(s.bytes); err != nil {
			return fmt.Errorf("recio: flush write: %w", err)
		}
		file.ioPos += eng.recordLength
		if filepos == file.FileSize {
			file.FileSize += eng.recordLength
		}
		s.dirty = false

		eng.stats.FlushBytes += eng.recordLength
		if eng.metrics != nil {
			eng.metrics.FlushBytes.Add(float64(eng.recordLength))
		}
		logger.Debugf("recio: flush: file=%s record=%d bytes=%d", file.ID, s.record, eng.recordLength)
		return nil
	}

	return eng.flushSparse(file, idx)
}

// flushSparse implements the sparse half of spec.md §4.5: it writes the
// dirty, beyond-EOF slots owned by file in a single in-order append
// pass, lowest record first, synthesizing fill records to bridge any
// gaps, and returns once the originally requested slot (idx) has been
// written. Dirty slots with records above idx's are left dirty.
func (eng *Engine) flushSparse(file *FileState, idx int) error {
	if file.ioPos != file.FileSize {
		if err := file.Driver.Seek(file.FileSize); err != nil {
			return fmt.Errorf("recio: seek sparse flush: %w", err)
		}
		file.ioPos = file.FileSize
	}

	var sparseExtensions int64
	for {
		lowest := -1
		var lowestRec int64
		for i := range eng.slots {
			s := &eng.slots[i]
			if s.owner == file && s.dirty && s.record*eng.recordLength >= file.FileSize {
				if lowest == -1 || s.record < lowestRec {
					lowest = i
					lowestRec = s.record
				}
			}
		}
		if lowest == -1 {
			break
		}

		filepos := lowestRec * eng.recordLength
		if filepos > file.FileSize {
			gap := (filepos - file.FileSize) / eng.recordLength
			fillRecord := make([]byte, eng.recordLength)
			fill := file.HDUType.fillByte()
			for i := range fillRecord {
				fillRecord[i] = fill
			}
			for k := int64(0); k < gap; k++ {
				if err := file.Driver.Write(fillRecord); err != nil {
					return fmt.Errorf("recio: sparse fill write: %w", err)
				}
				file.FileSize += eng.recordLength
				eng.stats.SparseFillBytes += eng.recordLength
				if eng.metrics != nil {
					eng.metrics.SparseFillBytes.Add(float64(eng.recordLength))
				}
				sparseExtensions++
			}
			file.ioPos = file.FileSize
		}

		s := &eng.slots[lowest]
		if err := file.Driver.Write(s.bytes); err != nil {
			return fmt.Errorf("recio: sparse flush write: %w", err)
		}
		file.ioPos += eng.recordLength
		s.dirty = false
		file.FileSize += eng.recordLength

		eng.stats.FlushBytes += eng.recordLength
		if eng.metrics != nil {
			eng.metrics.FlushBytes.Add(float64(eng.recordLength))
		}

		if lowest == idx {
			break
		}
	}

	if sparseExtensions > 0 {
		eng.otel.AddSparseExtensions(context.Background(), sparseExtensions, metrics.FileIDAttribute(file.ID.String()))
		logger.Debugf("recio: sparse-extend: file=%s records=%d", file.ID, sparseExtensions)
	}
	file.ioPos = file.FileSize
	return nil
}

// FlushFile implements spec.md §4.6: flush every dirty slot owned by
// file, optionally unbinding them all, then force the storage driver's
// own buffers out.
func (eng *Engine) FlushFile(file *FileState, clear bool) error {
	eng.lockPool()
	defer eng.unlockPool()
	return eng.flushFileLocked(file, clear)
}

func (eng *Engine) flushFileLocked(file *FileState, clear bool) error {
	for i := range eng.slots {
		s := &eng.slots[i]
		if s.owner != file {
			continue
		}
		if s.dirty {
			if err := eng.flushSlot(i); err != nil {
				return err
			}
		}
		if clear {
			s.owner = nil
			if file.curBuf == i {
				file.curBuf = -1
			}
		}
	}
	if err := file.Driver.Flush(); err != nil {
		return fmt.Errorf("recio: driver flush: %w", err)
	}
	return nil
}

// DropPastEOF implements spec.md §4.6's optional variant: unbind any
// slot owned by file whose record starts at or beyond the current
// filesize, without flushing it first (the caller is responsible for
// having flushed anything it wants to keep).
func (eng *Engine) DropPastEOF(file *FileState) {
	eng.lockPool()
	defer eng.unlockPool()

	for i := range eng.slots {
		s := &eng.slots[i]
		if s.owner == file && s.record*eng.recordLength >= file.FileSize {
			s.owner = nil
			if file.curBuf == i {
				file.curBuf = -1
			}
		}
	}
}
