package recio

import (
	"context"
	"fmt"

	"github.com/kmilos/fitsrec/internal/logger"
	"github.com/kmilos/fitsrec/internal/metrics"
)

// chooseVictim implements spec.md §4.1: scan the age index oldest to
// youngest, returning the first unpinned slot. If every slot is pinned,
// return the calling file's own curbuf (the only legal reuse) and let
// the caller decide whether that is TOO_MANY_FILES.
func (eng *Engine) chooseVictim(file *FileState) int {
	for _, idx := range eng.age {
		if !eng.slots[idx].pinned(idx) {
			return idx
		}
	}
	return file.curBuf
}

// promoteToYoungest moves slot idx to the end of the age index
// (position len-1), preserving I1.
func (eng *Engine) promoteToYoungest(idx int) {
	for i, v := range eng.age {
		if v == idx {
			copy(eng.age[i:], eng.age[i+1:])
			eng.age[len(eng.age)-1] = idx
			return
		}
	}
}

// findResident searches the age index youngest to oldest for a slot
// holding (file, r); spec.md §4.2 step 1.
func (eng *Engine) findResident(file *FileState, r int64) (int, bool) {
	for i := len(eng.age) - 1; i >= 0; i-- {
		idx := eng.age[i]
		s := &eng.slots[idx]
		if s.owner == file && s.record == r {
			return idx, true
		}
	}
	return 0, false
}

// loadRecord implements spec.md §4.2. It assumes eng.mu is already held.
func (eng *Engine) loadRecord(file *FileState, r int64, eofMode EOFMode) error {
	if r < 0 {
		return fmt.Errorf("recio: %w: record %d", ErrNegFilePos, r)
	}

	// Step 1: hit?
	if idx, ok := eng.findResident(file, r); ok {
		file.curBuf = idx
		eng.promoteToYoungest(idx)
		eng.stats.Hits++
		if eng.metrics != nil {
			eng.metrics.Hits.Inc()
		}
		eng.otel.RecordLookup(context.Background(), metrics.OutcomeAttribute(true), metrics.FileIDAttribute(file.ID.String()))
		logger.Tracef("recio: cache hit: file=%s record=%d slot=%d", file.ID, r, idx)
		return nil
	}

	eng.stats.Misses++
	if eng.metrics != nil {
		eng.metrics.Misses.Inc()
	}
	eng.otel.RecordLookup(context.Background(), metrics.OutcomeAttribute(false), metrics.FileIDAttribute(file.ID.String()))
	logger.Tracef("recio: cache miss: file=%s record=%d", file.ID, r)

	// Step 2: EOF check.
	if eofMode == ReportEOF && r*eng.recordLength >= file.LogFileSize {
		return fmt.Errorf("recio: %w: record %d at or beyond logical size", ErrEndOfFile, r)
	}

	// Step 3: pick victim.
	victim := eng.chooseVictim(file)
	if victim < 0 || eng.slots[victim].pinned(victim) {
		// Every slot is pinned; the only legal reuse would be the
		// caller's own curbuf, per spec.md §4.1 -- which does not exist
		// yet for a file still being opened (victim < 0).
		eng.stats.TooManyFiles++
		eng.stats.Degraded = true
		if eng.metrics != nil {
			eng.metrics.TooManyFiles.Inc()
		}
		logger.Warnf("recio: TOO_MANY_FILES: file=%s record=%d, every slot pinned", file.ID, r)
		return fmt.Errorf("recio: %w", ErrTooManyFiles)
	}

	logger.Tracef("recio: victim: file=%s record=%d slot=%d", file.ID, r, victim)
	s := &eng.slots[victim]

	// Step 4: flush if dirty.
	if s.dirty {
		if err := eng.flushSlot(victim); err != nil {
			return err
		}
		eng.stats.Evictions++
		if eng.metrics != nil {
			eng.metrics.Evictions.Inc()
		}
	}

	recordOffset := r * eng.recordLength

	// Steps 5/6: initialize from fill or from disk.
	if recordOffset >= file.FileSize {
		fill := file.HDUType.fillByte()
		for i := range s.bytes {
			s.bytes[i] = fill
		}
		if end := (r + 1) * eng.recordLength; end > file.LogFileSize {
			file.LogFileSize = end
		}
		s.dirty = true
	} else {
		if file.ioPos != recordOffset {
			if err := file.Driver.Seek(recordOffset); err != nil {
				return fmt.Errorf("recio: seek record %d: %w", r, err)
			}
			file.ioPos = recordOffset
		}
		if err := file.Driver.Read(s.bytes); err != nil {
			return fmt.Errorf("recio: read record %d: %w", r, err)
		}
		file.ioPos += eng.recordLength
		s.dirty = false
	}

	// Step 7: bind.
	s.owner = file
	s.record = r

	// Step 8: pin and promote.
	file.curBuf = victim
	eng.promoteToYoungest(victim)

	return nil
}

// seekToLocked implements spec.md §4.3, assuming eng.mu is held.
func (eng *Engine) seekToLocked(file *FileState, pos int64, eofMode EOFMode) error {
	if pos < 0 {
		return fmt.Errorf("recio: %w: %d", ErrNegFilePos, pos)
	}

	r := recordOf(pos, eng.recordLength)
	if file.curBuf < 0 || eng.slots[file.curBuf].record != r || eng.slots[file.curBuf].owner != file {
		if err := eng.loadRecord(file, r, eofMode); err != nil {
			return err
		}
	}
	file.BytePos = pos
	return nil
}

// SeekTo repositions file's logical cursor to pos, loading the covering
// record if it is not already current (spec.md §4.3).
func (eng *Engine) SeekTo(file *FileState, pos int64, eofMode EOFMode) error {
	eng.lockPool()
	defer eng.unlockPool()
	return eng.seekToLocked(file, pos, eofMode)
}
