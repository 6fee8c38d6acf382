package recio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
	"github.com/kmilos/fitsrec/internal/logger"
	"github.com/kmilos/fitsrec/internal/metrics"
	"github.com/kmilos/fitsrec/internal/storage"
)

// Engine is the single owning structure for the buffer pool and age
// index (spec.md §9, "Global mutable state" design note): rather than
// process-wide globals, every FITS file handle is opened against one
// Engine instance, which guards all of its state behind a single
// invariant-checking mutex.
type Engine struct {
	mu syncutil.InvariantMutex

	recordLength int64
	minDirect    int64

	slots []slot
	// age is a permutation of [0, len(slots)): position 0 is oldest
	// (preferred eviction victim), position len-1 is youngest.
	age []int

	openFiles map[*FileState]struct{}

	clock   timeutil.Clock
	metrics *metrics.Collector
	otel    metrics.OtelInstruments

	stats Stats

	// OnInvariantViolation is invoked instead of panicking when a pool
	// invariant check fails; nil means panic. Wired by cmd/fitsrec to
	// cfg.Debug.ExitOnInvariantViolation.
	OnInvariantViolation func(msg string)

	// LogMutexHold, when true, logs eng.mu's hold duration at TRACE on
	// every unlock. Wired by cmd/fitsrec to cfg.Debug.LogMutex.
	LogMutexHold bool
	lockedAt     time.Time
}

// lockPool acquires eng.mu, optionally timestamping the hold for
// LogMutexHold.
func (eng *Engine) lockPool() {
	eng.mu.Lock()
	if eng.LogMutexHold {
		eng.lockedAt = eng.clock.Now()
	}
}

// unlockPool releases eng.mu, logging the hold duration first when
// LogMutexHold is set.
func (eng *Engine) unlockPool() {
	if eng.LogMutexHold {
		logger.Tracef("recio: pool mutex held %s", eng.clock.Now().Sub(eng.lockedAt))
	}
	eng.mu.Unlock()
}

// Stats is a read-only snapshot of pool activity, backing the CLI
// `stat` and `bench` commands. The Prometheus collector, when set, is
// updated alongside these counters rather than read from them.
type Stats struct {
	Hits            int64
	Misses          int64
	Evictions       int64
	FlushBytes      int64
	SparseFillBytes int64
	TooManyFiles    int64
	// Degraded is true once any load_record call has had to reuse the
	// calling file's own curbuf because every slot was pinned
	// (spec.md §4.1's pathological case).
	Degraded bool
}

// NewEngine builds a pool of numBuffers slots, each recordLength bytes,
// with minDirect as the MINDIRECT threshold for the direct-I/O bypass.
// clock and collector may be nil; a nil clock uses timeutil.RealClock(),
// a nil collector disables Prometheus accounting.
func NewEngine(numBuffers int, recordLength int64, minDirect int64, clock timeutil.Clock, collector *metrics.Collector) (*Engine, error) {
	if numBuffers < 1 {
		return nil, fmt.Errorf("recio: numBuffers must be at least 1, got %d", numBuffers)
	}
	if recordLength < 1 {
		return nil, fmt.Errorf("recio: recordLength must be positive, got %d", recordLength)
	}
	if minDirect < recordLength {
		return nil, fmt.Errorf("recio: minDirect (%d) must be at least recordLength (%d): a direct write smaller than one record can still land exactly on a record boundary and is handled by the cached path", minDirect, recordLength)
	}
	if clock == nil {
		clock = timeutil.RealClock()
	}

	eng := &Engine{
		recordLength: recordLength,
		minDirect:    minDirect,
		slots:        newSlots(numBuffers, recordLength),
		age:          make([]int, numBuffers),
		openFiles:    make(map[*FileState]struct{}),
		clock:        clock,
		metrics:      collector,
	}
	for i := range eng.age {
		eng.age[i] = i
	}
	eng.mu = syncutil.NewInvariantMutex(eng.checkInvariants)

	if err := eng.otel.Init(); err != nil {
		return nil, fmt.Errorf("recio: init otel instruments: %w", err)
	}

	return eng, nil
}

// RecordLength returns BUFLEN for this engine.
func (eng *Engine) RecordLength() int64 { return eng.recordLength }

// MinDirect returns MINDIRECT for this engine.
func (eng *Engine) MinDirect() int64 { return eng.minDirect }

// Stats returns a snapshot of pool activity counters.
func (eng *Engine) Stats() Stats {
	eng.lockPool()
	defer eng.unlockPool()
	return eng.stats
}

// NumOpenFiles returns the number of files currently registered with
// this engine (spec.md §6, num_open_files).
func (eng *Engine) NumOpenFiles() int {
	eng.lockPool()
	defer eng.unlockPool()
	return len(eng.openFiles)
}

// OptimalNData implements spec.md §4.7: the largest access size, in
// units of unitSize bytes, that keeps a working set unlikely to force
// cache thrash.
func (eng *Engine) OptimalNData(unitSize int64) int64 {
	eng.lockPool()
	defer eng.unlockPool()

	if unitSize < 1 {
		unitSize = 1
	}
	free := int64(len(eng.slots) - len(eng.openFiles))
	if free < 1 {
		free = 1
	}
	n := (free * eng.recordLength) / unitSize
	if n < 1 {
		n = 1
	}
	return n
}

// OpenFile registers driver with the engine and returns the FileState
// used for all subsequent operations. driver's current size is read
// once to seed FileSize/LogFileSize; a fresh record 0 is loaded with
// IgnoreEOF so FileState.curBuf is pinned immediately, matching the
// invariant that a registered file always has a resident current
// buffer (spec.md I6).
func (eng *Engine) OpenFile(driver storage.Driver, hduType HDUType) (*FileState, error) {
	size, err := driver.Size()
	if err != nil {
		return nil, fmt.Errorf("recio: stat new file: %w", err)
	}

	file := &FileState{
		ID:          uuid.New(),
		Driver:      driver,
		FileSize:    size,
		LogFileSize: roundUpToMultiple(size, eng.recordLength),
		curBuf:      -1,
		HDUType:     hduType,
		CurHDU:      1,
	}

	eng.lockPool()
	defer eng.unlockPool()

	eng.openFiles[file] = struct{}{}
	if eng.metrics != nil {
		eng.metrics.OpenFiles.Set(float64(len(eng.openFiles)))
	}

	if err := eng.loadRecord(file, 0, IgnoreEOF); err != nil {
		delete(eng.openFiles, file)
		if eng.metrics != nil {
			eng.metrics.OpenFiles.Set(float64(len(eng.openFiles)))
		}
		return nil, err
	}

	// A brand-new empty file has nothing at record 0 yet: priming
	// curbuf for it per I6 is not itself a write, or opening and
	// closing an empty file would grow it by one record.
	if size == 0 {
		eng.slots[file.curBuf].dirty = false
		file.LogFileSize = 0
	}

	file.BytePos = 0

	return file, nil
}

// CloseFile flushes every dirty slot owned by file, unbinds them, and
// unregisters the file from the engine (spec.md §3, "Lifecycles").
// driver.Close is not called here: the caller owns the driver.
func (eng *Engine) CloseFile(file *FileState) error {
	if err := eng.FlushFile(file, true); err != nil {
		return err
	}

	eng.lockPool()
	delete(eng.openFiles, file)
	if eng.metrics != nil {
		eng.metrics.OpenFiles.Set(float64(len(eng.openFiles)))
	}
	eng.unlockPool()
	return nil
}

func roundUpToMultiple(n, multiple int64) int64 {
	if multiple <= 0 {
		return n
	}
	if n%multiple == 0 {
		return n
	}
	return (n/multiple + 1) * multiple
}

// checkInvariants asserts I1, I3, and I4 on every Lock/Unlock of the
// pool mutex. Grounded on gcsproxy.MutableContent.CheckInvariants
// (panic-on-violation), here wired as the jacobsa/syncutil
// InvariantMutex's callback instead of a method called by hand.
func (eng *Engine) checkInvariants() {
	// I1: every slot index appears exactly once in the age index.
	seen := make([]bool, len(eng.slots))
	if len(eng.age) != len(eng.slots) {
		eng.violate(fmt.Sprintf("age index length %d != slot count %d", len(eng.age), len(eng.slots)))
		return
	}
	for _, idx := range eng.age {
		if idx < 0 || idx >= len(seen) {
			eng.violate(fmt.Sprintf("age index contains out-of-range slot %d", idx))
			return
		}
		if seen[idx] {
			eng.violate(fmt.Sprintf("age index contains slot %d more than once", idx))
			return
		}
		seen[idx] = true
	}

	// I3: for any file, at most one slot has a given record number.
	perFileRecords := make(map[*FileState]map[int64]bool)
	for i := range eng.slots {
		s := &eng.slots[i]
		if s.owner == nil {
			continue
		}
		recs, ok := perFileRecords[s.owner]
		if !ok {
			recs = make(map[int64]bool)
			perFileRecords[s.owner] = recs
		}
		if recs[s.record] {
			eng.violate(fmt.Sprintf("file has two slots bound to record %d", s.record))
			return
		}
		recs[s.record] = true
	}

	// I4: logfilesize >= filesize and a multiple of recordLength.
	for file := range eng.openFiles {
		if file.LogFileSize < file.FileSize {
			eng.violate(fmt.Sprintf("file %s: logfilesize %d < filesize %d", file.ID, file.LogFileSize, file.FileSize))
			return
		}
		if eng.recordLength > 0 && file.LogFileSize%eng.recordLength != 0 {
			eng.violate(fmt.Sprintf("file %s: logfilesize %d not a multiple of record length %d", file.ID, file.LogFileSize, eng.recordLength))
			return
		}
	}
}

func (eng *Engine) violate(msg string) {
	if eng.OnInvariantViolation != nil {
		eng.OnInvariantViolation(msg)
		return
	}
	panic("recio: invariant violation: " + msg)
}
