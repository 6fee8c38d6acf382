package recio

// slot is one buffer-pool entry (spec.md §3, "Slot").
type slot struct {
	bytes  []byte
	owner  *FileState // nil when unbound
	record int64
	dirty  bool
}

func newSlots(numBuffers int, recordLength int64) []slot {
	slots := make([]slot, numBuffers)
	for i := range slots {
		slots[i] = slot{bytes: make([]byte, recordLength), owner: nil}
	}
	return slots
}

// pinned reports whether this slot is its owner's current buffer and
// therefore ineligible for eviction except as a last resort (I2).
func (s *slot) pinned(idx int) bool {
	return s.owner != nil && s.owner.curBuf == idx
}
