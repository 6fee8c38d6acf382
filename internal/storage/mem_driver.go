package storage

import (
	"context"

	"golang.org/x/time/rate"
)

// MemDriver is an in-memory Driver used by the engine's own tests; the
// CLI always uses FileDriver. It grows its backing slice lazily
// like a real sparse file would.
type MemDriver struct {
	bytes   []byte
	pos     int64
	limiter *rate.Limiter
}

// NewMemDriver returns an empty in-memory driver.
func NewMemDriver() *MemDriver {
	return &MemDriver{}
}

// WithLatency wraps the driver so every byte transferred is paced
// through a token-bucket limiter, modeling a slow disk for tests that
// exercise flush/sparse ordering under backpressure.
func (d *MemDriver) WithLatency(bytesPerSecond int) *MemDriver {
	d.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond)
	return d
}

func (d *MemDriver) throttle(n int) {
	if d.limiter == nil || n == 0 {
		return
	}
	_ = d.limiter.WaitN(context.Background(), n)
}

func (d *MemDriver) Seek(pos int64) error {
	if pos < 0 {
		return ErrShortReadWrite
	}
	d.pos = pos
	return nil
}

func (d *MemDriver) Read(dst []byte) error {
	if d.pos+int64(len(dst)) > int64(len(d.bytes)) {
		return ErrShortReadWrite
	}
	d.throttle(len(dst))
	copy(dst, d.bytes[d.pos:d.pos+int64(len(dst))])
	d.pos += int64(len(dst))
	return nil
}

func (d *MemDriver) Write(src []byte) error {
	d.throttle(len(src))
	end := d.pos + int64(len(src))
	if end > int64(len(d.bytes)) {
		grown := make([]byte, end)
		copy(grown, d.bytes)
		d.bytes = grown
	}
	copy(d.bytes[d.pos:end], src)
	d.pos = end
	return nil
}

func (d *MemDriver) Flush() error { return nil }

func (d *MemDriver) Size() (int64, error) { return int64(len(d.bytes)), nil }

func (d *MemDriver) Close() error { return nil }

// Snapshot returns a copy of the driver's current backing bytes, for
// test assertions.
func (d *MemDriver) Snapshot() []byte {
	out := make([]byte, len(d.bytes))
	copy(out, d.bytes)
	return out
}
