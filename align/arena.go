package align

import (
	"sync/atomic"

	"github.com/grailbio/base/errors"
)

// Arena is a process-wide, hard-capped byte allocator. It is safe for
// concurrent use by the Driver and by Batches running on separate workers.
// Arena never frees memory back to the Go runtime; it only tracks
// accounting against its cap, the same "never frees objects" tradeoff
// encoding/bam.FreePool documents for its own pooling scheme.
type Arena struct {
	capBytes int64
	used     int64
}

// NewArena creates an Arena with the given byte cap.
func NewArena(capMB int64) *Arena {
	return &Arena{capBytes: capMB * 1 << 20}
}

// CapBytes returns the arena's configured byte cap.
func (a *Arena) CapBytes() int64 { return a.capBytes }

// Used returns the arena's current accounted usage, in bytes.
func (a *Arena) Used() int64 { return atomic.LoadInt64(&a.used) }

// Alloc reserves n bytes from the arena, returning a freshly allocated
// buffer of that size. It refuses (returns an error) any request that would
// push total live allocations past the cap.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.E("arena: negative allocation size", n)
	}
	want := int64(n)
	for {
		cur := atomic.LoadInt64(&a.used)
		next := cur + want
		if next > a.capBytes {
			return nil, errors.E("arena: allocation would exceed memory cap",
				"requested", want, "inUse", cur, "cap", a.capBytes)
		}
		if atomic.CompareAndSwapInt64(&a.used, cur, next) {
			return make([]byte, n), nil
		}
	}
}

// Release returns n bytes of previously-allocated capacity to the arena.
// The caller must not use the released buffer afterwards.
func (a *Arena) Release(n int) {
	if n == 0 {
		return
	}
	atomic.AddInt64(&a.used, -int64(n))
}
