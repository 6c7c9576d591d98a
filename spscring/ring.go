// ════════════════════════════════════════════════════════════════════════════════════════════════
// LOCK-FREE SPSC RING BUFFER — MARKET DATA SLOT QUEUE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Single-producer/single-consumer fixed-capacity queue of core.Slot
//
// Architecture overview:
//   - Monotonic write_pos / read_pos cursors, each pinned to its own cache line
//   - Power-of-two capacity with bit masking for O(1) indexing
//   - Release-store / acquire-load handoff: no locks, no CAS, no retries on the SPSC path
//   - Advisory high-water-mark tracking for capacity planning
//
// Safety model:
//   - Single producer, single consumer only — concurrent Push calls (or concurrent Pop calls)
//     from more than one goroutine each corrupt the ring. The MPSC variant in package mpscring
//     relaxes the producer side with a CAS; this one does not.
//   - All steady-state operations are non-faulting. "Full" and "empty" are ordinary outcomes,
//     signalled by a bool/ok return, never a panic or error.
//
// Memory-ordering contract (reproduced verbatim from the ring's specification — do not relax):
//   - Producer publishes data with a release store of write_pos; consumer observes it only
//     after an acquire load of write_pos.
//   - Consumer reclaims a slot with a release store of read_pos; producer observes the freed
//     slot only after an acquire load of read_pos.
//   - Any other ordering is a defect, not an optimization.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package spscring

import (
	"errors"
	"sync/atomic"
	"time"

	"mdfh/core"
)

// ErrInvalidCapacity is returned by New when capacity is zero, not a power of two, or exceeds
// the maximum representable span for the cursor arithmetic (2^32).
var ErrInvalidCapacity = errors.New("spscring: capacity must be a power of two in (0, 2^32]")

const maxCapacity = 1 << 32

// BackPressureMode selects the behavior of TryPushOrBlock when the ring is full.
type BackPressureMode int

const (
	// Drop behaves exactly like TryPushWithPrefetch: a full ring yields false immediately.
	Drop BackPressureMode = iota
	// Block retries with cooperative yielding until space frees up or timeoutNs elapses.
	Block
)

// Ring is a fixed-capacity SPSC queue of core.Slot. Cursors are isolated on separate cache
// lines so producer and consumer threads never false-share while hammering their own cursor.
type Ring struct {
	_        [core.CacheLineSize]byte
	writePos atomic.Uint64 // producer cursor

	_       [core.CacheLineSize - 8]byte
	readPos atomic.Uint64 // consumer cursor

	_   [core.CacheLineSize - 8]byte
	hwm atomic.Uint64 // high_water_mark, advisory

	_        [core.CacheLineSize - 8]byte
	mask     uint64
	capacity uint64
	buf      []core.Slot
}

// New constructs a ring with the given power-of-two capacity. Slots are allocated once, up
// front; nothing is allocated again on the steady-state path.
func New(capacity int) (*Ring, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 || uint64(capacity) > maxCapacity {
		return nil, ErrInvalidCapacity
	}
	r := &Ring{
		mask:     uint64(capacity - 1),
		capacity: uint64(capacity),
		buf:      make([]core.Slot, capacity),
	}
	return r, nil
}

// Capacity returns the fixed slot count this ring was constructed with.
func (r *Ring) Capacity() uint64 { return r.capacity }

// Size returns an approximate occupancy; under concurrent access from the opposite thread,
// this is a snapshot, not a guarantee.
func (r *Ring) Size() uint64 {
	w := r.writePos.Load()
	rd := r.readPos.Load()
	return w - rd
}

// HighWaterMark returns the largest occupancy ever observed.
func (r *Ring) HighWaterMark() uint64 { return r.hwm.Load() }

// LoadFactor returns Size()/Capacity() as a fraction in [0, 1].
func (r *Ring) LoadFactor() float64 {
	return float64(r.Size()) / float64(r.capacity)
}

// updateHWM advances the high-water-mark if the observed occupancy exceeds it. Races under
// multi-producer use (mpscring) are expected and advisory only, per the ring's contract.
func (r *Ring) updateHWM(occupancy uint64) {
	for {
		cur := r.hwm.Load()
		if occupancy <= cur {
			return
		}
		if r.hwm.CompareAndSwap(cur, occupancy) {
			return
		}
	}
}

// TryPush enqueues slot if there is room. Returns false (not an error) when the ring is full.
//
//go:nosplit
func (r *Ring) TryPush(slot core.Slot) bool {
	w := r.writePos.Load()
	rd := r.readPos.Load()
	if w-rd >= r.capacity {
		return false
	}
	r.buf[w&r.mask] = slot
	r.writePos.Store(w + 1)
	r.updateHWM(w + 1 - rd)
	return true
}

// TryPop dequeues the oldest slot. Returns false when the ring is empty.
//
//go:nosplit
func (r *Ring) TryPop() (core.Slot, bool) {
	rd := r.readPos.Load()
	w := r.writePos.Load()
	if rd == w {
		return core.Slot{}, false
	}
	slot := r.buf[rd&r.mask]
	r.readPos.Store(rd + 1)
	return slot, true
}

// TryPushBulk copies as many of src as fit (min(len(src), free)), in order, and returns the
// count actually pushed. A single write_pos update covers the whole batch.
func (r *Ring) TryPushBulk(src []core.Slot) uint64 {
	w := r.writePos.Load()
	rd := r.readPos.Load()
	free := r.capacity - (w - rd)
	n := uint64(len(src))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		r.buf[(w+i)&r.mask] = src[i]
	}
	if n > 0 {
		r.writePos.Store(w + n)
		r.updateHWM(w + n - rd)
	}
	return n
}

// TryPopBulk copies as many available slots as fit into dst (min(len(dst), used)) and returns
// the count actually popped. A single read_pos update covers the whole batch.
func (r *Ring) TryPopBulk(dst []core.Slot) uint64 {
	rd := r.readPos.Load()
	w := r.writePos.Load()
	used := w - rd
	n := uint64(len(dst))
	if n > used {
		n = used
	}
	for i := uint64(0); i < n; i++ {
		dst[i] = r.buf[(rd+i)&r.mask]
	}
	if n > 0 {
		r.readPos.Store(rd + n)
	}
	return n
}

// TryPushWithPrefetch is semantically identical to TryPush; it additionally issues an
// architecture-appropriate prefetch hint for the slot the producer will touch next. On
// platforms without a prefetch primitive the hint compiles to nothing (see prefetch_stub.go).
//
//go:nosplit
func (r *Ring) TryPushWithPrefetch(slot core.Slot) bool {
	w := r.writePos.Load()
	rd := r.readPos.Load()
	if w-rd >= r.capacity {
		return false
	}
	prefetch(&r.buf[(w+1)&r.mask])
	r.buf[w&r.mask] = slot
	r.writePos.Store(w + 1)
	r.updateHWM(w + 1 - rd)
	return true
}

// TryPopWithPrefetch is semantically identical to TryPop; it additionally prefetches the slot
// the consumer will touch next.
//
//go:nosplit
func (r *Ring) TryPopWithPrefetch() (core.Slot, bool) {
	rd := r.readPos.Load()
	w := r.writePos.Load()
	if rd == w {
		return core.Slot{}, false
	}
	prefetch(&r.buf[(rd+1)&r.mask])
	slot := r.buf[rd&r.mask]
	r.readPos.Store(rd + 1)
	return slot, true
}

// TryPushOrBlock applies back-pressure policy mode. Drop is equivalent to TryPushWithPrefetch.
// Block retries with cooperative yielding until space is available or, when timeoutNs > 0,
// until that many nanoseconds of monotonic time have elapsed — in which case it returns false.
// A timeoutNs of 0 in Block mode blocks indefinitely.
func (r *Ring) TryPushOrBlock(slot core.Slot, timeoutNs uint64, mode BackPressureMode) bool {
	if mode == Drop {
		return r.TryPushWithPrefetch(slot)
	}
	var deadline time.Time
	if timeoutNs > 0 {
		deadline = time.Now().Add(time.Duration(timeoutNs))
	}
	for {
		if r.TryPushWithPrefetch(slot) {
			return true
		}
		if timeoutNs > 0 && !time.Now().Before(deadline) {
			return false
		}
		cpuRelax()
	}
}

// PopWait busy-waits for the next slot, yielding the CPU between failed attempts. Intended for
// dedicated consumer goroutines where blocking syscalls would add unacceptable latency.
func (r *Ring) PopWait() core.Slot {
	for {
		if s, ok := r.TryPopWithPrefetch(); ok {
			return s
		}
		cpuRelax()
	}
}

// AdvanceWritePos lets a bulk producer that has already written count slots directly into the
// backing array (via zero-copy access patterns outside this package) publish them in one move.
// Unlike the C++ original this was ported from — which had a silent, unchecked variant — this
// core always validates that the advance does not push occupancy past capacity and fails fast
// (spec.md §9, "the spec mandates the checked behaviour").
func (r *Ring) AdvanceWritePos(count uint64) error {
	w := r.writePos.Load()
	rd := r.readPos.Load()
	if (w+count)-rd > r.capacity {
		return errors.New("spscring: advance would exceed capacity")
	}
	r.writePos.Store(w + count)
	r.updateHWM(w + count - rd)
	return nil
}
