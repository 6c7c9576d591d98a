// ════════════════════════════════════════════════════════════════════════════════════════════════
// LOCK-FREE MPSC RING BUFFER — FEED FAN-IN QUEUE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Multi-producer/single-consumer fixed-capacity queue of core.FeedSlot
//
// Same geometry as spscring.Ring — power-of-two capacity, bitmask indexing, cache-line
// isolated cursors — generalized to multiple producer goroutines (one per feed worker)
// by claiming a slot with a compare-and-swap on writePos instead of a plain load+store.
// The consumer side is untouched: single reader, SPSC pop protocol.
//
// Tie-break (spec.md §4.2): a producer that observes the ring full returns false without
// attempting a CAS at all — it never retries past a losing CAS either. A single failed CAS
// means another producer won the slot; this core returns false and lets the caller decide
// whether to drop or report, it does not spin for a winning attempt.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package mpscring

import (
	"errors"
	"sync/atomic"

	"mdfh/core"
)

// ErrInvalidCapacity mirrors spscring.ErrInvalidCapacity: capacity must be a power of two
// in (0, 2^32].
var ErrInvalidCapacity = errors.New("mpscring: capacity must be a power of two in (0, 2^32]")

const maxCapacity = 1 << 32

// Ring is a fixed-capacity MPSC queue of core.FeedSlot.
type Ring struct {
	_        [core.CacheLineSize]byte
	writePos atomic.Uint64 // claimed by CAS, one or more producers

	_       [core.CacheLineSize - 8]byte
	readPos atomic.Uint64 // advanced by the single consumer

	_   [core.CacheLineSize - 8]byte
	hwm atomic.Uint64 // advisory; races under multi-producer contention are expected

	_   [core.CacheLineSize - 8]byte
	casFailures atomic.Uint64 // advisory: how often a producer lost a claim race

	_        [core.CacheLineSize - 8]byte
	mask     uint64
	capacity uint64
	buf      []core.FeedSlot
}

// New constructs a ring with the given power-of-two capacity.
func New(capacity int) (*Ring, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 || uint64(capacity) > maxCapacity {
		return nil, ErrInvalidCapacity
	}
	return &Ring{
		mask:     uint64(capacity - 1),
		capacity: uint64(capacity),
		buf:      make([]core.FeedSlot, capacity),
	}, nil
}

// Capacity returns the fixed slot count this ring was constructed with.
func (r *Ring) Capacity() uint64 { return r.capacity }

// Size returns an approximate occupancy; under concurrent producers this is a snapshot.
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

// CASFailures returns the count of producer claim attempts that lost the race to another
// producer. Advisory only — useful for tuning ring capacity under heavy fan-in contention.
func (r *Ring) CASFailures() uint64 { return r.casFailures.Load() }

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

// TryPush attempts to claim a slot via CAS and publish feedSlot into it. Returns false
// either when the ring is observed full (no CAS attempted) or when a single CAS attempt
// loses to a concurrent producer — this core does not retry a losing CAS; the caller may
// retry at a higher level or count the failure as a drop, per spec.md §4.2's single-shot
// semantics.
//
//go:nosplit
func (r *Ring) TryPush(feedSlot core.FeedSlot) bool {
	w := r.writePos.Load()
	rd := r.readPos.Load()
	if w-rd >= r.capacity {
		return false
	}
	if !r.writePos.CompareAndSwap(w, w+1) {
		r.casFailures.Add(1)
		return false
	}
	r.buf[w&r.mask] = feedSlot
	r.updateHWM(w + 1 - rd)
	return true
}

// TryPop dequeues the oldest FeedSlot. Single-consumer only; returns false when empty.
//
//go:nosplit
func (r *Ring) TryPop() (core.FeedSlot, bool) {
	rd := r.readPos.Load()
	w := r.writePos.Load()
	if rd == w {
		return core.FeedSlot{}, false
	}
	slot := r.buf[rd&r.mask]
	r.readPos.Store(rd + 1)
	return slot, true
}
