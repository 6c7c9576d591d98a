// ════════════════════════════════════════════════════════════════════════════════════════════════
// PENDING-PACKET RING — ZERO-COPY HANDLE RELEASE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Fixed SPSC ring of opaque transport handles awaiting release
//
// Grounded in spscring.Ring's cursor layout, fixed at spec.md §3's mandated 1,024 slots and
// specialized to transport.PacketHandle instead of core.Slot: the transport callback thread
// is the sole writer, the consumer thread is the sole reader. A handle that cannot be
// enqueued (ring full) is released immediately instead of leaking (spec.md §4.8,
// §7 PendingRingFull).
// ════════════════════════════════════════════════════════════════════════════════════════════════

package pendingring

import (
	"sync/atomic"

	"mdfh/core"
	"mdfh/transport"
)

// Capacity is the fixed slot count mandated by spec.md §3.
const Capacity = 1024

const mask = Capacity - 1

// Ring is a fixed-capacity SPSC ring of transport.PacketHandle, with an attached release
// callback invoked on drain or on overflow spill.
type Ring struct {
	_        [core.CacheLineSize]byte
	writePos atomic.Uint64
	_        [core.CacheLineSize - 8]byte
	readPos  atomic.Uint64
	_        [core.CacheLineSize - 8]byte
	spills   atomic.Uint64
	_        [core.CacheLineSize - 8]byte

	release func(transport.PacketHandle)
	buf     [Capacity]transport.PacketHandle
}

// New constructs a Ring. release is invoked for every handle, whether drained normally or
// spilled on overflow; it is typically transport.Transport.Release.
func New(release func(transport.PacketHandle)) *Ring {
	return &Ring{release: release}
}

// Push enqueues handle for later release. If the ring is full, handle is released
// immediately instead (spec.md §7 PendingRingFull: "spilling zero-copy for that packet to
// avoid leaks"), and Spills is incremented.
func (r *Ring) Push(handle transport.PacketHandle) {
	if handle == nil {
		return
	}
	w := r.writePos.Load()
	rd := r.readPos.Load()
	if w-rd >= Capacity {
		r.spills.Add(1)
		r.release(handle)
		return
	}
	r.buf[w&mask] = handle
	r.writePos.Store(w + 1)
}

// DrainOne releases the oldest pending handle, if any. Returns false when the ring is empty.
func (r *Ring) DrainOne() bool {
	rd := r.readPos.Load()
	w := r.writePos.Load()
	if rd == w {
		return false
	}
	handle := r.buf[rd&mask]
	r.buf[rd&mask] = nil
	r.readPos.Store(rd + 1)
	r.release(handle)
	return true
}

// DrainAll releases every pending handle. Called on shutdown per spec.md §5's ordering:
// "drain MPSC → release pending packets → emit final report."
func (r *Ring) DrainAll() {
	for r.DrainOne() {
	}
}

// Size returns the number of handles currently pending release.
func (r *Ring) Size() uint64 { return r.writePos.Load() - r.readPos.Load() }

// Spills returns the count of handles released immediately because the ring was full.
func (r *Ring) Spills() uint64 { return r.spills.Load() }
