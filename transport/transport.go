// ════════════════════════════════════════════════════════════════════════════════════════════════
// TRANSPORT INTERFACE — THE INGRESS BOUNDARY
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Tagged callback/release surface the core consumes from any transport driver
//
// The source this core was distilled from models socket/DPDK/ef_vi backends as an abstract
// base class with virtual dispatch. That inheritance hierarchy is a polymorphism-over-
// capability requirement, not a design this core should carry forward verbatim (spec.md §9):
// the core only ever needs a single callback surface and a release operation, so it is
// modeled here as a plain Go interface (the callback registered through Start, Release, and
// the lifecycle methods around them), not a class hierarchy.
//
// Implementations in this package (Synthetic, TCP) are reference transports — fixtures for
// tests and demo binaries — not the in-scope ingestion core itself.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package transport

// PacketHandle is an opaque reference to a borrowed receive buffer, created by a zero-copy
// transport when it delivers a packet and released once the parser has fully consumed it.
// nil means "no handle" — the ordinary non-zero-copy case, where the transport's own buffer
// is not retained past the callback.
type PacketHandle = any

// Callback is invoked by a Transport once per received chunk: data is a borrowed byte slice
// (the core makes no assumption about frame alignment within it), rxTSNanos is the arrival
// timestamp from the transport's own clock read (not necessarily the per-message timestamp —
// that is stamped later, per message, by the parser), and handle is non-nil only for
// zero-copy transports.
type Callback func(data []byte, rxTSNanos uint64, handle PacketHandle)

// FailureNotifier is implemented by transports that can report a connection failure
// occurring asynchronously, after Start has already returned successfully (spec.md §7
// TransportIO: "read/recv error mid-stream"). A transport whose only failure modes are
// synchronous — surfaced as a return value from Connect or Start itself — need not
// implement this interface at all; feed.Worker checks for it with a type assertion.
type FailureNotifier interface {
	// Failed returns a channel that is closed exactly once, the moment a mid-stream I/O
	// error is observed. It is never closed on a clean Stop().
	Failed() <-chan struct{}
}

// Transport is the tagged interface every feed backend implements: lifecycle methods plus
// the callback registration and handle release. A transport that never produces handles
// (e.g. TCP) implements Release as a no-op.
type Transport interface {
	// Initialize performs one-time setup (e.g. DPDK EAL init, socket allocation). Returns
	// TransportInit-class errors (spec.md §7) on failure.
	Initialize() error
	// Connect establishes the feed connection. May be called again after Disconnect.
	Connect() error
	// Start registers cb and begins delivering packets; returns once delivery has begun or
	// immediately on a startup error. Implementations must not block forever inside Start.
	Start(cb Callback) error
	// Stop halts packet delivery. After Stop returns, cb will not be invoked again.
	Stop() error
	// Disconnect tears down the feed connection. Safe to call after Stop.
	Disconnect() error
	// Release returns a packet handle previously delivered via Callback to the transport,
	// permitting reuse of the underlying buffer. Must be safe to call from the consumer
	// goroutine, which may be a different goroutine than the one that produced the handle.
	Release(handle PacketHandle)
}
