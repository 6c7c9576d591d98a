// ════════════════════════════════════════════════════════════════════════════════════════════════
// FEED WORKER — ONE TRANSPORT → LOCAL SPSC → SHARED MPSC
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Per-feed reader + forwarder, the unit the fan-in dispatcher owns many of
//
// Grounded in spec.md §4.6: a transport callback, running on the transport's own reader
// goroutine, feeds the parser into a local SPSC ring; a separate forwarding goroutine started
// by Run drains that ring and rewraps each Slot into a FeedSlot pushed onto the shared MPSC.
// Reading and forwarding are not interleaved on one goroutine. A forwarding failure (MPSC
// full) is a drop, never a block — the reader must never stall behind a slow consumer. Only
// the multi-feed consumer's Pop() counts a message as processed (spec.md §2); the worker
// itself only tracks received/bytes/dropped and per-feed health.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package feed

import (
	"runtime"
	"sync/atomic"

	"mdfh/control"
	"mdfh/core"
	"mdfh/mpscring"
	"mdfh/parser"
	"mdfh/spscring"
	"mdfh/stats"
	"mdfh/transport"
)

// Worker runs one feed: a transport, its local SPSC ring and parser, and the forwarding step
// into a shared MPSC ring. One Worker per feed; the dispatcher owns the set.
type Worker struct {
	Monitor *Monitor
	Stats   *stats.Statistics

	transport transport.Transport
	parser    *parser.Parser
	local     *spscring.Ring
	mpsc      *mpscring.Ring
	pending   handleSink

	feedSeq atomic.Uint64
}

// handleSink is the subset of pendingring.Ring's surface a Worker needs, kept local to avoid
// an import cycle (pendingring is a consumer-side concern; Worker only needs to hand off
// zero-copy handles to it).
type handleSink interface {
	Push(handle transport.PacketHandle)
}

// NewWorker constructs a Worker for one feed. local is the feed's private SPSC ring; mpsc is
// the dispatcher's shared fan-in ring; pending may be nil for transports that never produce
// zero-copy handles.
func NewWorker(cfg Config, tr transport.Transport, local *spscring.Ring, mpsc *mpscring.Ring, pending handleSink) *Worker {
	return &Worker{
		Monitor:   NewMonitor(cfg),
		Stats:     stats.New(),
		transport: tr,
		parser:    parser.New(),
		local:     local,
		mpsc:      mpsc,
		pending:   pending,
	}
}

// Run brings the transport up and begins delivering into the local ring. Returns a
// TransportInit-class error if Initialize/Connect fails (spec.md §7: "fatal at startup for
// that feed; dispatcher continues with remaining feeds"). Once Start succeeds, Run launches
// the forwarding loop on a new goroutine registered via control.Track, and returns
// immediately — callers that want to block until the worker exits wait on
// control.ShutdownWG.
func (w *Worker) Run() error {
	if err := w.transport.Initialize(); err != nil {
		return err
	}
	if err := w.transport.Connect(); err != nil {
		w.Monitor.OnConnectionFailed()
		return err
	}

	done := control.Track()
	err := w.transport.Start(w.onPacket)
	if err != nil {
		w.Monitor.OnConnectionFailed()
		done()
		return err
	}
	w.Monitor.OnConnected()

	go w.forwardLoop(done)
	return nil
}

// onPacket is the transport callback: parse bytes into the local ring, record bytes
// received, and hand any zero-copy handle to the pending sink.
func (w *Worker) onPacket(data []byte, rxTSNanos uint64, handle transport.PacketHandle) {
	w.Stats.RecordBytesReceived(uint64(len(data)))
	w.parser.Parse(data, w.local, w.Stats)
	if handle != nil && w.pending != nil {
		w.pending.Push(handle)
	}
}

// forwardLoop drains the local SPSC ring and rewraps each popped Slot into a FeedSlot pushed
// onto the shared MPSC, until control.Stopped() or a mid-stream transport failure. A full
// MPSC ring counts a forwarding drop and continues
// (spec.md §4.6: "never block the reader").
//
// If the transport implements transport.FailureNotifier, its Failed() channel is polled
// alongside the local ring so a mid-stream I/O error (spec.md §7 TransportIO) — which, for
// TCP, arrives asynchronously on the transport's own read goroutine well after Start has
// returned — routes into Monitor.OnConnectionFailed() and this loop exits, rather than
// leaving the monitor stuck reporting stale health and the dispatcher never seeing the
// worker exit to consider backup promotion.
func (w *Worker) forwardLoop(done func()) {
	defer done()
	var failed <-chan struct{}
	if fn, ok := w.transport.(transport.FailureNotifier); ok {
		failed = fn.Failed()
	}
	for !control.Stopped() {
		select {
		case <-failed:
			w.Monitor.OnConnectionFailed()
			w.drainAndForward()
			_ = w.transport.Stop()
			return
		default:
		}
		if !w.forwardOne() {
			runtime.Gosched()
		}
	}
	w.drainLocal()
}

// forwardOne pops at most one Slot from the local ring and forwards it as a FeedSlot onto
// the shared MPSC, reporting whether it did anything. Factored out so both the steady-state
// loop and the post-failure drain (drainAndForward) share the same forwarding logic.
//
// A message only counts as processed once it actually lands on the shared MPSC ring — the
// multi-feed consumer's Pop() is the real measurement point (spec.md §2's "a consumer pops
// from the MPSC"), mirroring the single-feed path's ring.TryPop(). A slot that loses the race
// for MPSC space is a drop, not a processed message, so it goes through the same
// Statistics.dropped counter the parser uses for a full local ring (spec.md §7 BufferFull is
// generic to "ring push returns full," not specific to the SPSC).
func (w *Worker) forwardOne() bool {
	slot, ok := w.local.TryPopWithPrefetch()
	if !ok {
		return false
	}
	cfg := w.Monitor.Config()
	now := Now()
	w.Monitor.OnMessage(slot.Raw.Seq, now)

	fs := core.FeedSlot{
		Slot:      slot,
		OriginID:  cfg.OriginID,
		FeedSeq:   w.feedSeq.Add(1),
		ArrivalTS: now,
	}
	if !w.mpsc.TryPush(fs) {
		w.Stats.RecordDropped()
	}
	return true
}

// drainAndForward forwards every slot still buffered in the local ring after a mid-stream
// transport failure, so messages already received before the failure are not silently
// dropped on top of it.
func (w *Worker) drainAndForward() {
	for w.forwardOne() {
	}
}

// drainLocal pops any remaining slots from the local ring on shutdown without forwarding
// them, so the ring's internal state is left clean (spec.md §5 shutdown order: "drain local
// SPSC").
func (w *Worker) drainLocal() {
	for {
		if _, ok := w.local.TryPop(); !ok {
			return
		}
	}
}

// Stop halts the underlying transport. The forwarding goroutine observes control.Stopped()
// independently and exits on its own; Stop only needs to ensure the transport stops calling
// onPacket.
func (w *Worker) Stop() error {
	return w.transport.Stop()
}
