// ════════════════════════════════════════════════════════════════════════════════════════════════
// FAN-IN DISPATCHER — MULTI-FEED ORCHESTRATION + HEALTH LOOP + ADVISORY FAILOVER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Owns the shared MPSC ring, every feed worker, and the health-monitor loop
//
// Grounded in spec.md §4.7: one health-monitor goroutine wakes every health_check_interval_ms,
// calls CheckHealth on each feed monitor, and — if no primary feed is Healthy — logically
// promotes the first Healthy backup. Promotion is advisory only; this core does not reroute
// traffic (spec.md §4.7, "does not reroute traffic in this core").
// ════════════════════════════════════════════════════════════════════════════════════════════════

package dispatcher

import (
	"time"

	"mdfh/control"
	"mdfh/core"
	"mdfh/feed"
	"mdfh/mpscring"
	"mdfh/spscring"
	"mdfh/stats"
	"mdfh/transport"
)

// FeedSpec binds one feed's health configuration to its transport and local ring capacity.
type FeedSpec struct {
	Config          feed.Config
	Transport       transport.Transport
	LocalCapacity   int
}

// Dispatcher owns the shared MPSC ring and every feed worker, plus the health-monitor loop
// that watches them.
type Dispatcher struct {
	MPSC    *mpscring.Ring
	workers []*feed.Worker

	healthCheckInterval time.Duration

	// promotedOriginID is the advisory primary: the first Healthy feed found whenever no
	// configured primary is Healthy. 0 means "no promotion active" (origin ids are assigned
	// starting at 1 by configuration convention).
	promotedOriginID uint32
}

// New constructs a Dispatcher with a freshly allocated shared MPSC ring of the given
// capacity and one Worker per spec. healthCheckInterval is spec.md §3's
// health_check_interval_ms.
func New(mpscCapacity int, healthCheckInterval time.Duration, specs []FeedSpec) (*Dispatcher, error) {
	mpsc, err := mpscring.New(mpscCapacity)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{MPSC: mpsc, healthCheckInterval: healthCheckInterval}
	for _, spec := range specs {
		local, err := spscring.New(spec.LocalCapacity)
		if err != nil {
			return nil, err
		}
		w := feed.NewWorker(spec.Config, spec.Transport, local, mpsc, nil)
		d.workers = append(d.workers, w)
	}
	return d, nil
}

// Workers returns the dispatcher's feed workers, in configuration order.
func (d *Dispatcher) Workers() []*feed.Worker { return d.workers }

// Start brings up every worker. A worker whose transport fails to initialize, connect, or
// start is skipped and its error is collected into the returned slice (a connect or start
// failure also moves its monitor to Failed); the dispatcher continues with the remaining
// feeds (spec.md §7 TransportInit: "dispatcher continues with remaining feeds"). Start then
// launches the health-monitor loop.
func (d *Dispatcher) Start() []error {
	var errs []error
	for _, w := range d.workers {
		if err := w.Run(); err != nil {
			errs = append(errs, err)
		}
	}

	done := control.Track()
	go d.healthLoop(done)
	return errs
}

// healthLoop wakes every healthCheckInterval, re-evaluates each worker's health, and, if no
// primary feed is Healthy, advisorily promotes the first Healthy backup.
func (d *Dispatcher) healthLoop(done func()) {
	defer done()
	ticker := time.NewTicker(d.healthCheckInterval)
	defer ticker.Stop()

	for !control.Stopped() {
		<-ticker.C
		if control.Stopped() {
			return
		}
		d.checkHealthOnce()
	}
}

func (d *Dispatcher) checkHealthOnce() {
	now := feed.Now()
	primaryHealthy := false
	for _, w := range d.workers {
		w.Monitor.CheckHealth(now)
		if w.Monitor.Config().IsPrimary && w.Monitor.State() == feed.Healthy {
			primaryHealthy = true
		}
	}
	if primaryHealthy {
		d.promotedOriginID = 0
		return
	}
	for _, w := range d.workers {
		if w.Monitor.State() == feed.Healthy {
			d.promotedOriginID = w.Monitor.Config().OriginID
			return
		}
	}
	d.promotedOriginID = 0
}

// PromotedOriginID returns the origin id of the feed advisorily promoted to primary, or 0 if
// no promotion is currently active (either a primary is Healthy, or no feed is).
func (d *Dispatcher) PromotedOriginID() uint32 { return d.promotedOriginID }

// Pop drains one FeedSlot from the shared MPSC ring, the single point of consumption for a
// multi-feed run.
func (d *Dispatcher) Pop() (core.FeedSlot, bool) { return d.MPSC.TryPop() }

// Snapshot combines every worker's per-feed received/dropped/bytes counters with the
// caller-owned consumer statistics that actually measures processed messages and latency.
// consumer is the stats.Statistics the caller's consume loop feeds via RecordProcessed at
// its Pop() call — the true measurement point per spec.md §2 ("a consumer pops from the
// MPSC"), mirroring the single-feed path's ring.TryPop(). Processed count, elapsed time, and
// every percentile come from consumer alone, since it is the only stats.Statistics that ever
// observes a message actually leaving the shared MPSC ring. GapCount is summed from each
// worker's Monitor — per-feed sequence tracking independent of the shared consumer's own
// (interleaved, cross-feed) sequence view — not from Worker.Stats, which no longer tracks
// gaps once RecordProcessed moved off the per-feed forwarding path.
func (d *Dispatcher) Snapshot(consumer *stats.Statistics) stats.Snapshot {
	var received, dropped, bytesReceived, gapCount uint64
	for _, w := range d.workers {
		s := w.Stats
		received += s.Received()
		dropped += s.Dropped()
		bytesReceived += s.BytesReceived()
		gapCount += w.Monitor.GapCount()
	}

	snap := consumer.Snapshot()
	snap.Received = received
	snap.Dropped = dropped
	snap.BytesReceived = bytesReceived
	snap.GapCount = gapCount
	return snap
}

// Stop halts every worker's transport. The health loop and each worker's forwarding loop
// observe control.Stopped() independently and exit on their own.
func (d *Dispatcher) Stop() {
	for _, w := range d.workers {
		_ = w.Stop()
	}
}
