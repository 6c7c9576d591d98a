// ════════════════════════════════════════════════════════════════════════════════════════════════
// FEED MONITOR — PER-FEED HEALTH FSM
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Connecting/Healthy/Degraded/Dead/Failed state machine + per-feed gap tracking
//
// Grounded in spec.md §4.5's transition table. State is a single atomic enum so the health
// loop (dispatcher) can read it concurrently with the owning worker's writes; every other
// field is touched only by the worker thread that owns the feed, per spec.md §9.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package feed

import (
	"sync/atomic"
	"time"

	"mdfh/clock"
)

// State is a feed's position in the health FSM.
type State uint32

const (
	Connecting State = iota
	Healthy
	Degraded
	Dead
	Failed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "Connecting"
	case Healthy:
		return "Healthy"
	case Degraded:
		return "Degraded"
	case Dead:
		return "Dead"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Config describes one feed's identity and health thresholds (spec.md §3 FeedConfig).
type Config struct {
	OriginID          uint32
	IsPrimary         bool
	HeartbeatMs       uint64
	TimeoutMultiplier uint64
}

// Monitor tracks one feed's FSM state, last-message timestamp, and sequence-gap bookkeeping.
// state, lastMessageMonoTS and hasMessage are read from the dispatcher's health loop and
// written from the owning worker; everything else belongs to the worker alone.
type Monitor struct {
	cfg Config

	state             atomic.Uint32
	lastMessageMonoTS atomic.Uint64
	hasMessage        atomic.Bool

	// Single-writer fields — touched only by the owning feed worker.
	firstSeen   bool
	expectedSeq uint64
	gapCount    uint64
}

// NewMonitor constructs a Monitor in the Connecting state.
func NewMonitor(cfg Config) *Monitor {
	m := &Monitor{cfg: cfg}
	m.state.Store(uint32(Connecting))
	return m
}

func (m *Monitor) Config() Config { return m.cfg }

// State returns the monitor's current FSM state. Safe to call from any goroutine.
func (m *Monitor) State() State { return State(m.state.Load()) }

func (m *Monitor) setState(s State) { m.state.Store(uint32(s)) }

// IsHealthy reports whether the feed is usable, per spec.md §4.5: Healthy or Degraded.
func (m *Monitor) IsHealthy() bool {
	s := m.State()
	return s == Healthy || s == Degraded
}

// IsDead reports whether the feed should be treated as down: Dead or Failed.
func (m *Monitor) IsDead() bool {
	s := m.State()
	return s == Dead || s == Failed
}

// OnConnected transitions Connecting → Healthy on a successful connection, before any
// message has necessarily arrived (spec.md §4.5's first transition row).
func (m *Monitor) OnConnected() {
	if m.State() == Connecting {
		m.setState(Healthy)
	}
}

// OnMessage records a received message's sequence number and mono timestamp, updates gap
// tracking, and moves Connecting/Dead back to Healthy. Must only be called from the worker
// that owns this feed.
func (m *Monitor) OnMessage(seq uint64, monoTS uint64) {
	m.lastMessageMonoTS.Store(monoTS)
	m.hasMessage.Store(true)

	if !m.firstSeen {
		m.expectedSeq = seq
		m.firstSeen = true
	} else if seq != m.expectedSeq {
		m.gapCount++
	}
	m.expectedSeq = seq + 1

	switch m.State() {
	case Connecting, Dead:
		m.setState(Healthy)
	}
}

// OnConnectionFailed transitions the monitor to Failed regardless of current state, per
// spec.md §4.5's "* → Failed" row. Safe to call from any goroutine observing a transport
// failure.
func (m *Monitor) OnConnectionFailed() {
	m.setState(Failed)
}

// CheckHealth re-evaluates the FSM against the current time, applying the
// Healthy→Degraded and Healthy/Degraded→Dead transitions from spec.md §4.5. Intended to be
// called periodically from the dispatcher's health loop; safe to call concurrently with
// OnMessage since it only reads the atomic last-message fields and does CAS-free monotonic
// downgrades. Before the first recorded message it does nothing.
func (m *Monitor) CheckHealth(nowMonoTS uint64) {
	s := m.State()
	if s == Failed {
		return
	}

	if !m.hasMessage.Load() {
		return
	}
	last := m.lastMessageMonoTS.Load()

	var sinceMs uint64
	if nowMonoTS > last {
		sinceMs = (nowMonoTS - last) / uint64(time.Millisecond)
	}

	deadThreshold := m.cfg.HeartbeatMs * m.cfg.TimeoutMultiplier
	degradedThreshold := 2 * m.cfg.HeartbeatMs

	switch {
	case sinceMs > deadThreshold && (s == Healthy || s == Degraded):
		m.setState(Dead)
	case sinceMs > degradedThreshold && s == Healthy:
		m.setState(Degraded)
	}
}

// GapCount returns the feed-local sequence-gap count (spec.md §4.5 "identical to §4.4 but
// per feed"). Only coherent when read by, or synchronized with, the owning worker.
func (m *Monitor) GapCount() uint64 { return m.gapCount }

// ExpectedSeq returns the sequence number OnMessage next expects.
func (m *Monitor) ExpectedSeq() uint64 { return m.expectedSeq }

// LastMessageMonoTS returns the mono timestamp of the last recorded message, or 0 if none.
func (m *Monitor) LastMessageMonoTS() uint64 { return m.lastMessageMonoTS.Load() }

// Now is a convenience wrapper so callers outside this package don't need to import clock
// directly just to drive CheckHealth.
func Now() uint64 { return clock.NowNanos() }
