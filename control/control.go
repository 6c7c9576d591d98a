// control.go — shared shutdown coordination for ingestion goroutines
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control provides the stop-flag-and-waitgroup coordination every long-lived
// goroutine in this core polls at its loop head: feed workers' forwarding
// loops, the fan-in dispatcher's health monitor, and the demo binaries'
// consume loops. There is
// no hot/cooldown activity flag here — that was specific to the system this
// package was ported from (an adaptive spin strategy for a WebSocket hot
// path) and has no analogue in a market-data ingestion core, which has no
// notion of "idle" traffic to spin down from.
//
// Threading model:
//   - Any goroutine may call Shutdown(); it is idempotent.
//   - Every goroutine the core spawns calls Track() once at startup and
//     defers the returned func, so main can wait for a clean drain before
//     emitting the final report.
//   - Stopped() is polled at every loop head on the data path; it is a
//     single atomic load, safe for concurrent callers.
//
// ============================================================================

package control

import (
	"sync"
	"sync/atomic"
)

var (
	stopFlag atomic.Bool

	// ShutdownWG tracks every goroutine spawned by the ingestion core.
	// Track() is the only intended way to add to it.
	ShutdownWG sync.WaitGroup
)

// Shutdown sets the shared stop flag. Safe to call more than once and from
// any goroutine; subsequent calls are no-ops.
//
//go:nosplit
func Shutdown() {
	stopFlag.Store(true)
}

// Stopped reports whether Shutdown has been called. Polled at every loop
// head on the data path — a single atomic load, never a syscall.
//
//go:nosplit
//go:inline
func Stopped() bool {
	return stopFlag.Load()
}

// Reset clears the stop flag. Exists only for test isolation between
// independent scenarios in the same process; production code never calls it.
func Reset() {
	stopFlag.Store(false)
}

// Track registers one in-flight goroutine and returns the func to call
// (typically via defer) when that goroutine exits. Mirrors the
// ShutdownWG.Add(1)/Done() pairing used throughout the core's goroutine
// lifecycle.
func Track() func() {
	ShutdownWG.Add(1)
	return ShutdownWG.Done
}
