// ════════════════════════════════════════════════════════════════════════════════════════════════
// MONOTONIC CLOCK SOURCE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Nanosecond timestamp source used to stamp every parsed Slot
//
// Go's runtime.nanotime (exposed via time.Now() combined with a monotonic reading) already gives
// us a monotonic-raw clock on every platform the toolchain supports — there is no ecosystem
// library in this retrieval pack that does better than the runtime here, so this is one of the
// few spots in the core that stays on the standard library (see DESIGN.md).
// ════════════════════════════════════════════════════════════════════════════════════════════════

package clock

import "time"

// epoch anchors NowNanos()'s return value to process start so callers get small, comparable
// uint64s instead of a multi-decade Unix-nanosecond magnitude. Only relative differences
// (latency = now - rx_ts) are ever meaningful, so the choice of anchor carries no semantics.
var epoch = time.Now()

// NowNanos returns a monotonically non-decreasing nanosecond timestamp. Never allocates.
//
//go:nosplit
//go:inline
func NowNanos() uint64 {
	return uint64(time.Since(epoch))
}
