// ════════════════════════════════════════════════════════════════════════════════════════════════
// INGESTION STATISTICS — COUNTERS, SEQUENCE GAPS, LATENCY HISTOGRAM
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Per-message bookkeeping consumed by the periodic/final report
//
// Grounded in original_source/src/ingestion.cpp's IngestionStats: atomic counters for the
// multi-writer fields (received/processed/dropped/bytes_received), plain fields for the
// single-writer sequence-gap and histogram bookkeeping, which only the consumer goroutine
// touches (spec.md §5 "the sequence-gap bookkeeping and histogram are single-writer").
// ════════════════════════════════════════════════════════════════════════════════════════════════

package stats

import (
	"math"
	"sync/atomic"
	"time"

	"mdfh/clock"
)

// HistogramBuckets is 1,001 buckets: 0..999 microseconds plus bucket 1000 as the overflow
// bucket for latencies >= 1000us (spec.md §3).
const HistogramBuckets = 1001

// histogramBuckets is kept as the unexported name existing call sites in this file use.
const histogramBuckets = HistogramBuckets

// Histogram is a full copy of the 1,001-bucket latency histogram, keyed by microsecond
// latency with bucket HistogramBuckets-1 as the overflow bucket.
type Histogram [HistogramBuckets]uint64

// Statistics accumulates the counters, sequence-gap state, and latency histogram for one
// ingestion path. The atomic counters may be incremented from any goroutine (parser calls
// on the reader thread, RecordBytesReceived similarly); RecordProcessed must only ever be
// called from the single consumer goroutine — it mutates expectedSeq/gapCount/histogram
// without synchronization, by contract.
type Statistics struct {
	received      atomic.Uint64
	processed     atomic.Uint64
	dropped       atomic.Uint64
	bytesReceived atomic.Uint64

	// Single-writer fields — touched only by the consumer goroutine via RecordProcessed.
	firstSeen   bool
	expectedSeq uint64
	gapCount    uint64
	histogram   [histogramBuckets]uint64

	startedAt  time.Time
	lastFlush  time.Time
}

// New constructs a Statistics with its elapsed-time clock started now.
func New() *Statistics {
	now := time.Now()
	return &Statistics{startedAt: now, lastFlush: now}
}

// RecordReceived increments the received counter — called by the parser on every
// successful ring push.
func (s *Statistics) RecordReceived() { s.received.Add(1) }

// RecordDropped increments the dropped counter — called by the parser whenever the target
// ring reports full (spec.md §7 BufferFull: "counted in dropped; not surfaced").
func (s *Statistics) RecordDropped() { s.dropped.Add(1) }

// RecordBytesReceived adds n to the cumulative byte counter — called once per transport
// callback invocation, not per message.
func (s *Statistics) RecordBytesReceived(n uint64) { s.bytesReceived.Add(n) }

// RecordProcessed updates sequence-gap tracking and the latency histogram for one popped
// slot. Single-writer only: the consumer goroutine must not call this concurrently with
// itself.
func (s *Statistics) RecordProcessed(seq uint64, rxTS uint64) {
	s.processed.Add(1)

	if !s.firstSeen {
		s.expectedSeq = seq
		s.firstSeen = true
	} else if seq != s.expectedSeq {
		s.gapCount++
	}
	s.expectedSeq = seq + 1

	latencyUs := (clock.NowNanos() - rxTS) / 1000
	bucket := latencyUs
	if bucket >= histogramBuckets-1 {
		bucket = histogramBuckets - 1
	}
	s.histogram[bucket]++
}

// Received, Processed, Dropped, and BytesReceived are snapshot reads of the corresponding
// atomic counters, safe from any goroutine.
func (s *Statistics) Received() uint64      { return s.received.Load() }
func (s *Statistics) Processed() uint64     { return s.processed.Load() }
func (s *Statistics) Dropped() uint64       { return s.dropped.Load() }
func (s *Statistics) BytesReceived() uint64 { return s.bytesReceived.Load() }

// GapCount returns the cumulative sequence-gap count. Only meaningful when called from (or
// synchronized with) the consumer goroutine — it is not an atomic field.
func (s *Statistics) GapCount() uint64 { return s.gapCount }

// ExpectedSeq returns the sequence number RecordProcessed next expects.
func (s *Statistics) ExpectedSeq() uint64 { return s.expectedSeq }

// Elapsed returns the time since New() was called.
func (s *Statistics) Elapsed() time.Duration { return time.Since(s.startedAt) }

// ShouldFlush reports whether at least one wall-second has elapsed since the last
// Flushed() call — "best-effort monotonic," per spec.md §4.4, not real-time accurate.
func (s *Statistics) ShouldFlush() bool {
	return time.Since(s.lastFlush) >= time.Second
}

// Flushed marks the periodic report as emitted now, resetting the flush interval clock.
// Cumulative counters are never reset, only this interval marker.
func (s *Statistics) Flushed() { s.lastFlush = time.Now() }

// Percentile returns the smallest latency bucket b (in microseconds, saturating at 1000)
// such that the cumulative histogram count up to and including b meets ceil(p * total),
// where total is the number of samples recorded so far (spec.md §8 invariant 8).
func (s *Statistics) Percentile(p float64) uint64 {
	return PercentileFromHistogram(Histogram(s.histogram), s.Processed(), p)
}

// PercentileFromHistogram returns the smallest bucket b (saturating at HistogramBuckets-1)
// such that the cumulative count over hist up to and including b meets ceil(p*total),
// per spec.md §8 invariant 8. It underlies Statistics.Percentile.
func PercentileFromHistogram(hist Histogram, total uint64, p float64) uint64 {
	if total == 0 {
		return 0
	}
	target := uint64(math.Ceil(p * float64(total)))
	if target == 0 {
		target = 1
	}
	var cum uint64
	for b := 0; b < HistogramBuckets; b++ {
		cum += hist[b]
		if cum >= target {
			return uint64(b)
		}
	}
	return HistogramBuckets - 1
}

// Snapshot is an immutable copy of the counters, sequence-gap state, and derived
// percentiles — the shape every reporting/metrics/JSON adapter consumes (spec.md §6 "an
// adapter may subscribe to the statistics counters"). Each field is read separately, so
// under concurrent updates the fields are not guaranteed to be mutually consistent.
type Snapshot struct {
	Received      uint64
	Processed     uint64
	Dropped       uint64
	BytesReceived uint64
	GapCount      uint64
	ElapsedSec    float64
	P50, P90, P95, P99, P999 uint64
}

// Snapshot takes a point-in-time copy of every field this package exposes. GapCount is only
// coherent when the caller either is the consumer goroutine or has otherwise synchronized
// with it (e.g. calling Snapshot after the consumer has stopped).
func (s *Statistics) Snapshot() Snapshot {
	return Snapshot{
		Received:      s.Received(),
		Processed:     s.Processed(),
		Dropped:       s.Dropped(),
		BytesReceived: s.BytesReceived(),
		GapCount:      s.GapCount(),
		ElapsedSec:    s.Elapsed().Seconds(),
		P50:           s.Percentile(0.50),
		P90:           s.Percentile(0.90),
		P95:           s.Percentile(0.95),
		P99:           s.Percentile(0.99),
		P999:          s.Percentile(0.999),
	}
}
