package stats

import (
	"testing"

	"mdfh/clock"
)

// E5: gap detection over sequences [10, 11, 13].
func TestE5GapDetection(t *testing.T) {
	s := New()
	now := clock.NowNanos()
	for _, seq := range []uint64{10, 11, 13} {
		s.RecordProcessed(seq, now)
	}
	if s.GapCount() != 1 {
		t.Fatalf("GapCount() = %d, want 1", s.GapCount())
	}
	if s.ExpectedSeq() != 14 {
		t.Fatalf("ExpectedSeq() = %d, want 14", s.ExpectedSeq())
	}
}

func TestGapCountZeroOnContiguousSequence(t *testing.T) {
	s := New()
	now := clock.NowNanos()
	for seq := uint64(1); seq <= 100; seq++ {
		s.RecordProcessed(seq, now)
	}
	if s.GapCount() != 0 {
		t.Fatalf("GapCount() = %d, want 0 for a contiguous run", s.GapCount())
	}
}

// E6: a slot with rx_ts = now - 37500ns should land in histogram bucket 37, and a single
// sample's p50 should report 37us.
func TestE6LatencyBucket(t *testing.T) {
	s := New()
	rxTS := clock.NowNanos() - 37500
	s.RecordProcessed(1, rxTS)
	if got := s.Percentile(0.50); got != 37 {
		t.Fatalf("p50 over one 37.5us sample = %d, want 37", got)
	}
}

func TestHistogramOverflowBucket(t *testing.T) {
	s := New()
	// A receive stamp 2ms in the past is well beyond the 1000us overflow threshold. (The
	// unsigned subtraction stays correct even if the clock reads less than 2ms.)
	s.RecordProcessed(1, clock.NowNanos()-2_000_000)
	if got := s.Percentile(1.0); got != histogramBuckets-1 {
		t.Fatalf("overflow sample should saturate at bucket %d, got %d", histogramBuckets-1, got)
	}
}

// Invariant 8: percentile(p) is the smallest bucket b with |{l <= b}| >= ceil(p*|L|).
func TestPercentileSoundness(t *testing.T) {
	s := New()
	latenciesUs := []uint64{1, 1, 2, 5, 10, 10, 10, 50, 100, 500}
	for i, us := range latenciesUs {
		// Stamp each sample just before recording it, so the time spent in earlier
		// iterations does not push later samples into a higher bucket.
		rxTS := clock.NowNanos() - us*1000
		s.RecordProcessed(uint64(i+1), rxTS)
	}
	// p50 of 10 samples: target = ceil(0.5*10) = 5th smallest value -> sorted: 1,1,2,5,10 -> 10.
	if got := s.Percentile(0.50); got != 10 {
		t.Fatalf("p50 = %d, want 10 (cumulative scan over %v)", got, latenciesUs)
	}
	if got := s.Percentile(1.0); got != 500 {
		t.Fatalf("p100 = %d, want 500", got)
	}
}

// Regression: target = ceil(p*total) must not truncate toward zero. With total=3 and
// p=0.5, p*total=1.5 — the ceiling is 2, not uint64(1.5)=1.
func TestPercentileCeilsFractionalTarget(t *testing.T) {
	s := New()
	latenciesUs := []uint64{10, 20, 30}
	for i, us := range latenciesUs {
		rxTS := clock.NowNanos() - us*1000
		s.RecordProcessed(uint64(i+1), rxTS)
	}
	// target = ceil(0.5*3) = 2 -> 2nd smallest value, sorted: 10, 20, 30 -> 20.
	if got := s.Percentile(0.50); got != 20 {
		t.Fatalf("p50 of 3 samples = %d, want 20 (ceil(0.5*3)=2nd smallest)", got)
	}
}

func TestCountersIndependentOfSingleWriterFields(t *testing.T) {
	s := New()
	s.RecordReceived()
	s.RecordReceived()
	s.RecordDropped()
	s.RecordBytesReceived(128)
	if s.Received() != 2 || s.Dropped() != 1 || s.BytesReceived() != 128 {
		t.Fatalf("counters = recv:%d drop:%d bytes:%d, want 2/1/128", s.Received(), s.Dropped(), s.BytesReceived())
	}
}

func TestShouldFlushAndFlushed(t *testing.T) {
	s := New()
	if s.ShouldFlush() {
		t.Fatal("ShouldFlush() should be false immediately after New()")
	}
	s.Flushed()
	if s.ShouldFlush() {
		t.Fatal("ShouldFlush() should be false immediately after Flushed()")
	}
}

func TestSnapshotReportsRender(t *testing.T) {
	s := New()
	s.RecordReceived()
	s.RecordProcessed(1, clock.NowNanos())
	snap := s.Snapshot()
	if snap.PeriodicLine() == "" {
		t.Fatal("PeriodicLine() should not be empty")
	}
	if snap.FinalReport() == "" {
		t.Fatal("FinalReport() should not be empty")
	}
}
