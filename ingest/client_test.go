package ingest

import (
	"testing"
	"time"

	"mdfh/core"
	"mdfh/spscring"
	"mdfh/stats"
	"mdfh/transport"
)

func encodeMsg(seq uint64, px float64, qty int32) []byte {
	buf := make([]byte, core.MessageSize)
	core.Encode(core.Message{Seq: seq, Px: px, Qty: qty}, buf)
	return buf
}

func streamOf(n int) []byte {
	var b []byte
	for seq := uint64(1); seq <= uint64(n); seq++ {
		b = append(b, encodeMsg(seq, float64(seq), 1)...)
	}
	return b
}

func TestClientDeliversMessagesEndToEnd(t *testing.T) {
	tr := &transport.Synthetic{Chunks: transport.Split(streamOf(20), 17)}
	c := New(tr)

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	ring, _ := spscring.New(64)
	st := stats.New()
	if err := c.Start(ring, st); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var got []core.Message
	for len(got) < 20 && time.Now().Before(deadline) {
		if s, ok := ring.TryPop(); ok {
			got = append(got, s.Raw)
		} else {
			time.Sleep(time.Millisecond)
		}
	}
	if len(got) != 20 {
		t.Fatalf("received %d messages, want 20", len(got))
	}
	for i, m := range got {
		if m.Seq != uint64(i+1) {
			t.Errorf("message %d: Seq = %d, want %d", i, m.Seq, i+1)
		}
	}

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
}

func TestClientReleasesZeroCopyHandlesOnStop(t *testing.T) {
	tr := &transport.Synthetic{Chunks: transport.Split(streamOf(5), 100), ZeroCopy: true}
	c := New(tr)
	_ = c.Initialize()
	_ = c.Connect()

	ring, _ := spscring.New(32)
	st := stats.New()
	_ = c.Start(ring, st)

	// Handles accumulate in the pending ring until drained; Stop() is what drains and
	// releases them all (spec.md §4.9).
	deadline := time.Now().Add(2 * time.Second)
	for c.pending.Size() < uint64(len(tr.Chunks)) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	_ = c.Stop()

	if got := tr.ReleasedCount(); got != int64(len(tr.Chunks)) {
		t.Fatalf("ReleasedCount() = %d, want %d (one per delivered chunk)", got, len(tr.Chunks))
	}
	if c.PendingSpills() != 0 {
		t.Fatalf("PendingSpills() = %d, want 0 for a small chunk count", c.PendingSpills())
	}
}

func TestParserOverflowsReportedThroughClient(t *testing.T) {
	tr := &transport.Synthetic{Chunks: [][]byte{make([]byte, 70000)}}
	c := New(tr)
	_ = c.Initialize()
	_ = c.Connect()

	ring, _ := spscring.New(16)
	st := stats.New()
	_ = c.Start(ring, st)

	deadline := time.Now().Add(2 * time.Second)
	for c.ParserOverflows() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	_ = c.Stop()

	if c.ParserOverflows() == 0 {
		t.Fatal("ParserOverflows() should be nonzero after feeding an oversized chunk")
	}
}
