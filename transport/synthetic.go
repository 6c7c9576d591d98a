package transport

import (
	"sync"
	"sync/atomic"

	"mdfh/clock"
)

// Synthetic is an in-memory Transport that replays pre-encoded wire frames from a caller-
// supplied source, one chunk at a time, on its own goroutine. It exists to drive the
// ingestion client and feed workers end-to-end in tests — the wire encoder that produces
// those frames is out of scope for this core (spec.md §1), so Synthetic takes already-
// encoded bytes rather than synthesizing Messages itself.
//
// When ZeroCopy is set, each delivered chunk carries a non-nil PacketHandle (a *int64 counting
// how many times that particular chunk has been released) so callers can exercise the
// pending-packet ring without a real zero-copy NIC driver.
type Synthetic struct {
	// Chunks is consumed in order, one per Start delivery step. Feed combines multiple wire
	// frames into one chunk to simulate a socket read containing several messages, or
	// splits a single frame across chunks to exercise partial-frame carry-over.
	Chunks [][]byte
	// ZeroCopy, when true, delivers a non-nil PacketHandle with each chunk.
	ZeroCopy bool
	// FailAfter, when > 0, makes Start deliver only the first FailAfter chunks, then close
	// the channel returned by Failed() instead of delivering the rest — simulating a
	// mid-stream I/O error (spec.md §7 TransportIO) for tests that exercise
	// feed.Worker/Monitor's failure path without a real socket.
	FailAfter int

	mu       sync.Mutex
	running  bool
	released atomic.Int64
	stop     chan struct{}
	done     chan struct{}
	failed   chan struct{}
}

// Initialize is a no-op; Synthetic has no external resources to set up.
func (s *Synthetic) Initialize() error { return nil }

// Connect is a no-op; Synthetic has no connection to establish.
func (s *Synthetic) Connect() error { return nil }

// Start launches a goroutine that delivers the chunks in Chunks to cb in order, and returns
// immediately, matching how a real transport's reception thread behaves. Delivery ends when
// the chunks run out, when Stop is called, or when FailAfter is reached.
func (s *Synthetic) Start(cb Callback) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.failed = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		for i, chunk := range s.Chunks {
			select {
			case <-s.stop:
				return
			default:
			}
			if s.FailAfter > 0 && i >= s.FailAfter {
				close(s.failed)
				return
			}
			var handle PacketHandle
			if s.ZeroCopy {
				h := new(int64)
				handle = h
			}
			cb(chunk, clock.NowNanos(), handle)
		}
	}()
	return nil
}

// Failed returns a channel closed exactly once, when FailAfter chunks have been delivered
// and no more will follow — Synthetic's stand-in for a real transport's mid-stream I/O
// error (spec.md §7 TransportIO), letting feed.Worker's failure path be exercised without a
// socket.
func (s *Synthetic) Failed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Stop halts delivery; any chunks not yet delivered are dropped, matching a real
// transport's behavior on disconnect mid-stream.
func (s *Synthetic) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()
	close(stop)
	<-done
	return nil
}

// Disconnect is a no-op beyond Stop.
func (s *Synthetic) Disconnect() error { return nil }

// Release increments the handle's release counter. Safe to call more than once; only the
// first call per handle is meaningful for tests asserting release-exactly-once.
func (s *Synthetic) Release(handle PacketHandle) {
	if h, ok := handle.(*int64); ok {
		atomic.AddInt64(h, 1)
		s.released.Add(1)
	}
}

// ReleasedCount reports how many Release calls this transport has observed across all
// handles it issued, for test assertions about pending-ring drain-on-stop behavior.
func (s *Synthetic) ReleasedCount() int64 { return s.released.Load() }

var (
	_ Transport       = (*Synthetic)(nil)
	_ FailureNotifier = (*Synthetic)(nil)
)

// split is a small test/demo helper that chops a byte slice into chunks of at most n bytes,
// used to build Chunks that exercise partial-frame carry-over across arbitrary boundaries.
func split(b []byte, n int) [][]byte {
	if n <= 0 {
		return [][]byte{b}
	}
	var out [][]byte
	for len(b) > 0 {
		k := n
		if k > len(b) {
			k = len(b)
		}
		out = append(out, b[:k])
		b = b[k:]
	}
	return out
}

// Split chops encoded into chunks of at most n bytes. Exported so tests in other packages
// can drive an arbitrary chunking of a concatenated frame stream, per spec.md
// §8's "any chunking" wording for the parse round-trip property.
func Split(encoded []byte, n int) [][]byte { return split(encoded, n) }
