package transport

import (
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"mdfh/clock"
)

// TCP is a minimal blocking net.Conn reader, adapted from the teacher's I/O loop
// (read_some → parse_bytes_zero_copy → loop) in original_source/src/ingestion.cpp's
// NetworkClient::run_io_loop. It never produces a PacketHandle — Go's net.Conn.Read always
// copies into a caller-owned buffer, so there is no borrowed-buffer lifetime to track and
// Release is a no-op. The pending-packet ring is therefore exercised only by Synthetic in
// zero-copy mode and by dedicated pendingring tests, matching spec.md §4.10's note.
type TCP struct {
	Host string
	Port uint16

	// ReadTimeout bounds each individual Read call so Stop() can unblock the reader
	// goroutine promptly instead of waiting on an indefinite blocking read.
	ReadTimeout time.Duration

	mu      sync.Mutex
	conn    net.Conn
	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
	failed  chan struct{}
}

// Initialize is a no-op; TCP has nothing to set up before Connect.
func (c *TCP) Initialize() error { return nil }

// Connect dials the configured host:port.
func (c *TCP) Connect() error {
	conn, err := net.Dial("tcp", net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port))))
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// Start launches the read loop on its own goroutine: read → cb(bytes, rxTS, nil) → repeat,
// until Stop is called or the connection returns EOF/an error.
func (c *TCP) Start(cb Callback) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return net.ErrClosed
	}

	c.running.Store(true)
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.failed = make(chan struct{})

	go func() {
		defer close(c.done)
		buf := make([]byte, 64*1024)
		timeout := c.ReadTimeout
		if timeout == 0 {
			timeout = 200 * time.Millisecond
		}
		for c.running.Load() {
			select {
			case <-c.stop:
				return
			default:
			}
			conn.SetReadDeadline(time.Now().Add(timeout))
			n, err := conn.Read(buf)
			if n > 0 {
				cb(buf[:n], clock.NowNanos(), nil)
			}
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue // deadline expired only to re-check c.stop, not a real error
				}
				// EOF or a real I/O error: matches the C++ loop's break-on-error. A race
				// against a concurrent Stop() is not a failure — only report Failed() when
				// the stop signal was not the cause.
				select {
				case <-c.stop:
				default:
					close(c.failed)
				}
				return
			}
		}
	}()
	return nil
}

// Failed returns a channel closed exactly once a mid-stream Read fails for a reason other
// than a graceful Stop() (spec.md §7 TransportIO). feed.Worker observes this via the
// transport.FailureNotifier interface to route the failure into Monitor.OnConnectionFailed
// and exit its forwarding loop.
func (c *TCP) Failed() <-chan struct{} { return c.failed }

// Stop halts the read loop and waits for its goroutine to exit.
func (c *TCP) Stop() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	close(c.stop)
	<-c.done
	return nil
}

// Disconnect closes the underlying connection. Safe to call after Stop.
func (c *TCP) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Release is a no-op: TCP never hands out a PacketHandle.
func (c *TCP) Release(PacketHandle) {}

var (
	_ Transport       = (*TCP)(nil)
	_ FailureNotifier = (*TCP)(nil)
)
