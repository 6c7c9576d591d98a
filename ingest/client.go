// ════════════════════════════════════════════════════════════════════════════════════════════════
// INGESTION CLIENT — SINGLE-FEED BINDING OF TRANSPORT, PARSER, RING, AND STATISTICS
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: The single-feed entry point (spec.md §4.9); the dispatcher/feed package covers
// the multi-feed case
//
// Grounded in spec.md §4.9's lifecycle surface: initialize/connect/disconnect are lifecycle
// passthroughs to the transport; start registers the transport callback, which drives the
// parser and, for zero-copy transports, enqueues handles into the pending ring; stop halts
// the transport, then drains the pending ring, releasing every outstanding handle
// (spec.md §5's shutdown order).
// ════════════════════════════════════════════════════════════════════════════════════════════════

package ingest

import (
	"mdfh/parser"
	"mdfh/pendingring"
	"mdfh/spscring"
	"mdfh/stats"
	"mdfh/transport"
)

// Client binds one transport to a parser, an SPSC ring, statistics, and a pending-packet
// ring for zero-copy handle release.
type Client struct {
	transport transport.Transport
	parser    *parser.Parser
	pending   *pendingring.Ring

	ring *spscring.Ring
	st   *stats.Statistics
}

// New constructs a Client around tr. The pending ring's release callback is tr.Release,
// matching spec.md §4.8.
func New(tr transport.Transport) *Client {
	c := &Client{transport: tr, parser: parser.New()}
	c.pending = pendingring.New(tr.Release)
	return c
}

// Initialize passes through to the transport's one-time setup.
func (c *Client) Initialize() error { return c.transport.Initialize() }

// Connect passes through to the transport's connection establishment.
func (c *Client) Connect() error { return c.transport.Connect() }

// Disconnect passes through to the transport's teardown. Safe to call after Stop.
func (c *Client) Disconnect() error { return c.transport.Disconnect() }

// Start registers the transport callback and begins delivering messages into ring, recording
// into st. ring and st are owned by the caller and must outlive the Client.
func (c *Client) Start(ring *spscring.Ring, st *stats.Statistics) error {
	c.ring = ring
	c.st = st
	return c.transport.Start(c.onPacket)
}

func (c *Client) onPacket(data []byte, rxTSNanos uint64, handle transport.PacketHandle) {
	c.st.RecordBytesReceived(uint64(len(data)))
	if handle != nil {
		c.parser.ParseZeroCopy(data, c.ring, c.st)
		c.pending.Push(handle)
		return
	}
	c.parser.Parse(data, c.ring, c.st)
}

// Stop halts the transport, then drains the pending ring, releasing every handle still
// outstanding (spec.md §4.9: "stops the transport, then drains the pending ring, releasing
// each handle").
func (c *Client) Stop() error {
	err := c.transport.Stop()
	c.pending.DrainAll()
	return err
}

// PendingSpills returns the count of zero-copy handles released immediately because the
// pending ring was full (spec.md §7 PendingRingFull).
func (c *Client) PendingSpills() uint64 { return c.pending.Spills() }

// ParserOverflows returns the count of PartialOverflow events the underlying parser has
// observed (spec.md §7 PartialOverflow).
func (c *Client) ParserOverflows() uint64 { return c.parser.Overflows() }
