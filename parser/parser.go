// ════════════════════════════════════════════════════════════════════════════════════════════════
// INCREMENTAL MESSAGE PARSER — BYTE STREAM → Message WITH PARTIAL CARRY-OVER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Turns opaque transport byte buffers into well-formed core.Message frames
//
// Grounded in original_source/src/ingestion.cpp's MessageParser::parse_bytes: prepend any
// carried-over partial bytes from the previous call, decode complete 20-byte frames in a
// loop, stamp each with its own receive timestamp (not one timestamp per socket read — see
// the rationale in spec.md §4.3), push to the target ring, and carry any trailing partial
// frame forward. Unlike the C++ original, this parser's partial buffer is bounded at 64 KiB
// and resynchronizes to the next frame boundary on overflow instead of growing unbounded.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package parser

import (
	"sync/atomic"

	"mdfh/clock"
	"mdfh/core"
	"mdfh/spscring"
	"mdfh/stats"
)

// PartialCapacity is the fixed size of the carry-over buffer (spec.md §3 PartialBuffer).
const PartialCapacity = 65536

// Parser decodes a stream of opaque byte buffers into core.Message frames, carrying a
// trailing partial frame across calls. Not safe for concurrent use — one Parser belongs to
// exactly one feed worker (or the single-feed ingestion client), matching the single
// transport-reader-thread-per-feed model in spec.md §5.
type Parser struct {
	partial     [PartialCapacity]byte
	partialSize int

	overflows atomic.Uint64
}

// New constructs a Parser with its partial buffer preallocated and empty. No further
// allocation occurs in Parse/ParseZeroCopy.
func New() *Parser { return &Parser{} }

// Overflows returns the count of PartialOverflow events (spec.md §7) this parser has
// observed: a degenerate case where more than PartialCapacity bytes of partial data would
// accumulate before a frame boundary is found.
func (p *Parser) Overflows() uint64 { return p.overflows.Load() }

// Parse decodes as many complete 20-byte frames as are available from p's carried partial
// bytes plus data, pushing each as a core.Slot{Message, rxTS} into ring and updating st
// accordingly: RecordReceived on a successful push, RecordDropped when ring reports full.
// Any trailing incomplete frame (< 20 bytes) is copied into the partial buffer for the next
// call. data is fully consumed by the end of this call — Parse does not retain a reference
// to it beyond the call (see ParseZeroCopy for the zero-copy contract's distinction).
func (p *Parser) Parse(data []byte, ring *spscring.Ring, st *stats.Statistics) {
	p.parse(data, ring, st)
}

// ParseZeroCopy has identical observable semantics to Parse. The distinction is a contract
// with the caller, not an implementation difference: the transport guarantees data outlives
// this call (spec.md §4.3 "Zero-copy variant"), so a caller may pass a buffer it intends to
// release only after Parse/ParseZeroCopy returns. Because this parser always copies out of
// data into its own partial buffer or directly into a core.Slot before returning, sharing
// the implementation introduces no allocation and preserves that contract.
func (p *Parser) ParseZeroCopy(data []byte, ring *spscring.Ring, st *stats.Statistics) {
	p.parse(data, ring, st)
}

func (p *Parser) parse(data []byte, ring *spscring.Ring, st *stats.Statistics) {
	combined := p.partialSize + len(data)
	total := combined
	overflowed := false
	if combined > PartialCapacity {
		// PartialOverflow (spec.md §7): only the excess beyond PartialCapacity is discarded,
		// not the whole delivery — truncate to the bound and keep decoding every complete
		// frame that fits within it below. Because the bytes past the cut are gone, the
		// short tail left before the cut is dropped too, so the next call starts from an
		// empty partial buffer on a fresh frame boundary.
		p.overflows.Add(1)
		total = PartialCapacity
		overflowed = true
	}

	copy(p.partial[p.partialSize:total], data[:total-p.partialSize])
	offset := 0

	for total-offset >= core.MessageSize {
		msg := core.Decode(p.partial[offset : offset+core.MessageSize])
		rxTS := clock.NowNanos()
		slot := core.Slot{Raw: msg, RxTS: rxTS}
		if ring.TryPush(slot) {
			st.RecordReceived()
		} else {
			st.RecordDropped()
		}
		offset += core.MessageSize
	}

	remaining := total - offset
	if overflowed {
		remaining = 0
	}
	if remaining > 0 {
		copy(p.partial[0:remaining], p.partial[offset:total])
	}
	p.partialSize = remaining
}
