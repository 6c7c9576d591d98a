// ════════════════════════════════════════════════════════════════════════════════════════════════
// JSONREPORT — MACHINE-READABLE stats.Snapshot RENDERING
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: JSON encoding of the periodic/final report, for any consumer that wants a
// machine-readable alternative to stats.Snapshot.PeriodicLine/FinalReport
//
// Grounded in the teacher's own JSON codec dependency (sugawarayuuta/sonnet, used throughout
// syncharvester for JSON-RPC response decoding) rather than encoding/json, per spec.md §1a.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package jsonreport

import (
	"github.com/sugawarayuuta/sonnet"

	"mdfh/stats"
)

// Marshal renders snap as JSON using the teacher's sonnet codec.
func Marshal(snap stats.Snapshot) ([]byte, error) {
	return sonnet.Marshal(snap)
}

// Unmarshal parses data produced by Marshal back into a stats.Snapshot, mainly useful for
// tests and any tooling that replays recorded reports.
func Unmarshal(data []byte) (stats.Snapshot, error) {
	var snap stats.Snapshot
	err := sonnet.Unmarshal(data, &snap)
	return snap, err
}
