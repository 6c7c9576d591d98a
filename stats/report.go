package stats

import "fmt"

// PeriodicLine renders the per-second human-readable report: elapsed time, cumulative
// received/processed/dropped, and derived rates (spec.md §4.4, §6).
func (snap Snapshot) PeriodicLine() string {
	elapsed := snap.ElapsedSec
	if elapsed <= 0 {
		elapsed = 1e-9
	}
	msgRate := float64(snap.Received) / elapsed
	mbRate := float64(snap.BytesReceived) / elapsed / 1024 / 1024
	return fmt.Sprintf(
		"T+%6.1fs | Recv: %8d msgs | Proc: %8d msgs | Drop: %6d | Rate: %8.1f msg/s | BW: %6.2f MB/s",
		elapsed, snap.Received, snap.Processed, snap.Dropped, msgRate, mbRate,
	)
}

// FinalReport renders the end-of-run summary: totals, elapsed seconds, derived rates, and
// the latency percentiles, mirroring the shape of
// original_source/src/ingestion.cpp's print_final_stats.
func (snap Snapshot) FinalReport() string {
	elapsed := snap.ElapsedSec
	if elapsed <= 0 {
		elapsed = 1e-9
	}
	msgRate := float64(snap.Received) / elapsed
	mbRate := float64(snap.BytesReceived) / elapsed / 1024 / 1024

	out := fmt.Sprintf("=== Final Statistics ===\n")
	out += fmt.Sprintf("Duration: %.2f seconds\n", elapsed)
	out += fmt.Sprintf("Messages received: %d\n", snap.Received)
	out += fmt.Sprintf("Messages processed: %d\n", snap.Processed)
	out += fmt.Sprintf("Messages dropped: %d\n", snap.Dropped)
	out += fmt.Sprintf("Sequence gaps: %d\n", snap.GapCount)
	out += fmt.Sprintf("Bytes received: %d (%.2f MB)\n", snap.BytesReceived, float64(snap.BytesReceived)/1024/1024)
	out += fmt.Sprintf("Average rate: %.1f msg/s\n", msgRate)
	out += fmt.Sprintf("Average bandwidth: %.2f MB/s\n", mbRate)
	if snap.Processed > 0 {
		out += "\nLatency percentiles (microseconds):\n"
		out += fmt.Sprintf("  50th: %s\n", percentileLabel(snap.P50))
		out += fmt.Sprintf("  90th: %s\n", percentileLabel(snap.P90))
		out += fmt.Sprintf("  95th: %s\n", percentileLabel(snap.P95))
		out += fmt.Sprintf("  99th: %s\n", percentileLabel(snap.P99))
		out += fmt.Sprintf("  99.9th: %s\n", percentileLabel(snap.P999))
	}
	return out
}

// percentileLabel renders a bucket value, flagging the overflow bucket per spec.md §4.4
// ("overflow percentiles report >= 1000 us").
func percentileLabel(bucket uint64) string {
	if bucket >= histogramBuckets-1 {
		return ">=1000us"
	}
	return fmt.Sprintf("%dus", bucket)
}
