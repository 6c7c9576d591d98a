// ─────────────────────────────────────────────────────────────────────────────
// diag.go — zero-alloc cold-path diagnostics
//
// Purpose:
//   - Logs infrequent error/event paths without introducing heap pressure.
//   - Used only in cold paths: in this module, the demo binaries call it for
//     construction failures (config load, ring/dispatcher construction).
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - Writes directly to stderr, bypassing logrus/mdlog's formatting machinery.
//
// Never invoke on the parse/push/pop hot path — use mdlog there if logging is
// truly needed, or nowhere at all.
// ─────────────────────────────────────────────────────────────────────────────

package diag

import "os"

// DropError prints an error message with a zero-alloc concatenation strategy, adapted from
// the teacher's debug.DropError.
//
//go:nosplit
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		msg := prefix + ": " + err.Error() + "\n"
		printWarning(msg)
		return
	}
	printWarning(prefix + "\n")
}

// DropMessage prints a cold-path diagnostic message, adapted from the teacher's
// debug.DropMessage.
//
//go:nosplit
//go:inline
func DropMessage(prefix, message string) {
	printWarning(prefix + ": " + message + "\n")
}

func printWarning(msg string) {
	os.Stderr.WriteString(msg)
}
