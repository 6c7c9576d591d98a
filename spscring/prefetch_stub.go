//go:build !amd64 || noasm

package spscring

import "mdfh/core"

// prefetch is a no-op on architectures without a cheap software prefetch hint, or when asm is
// disabled. The ring's correctness never depends on prefetching — it is a latency hint only.
//
//go:nosplit
//go:inline
func prefetch(s *core.Slot) {}
