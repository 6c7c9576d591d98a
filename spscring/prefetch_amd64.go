//go:build amd64 && !noasm

package spscring

import "mdfh/core"

// prefetch issues a PREFETCHT0 hint for the cache line containing s. Body lives in
// prefetch_amd64.s; this file only declares the Go-visible signature.
//
//go:nosplit
func prefetch(s *core.Slot)
