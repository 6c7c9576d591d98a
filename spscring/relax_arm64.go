//go:build arm64 && !noasm

package spscring

// cpuRelax emits the arm64 YIELD instruction. Body lives in relax_arm64.s.
//
//go:nosplit
func cpuRelax()
