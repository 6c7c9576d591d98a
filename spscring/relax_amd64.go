//go:build amd64 && !noasm

package spscring

// cpuRelax emits the x86-64 PAUSE instruction, hinting to the core that this thread is in a
// spin-wait loop. Reduces power draw and SMT sibling contention versus a bare spin. Body lives
// in relax_amd64.s.
//
//go:nosplit
func cpuRelax()
