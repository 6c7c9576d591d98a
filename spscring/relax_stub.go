//go:build (!amd64 && !arm64) || noasm

package spscring

// cpuRelax is a no-op on platforms without a dedicated spin-wait hint instruction; the
// compiler is free to eliminate it entirely since it carries no side effects.
//
//go:nosplit
//go:inline
func cpuRelax() {}
