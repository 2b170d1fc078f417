//go:build !riscv64

package cpu

// Hosted builds (tests, tooling) have no access to the privileged registers
// so the CSR state is emulated in memory.
var (
	satp    uint64
	sstatus uint64

	// tlbEntryFlushes and tlbFlushes count invalidation requests.
	tlbEntryFlushes, tlbFlushes uint64
)

// EnableInterrupts enables supervisor interrupt handling.
func EnableInterrupts() { sstatus |= sstatusSIE }

// DisableInterrupts disables supervisor interrupt handling.
func DisableInterrupts() { sstatus &^= sstatusSIE }

// Halt stops instruction execution.
func Halt() {
	DisableInterrupts()
	select {}
}

// FlushTLBEntry invalidates the cached translations for a single virtual
// address.
func FlushTLBEntry(_ uintptr) { tlbEntryFlushes++ }

// FlushTLB invalidates every cached translation.
func FlushTLB() { tlbFlushes++ }

// WriteSATP installs a new value in the satp register.
func WriteSATP(value uint64) { satp = value }

// ReadSATP returns the current value of the satp register.
func ReadSATP() uint64 { return satp }

func readSSTATUS() uint64 { return sstatus }
