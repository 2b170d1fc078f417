package cpu

// EnableInterrupts enables supervisor interrupt handling (sets sstatus.SIE).
func EnableInterrupts()

// DisableInterrupts disables supervisor interrupt handling (clears sstatus.SIE).
func DisableInterrupts()

// Halt stops instruction execution.
func Halt()

// FlushTLBEntry invalidates the cached translations for a single virtual
// address (sfence.vma va, zero).
func FlushTLBEntry(virtAddr uintptr)

// FlushTLB invalidates every cached translation (sfence.vma zero, zero).
func FlushTLB()

// WriteSATP installs a new value in the satp register.
func WriteSATP(value uint64)

// ReadSATP returns the current value of the satp register.
func ReadSATP() uint64

func readSSTATUS() uint64
