// Package cpu exposes the privileged RISC-V operations used by the kernel:
// installing a root page table in satp, invalidating translation caches,
// toggling supervisor interrupts and halting the hart.
package cpu

const (
	// SATPModeSv39 is the satp MODE field value that selects three-level
	// Sv39 translation.
	SATPModeSv39 = uint64(8)

	// satpModeShift is the bit position of the satp MODE field.
	satpModeShift = 60

	// sstatusSIE is the supervisor interrupt-enable bit in sstatus.
	sstatusSIE = uint64(1 << 1)
)

// SATP assembles a satp value that enables the given translation mode with
// ASID 0 and the supplied root page table page number.
func SATP(mode uint64, rootPPN uintptr) uint64 {
	return mode<<satpModeShift | uint64(rootPPN)&(1<<44-1)
}

// InterruptsEnabled returns true if supervisor interrupts are enabled.
func InterruptsEnabled() bool {
	return readSSTATUS()&sstatusSIE != 0
}
