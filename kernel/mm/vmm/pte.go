package vmm

import "rvos/kernel/mm"

// PageTableEntryFlag describes a flag that can be applied to a page table entry.
type PageTableEntryFlag uint64

const (
	// FlagValid is set when the entry is in use. An entry without it is
	// ignored by the MMU regardless of its other bits.
	FlagValid PageTableEntryFlag = 1 << iota

	// FlagRead is set if the page can be read.
	FlagRead

	// FlagWrite is set if the page can be written to.
	FlagWrite

	// FlagExecute is set if instructions can be fetched from the page.
	FlagExecute

	// FlagUser is set if user-mode code can access this page.
	FlagUser

	// FlagGlobal marks a mapping that exists in every address space.
	FlagGlobal

	// FlagAccessed is set when the page has been accessed.
	FlagAccessed

	// FlagDirty is set when the page has been written to.
	FlagDirty
)

const (
	// flagMask selects the permission/status bits (0-7) of an entry.
	flagMask = PageTableEntryFlag(0xff)

	// leafFlags are the permission bits that turn a valid entry into a
	// leaf. A valid entry with none of them set points to the next table.
	leafFlags = FlagRead | FlagWrite | FlagExecute

	// ptePPNShift is the bit position of the physical page number.
	ptePPNShift = 10

	// ptePPNMask selects the 44-bit physical page number (bits 10-53).
	ptePPNMask = uint64(1<<44-1) << ptePPNShift
)

// pageTableEntry describes an Sv39 page table entry: bits 0-7 hold the
// flags and bits 10-53 the physical page number of either the next-level
// table (branch) or the mapped frame (leaf).
type pageTableEntry uint64

// IsValid returns true if the entry is in use.
func (pte pageTableEntry) IsValid() bool {
	return pte.HasFlags(FlagValid)
}

// IsLeaf returns true if the entry maps memory rather than pointing to a
// next-level table.
func (pte pageTableEntry) IsLeaf() bool {
	return pte.HasAnyFlag(leafFlags)
}

// HasFlags returns true if this entry has all the input flags set.
func (pte pageTableEntry) HasFlags(flags PageTableEntryFlag) bool {
	return (uint64(pte) & uint64(flags)) == uint64(flags)
}

// HasAnyFlag returns true if this entry has at least one of the input flags set.
func (pte pageTableEntry) HasAnyFlag(flags PageTableEntryFlag) bool {
	return (uint64(pte) & uint64(flags)) != 0
}

// Flags returns the permission/status bits of the entry.
func (pte pageTableEntry) Flags() PageTableEntryFlag {
	return PageTableEntryFlag(pte) & flagMask
}

// SetFlags sets the input list of flags to the page table entry.
func (pte *pageTableEntry) SetFlags(flags PageTableEntryFlag) {
	*pte = (pageTableEntry)(uint64(*pte) | uint64(flags&flagMask))
}

// ClearFlags unsets the input list of flags from the page table entry.
func (pte *pageTableEntry) ClearFlags(flags PageTableEntryFlag) {
	*pte = (pageTableEntry)(uint64(*pte) &^ uint64(flags&flagMask))
}

// PPN returns the physical page number stored in the entry.
func (pte pageTableEntry) PPN() uint64 {
	return (uint64(pte) & ptePPNMask) >> ptePPNShift
}

// Frame returns the physical frame that this page table entry points to.
func (pte pageTableEntry) Frame() mm.Frame {
	return mm.Frame(pte.PPN())
}

// Address returns the physical address that this page table entry points to.
func (pte pageTableEntry) Address() mm.PhysAddr {
	return pte.Frame().Address()
}

// SetFrame updates the page table entry to point to the given physical frame.
func (pte *pageTableEntry) SetFrame(frame mm.Frame) {
	*pte = (pageTableEntry)((uint64(*pte) &^ ptePPNMask) | (uint64(frame)<<ptePPNShift)&ptePPNMask)
}

// Set overwrites the entry with the given frame and flags.
func (pte *pageTableEntry) Set(frame mm.Frame, flags PageTableEntryFlag) {
	*pte = 0
	pte.SetFrame(frame)
	pte.SetFlags(flags)
}

// Clear reverts the entry to the invalid state.
func (pte *pageTableEntry) Clear() {
	*pte = 0
}
