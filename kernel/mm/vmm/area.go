package vmm

import "rvos/kernel/mm"

// AreaKind classifies a memory area and selects the permissions its pages
// are mapped with.
type AreaKind uint8

const (
	// AreaCode holds executable, read-only memory.
	AreaCode AreaKind = iota

	// AreaData holds read/write memory.
	AreaData

	// AreaStack holds a read/write stack.
	AreaStack

	// AreaHeap holds read/write heap memory.
	AreaHeap

	// AreaShared holds read/write memory shared between address spaces.
	AreaShared
)

// String implements fmt.Stringer for AreaKind.
func (k AreaKind) String() string {
	switch k {
	case AreaCode:
		return "code"
	case AreaData:
		return "data"
	case AreaStack:
		return "stack"
	case AreaHeap:
		return "heap"
	case AreaShared:
		return "shared"
	default:
		return "unknown"
	}
}

// DefaultFlags returns the page table entry flags used for pages of this
// kind. None of the kinds are user-accessible.
func (k AreaKind) DefaultFlags() PageTableEntryFlag {
	if k == AreaCode {
		return FlagRead | FlagExecute
	}

	return FlagRead | FlagWrite
}

// MemoryArea describes a page-aligned virtual range [Start, End) that has
// been mapped into an address space.
type MemoryArea struct {
	Start mm.VirtAddr
	End   mm.VirtAddr
	Flags PageTableEntryFlag
	Kind  AreaKind
}

// Size returns the length of the area in bytes.
func (a MemoryArea) Size() uintptr {
	return uintptr(a.End - a.Start)
}

// PageCount returns the number of pages covered by the area.
func (a MemoryArea) PageCount() uintptr {
	return a.Size() >> mm.PageShift
}

// Contains returns true if virtAddr lies within the area.
func (a MemoryArea) Contains(virtAddr mm.VirtAddr) bool {
	return virtAddr >= a.Start && virtAddr < a.End
}
