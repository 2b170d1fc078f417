package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
	"unsafe"
)

// PageTable is a single 4 KiB table of 512 entries. Tables live in
// page-aligned physical frames since a parent entry and satp only store
// the frame number.
type PageTable [mm.EntriesPerTable]pageTableEntry

// Zero invalidates every entry in the table.
func (pt *PageTable) Zero() {
	kernel.Memset(uintptr(unsafe.Pointer(pt)), 0, mm.PageSize)
}

// Entry returns a pointer to the entry at the given index.
func (pt *PageTable) Entry(index uintptr) *pageTableEntry {
	return &pt[index]
}

// TableMemory provides access to the page table stored in a physical frame.
// Page tables are always reached through a TableMemory by frame number;
// address spaces never hold pointers into table storage.
type TableMemory interface {
	// Table returns the page table backed by frame.
	Table(frame mm.Frame) *PageTable
}

var (
	// tablePtrFn returns a pointer to the table stored at the supplied
	// physical address. It is used by tests to redirect DirectMemory to
	// regular Go memory. When compiling the kernel this function will be
	// automatically inlined.
	tablePtrFn = func(physAddr uintptr) unsafe.Pointer {
		return unsafe.Pointer(physAddr)
	}
)

// DirectMemory accesses page tables by dereferencing their physical
// address. It is only valid while physical memory is reachable at its own
// address: before paging is enabled, or through the kernel's identity
// mapping afterwards.
type DirectMemory struct{}

// Table implements TableMemory.
func (DirectMemory) Table(frame mm.Frame) *PageTable {
	return (*PageTable)(tablePtrFn(uintptr(frame.Address())))
}

// Arena is a TableMemory that keeps page tables in ordinary Go memory,
// indexed by the frame that would hold them. Tables are created zeroed on
// first access. Hosted builds and tests use it to run the paging code
// without real physical memory.
type Arena struct {
	tables map[mm.Frame]*PageTable
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{tables: make(map[mm.Frame]*PageTable)}
}

// Table implements TableMemory.
func (a *Arena) Table(frame mm.Frame) *PageTable {
	table, ok := a.tables[frame]
	if !ok {
		table = new(PageTable)
		a.tables[frame] = table
	}

	return table
}

// Len returns the number of frames that have backing storage.
func (a *Arena) Len() int {
	return len(a.tables)
}
