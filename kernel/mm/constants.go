package mm

const (
	// PointerShift is equal to log2(unsafe.Sizeof(uintptr)). The pointer
	// size for this architecture is defined as (1 << PointerShift).
	PointerShift = uintptr(3)

	// PageShift is equal to log2(PageSize). This constant is used when
	// we need to convert a physical address to a page number (shift right by PageShift)
	// and vice-versa.
	PageShift = uintptr(12)

	// PageSize defines the system's page size in bytes.
	PageSize = uintptr(1 << PageShift)

	// PageLevels is the number of translation levels used by Sv39.
	PageLevels = 3

	// PageLevelBits is the number of virtual address bits consumed by the
	// table index at each level (512 entries per table).
	PageLevelBits = uintptr(9)

	// EntriesPerTable is the number of entries in a page table.
	EntriesPerTable = 1 << PageLevelBits

	// VirtAddrBits is the width of an Sv39 virtual address.
	VirtAddrBits = PageShift + PageLevels*PageLevelBits
)
