package vmm

import (
	"io"
	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
)

var (
	// activeSpace is the address space most recently installed in satp.
	activeSpace *AddressSpace

	// The following functions are used by tests to mock calls to Map and
	// Unmap from the region helpers.
	mapFn   = Map
	unmapFn = Unmap

	errInvalidRegion      = &kernel.Error{Module: "vmm", Message: "region must be page-aligned and non-empty"}
	errRegionSizeMismatch = &kernel.Error{Module: "vmm", Message: "region size does not match the mapped area"}
)

// AddressSpace owns a page table hierarchy and the catalog of regions that
// were mapped into it through the region helpers.
type AddressSpace struct {
	tables TableMemory
	root   mm.Frame
	areas  []MemoryArea
}

// NewAddressSpace allocates and zeroes a root table and returns an address
// space with an empty catalog.
func NewAddressSpace(tables TableMemory, alloc mm.FrameAllocator) (*AddressSpace, *kernel.Error) {
	root, err := alloc.AllocFrame()
	if err != nil {
		return nil, err
	}

	tables.Table(root).Zero()

	return &AddressSpace{tables: tables, root: root}, nil
}

// Root returns the frame holding the root page table.
func (as *AddressSpace) Root() mm.Frame {
	return as.root
}

// RootAddress returns the physical address of the root page table.
func (as *AddressSpace) RootAddress() mm.PhysAddr {
	return as.root.Address()
}

// Areas returns the regions mapped through MapRegion and MapRegionIdentity
// in insertion order.
func (as *AddressSpace) Areas() []MemoryArea {
	return as.areas
}

// Map installs a single page mapping. Mappings created this way are not
// recorded in the area catalog.
func (as *AddressSpace) Map(page mm.Page, frame mm.Frame, flags PageTableEntryFlag, alloc mm.FrameAllocator) *kernel.Error {
	return mapFn(as.tables, as.root, page, frame, flags, alloc)
}

// Unmap removes a single page mapping and returns the frame it pointed to.
func (as *AddressSpace) Unmap(page mm.Page) (mm.Frame, *kernel.Error) {
	return unmapFn(as.tables, as.root, page)
}

// Translate returns the physical address mapped to virtAddr.
func (as *AddressSpace) Translate(virtAddr mm.VirtAddr) (mm.PhysAddr, *kernel.Error) {
	return Translate(as.tables, as.root, virtAddr)
}

// IsMapped returns true if virtAddr translates to a physical address.
func (as *AddressSpace) IsMapped(virtAddr mm.VirtAddr) bool {
	_, err := as.Translate(virtAddr)
	return err == nil
}

// FindArea returns the cataloged area that contains virtAddr.
func (as *AddressSpace) FindArea(virtAddr mm.VirtAddr) (MemoryArea, bool) {
	for _, area := range as.areas {
		if area.Contains(virtAddr) {
			return area, true
		}
	}

	return MemoryArea{}, false
}

// ValidateRange checks that every page overlapping [start, start+length)
// is mapped. It returns ErrInvalidMapping for the first hole.
func (as *AddressSpace) ValidateRange(start mm.VirtAddr, length uintptr) *kernel.Error {
	if length == 0 {
		return nil
	}

	first := mm.PageFromAddress(start)
	last := mm.PageFromAddress(start + mm.VirtAddr(length-1))
	for page := first; page <= last; page++ {
		if !as.IsMapped(page.Address()) {
			return ErrInvalidMapping
		}
	}

	return nil
}

// MapRegion backs size bytes starting at the page-aligned address start
// with freshly allocated frames and records the region in the catalog.
// The region is only recorded once every page has been mapped; pages
// mapped before a failure stay in place.
func (as *AddressSpace) MapRegion(start mm.VirtAddr, size uintptr, kind AreaKind, alloc mm.FrameAllocator) *kernel.Error {
	return as.mapRegion(start, size, kind, alloc, func(mm.Page) (mm.Frame, *kernel.Error) {
		return alloc.AllocFrame()
	})
}

// MapRegionIdentity maps size bytes starting at physStart so that every
// virtual address equals its physical address, and records the region in
// the catalog. Only page table frames are allocated.
func (as *AddressSpace) MapRegionIdentity(physStart mm.PhysAddr, size uintptr, kind AreaKind, alloc mm.FrameAllocator) *kernel.Error {
	return as.mapRegion(mm.VirtAddr(physStart), size, kind, alloc, func(page mm.Page) (mm.Frame, *kernel.Error) {
		return mm.Frame(page), nil
	})
}

func (as *AddressSpace) mapRegion(start mm.VirtAddr, size uintptr, kind AreaKind, alloc mm.FrameAllocator, frameFn func(mm.Page) (mm.Frame, *kernel.Error)) *kernel.Error {
	if !validRegion(start, size) {
		return errInvalidRegion
	}

	var (
		flags     = kind.DefaultFlags()
		pageCount = mm.PageCount(size)
		firstPage = mm.PageFromAddress(start)
	)

	for page := firstPage; page < firstPage+mm.Page(pageCount); page++ {
		frame, err := frameFn(page)
		if err != nil {
			return err
		}

		if err = mapFn(as.tables, as.root, page, frame, flags, alloc); err != nil {
			return err
		}
	}

	as.areas = append(as.areas, MemoryArea{
		Start: start,
		End:   start + mm.VirtAddr(pageCount<<mm.PageShift),
		Flags: flags,
		Kind:  kind,
	})

	return nil
}

// validRegion reports whether [start, start+size) is non-empty, starts on a
// page boundary and, once rounded up to whole pages, ends below the top of
// the address space.
func validRegion(start mm.VirtAddr, size uintptr) bool {
	if size == 0 || size > ^uintptr(0)-mm.PageSize+1 || start.PageOffset() != 0 {
		return false
	}

	return mm.PageCount(size)<<mm.PageShift <= ^uintptr(0)-uintptr(start)
}

// UnmapRegion removes the mappings for size bytes starting at start and
// drops the cataloged area that begins at start. Regions are removed as a
// whole: if an area starts at start its page-rounded size must equal size.
// The frames backing the region are not released.
func (as *AddressSpace) UnmapRegion(start mm.VirtAddr, size uintptr) *kernel.Error {
	if !validRegion(start, size) {
		return errInvalidRegion
	}

	pageCount := mm.PageCount(size)
	for _, area := range as.areas {
		if area.Start == start && area.PageCount() != pageCount {
			return errRegionSizeMismatch
		}
	}

	firstPage := mm.PageFromAddress(start)
	for page := firstPage; page < firstPage+mm.Page(pageCount); page++ {
		if _, err := unmapFn(as.tables, as.root, page); err != nil {
			return err
		}
	}

	kept := as.areas[:0]
	for _, area := range as.areas {
		if area.Start != start {
			kept = append(kept, area)
		}
	}
	as.areas = kept

	return nil
}

// Activate installs the address space in satp using Sv39 mode and flushes
// the whole TLB.
func (as *AddressSpace) Activate() {
	writeSATPFn(cpu.SATP(cpu.SATPModeSv39, uintptr(as.root)))
	flushTLBFn()
	activeSpace = as

	kfmt.Printf("[vmm] activated address space (root table: 0x%x)\n", uintptr(as.RootAddress()))
}

// PrintLayout writes the root table address and the area catalog to w.
func (as *AddressSpace) PrintLayout(w io.Writer) {
	kfmt.Fprintf(w, "[vmm] address space root: 0x%x, areas: %d\n", uintptr(as.RootAddress()), len(as.areas))
	for _, area := range as.areas {
		kfmt.Fprintf(w, "[vmm]   0x%16x - 0x%16x %s (%d pages, flags 0x%x)\n",
			uintptr(area.Start),
			uintptr(area.End),
			area.Kind.String(),
			area.PageCount(),
			uint64(area.Flags),
		)
	}
}
