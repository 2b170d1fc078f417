package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
)

var (
	// ErrAlreadyMapped is returned when mapping a page whose leaf entry is
	// already in use.
	ErrAlreadyMapped = &kernel.Error{Module: "vmm", Message: "page is already mapped"}

	// ErrInvalidMapping is returned when trying to lookup or remove a
	// virtual address that is not mapped.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	// errNoHugePageSupport is returned when a 4 KiB mapping would have to
	// descend through a superpage leaf.
	errNoHugePageSupport = &kernel.Error{Module: "vmm", Message: "huge pages are not supported"}
)

// Map establishes a mapping between a virtual page and a physical memory
// frame using the page table hierarchy rooted at root. Missing intermediate
// tables are allocated from alloc and zeroed before they are linked in.
// Attempting to map a page that is already mapped returns ErrAlreadyMapped.
//
// Tables allocated before a failure stay linked; Map does not roll back.
func Map(tables TableMemory, root mm.Frame, page mm.Page, frame mm.Frame, flags PageTableEntryFlag, alloc mm.FrameAllocator) *kernel.Error {
	var err *kernel.Error

	walk(tables, root, page.Address(), func(level uint8, pte *pageTableEntry) bool {
		// The leaf level is where the frame gets installed
		if level == 0 {
			if pte.IsValid() {
				err = ErrAlreadyMapped
				return false
			}

			pte.Set(frame, flags|FlagValid)
			flushTLBEntryFn(uintptr(page.Address()))
			return true
		}

		if pte.IsValid() {
			if pte.IsLeaf() {
				err = errNoHugePageSupport
				return false
			}

			return true
		}

		// Next table does not yet exist; allocate a zeroed frame for it
		// before linking it so the walk never sees stale entries.
		newTableFrame, allocErr := alloc.AllocFrame()
		if allocErr != nil {
			err = allocErr
			return false
		}

		tables.Table(newTableFrame).Zero()
		pte.Set(newTableFrame, FlagValid)
		return true
	})

	return err
}

// Unmap removes the mapping for page and returns the frame it pointed to.
// If the page is not mapped, Unmap returns ErrInvalidMapping and leaves the
// tables untouched. Intermediate tables are never reclaimed.
func Unmap(tables TableMemory, root mm.Frame, page mm.Page) (mm.Frame, *kernel.Error) {
	var (
		frame = mm.InvalidFrame
		err   *kernel.Error
	)

	walk(tables, root, page.Address(), func(level uint8, pte *pageTableEntry) bool {
		if !pte.IsValid() {
			err = ErrInvalidMapping
			return false
		}

		if level == 0 {
			frame = pte.Frame()
			pte.Clear()
			flushTLBEntryFn(uintptr(page.Address()))
			return true
		}

		if pte.IsLeaf() {
			err = errNoHugePageSupport
			return false
		}

		return true
	})

	return frame, err
}
