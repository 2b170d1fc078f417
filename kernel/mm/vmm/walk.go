package vmm

import "rvos/kernel/mm"

// pageTableWalker is a function that can be passed to the walk method. The
// function receives the current page level and page table entry as its
// arguments. If the function returns false, then the page walk is aborted.
type pageTableWalker func(level uint8, pte *pageTableEntry) bool

// walk performs a page table walk for the given virtual address starting at
// the root table (level 2) and ending at the leaf table (level 0). It calls
// walkFn with the entry that corresponds to each level. After walkFn returns
// true for a level above 0, the walk descends into the table referenced by
// that entry, so walkFn must only approve valid branch entries (or install
// one before returning).
func walk(tables TableMemory, root mm.Frame, virtAddr mm.VirtAddr, walkFn pageTableWalker) {
	tableFrame := root
	for level := uint8(mm.PageLevels - 1); ; level-- {
		pte := tables.Table(tableFrame).Entry(virtAddr.VPN(level))
		if !walkFn(level, pte) || level == 0 {
			return
		}

		tableFrame = pte.Frame()
	}
}
