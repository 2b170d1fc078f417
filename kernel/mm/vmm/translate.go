package vmm

import (
	"io"
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
)

// Translate returns the physical address that corresponds to the supplied
// virtual address or ErrInvalidMapping if the virtual address is not mapped.
// Leaves found at levels 2 and 1 are treated as 1 GiB and 2 MiB superpages.
func Translate(tables TableMemory, root mm.Frame, virtAddr mm.VirtAddr) (mm.PhysAddr, *kernel.Error) {
	var (
		physAddr mm.PhysAddr
		err      = ErrInvalidMapping
	)

	walk(tables, root, virtAddr, func(level uint8, pte *pageTableEntry) bool {
		if !pte.IsValid() {
			return false
		}

		if level == 0 || pte.IsLeaf() {
			offsetMask := uintptr(1)<<mm.LevelShift(level) - 1
			physAddr = pte.Address() + mm.PhysAddr(uintptr(virtAddr)&offsetMask)
			err = nil
			return false
		}

		return true
	})

	return physAddr, err
}

// DumpWalk writes the index decomposition of virtAddr and every entry
// visited while translating it to w.
func DumpWalk(w io.Writer, tables TableMemory, root mm.Frame, virtAddr mm.VirtAddr) {
	kfmt.Fprintf(w, "[vmm] walk 0x%x (root 0x%x): vpn2=%d vpn1=%d vpn0=%d offset=0x%x\n",
		uintptr(virtAddr),
		uintptr(root.Address()),
		virtAddr.VPN2(),
		virtAddr.VPN1(),
		virtAddr.VPN0(),
		virtAddr.PageOffset(),
	)

	walk(tables, root, virtAddr, func(level uint8, pte *pageTableEntry) bool {
		kfmt.Fprintf(w, "[vmm]   L%d[%d] = 0x%x", level, virtAddr.VPN(level), uint64(*pte))
		switch {
		case !pte.IsValid():
			kfmt.Fprintf(w, " (not mapped)\n")
			return false
		case pte.IsLeaf() || level == 0:
			kfmt.Fprintf(w, " -> 0x%x flags 0x%x\n", uintptr(pte.Address()), uint64(pte.Flags()))
			return false
		default:
			kfmt.Fprintf(w, " -> table 0x%x\n", uintptr(pte.Address()))
			return true
		}
	})
}
