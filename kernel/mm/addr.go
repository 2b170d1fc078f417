package mm

// VirtAddr is a virtual address. No validity is enforced; decomposition is
// defined for every value.
type VirtAddr uintptr

// PhysAddr is a physical address.
type PhysAddr uintptr

// PageOffset returns bits 0-11 of the address.
func (va VirtAddr) PageOffset() uintptr {
	return uintptr(va) & (PageSize - 1)
}

// VPN returns the 9-bit table index that the address selects at the given
// level. Level 0 is the leaf level (bits 12-20), level 1 covers bits 21-29
// and level 2, the root, covers bits 30-38.
func (va VirtAddr) VPN(level uint8) uintptr {
	return (uintptr(va) >> LevelShift(level)) & (EntriesPerTable - 1)
}

// VPN0 returns the level 0 table index (bits 12-20).
func (va VirtAddr) VPN0() uintptr { return va.VPN(0) }

// VPN1 returns the level 1 table index (bits 21-29).
func (va VirtAddr) VPN1() uintptr { return va.VPN(1) }

// VPN2 returns the level 2 table index (bits 30-38).
func (va VirtAddr) VPN2() uintptr { return va.VPN(2) }

// LevelShift returns the position of the lowest address bit indexed at the
// given level. A leaf installed at that level maps 1 << LevelShift(level)
// bytes: 4 KiB, 2 MiB and 1 GiB for levels 0, 1 and 2.
func LevelShift(level uint8) uintptr {
	return PageShift + uintptr(level)*PageLevelBits
}

// RoundDown rounds addr down to the nearest page boundary.
func RoundDown(addr uintptr) uintptr {
	return addr &^ (PageSize - 1)
}

// RoundUp rounds addr up to the nearest page boundary.
func RoundUp(addr uintptr) uintptr {
	return (addr + PageSize - 1) &^ (PageSize - 1)
}

// PageCount returns the number of pages needed to hold size bytes.
func PageCount(size uintptr) uintptr {
	return (size + PageSize - 1) >> PageShift
}
