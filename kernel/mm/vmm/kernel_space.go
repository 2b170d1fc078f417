package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
)

const (
	// KernelBase is the physical (and virtual) address the kernel image
	// is loaded at.
	KernelBase = mm.PhysAddr(0x8000_0000)

	// KernelImageSize is the size of the identity-mapped kernel region.
	KernelImageSize = 16 * mm.Mb

	// UARTBase is the address of the memory-mapped console UART.
	UARTBase = mm.PhysAddr(0x1000_0000)
)

// NewKernelAddressSpace builds the kernel's address space: the kernel
// image region identity-mapped as code and the console UART page
// identity-mapped as data.
func NewKernelAddressSpace(tables TableMemory, alloc mm.FrameAllocator) (*AddressSpace, *kernel.Error) {
	as, err := NewAddressSpace(tables, alloc)
	if err != nil {
		return nil, err
	}

	if err = as.MapRegionIdentity(KernelBase, uintptr(KernelImageSize), AreaCode, alloc); err != nil {
		return nil, err
	}

	if err = as.MapRegionIdentity(UARTBase, mm.PageSize, AreaData, alloc); err != nil {
		return nil, err
	}

	return as, nil
}
