// Package vmm implements Sv39 virtual memory: page table entries, table
// walks, page mapping and the address spaces built from them.
package vmm

import (
	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm/pmm"
)

var (
	// The following functions are used by tests to mock the privileged
	// CPU operations.
	flushTLBEntryFn = cpu.FlushTLBEntry
	flushTLBFn      = cpu.FlushTLB
	writeSATPFn     = cpu.WriteSATP
)

// ActiveAddressSpace returns the address space that was activated last, or
// nil if paging has not been enabled.
func ActiveAddressSpace() *AddressSpace {
	return activeSpace
}

// Init builds the kernel address space using frames from mgr, enables
// paging with it and installs the page fault handlers.
func Init(mgr *pmm.Manager, tables TableMemory) (*AddressSpace, *kernel.Error) {
	kernelSpace, err := NewKernelAddressSpace(tables, mgr.FrameAllocator())
	if err != nil {
		return nil, err
	}

	kernelSpace.PrintLayout(kfmt.GetOutputSink())
	kernelSpace.Activate()
	installFaultHandlers()

	allocated, remaining := mgr.Stats()
	kfmt.Printf("[vmm] paging enabled; frames used: %d, free: %d\n", allocated, remaining)

	return kernelSpace, nil
}
