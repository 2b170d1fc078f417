package kmain

import (
	"rvos/kernel"
	_ "rvos/kernel/device/uart" // registers the console driver
	"rvos/kernel/hal"
	"rvos/kernel/heap"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
	"rvos/kernel/mm/pmm"
	"rvos/kernel/mm/vmm"
)

var (
	// The following functions are mocked by tests.
	detectHardwareFn = hal.DetectHardware
	pmmInitFn        = pmm.Init
	heapInitFn       = heap.InitFromFrames
	vmmInitFn        = vmm.Init
	panicFn          = kfmt.Panic

	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
)

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. It is invoked by the boot assembly after the stack
// and bss have been set up and receives the physical address where the
// kernel image ends.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(kernelEnd uintptr) {
	detectHardwareFn()
	kfmt.Printf("[kmain] starting rvos\n")

	mgr := pmmInitFn(mm.PhysAddr(kernelEnd))

	// The heap is carved out of the frame allocator so that no frame it
	// hands out later can alias heap memory.
	var err *kernel.Error
	if _, err = heapInitFn(mgr.FrameAllocator(), heap.Size); err != nil {
		panicFn(err)
		return
	}

	// The kernel window is mapped R|X. On hardware, the first store to the
	// stack, bss or page tables after activation faults, so boot does not get
	// past vmm.Init until the kernel image is mapped as data.
	if _, err = vmmInitFn(mgr, vmm.DirectMemory{}); err != nil {
		panicFn(err)
		return
	}

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	panicFn(errKmainReturned)
}
