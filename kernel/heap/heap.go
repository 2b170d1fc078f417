// Package heap sets up the kernel heap region and hands out memory from it.
package heap

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
	"rvos/kernel/sync"
)

const (
	// Start is the default address for a fixed heap region set up via Init.
	Start = mm.VirtAddr(0x8040_0000)

	// Size is the size of the kernel heap region.
	Size = 1 * mm.Mb
)

var (
	// ErrNotInitialized is returned by Alloc before the heap is set up.
	ErrNotInitialized = &kernel.Error{Module: "heap", Message: "heap not initialized"}

	// ErrOutOfMemory is returned when the heap region is exhausted.
	ErrOutOfMemory = &kernel.Error{Module: "heap", Message: "out of heap memory"}

	errInvalidRegion    = &kernel.Error{Module: "heap", Message: "heap region must be page-aligned and non-empty"}
	errNonContiguous    = &kernel.Error{Module: "heap", Message: "frames backing the heap are not contiguous"}
	errInvalidAlignment = &kernel.Error{Module: "heap", Message: "alignment must be a power of two"}
)

// region tracks the bounds of the heap and its allocation cursor.
type region struct {
	lock sync.Spinlock

	start, end, next uintptr
	allocations      uint64
}

var kernelHeap region

// Init sets up the heap over the fixed region [start, start+size). No
// frames are requested from the frame allocator.
func Init(start mm.VirtAddr, size mm.Size) *kernel.Error {
	if size == 0 || start.PageOffset() != 0 {
		return errInvalidRegion
	}

	kernelHeap.lock.Acquire()
	kernelHeap.start = uintptr(start)
	kernelHeap.end = uintptr(start) + uintptr(size)
	kernelHeap.next = kernelHeap.start
	kernelHeap.allocations = 0
	kernelHeap.lock.Release()

	kfmt.Printf("[heap] region: 0x%x - 0x%x (%d KiB)\n", kernelHeap.start, kernelHeap.end, uint64(size/mm.Kb))
	return nil
}

// InitFromFrames requests enough frames from alloc to hold size bytes and
// sets up the heap over them. The frames must be physically contiguous; the
// heap is addressed through the kernel's identity mapping.
func InitFromFrames(alloc mm.FrameAllocator, size mm.Size) (mm.PhysAddr, *kernel.Error) {
	pageCount := size.Pages()
	if pageCount == 0 {
		return 0, errInvalidRegion
	}

	first, err := alloc.AllocFrame()
	if err != nil {
		return 0, err
	}

	for i := uintptr(1); i < pageCount; i++ {
		frame, err := alloc.AllocFrame()
		if err != nil {
			return 0, err
		}

		if frame != first+mm.Frame(i) {
			return 0, errNonContiguous
		}
	}

	if err = Init(mm.VirtAddr(first.Address()), mm.Size(pageCount<<mm.PageShift)); err != nil {
		return 0, err
	}

	return first.Address(), nil
}

// Alloc reserves size bytes aligned to align (a power of two) and returns
// their address.
func Alloc(size, align uintptr) (uintptr, *kernel.Error) {
	if align == 0 || align&(align-1) != 0 {
		return 0, errInvalidAlignment
	}

	kernelHeap.lock.Acquire()
	defer kernelHeap.lock.Release()

	if kernelHeap.end == 0 {
		return 0, ErrNotInitialized
	}

	addr := (kernelHeap.next + align - 1) &^ (align - 1)
	if addr < kernelHeap.next || addr > kernelHeap.end || size > kernelHeap.end-addr {
		return 0, ErrOutOfMemory
	}

	kernelHeap.next = addr + size
	kernelHeap.allocations++
	return addr, nil
}

// Stats returns the number of bytes consumed, the heap capacity and the
// number of successful allocations.
func Stats() (used, capacity uintptr, allocations uint64) {
	kernelHeap.lock.Acquire()
	defer kernelHeap.lock.Release()

	return kernelHeap.next - kernelHeap.start, kernelHeap.end - kernelHeap.start, kernelHeap.allocations
}
