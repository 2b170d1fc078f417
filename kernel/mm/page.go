package mm

import (
	"math"
	"rvos/kernel"
)

// Frame describes a physical memory page index.
type Frame uintptr

const (
	// InvalidFrame is returned by page allocators when
	// they fail to reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint64)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address pointed to by this Frame.
func (f Frame) Address() PhysAddr {
	return PhysAddr(f << PageShift)
}

// FrameFromAddress returns a Frame that corresponds to
// the given physical address. This function can handle
// both page-aligned and not aligned addresses. in the
// latter case, the input address will be rounded down
// to the frame that contains it.
func FrameFromAddress(physAddr PhysAddr) Frame {
	return Frame(uintptr(physAddr) >> PageShift)
}

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address pointed to by this Page.
func (p Page) Address() VirtAddr {
	return VirtAddr(p << PageShift)
}

// PageFromAddress returns a Page that corresponds to the given virtual
// address. This function can handle both page-aligned and not aligned virtual
// addresses. in the latter case, the input address will be rounded down to the
// page that contains it.
func PageFromAddress(virtAddr VirtAddr) Page {
	return Page(uintptr(virtAddr) >> PageShift)
}

// FrameAllocator is implemented by physical frame allocators. The allocator
// is passed explicitly to every operation that may need memory.
type FrameAllocator interface {
	// AllocFrame reserves a free physical frame.
	AllocFrame() (Frame, *kernel.Error)

	// FreeFrame returns a frame to the allocator.
	FreeFrame(Frame) *kernel.Error
}
