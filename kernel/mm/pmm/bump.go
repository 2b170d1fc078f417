package pmm

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
)

var (
	// ErrOutOfMemory is returned by frame allocators once every frame in
	// their range has been handed out.
	ErrOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of memory"}
)

// BumpAllocator implements a monotonic physical frame allocator.
//
// Frames are handed out in ascending order starting at the first page
// boundary after the kernel image. The allocator never tracks what a frame is
// used for and never reuses one: FreeFrame is accepted but has no effect, so
// once the cursor reaches the end of memory every further request fails with
// ErrOutOfMemory.
//
// BumpAllocator is not safe for concurrent use; see LockedAllocator.
type BumpAllocator struct {
	// nextFrame is the frame returned by the next AllocFrame call.
	nextFrame mm.Frame

	// startFrame and endFrame delimit the managed range [start, end).
	startFrame, endFrame mm.Frame
}

// NewBumpAllocator returns an allocator for the physical range that starts at
// the first page boundary at or after kernelEnd and ends at memoryEnd rounded
// down to a page boundary.
func NewBumpAllocator(kernelEnd, memoryEnd mm.PhysAddr) *BumpAllocator {
	startFrame := mm.FrameFromAddress(mm.PhysAddr(mm.RoundUp(uintptr(kernelEnd))))
	endFrame := mm.FrameFromAddress(memoryEnd)
	if endFrame < startFrame {
		endFrame = startFrame
	}

	return &BumpAllocator{
		nextFrame:  startFrame,
		startFrame: startFrame,
		endFrame:   endFrame,
	}
}

// AllocFrame returns the frame at the allocation cursor and advances it.
func (alloc *BumpAllocator) AllocFrame() (mm.Frame, *kernel.Error) {
	if alloc.nextFrame >= alloc.endFrame {
		return mm.InvalidFrame, ErrOutOfMemory
	}

	frame := alloc.nextFrame
	alloc.nextFrame++
	return frame, nil
}

// FreeFrame is a no-op; frames handed out by a BumpAllocator are never
// returned to the pool.
func (alloc *BumpAllocator) FreeFrame(_ mm.Frame) *kernel.Error {
	return nil
}

// AllocCount returns the number of frames handed out so far.
func (alloc *BumpAllocator) AllocCount() uint64 {
	return uint64(alloc.nextFrame - alloc.startFrame)
}

// Remaining returns the number of frames that can still be allocated.
func (alloc *BumpAllocator) Remaining() uint64 {
	return uint64(alloc.endFrame - alloc.nextFrame)
}

// PrintStats logs the managed physical range and its usage.
func (alloc *BumpAllocator) PrintStats() {
	kfmt.Printf("[pmm] frame allocator range: 0x%x - 0x%x\n",
		uintptr(alloc.startFrame.Address()),
		uintptr(alloc.endFrame.Address()),
	)
	kfmt.Printf("[pmm] allocated frames: %d, free frames: %d\n", alloc.AllocCount(), alloc.Remaining())
}
