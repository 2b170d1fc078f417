// Package pmm manages physical memory: it hands out page-sized frames from
// the RAM that follows the kernel image.
package pmm

import (
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
)

const (
	// MemoryStart is the physical address where RAM begins on the qemu
	// virt machine.
	MemoryStart = mm.PhysAddr(0x8000_0000)

	// MemorySize is the amount of RAM the kernel manages.
	MemorySize = 128 * mm.Mb

	// MemoryEnd is the exclusive upper bound of managed RAM.
	MemoryEnd = MemoryStart + mm.PhysAddr(MemorySize)
)

// Manager is the memory-management composition root. It is constructed once
// by the boot code and handed to the code that builds address spaces.
type Manager struct {
	frames *BumpAllocator
	alloc  mm.FrameAllocator
}

// NewManager creates a Manager whose frame allocator covers the physical
// range [kernelEnd, memoryEnd).
func NewManager(kernelEnd, memoryEnd mm.PhysAddr) *Manager {
	frames := NewBumpAllocator(kernelEnd, memoryEnd)
	return &Manager{
		frames: frames,
		alloc:  NewLockedAllocator(frames),
	}
}

// Init sets up physical memory management for a kernel image that ends at
// kernelEnd, using the fixed RAM upper bound.
func Init(kernelEnd mm.PhysAddr) *Manager {
	kfmt.Printf("[pmm] kernel end: 0x%x\n", uintptr(kernelEnd))
	kfmt.Printf("[pmm] memory range: 0x%x - 0x%x\n", uintptr(MemoryStart), uintptr(MemoryEnd))

	mgr := NewManager(kernelEnd, MemoryEnd)
	mgr.frames.PrintStats()
	return mgr
}

// FrameAllocator returns the allocator used for all frame requests. Calls
// through it are serialized against interrupts.
func (m *Manager) FrameAllocator() mm.FrameAllocator {
	return m.alloc
}

// Stats returns the number of allocated and remaining frames.
func (m *Manager) Stats() (allocated, remaining uint64) {
	return m.frames.AllocCount(), m.frames.Remaining()
}
