package pmm

import (
	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/mm"
	"rvos/kernel/sync"
)

var (
	// the following functions are mocked by tests and are automatically
	// inlined by the compiler.
	interruptsEnabledFn = cpu.InterruptsEnabled
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts
)

// LockedAllocator serializes access to a frame allocator. Every call runs
// with supervisor interrupts disabled and the spinlock held, so a trap
// handler can never observe the wrapped allocator mid-update.
type LockedAllocator struct {
	lock  sync.Spinlock
	inner mm.FrameAllocator
}

// NewLockedAllocator wraps inner with scoped lock acquisition.
func NewLockedAllocator(inner mm.FrameAllocator) *LockedAllocator {
	return &LockedAllocator{inner: inner}
}

// AllocFrame implements mm.FrameAllocator.
func (l *LockedAllocator) AllocFrame() (mm.Frame, *kernel.Error) {
	restore := l.acquire()
	defer l.release(restore)

	return l.inner.AllocFrame()
}

// FreeFrame implements mm.FrameAllocator.
func (l *LockedAllocator) FreeFrame(frame mm.Frame) *kernel.Error {
	restore := l.acquire()
	defer l.release(restore)

	return l.inner.FreeFrame(frame)
}

// acquire disables interrupts and takes the lock. It returns whether
// interrupts were enabled on entry.
func (l *LockedAllocator) acquire() bool {
	enabled := interruptsEnabledFn()
	if enabled {
		disableInterruptsFn()
	}

	l.lock.Acquire()
	return enabled
}

// release drops the lock and restores the interrupt state saved by acquire.
func (l *LockedAllocator) release(interruptsWereEnabled bool) {
	l.lock.Release()
	if interruptsWereEnabled {
		enableInterruptsFn()
	}
}
