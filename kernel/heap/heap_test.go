package heap

import (
	"rvos/kernel"
	"rvos/kernel/mm"
	"rvos/kernel/mm/pmm"
	"testing"
)

func resetHeap(t *testing.T) {
	t.Helper()
	kernelHeap = region{}
	t.Cleanup(func() { kernelHeap = region{} })
}

func TestAllocBeforeInit(t *testing.T) {
	resetHeap(t)

	if _, err := Alloc(16, 8); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized; got %v", err)
	}
}

func TestInit(t *testing.T) {
	resetHeap(t)

	specs := []struct {
		start  mm.VirtAddr
		size   mm.Size
		expErr *kernel.Error
	}{
		{Start, 0, errInvalidRegion},
		{Start + 1, Size, errInvalidRegion},
		{Start, Size, nil},
	}

	for specIndex, spec := range specs {
		if err := Init(spec.start, spec.size); err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}
	}

	if used, capacity, allocations := Stats(); used != 0 || capacity != uintptr(Size) || allocations != 0 {
		t.Fatalf("unexpected stats after init: used %d, capacity %d, allocations %d", used, capacity, allocations)
	}
}

func TestAlloc(t *testing.T) {
	resetHeap(t)

	if err := Init(Start, 4*mm.Kb); err != nil {
		t.Fatal(err)
	}

	specs := []struct {
		size, align uintptr
		expAddr     uintptr
		expErr      *kernel.Error
	}{
		{3, 1, 0x8040_0000, nil},
		{8, 8, 0x8040_0008, nil},
		{16, 64, 0x8040_0040, nil},
		{1, 3, 0, errInvalidAlignment},
		{1, 0, 0, errInvalidAlignment},
		{4096, 1, 0, ErrOutOfMemory},
		{4096 - 0x50, 1, 0x8040_0050, nil},
		{1, 1, 0, ErrOutOfMemory},
		{0, 1, 0x8040_1000, nil},
	}

	for specIndex, spec := range specs {
		addr, err := Alloc(spec.size, spec.align)
		if err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
			continue
		}

		if err == nil && addr != spec.expAddr {
			t.Errorf("[spec %d] expected address 0x%x; got 0x%x", specIndex, spec.expAddr, addr)
		}
	}

	if used, capacity, allocations := Stats(); used != capacity || allocations != 5 {
		t.Fatalf("unexpected stats: used %d, capacity %d, allocations %d", used, capacity, allocations)
	}
}

type nonContiguousAllocator struct {
	next mm.Frame
}

func (a *nonContiguousAllocator) AllocFrame() (mm.Frame, *kernel.Error) {
	a.next += 2
	return a.next, nil
}

func (a *nonContiguousAllocator) FreeFrame(mm.Frame) *kernel.Error { return nil }

func TestInitFromFrames(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		resetHeap(t)

		alloc := pmm.NewBumpAllocator(0x8800_0000, 0x8810_0000)
		start, err := InitFromFrames(alloc, 16*mm.Kb)
		if err != nil {
			t.Fatal(err)
		}

		if start != 0x8800_0000 {
			t.Fatalf("expected heap to start at 0x88000000; got 0x%x", start)
		}

		if alloc.AllocCount() != 4 {
			t.Fatalf("expected 4 frames to be requested; got %d", alloc.AllocCount())
		}

		if addr, err := Alloc(1, 1); err != nil || addr != 0x8800_0000 {
			t.Fatalf("expected first allocation at the heap start; got 0x%x, %v", addr, err)
		}

		if _, capacity, _ := Stats(); capacity != 16*1024 {
			t.Fatalf("expected capacity of 16 KiB; got %d", capacity)
		}
	})

	t.Run("out of frames", func(t *testing.T) {
		resetHeap(t)

		alloc := pmm.NewBumpAllocator(0x8800_0000, 0x8800_2000)
		if _, err := InitFromFrames(alloc, 16*mm.Kb); err != pmm.ErrOutOfMemory {
			t.Fatalf("expected ErrOutOfMemory; got %v", err)
		}
	})

	t.Run("non contiguous frames", func(t *testing.T) {
		resetHeap(t)

		if _, err := InitFromFrames(&nonContiguousAllocator{}, 2*mm.Kb*4); err != errNonContiguous {
			t.Fatalf("expected errNonContiguous; got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		resetHeap(t)

		if _, err := InitFromFrames(&nonContiguousAllocator{}, 0); err != errInvalidRegion {
			t.Fatalf("expected errInvalidRegion; got %v", err)
		}
	})
}
