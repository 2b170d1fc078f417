package vmm

import (
	"rvos/kernel/mm"
	"testing"
)

func TestPageTableEntryFlags(t *testing.T) {
	var (
		pte   pageTableEntry
		flag1 = FlagValid
		flag2 = FlagWrite
	)

	if pte.HasAnyFlag(flag1 | flag2) {
		t.Fatalf("expected HasAnyFlags to return false")
	}

	pte.SetFlags(flag1 | flag2)

	if !pte.HasAnyFlag(flag1 | flag2) {
		t.Fatalf("expected HasAnyFlags to return true")
	}

	if !pte.HasFlags(flag1 | flag2) {
		t.Fatalf("expected HasFlags to return true")
	}

	pte.ClearFlags(flag1)

	if !pte.HasAnyFlag(flag1 | flag2) {
		t.Fatalf("expected HasAnyFlags to return true")
	}

	if pte.HasFlags(flag1 | flag2) {
		t.Fatalf("expected HasFlags to return false")
	}

	pte.ClearFlags(flag1 | flag2)

	if pte.HasAnyFlag(flag1 | flag2) {
		t.Fatalf("expected HasAnyFlags to return false")
	}

	if pte.HasFlags(flag1 | flag2) {
		t.Fatalf("expected HasFlags to return false")
	}
}

func TestPageTableEntryBitLayout(t *testing.T) {
	specs := []struct {
		flag PageTableEntryFlag
		bit  uint
	}{
		{FlagValid, 0},
		{FlagRead, 1},
		{FlagWrite, 2},
		{FlagExecute, 3},
		{FlagUser, 4},
		{FlagGlobal, 5},
		{FlagAccessed, 6},
		{FlagDirty, 7},
	}

	for specIndex, spec := range specs {
		if exp := PageTableEntryFlag(1) << spec.bit; spec.flag != exp {
			t.Errorf("[spec %d] expected flag value 0x%x; got 0x%x", specIndex, exp, spec.flag)
		}
	}
}

func TestPageTableEntryFrameEncoding(t *testing.T) {
	var (
		pte   pageTableEntry
		frame = mm.FrameFromAddress(0x8123_4000)
	)

	pte.Set(frame, FlagValid|FlagRead|FlagWrite)

	if exp := pageTableEntry(0x81234<<10 | 0x7); pte != exp {
		t.Fatalf("expected encoded entry 0x%x; got 0x%x", exp, pte)
	}

	if got := pte.Frame(); got != frame {
		t.Fatalf("expected pte.Frame() to return %v; got %v", frame, got)
	}

	if got := pte.Address(); got != 0x8123_4000 {
		t.Fatalf("expected pte.Address() to return 0x81234000; got 0x%x", got)
	}

	if got := pte.Flags(); got != FlagValid|FlagRead|FlagWrite {
		t.Fatalf("expected flags V|R|W; got 0x%x", got)
	}

	// Replacing the frame keeps the flags
	pte.SetFrame(mm.Frame(1))
	if pte.PPN() != 1 || !pte.HasFlags(FlagValid|FlagRead|FlagWrite) {
		t.Fatalf("unexpected entry after SetFrame: 0x%x", pte)
	}

	// Set discards the previous contents
	pte.Set(mm.Frame(2), FlagValid)
	if pte != pageTableEntry(2<<10|1) {
		t.Fatalf("unexpected entry after Set: 0x%x", pte)
	}

	pte.Clear()
	if pte.IsValid() {
		t.Fatal("expected cleared entry to be invalid")
	}
}

func TestPageTableEntryKind(t *testing.T) {
	specs := []struct {
		flags   PageTableEntryFlag
		valid   bool
		isLeaf  bool
		comment string
	}{
		{0, false, false, "invalid"},
		{FlagValid, true, false, "branch"},
		{FlagValid | FlagRead, true, true, "read-only leaf"},
		{FlagValid | FlagRead | FlagExecute, true, true, "code leaf"},
		{FlagValid | FlagExecute, true, true, "execute-only leaf"},
		{FlagValid | FlagGlobal | FlagAccessed, true, false, "branch with status bits"},
	}

	for specIndex, spec := range specs {
		var pte pageTableEntry
		pte.SetFlags(spec.flags)

		if got := pte.IsValid(); got != spec.valid {
			t.Errorf("[spec %d] %s: expected IsValid() to return %t; got %t", specIndex, spec.comment, spec.valid, got)
		}

		if got := pte.IsLeaf(); got != spec.isLeaf {
			t.Errorf("[spec %d] %s: expected IsLeaf() to return %t; got %t", specIndex, spec.comment, spec.isLeaf, got)
		}
	}
}
