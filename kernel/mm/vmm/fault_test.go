package vmm

import (
	"bytes"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
	"rvos/kernel/trap"
	"strings"
	"testing"
)

func TestInstallFaultHandlers(t *testing.T) {
	defer func(origHandleException func(trap.Cause, trap.ExceptionHandler)) {
		handleExceptionFn = origHandleException
	}(handleExceptionFn)

	registered := make(map[trap.Cause]bool)
	handleExceptionFn = func(cause trap.Cause, handler trap.ExceptionHandler) {
		registered[cause] = handler != nil
	}

	installFaultHandlers()

	for _, cause := range []trap.Cause{trap.InstructionPageFault, trap.LoadPageFault, trap.StorePageFault} {
		if !registered[cause] {
			t.Errorf("expected a handler to be registered for %s", cause.String())
		}
	}

	if len(registered) != 3 {
		t.Errorf("expected exactly 3 handlers to be registered; got %d", len(registered))
	}
}

func TestPageFaultHandler(t *testing.T) {
	defer func(origPanic func(interface{}), origActive *AddressSpace) {
		panicFn = origPanic
		activeSpace = origActive
		kfmt.SetOutputSink(nil)
	}(panicFn, activeSpace)

	as, alloc := newTestSpace(t, 32)
	if err := as.MapRegionIdentity(0x8000_0000, mm.PageSize, AreaCode, alloc); err != nil {
		t.Fatal(err)
	}
	activeSpace = as

	var buf bytes.Buffer
	kfmt.SetOutputSink(&buf)

	specs := []struct {
		frame     trap.Frame
		expReason string
	}{
		{trap.Frame{Cause: trap.InstructionPageFault, Tval: 0x4000_0000, EPC: 0x4000_0000}, "instruction fetch"},
		{trap.Frame{Cause: trap.LoadPageFault, Tval: 0x8000_0010, EPC: 0x8000_0200}, "read from"},
		{trap.Frame{Cause: trap.StorePageFault, Tval: 0x8000_0010, EPC: 0x8000_0204}, "write to"},
	}

	for specIndex, spec := range specs {
		buf.Reset()

		var panicErr interface{}
		panicFn = func(e interface{}) { panicErr = e }

		pageFaultHandler(&spec.frame)

		if panicErr != errUnrecoverableFault {
			t.Errorf("[spec %d] expected panic with errUnrecoverableFault; got %v", specIndex, panicErr)
		}

		output := buf.String()
		for _, exp := range []string{spec.expReason, "walk 0x", "PC: 0x"} {
			if !strings.Contains(output, exp) {
				t.Errorf("[spec %d] expected output to contain %q; got:\n%s", specIndex, exp, output)
			}
		}
	}
}

func TestPageFaultHandlerWithoutActiveSpace(t *testing.T) {
	defer func(origPanic func(interface{}), origActive *AddressSpace) {
		panicFn = origPanic
		activeSpace = origActive
		kfmt.SetOutputSink(nil)
	}(panicFn, activeSpace)

	activeSpace = nil

	var buf bytes.Buffer
	kfmt.SetOutputSink(&buf)

	panicked := false
	panicFn = func(interface{}) { panicked = true }

	nonRecoverablePageFault(&trap.Frame{Cause: trap.Breakpoint, Tval: 0x10}, errUnrecoverableFault)

	if !panicked {
		t.Fatal("expected fault to be fatal")
	}

	if exp := "Page fault while accessing address: 0x0000000000000010\nReason: unknown"; !strings.Contains(buf.String(), exp) {
		t.Fatalf("expected output to contain %q; got:\n%s", exp, buf.String())
	}

	if strings.Contains(buf.String(), "walk") {
		t.Fatal("expected no table walk without an active address space")
	}
}
