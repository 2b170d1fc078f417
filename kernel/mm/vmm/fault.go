package vmm

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
	"rvos/kernel/trap"
)

var (
	// handleExceptionFn is used by tests.
	handleExceptionFn = trap.HandleException

	// panicFn is used by tests to intercept the halt path.
	panicFn = kfmt.Panic

	errUnrecoverableFault = &kernel.Error{Module: "vmm", Message: "page/gpf fault"}
)

// installFaultHandlers registers the page fault handler for instruction,
// load and store page faults.
func installFaultHandlers() {
	handleExceptionFn(trap.InstructionPageFault, pageFaultHandler)
	handleExceptionFn(trap.LoadPageFault, pageFaultHandler)
	handleExceptionFn(trap.StorePageFault, pageFaultHandler)
}

// pageFaultHandler is invoked for every page fault. The kernel does not
// demand-page so all faults are fatal.
func pageFaultHandler(frame *trap.Frame) {
	nonRecoverablePageFault(frame, errUnrecoverableFault)
}

func nonRecoverablePageFault(frame *trap.Frame, err *kernel.Error) {
	kfmt.Printf("\nPage fault while accessing address: 0x%16x\nReason: ", frame.Tval)
	switch frame.Cause {
	case trap.InstructionPageFault:
		kfmt.Printf("instruction fetch from unmapped or non-executable page")
	case trap.LoadPageFault:
		kfmt.Printf("read from unmapped or non-readable page")
	case trap.StorePageFault:
		kfmt.Printf("write to unmapped or read-only page")
	default:
		kfmt.Printf("unknown")
	}

	kfmt.Printf("\nPC: 0x%16x\n", frame.EPC)

	if activeSpace != nil {
		DumpWalk(kfmt.GetOutputSink(), activeSpace.tables, activeSpace.root, mm.VirtAddr(frame.Tval))
	}

	panicFn(err)
}
