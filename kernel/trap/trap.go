// Package trap dispatches supervisor exceptions to registered handlers.
package trap

import (
	"io"
	"rvos/kernel"
	"rvos/kernel/kfmt"
)

// Cause is the value of the scause register for a trap.
type Cause uint64

// interruptBit is set in scause when the trap was caused by an interrupt.
const interruptBit = Cause(1 << 63)

// List of synchronous exception causes.
const (
	InstructionMisaligned  Cause = 0
	InstructionAccessFault Cause = 1
	IllegalInstruction     Cause = 2
	Breakpoint             Cause = 3
	LoadMisaligned         Cause = 4
	LoadAccessFault        Cause = 5
	StoreMisaligned        Cause = 6
	StoreAccessFault       Cause = 7
	UserEnvCall            Cause = 8
	SupervisorEnvCall      Cause = 9
	InstructionPageFault   Cause = 12
	LoadPageFault          Cause = 13
	StorePageFault         Cause = 15

	maxExceptionCause = 16
)

// IsInterrupt returns true if the cause describes an asynchronous interrupt.
func (c Cause) IsInterrupt() bool {
	return c&interruptBit != 0
}

// String implements fmt.Stringer for Cause.
func (c Cause) String() string {
	switch c {
	case InstructionMisaligned:
		return "instruction address misaligned"
	case InstructionAccessFault:
		return "instruction access fault"
	case IllegalInstruction:
		return "illegal instruction"
	case Breakpoint:
		return "breakpoint"
	case LoadMisaligned:
		return "load address misaligned"
	case LoadAccessFault:
		return "load access fault"
	case StoreMisaligned:
		return "store address misaligned"
	case StoreAccessFault:
		return "store access fault"
	case UserEnvCall:
		return "environment call from U-mode"
	case SupervisorEnvCall:
		return "environment call from S-mode"
	case InstructionPageFault:
		return "instruction page fault"
	case LoadPageFault:
		return "load page fault"
	case StorePageFault:
		return "store page fault"
	default:
		if c.IsInterrupt() {
			return "interrupt"
		}
		return "unknown"
	}
}

// Frame describes the trap state saved by the trap vector.
type Frame struct {
	// Cause is the value of scause.
	Cause Cause

	// Tval is the value of stval; for page faults it holds the faulting
	// virtual address.
	Tval uintptr

	// EPC is the value of sepc.
	EPC uintptr
}

// DumpTo outputs the saved trap state to w.
func (f *Frame) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "SCAUSE = %16x (%s)\n", uint64(f.Cause), f.Cause.String())
	kfmt.Fprintf(w, "STVAL  = %16x\n", f.Tval)
	kfmt.Fprintf(w, "SEPC   = %16x\n", f.EPC)
}

// ExceptionHandler handles a synchronous exception.
type ExceptionHandler func(*Frame)

var (
	handlers [maxExceptionCause]ExceptionHandler

	// panicFn is used by tests to intercept the halt path.
	panicFn = kfmt.Panic

	errUnhandledTrap = &kernel.Error{Module: "trap", Message: "unhandled trap"}
)

// HandleException registers handler for the given exception cause,
// replacing any previous registration.
func HandleException(cause Cause, handler ExceptionHandler) {
	if cause.IsInterrupt() || cause >= maxExceptionCause {
		return
	}

	handlers[cause] = handler
}

// Dispatch is called by the trap vector with the saved trap state. Traps
// without a registered handler are fatal.
func Dispatch(frame *Frame) {
	if !frame.Cause.IsInterrupt() && frame.Cause < maxExceptionCause {
		if handler := handlers[frame.Cause]; handler != nil {
			handler(frame)
			return
		}
	}

	kfmt.Printf("[trap] unhandled %s\n", frame.Cause.String())
	frame.DumpTo(kfmt.GetOutputSink())
	panicFn(errUnhandledTrap)
}
