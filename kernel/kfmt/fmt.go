// Package kfmt implements the kernel's formatted output. Nothing in this
// package allocates, so it can be used before the heap is initialized and
// from within trap handlers.
package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf [maxBufSize + 1]byte

	// singleByte is used as a shared buffer for passing single characters
	// to doWrite.
	singleByte = []byte(" ")

	// earlyPrintBuffer captures Printf output until an output sink (the
	// serial console) is attached.
	earlyPrintBuffer ringBuffer

	// outputSink is the io.Writer where Printf sends its output. When nil,
	// output is redirected to the earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the default target for calls to Printf to w and replays
// any data accumulated in the earlyPrintBuffer into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		_, _ = io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the default target for calls to Printf.
func GetOutputSink() io.Writer {
	return outputSink
}

// Printf provides a minimal Printf implementation that can be safely used
// before the heap is available. It supports the following subset of the
// fmt verbs:
//
//	%s the uninterpreted bytes of a string or byte slice
//	%d base 10
//	%o base 8
//	%x base 16, with lower-case letters for a-f
//	%t "true" or "false"
//	%% a literal percent sign
//
// An optional decimal width may precede the verb. Strings and base-10
// integers are left-padded with spaces; base-8 and base-16 integers are
// left-padded with zeroes.
//
// Only built-in string, bool and integer types are accepted. Named types
// (e.g. mm.VirtAddr) must be converted to their underlying type by the
// caller since checking for io.Stringer would require itables.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		fmtLen   = len(format)
	)

	for index := 0; index < fmtLen; index++ {
		if format[index] != '%' {
			writeByte(w, format[index])
			continue
		}

		verb, width, next := parseVerb(format, index+1)
		index = next

		switch verb {
		case 0:
			doWrite(w, errNoVerb)
			continue
		case '%':
			writeByte(w, '%')
			continue
		}

		if argIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}

		switch verb {
		case 'o':
			fmtInt(w, args[argIndex], 8, width)
		case 'd':
			fmtInt(w, args[argIndex], 10, width)
		case 'x':
			fmtInt(w, args[argIndex], 16, width)
		case 's':
			fmtString(w, args[argIndex], width)
		case 't':
			fmtBool(w, args[argIndex])
		}
		argIndex++
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, errExtraArg)
	}
}

// parseVerb scans format starting at index for an optional width followed by
// a supported verb. It returns the verb (0 if none was found), the width and
// the index of the last consumed byte.
func parseVerb(format string, index int) (verb byte, width, last int) {
	for ; index < len(format); index++ {
		ch := format[index]
		switch {
		case ch >= '0' && ch <= '9':
			width = width*10 + int(ch-'0')
		case ch == '%', ch == 'd', ch == 'x', ch == 'o', ch == 's', ch == 't':
			return ch, width, index
		default:
			return 0, width, index - 1
		}
	}

	return 0, width, len(format) - 1
}

// fmtBool prints a formatted version of boolean value v.
func fmtBool(w io.Writer, v interface{}) {
	bVal, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errWrongArgType)
	case bVal:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

// fmtString prints a formatted version of string or []byte value v, applying
// the padding specified by width.
func fmtString(w io.Writer, v interface{}, width int) {
	switch castedVal := v.(type) {
	case string:
		fmtRepeat(w, ' ', width-len(castedVal))
		// converting the string to a byte slice triggers a memory
		// allocation so it is written one byte at a time.
		for i := 0; i < len(castedVal); i++ {
			writeByte(w, castedVal[i])
		}
	case []byte:
		fmtRepeat(w, ' ', width-len(castedVal))
		doWrite(w, castedVal)
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtRepeat writes count bytes with value ch.
func fmtRepeat(w io.Writer, ch byte, count int) {
	for i := 0; i < count; i++ {
		writeByte(w, ch)
	}
}

// fmtInt prints out a formatted version of v in the requested base, applying
// the padding specified by width.
func fmtInt(w io.Writer, v interface{}, base uint64, width int) {
	var (
		uval     uint64
		negative bool
		padCh    = byte('0')
	)

	if base == 10 {
		padCh = ' '
	}

	switch val := v.(type) {
	case uint8:
		uval = uint64(val)
	case uint16:
		uval = uint64(val)
	case uint32:
		uval = uint64(val)
	case uint64:
		uval = val
	case uint:
		uval = uint64(val)
	case uintptr:
		uval = uint64(val)
	case int8:
		uval, negative = abs(int64(val))
	case int16:
		uval, negative = abs(int64(val))
	case int32:
		uval, negative = abs(int64(val))
	case int64:
		uval, negative = abs(val)
	case int:
		uval, negative = abs(int64(val))
	default:
		doWrite(w, errWrongArgType)
		return
	}

	if width > maxBufSize-1 {
		width = maxBufSize - 1
	}

	// Digits are generated right to left starting at the end of the buffer.
	start := len(numFmtBuf)
	for {
		start--
		digit := byte(uval % base)
		if digit < 10 {
			numFmtBuf[start] = '0' + digit
		} else {
			numFmtBuf[start] = 'a' + digit - 10
		}

		if uval /= base; uval == 0 {
			break
		}
	}

	// A negative sign sits between space padding and the digits but in
	// front of zero padding.
	digits := len(numFmtBuf) - start
	if negative {
		digits++
	}
	if negative && padCh == ' ' {
		start--
		numFmtBuf[start] = '-'
	}
	for ; digits < width && start > 1; digits++ {
		start--
		numFmtBuf[start] = padCh
	}
	if negative && padCh == '0' {
		start--
		numFmtBuf[start] = '-'
	}

	doWrite(w, numFmtBuf[start:])
}

// abs splits a signed value into its magnitude and sign.
func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

// writeByte emits a single byte through the shared singleByte buffer.
func writeByte(w io.Writer, b byte) {
	singleByte[0] = b
	doWrite(w, singleByte)
}

// doWrite hides p from the compiler's escape analysis. Without it the call
// through the io.Writer interface makes p escape and every Printf call would
// allocate, which crashes the kernel when the heap is not yet set up.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		_, _ = w.Write(p)
	} else {
		_, _ = earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
