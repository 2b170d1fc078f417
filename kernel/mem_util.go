package kernel

import "unsafe"

// overlay returns a byte slice backed by the size bytes starting at addr.
func overlay(addr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}

// Memset sets size bytes at the given address to the supplied value. Instead
// of a byte-by-byte loop it seeds the first byte and then performs log2(size)
// doubling copies, which is fast for the page-aligned blocks it is used on.
func Memset(addr uintptr, value byte, size uintptr) {
	if size == 0 {
		return
	}

	target := overlay(addr, size)
	target[0] = value
	for index := uintptr(1); index < size; index *= 2 {
		copy(target[index:], target[:index])
	}
}
