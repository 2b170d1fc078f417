package kernel

// Error describes a kernel error. All kernel errors are defined as global
// variables that are pointers to the Error structure so they can be returned
// and compared by identity before the Go allocator is available; errors.New
// cannot be used anywhere in the kernel.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
