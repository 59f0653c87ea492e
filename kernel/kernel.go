// Package kernel provides the small set of primitives shared by every
// subsystem: an allocation-free error type and the fatal panic path.
package kernel

import "unsafe"

// Error describes a kernel error. Kernel errors are defined as package-level
// *Error values rather than constructed via errors.New so that reporting an
// error never requires the heap allocator — several error paths (frame
// allocator exhaustion, page-table invariants) can fire before the kernel
// heap exists.
type Error struct {
	// Module names the subsystem that produced the error.
	Module string
	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Module + ": " + e.Message }

// panicSink is where Panic sends its final report before halting. It
// defaults to nil (no output) so this package has no hard dependency on
// klog; kernel/boot wires a real sink during Kmain.
var panicSink func(format string, args ...interface{})

// haltFn stops the hart. kernel/boot overrides this with the real SBI
// shutdown call; the zero value only matters for host-side unit tests.
var haltFn = func(failure bool) {}

// SetPanicSink installs the function kernel.Panic uses to report fatal
// errors before halting.
func SetPanicSink(sink func(format string, args ...interface{})) { panicSink = sink }

// SetHaltFunc installs the function kernel.Panic uses to stop the hart.
func SetHaltFunc(halt func(failure bool)) { haltFn = halt }

// Panic reports err (if non-nil) and halts the hart with failure status.
// Panic never returns.
func Panic(err *Error) {
	if panicSink != nil {
		if err != nil {
			panicSink("kernel panic [%s]: %s\n", err.Module, err.Message)
		} else {
			panicSink("kernel panic: system halted\n")
		}
	}
	haltFn(true)
	for {
	}
}

// Memset fills count bytes starting at addr with value. It exists so
// callers working with raw physical addresses (before a []byte view is
// convenient) don't need to round-trip through unsafe at every call site.
func Memset(addr uintptr, value byte, count uintptr) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), count)
	for i := range b {
		b[i] = value
	}
}
