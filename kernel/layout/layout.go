// Package layout holds the kernel image's linker-defined section
// boundaries. It is a leaf package deliberately kept free of any
// dependency on kernel/boot or kernel/vmm, so both can import it: boot
// needs KernelEnd for sizing the frame allocator, vmm needs every
// boundary to build the kernel's identity-mapped address space. Nothing
// in this package is portable: a different target layout gets its own
// layout package, the same way the rest of the kernel is
// SV39/riscv64-specific.
package layout

// Section boundary accessors. Each returns the address of a symbol defined
// by linker.ld; they are declared here without bodies and implemented in
// layout_riscv64.s as simple "load the address of a global label"
// sequences, the same pattern kernel/sbi uses for bodyless ecall wrappers.
func TextStart() uintptr
func TextEnd() uintptr
func RodataStart() uintptr
func RodataEnd() uintptr
func DataStart() uintptr
func DataEnd() uintptr
func BSSStart() uintptr
func BSSEnd() uintptr
func KernelEnd() uintptr
func TrampolineStart() uintptr
