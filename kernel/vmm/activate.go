package vmm

// Activate loads token into satp and flushes the TLB, switching the
// hart's active address space. Implemented in activate_riscv64.s.
func Activate(token uintptr)

// Activate writes this address space's token into satp and fences the
// TLB, making it the hart's active address space.
func (ms *MemorySet) Activate() { Activate(ms.Token()) }
