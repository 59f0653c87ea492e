// Package trap implements the trampoline-mediated trap path: the
// TrapContext layout saved/restored by __alltraps/__restore, the trap
// dispatch handler, and the CSR plumbing (stvec, sepc, scause, sstatus)
// that drives it. To avoid an import cycle with the scheduler and syscall
// dispatcher, trap depends on them only through function-variable hooks
// installed during boot, the same pattern kernel.Panic uses for its sink.
package trap

// sstatusSPPUser clears the SPP bit, marking the trap context as having
// come from (and returning to) user mode.
const sstatusSPPUser = ^uintptr(1 << 8)

// TrapContext is the register file saved on every trap into the kernel:
// the 31 general-purpose registers x1-x31 (x0 is hardwired zero and never
// saved), followed by sstatus and sepc. __alltraps/__restore address its
// fields purely by offset, so this layout must never change without
// updating trampoline_riscv64.s to match.
type TrapContext struct {
	X       [32]uintptr // x0..x31; x0 unused, x2 is sp
	Sstatus uintptr
	Sepc    uintptr
	// KernelSatp, KernelSP, TrapHandler are populated by NewUserContext
	// when the task's context is built, so __alltraps can restore the
	// kernel's address space and stack on the next trap without needing
	// any other state.
	KernelSatp  uintptr
	KernelSP    uintptr
	TrapHandler uintptr
}

// SetSP sets the saved stack pointer (x2) in the context.
func (c *TrapContext) SetSP(sp uintptr) { c.X[2] = sp }

// NewUserContext builds the initial TrapContext for a task about to run
// for the first time: sepc at entry, sp at the top of its user stack,
// sstatus marked as having come from user mode so sret drops to U-mode,
// and the kernel-side fields __alltraps needs to get back into the
// kernel on the task's next trap (its address space, its kernel stack,
// and the Go trap handler to jump to).
func NewUserContext(entry, sp, kernelSatp, kernelSP, trapHandler uintptr) TrapContext {
	var ctx TrapContext
	ctx.Sstatus = readSstatus() & sstatusSPPUser
	ctx.Sepc = entry
	ctx.SetSP(sp)
	ctx.KernelSatp = kernelSatp
	ctx.KernelSP = kernelSP
	ctx.TrapHandler = trapHandler
	return ctx
}
