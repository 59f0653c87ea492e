package trap

import (
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/klog"
)

// HandlerAddr returns the entry address of TrapHandler, for stashing into
// a task's initial TrapContext (see trap.NewUserContext) so __alltraps
// knows where to jump on the task's next trap. Implemented in
// trampoline_riscv64.s, the same bodyless-func-in-.s pattern used
// everywhere else in this package, rather than reflect.
func HandlerAddr() uintptr

// ReturnAddr returns the entry address of TrapReturn, for stashing into a
// freshly created task's TaskContext.RA so the first switch into it lands
// in TrapReturn instead of an ordinary call-return. Implemented in
// trampoline_riscv64.s.
func ReturnAddr() uintptr

// The hooks below let trap dispatch into the scheduler and syscall table
// without trap importing either package. kernel/boot wires them once,
// during Kmain, before the first task ever runs.
var (
	syscallHook                 func(id uintptr, args [3]uintptr, ctx *TrapContext) uintptr
	suspendCurrentAndRunNextHook func()
	exitCurrentAndRunNextHook    func(exitCode int)
	currentTrapCtxHook           func() *TrapContext
	currentSatpHook              func() uintptr
	setNextTimerTriggerHook      func()
)

// SetSyscallHandler installs the function trap dispatch calls for
// Exception::UserEnvCall.
func SetSyscallHandler(fn func(id uintptr, args [3]uintptr, ctx *TrapContext) uintptr) {
	syscallHook = fn
}

// SetSchedulerHooks installs the scheduler callbacks trap dispatch needs
// for timer preemption and fatal exceptions.
func SetSchedulerHooks(suspendAndRunNext func(), exitAndRunNext func(exitCode int), currentTrapCtx func() *TrapContext, currentSatp func() uintptr) {
	suspendCurrentAndRunNextHook = suspendAndRunNext
	exitCurrentAndRunNextHook = exitAndRunNext
	currentTrapCtxHook = currentTrapCtx
	currentSatpHook = currentSatp
}

// SetTimerHook installs the function trap dispatch calls to rearm the
// next timer interrupt.
func SetTimerHook(fn func()) { setNextTimerTriggerHook = fn }

// Init points stvec at the kernel trap entry (trap_from_kernel), the
// entry used whenever a trap occurs while already running kernel code.
func Init() {
	setKernelTrapEntry()
}

func setKernelTrapEntry() {
	setStvecDirect(trapFromKernelAddr())
}

func setUserTrapEntry() {
	setStvecDirect(config.TrampolineAddr)
}

// EnableTimerInterrupt arms the STIE bit and schedules the first timer
// interrupt.
func EnableTimerInterrupt() {
	enableTimerInterrupt()
	if setNextTimerTriggerHook != nil {
		setNextTimerTriggerHook()
	}
}

// trapFromKernelAddr returns the address trap_from_kernel is linked at;
// implemented in trampoline_riscv64.s.
func trapFromKernelAddr() uintptr

// TrapFromKernel is reached when a trap occurs while stvec still points
// at the kernel entry, i.e. a trap nested inside the kernel itself. The
// kernel never expects this and treats it as fatal.
//
//go:noinline
func TrapFromKernel() {
	klog.Error("a trap from kernel, scause=%x stval=%x", readScause(), readStval())
	panic("unexpected trap from kernel mode")
}

// TrapHandler is reached, via the trampoline, for every trap taken while
// running user code. It dispatches on scause and always ends by calling
// TrapReturn, which does not return.
//
//go:noinline
func TrapHandler() {
	setKernelTrapEntry()

	ctx := currentTrapCtxHook()
	scause := readScause()
	code := scauseCode(scause)

	switch {
	case scauseIsInterrupt(scause) && code == InterruptSupervisorTimer:
		if setNextTimerTriggerHook != nil {
			setNextTimerTriggerHook()
		}
		suspendCurrentAndRunNextHook()

	case !scauseIsInterrupt(scause) && code == ExceptionUserEnvCall:
		ctx.Sepc += 4
		ctx.X[10] = syscallHook(ctx.X[17], [3]uintptr{ctx.X[10], ctx.X[11], ctx.X[12]}, ctx)

	case !scauseIsInterrupt(scause) &&
		(code == ExceptionStoreFault || code == ExceptionLoadFault ||
			code == ExceptionStorePageFault || code == ExceptionLoadPageFault):
		klog.Warn("PageFault in application, bad addr = 0x%x, bad instruction = 0x%x, kernel killed it", readStval(), ctx.Sepc)
		exitCurrentAndRunNextHook(-2)

	case !scauseIsInterrupt(scause) && code == ExceptionIllegalInstr:
		klog.Warn("IllegalInstruction in application at 0x%x, kernel killed it", ctx.Sepc)
		exitCurrentAndRunNextHook(-3)

	default:
		klog.Error("unsupported trap, scause=%x stval=%x", scause, readStval())
		panic("unsupported trap")
	}

	TrapReturn()
}

// TrapReturn hands control back to user mode: it points stvec at the
// trampoline, fetches the outgoing task's satp, and jumps into __restore
// (in the trampoline page) with a0/a1 set to the TrapContext address and
// the user satp, per the trampoline's calling convention. It never
// returns.
//
//go:noinline
func TrapReturn() {
	setUserTrapEntry()
	restoreTo(config.TrapContextAddr, currentSatpHook())
	panic("unreachable: returned from __restore")
}

// restoreTo computes __restore's trampoline-relative address and jumps to
// it with a0=trapCtxAddr, a1=userSatp. Implemented in
// trampoline_riscv64.s.
func restoreTo(trapCtxAddr, userSatp uintptr)
