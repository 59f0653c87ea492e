// Package task defines the per-task control block and the low-level
// TaskContext/__switch context-switch primitive the scheduler uses to
// move the hart from one task's kernel stack to another's.
package task

// TaskContext is the minimal register set __switch saves and restores:
// the return address, stack pointer, and the 12 callee-saved registers
// (s0-s11). Caller-saved registers don't need saving here because
// __switch is called like any other Go function - its caller already
// expects them clobbered.
type TaskContext struct {
	RA uintptr
	SP uintptr
	S  [12]uintptr
}

// GoTrapReturn builds a TaskContext that, once switched to, resumes
// execution in trap.TrapReturn on the given kernel stack - the context a
// freshly created or forked task starts with.
func GoTrapReturn(kernelSP, trapReturnAddr uintptr) TaskContext {
	return TaskContext{RA: trapReturnAddr, SP: kernelSP}
}

// Switch saves the currently running task's register state into current
// and loads next's, resuming execution at next.RA on next.SP. It returns
// (as every other function does) once some later Switch call switches
// back to the context that called it. Implemented in switch_riscv64.s.
func Switch(current, next *TaskContext)
