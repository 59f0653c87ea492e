package syscall

import (
	"github.com/LiamStanDev/mini-os/kernel/klog"
	"github.com/LiamStanDev/mini-os/kernel/loader"
	"github.com/LiamStanDev/mini-os/kernel/sched"
	"github.com/LiamStanDev/mini-os/kernel/timer"
	"github.com/LiamStanDev/mini-os/kernel/trap"
	"github.com/LiamStanDev/mini-os/kernel/vmm"
)

// sysExit terminates the calling task with exitCode and never returns to
// it; control passes to whatever task the scheduler runs next.
func sysExit(exitCode int) {
	klog.Trace("application exited with code %d", exitCode)
	sched.ExitCurrentAndRunNext(exitCode)
}

// sysYield voluntarily gives up the remainder of the task's time slice.
func sysYield() int64 {
	sched.SuspendCurrentAndRunNext()
	return 0
}

// sysGetTime returns the current time in milliseconds since boot.
func sysGetTime() int64 {
	return int64(timer.GetTimeMs())
}

// sysFork duplicates the calling task. It returns the child's pid to the
// parent; the child's own copy of ctx has already had its a0 zeroed by
// sched.Fork so it observes a 0 return instead.
func sysFork(ctx *trap.TrapContext) int64 {
	return int64(sched.Fork())
}

// sysExec replaces the calling task's image with the named application.
// It returns -1 if no application with that name is bundled.
func sysExec(pathPtr uintptr, ctx *trap.TrapContext) int64 {
	path := vmm.TranslatedStr(sched.CurrentSatp(), pathPtr)
	elfData, ok := loader.Lookup(path)
	if !ok {
		klog.Warn("exec: no such application %q", path)
		return -1
	}
	return sched.Exec(elfData)
}

// sysWaitpid reaps pid, writing its exit code through exitCodePtr (a
// user-space pointer in the caller's own address space) if it has
// already exited. See sched.Waitpid for the -1/-2 recoverable codes.
func sysWaitpid(pid int, exitCodePtr uintptr, ctx *trap.TrapContext) int64 {
	reaped, exitCode, status := sched.Waitpid(pid)
	if status != 0 {
		return int64(status)
	}

	out := vmm.TranslatedRef[int32](sched.CurrentSatp(), exitCodePtr)
	*out = int32(exitCode)
	return int64(reaped)
}
