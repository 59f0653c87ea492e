package boot

import (
	"github.com/LiamStanDev/mini-os/kernel"
	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/console"
	"github.com/LiamStanDev/mini-os/kernel/heap"
	"github.com/LiamStanDev/mini-os/kernel/klog"
	"github.com/LiamStanDev/mini-os/kernel/layout"
	"github.com/LiamStanDev/mini-os/kernel/loader"
	"github.com/LiamStanDev/mini-os/kernel/pmm"
	"github.com/LiamStanDev/mini-os/kernel/sbi"
	"github.com/LiamStanDev/mini-os/kernel/sched"
	"github.com/LiamStanDev/mini-os/kernel/syscall"
	"github.com/LiamStanDev/mini-os/kernel/task"
	"github.com/LiamStanDev/mini-os/kernel/timer"
	"github.com/LiamStanDev/mini-os/kernel/trap"
	"github.com/LiamStanDev/mini-os/kernel/vmm"
)

var errKmainReturned = &kernel.Error{Module: "boot", Message: "Kmain returned"}

// Kmain brings the hart up from the moment entry assembly hands off to Go:
// console, then the physical frame allocator, then kernel virtual memory,
// then traps, then the task table, then the scheduler. It never returns;
// the last line calls sched.RunFirstTask, which itself never returns to
// this stack.
//
//go:noinline
func Kmain() {
	klog.SetOutput(console.Writer{})
	klog.Info("booting")

	kernel.SetPanicSink(klog.Error)
	kernel.SetHaltFunc(func(failure bool) { sbi.Shutdown(failure) })

	pmm.Init(addr.PhysAddrFromUint(layout.KernelEnd()).Ceil(), addr.PhysAddrFromUint(config.MemoryEnd).Floor())
	klog.Info("frame allocator initialized")

	heap.Init()
	klog.Info("kernel heap initialized")

	kernelSpace := vmm.InitKernelSpace()
	kernelSpace.Activate()
	klog.Info("kernel address space activated")

	trap.Init()
	trap.SetSyscallHandler(syscall.Dispatch)
	trap.SetTimerHook(timer.SetNextTrigger)
	trap.EnableTimerInterrupt()
	klog.Info("trap vector and timer interrupt installed")

	tasks := buildTaskTable(kernelSpace)
	if len(tasks) == 0 {
		kernel.Panic(&kernel.Error{Module: "boot", Message: "no bundled applications"})
	}

	sched.Init(tasks, kernelSpace)
	klog.Info("starting task 0 of %d", len(tasks))
	sched.RunFirstTask()

	kernel.Panic(errKmainReturned)
}

// buildTaskTable constructs one ControlBlock per application loader
// bundles, in load order, each with its own address space carved out
// below kernelSpace's shared trampoline mapping.
func buildTaskTable(kernelSpace *vmm.MemorySet) []*task.ControlBlock {
	tasks := make([]*task.ControlBlock, 0, loader.Count())
	for i := 0; i < loader.Count(); i++ {
		name := loader.NameAt(i)
		elfData, ok := loader.Lookup(name)
		if !ok {
			klog.Warn("skipping %q: no embedded image", name)
			continue
		}
		tasks = append(tasks, task.New(i, elfData, kernelSpace))
	}
	return tasks
}
