package task

import (
	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/trap"
	"github.com/LiamStanDev/mini-os/kernel/vmm"
)

// Status is a task's scheduling state.
type Status int

const (
	StatusUninit Status = iota
	StatusReady
	StatusRunning
	StatusExited
)

// ControlBlock holds everything the scheduler and trap handler need to
// run and resume one task: its saved kernel-side registers, its address
// space, and where its TrapContext lives within that address space.
type ControlBlock struct {
	id         int
	Context    TaskContext
	Status     Status
	MemorySet  *vmm.MemorySet
	TrapCtxPPN addr.PhysPageNum
	BaseSize   uintptr
	ExitCode   int
}

// ID returns the task's slot in the scheduler's task table, i.e. its pid.
func (tcb *ControlBlock) ID() int { return tcb.id }

// New builds a task from a loaded ELF image and the kernel stack slot
// reserved for task id. The returned block is Ready to run.
func New(id int, elfData []byte, kernelSpace *vmm.MemorySet) *ControlBlock {
	kstackBottom, kstackTop := config.KernelStackBounds(id)
	kernelSpace.InsertFramedArea(
		addr.VirtAddrFromUint(kstackBottom),
		addr.VirtAddrFromUint(kstackTop),
		vmm.PermR|vmm.PermW,
	)

	memSet, userSP, entry := vmm.FromELF(elfData)
	pte, ok := memSet.Translate(addr.VirtAddrFromUint(config.TrapContextAddr).Floor())
	if !ok {
		panic("task: failed to translate TrapContextAddr for new task")
	}

	tcb := &ControlBlock{
		id:         id,
		Context:    GoTrapReturn(kstackTop, trap.ReturnAddr()),
		Status:     StatusReady,
		MemorySet:  memSet,
		TrapCtxPPN: pte.PPN(),
		BaseSize:   uintptr(userSP),
	}

	*tcb.TrapCtxMut() = trap.NewUserContext(entry, uintptr(userSP), kernelSpace.Token(), kstackTop, trap.HandlerAddr())
	return tcb
}

// TrapCtxMut returns a pointer to this task's TrapContext, which lives in
// a frame owned by the task's own MemorySet (so it survives address
// space switches without needing a separate kernel-side copy).
func (tcb *ControlBlock) TrapCtxMut() *trap.TrapContext {
	return addr.AsPointer[trap.TrapContext](tcb.TrapCtxPPN)
}

// Satp returns the satp token activating this task's address space.
func (tcb *ControlBlock) Satp() uintptr { return tcb.MemorySet.Token() }
