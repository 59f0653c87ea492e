package task

import (
	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/trap"
	"github.com/LiamStanDev/mini-os/kernel/vmm"
)

// Fork duplicates parent's address space page-by-page into a new task
// assigned id within the shared kernel address space, returning a Ready
// control block whose trap context already carries the advanced sepc (and
// every other register) the parent had at the moment of its fork ecall -
// the clone happens after trap.TrapHandler's sepc += 4 and before the
// dispatch returns, so that adjustment rides along in the copied page.
// The caller must still zero the child's a0 so it observes fork()
// returning 0, not the parent's pid.
func Fork(id int, parent *ControlBlock, kernelSpace *vmm.MemorySet) *ControlBlock {
	kstackBottom, kstackTop := config.KernelStackBounds(id)
	kernelSpace.InsertFramedArea(
		addr.VirtAddrFromUint(kstackBottom),
		addr.VirtAddrFromUint(kstackTop),
		vmm.PermR|vmm.PermW,
	)

	memSet := parent.MemorySet.Clone()
	pte, ok := memSet.Translate(addr.VirtAddrFromUint(config.TrapContextAddr).Floor())
	if !ok {
		panic("task: failed to translate TrapContextAddr for forked task")
	}

	child := &ControlBlock{
		id:         id,
		Context:    GoTrapReturn(kstackTop, trap.ReturnAddr()),
		Status:     StatusReady,
		MemorySet:  memSet,
		TrapCtxPPN: pte.PPN(),
		BaseSize:   parent.BaseSize,
	}

	// The byte-for-byte Clone above also copied the parent's KernelSP into
	// the child's TrapContext page. Left alone, the child's next trap
	// would load the parent's kernel stack pointer in __alltraps and the
	// two tasks would corrupt each other's kernel stack.
	child.TrapCtxMut().KernelSP = kstackTop

	return child
}

// ReplaceImage discards tcb's address space and installs a fresh one
// built from elfData, the memory-set work exec does once fork has already
// produced a separate address space to replace.
func (tcb *ControlBlock) ReplaceImage(elfData []byte, kernelSpace *vmm.MemorySet) {
	memSet, userSP, entry := vmm.FromELF(elfData)
	pte, ok := memSet.Translate(addr.VirtAddrFromUint(config.TrapContextAddr).Floor())
	if !ok {
		panic("task: failed to translate TrapContextAddr after exec")
	}

	tcb.MemorySet = memSet
	tcb.TrapCtxPPN = pte.PPN()
	tcb.BaseSize = uintptr(userSP)

	_, kstackTop := config.KernelStackBounds(tcb.id)
	*tcb.TrapCtxMut() = trap.NewUserContext(entry, uintptr(userSP), kernelSpace.Token(), kstackTop, trap.HandlerAddr())
}
