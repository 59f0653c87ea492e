package vmm

import (
	"bytes"
	"debug/elf"

	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/klog"
	"github.com/LiamStanDev/mini-os/kernel/layout"
)

// MemorySet is one process's (kernel's or a task's) address space: a page
// table plus the list of MapAreas installed in it. Kernel code and every
// task's user space each get their own MemorySet.
type MemorySet struct {
	PageTable *PageTable
	areas     []*MapArea
}

// NewMemorySet returns an empty address space with a freshly allocated
// page table and no mapped areas.
func NewMemorySet() *MemorySet {
	return &MemorySet{PageTable: NewPageTable()}
}

func (ms *MemorySet) push(area *MapArea, data []byte) {
	area.Map(ms.PageTable)
	if data != nil {
		area.WriteBytes(ms.PageTable, data)
	}
	ms.areas = append(ms.areas, area)
}

// InsertFramedArea maps [startVA, endVA) with freshly allocated frames and
// the given permission.
func (ms *MemorySet) InsertFramedArea(startVA, endVA addr.VirtAddr, perm MapPermission) {
	ms.push(NewMapArea(startVA, endVA, MapFramed, perm), nil)
}

// Translate looks up the page table entry mapping vpn in this address
// space.
func (ms *MemorySet) Translate(vpn addr.VirtPageNum) (PageTableEntry, bool) {
	return ms.PageTable.Translate(vpn)
}

// Token returns the satp value that activates this address space.
func (ms *MemorySet) Token() uintptr { return ms.PageTable.Token() }

// Clone builds a fresh address space with the same mapped areas as ms,
// each backed by its own copy of the underlying frames - the memory-set
// duplication a fork needs. The clone does not share any frame with ms:
// writes in either address space after Clone are invisible to the other.
func (ms *MemorySet) Clone() *MemorySet {
	clone := NewMemorySet()
	clone.mapTrampoline()

	for _, area := range ms.areas {
		newArea := NewMapArea(area.startVPN.Address(), area.endVPN.Address(), area.mapType, area.perm)
		clone.push(newArea, nil)

		for vpn := area.startVPN; vpn != area.endVPN; vpn++ {
			srcPTE, ok := ms.Translate(vpn)
			if !ok {
				continue
			}
			dstPTE, ok := clone.Translate(vpn)
			if !ok {
				continue
			}
			copy(dstPTE.PPN().Bytes(), srcPTE.PPN().Bytes())
		}
	}

	return clone
}

// mapTrampoline identically maps the single trampoline code page at the
// top of every address space's virtual range.
func (ms *MemorySet) mapTrampoline() {
	vpn := addr.VirtAddrFromUint(config.TrampolineAddr).Floor()
	ppn := addr.PhysAddrFromUint(layout.TrampolineStart()).Floor()
	ms.PageTable.Map(vpn, ppn, FlagR|FlagX)
}

type kernelSection struct {
	start, end uintptr
	perm       MapPermission
	name       string
}

// InitKernelSpace builds the kernel's own address space: the trampoline,
// one identically-mapped area per linker section, and the remainder of
// physical memory (so the kernel can reach any frame via its own
// identity-mapped view, independent of which user space is active).
func InitKernelSpace() *MemorySet {
	ms := NewMemorySet()
	ms.mapTrampoline()

	sections := []kernelSection{
		{layout.TextStart(), layout.TextEnd(), PermR | PermX, ".text"},
		{layout.RodataStart(), layout.RodataEnd(), PermR, ".rodata"},
		{layout.DataStart(), layout.DataEnd(), PermR | PermW, ".data"},
		{layout.BSSStart(), layout.BSSEnd(), PermR | PermW, ".bss"},
		{layout.KernelEnd(), config.MemoryEnd, PermR | PermW, "physical memory"},
	}

	for _, s := range sections {
		klog.Trace("mapping %s section [%x, %x)", s.name, s.start, s.end)
		ms.push(NewMapArea(addr.VirtAddrFromUint(s.start), addr.VirtAddrFromUint(s.end), MapIdentical, s.perm), nil)
	}

	return ms
}

// FromELF builds a new address space from a loaded ELF image: one framed
// area per PT_LOAD segment, a guard-paged user stack immediately above
// the highest segment, and the per-task TrapContext page just below the
// trampoline. It returns the address space, the initial user stack
// pointer, and the entry point.
func FromELF(elfData []byte) (ms *MemorySet, userStackTop addr.VirtAddr, entry uintptr) {
	ms = NewMemorySet()
	ms.mapTrampoline()

	f, err := elf.NewFile(bytes.NewReader(elfData))
	if err != nil {
		panic("vmm: failed to parse elf data")
	}

	var maxEndVPN addr.VirtPageNum
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		startVA := addr.VirtAddrFromUint(uintptr(prog.Vaddr))
		endVA := addr.VirtAddrFromUint(uintptr(prog.Vaddr + prog.Memsz))
		perm := PermU
		if prog.Flags&elf.PF_R != 0 {
			perm |= PermR
		}
		if prog.Flags&elf.PF_W != 0 {
			perm |= PermW
		}
		if prog.Flags&elf.PF_X != 0 {
			perm |= PermX
		}

		area := NewMapArea(startVA, endVA, MapFramed, perm)
		if area.EndVPN() > maxEndVPN {
			maxEndVPN = area.EndVPN()
		}

		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			panic("vmm: failed to read elf segment")
		}
		ms.push(area, data)
	}

	userStackBottom := maxEndVPN.Address() + addr.VirtAddr(config.PageSize)
	userStackTop = userStackBottom + addr.VirtAddr(config.UserStackSize)
	ms.push(NewMapArea(userStackBottom, userStackTop, MapFramed, PermR|PermW|PermU), nil)

	ms.push(NewMapArea(
		addr.VirtAddrFromUint(config.TrapContextAddr),
		addr.VirtAddrFromUint(config.TrampolineAddr),
		MapFramed, PermR|PermW,
	), nil)

	return ms, userStackTop, uintptr(f.Entry)
}
