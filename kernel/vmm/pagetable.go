package vmm

import (
	"unsafe"

	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/pmm"
)

const ptesPerPage = config.PageSize / 8

// ptesOf views the frame named by ppn as its 512 SV39 page table entries.
func ptesOf(ppn addr.PhysPageNum) []PageTableEntry {
	return unsafe.Slice((*PageTableEntry)(unsafe.Pointer(uintptr(ppn.Address()))), ptesPerPage)
}

// PageTable is one address space's SV39 page table: a root frame plus
// every intermediate frame allocated while walking it. One PageTable
// exists per kernel or user address space.
type PageTable struct {
	RootPPN addr.PhysPageNum
	frames  []*pmm.FrameTracker
}

// NewPageTable allocates a fresh root frame and returns an owning,
// initially-empty page table.
func NewPageTable() *PageTable {
	root := pmm.Alloc()
	if root == nil {
		panic("vmm: frame alloc failed creating page table root")
	}
	return &PageTable{RootPPN: root.PhysPageNum(), frames: []*pmm.FrameTracker{root}}
}

// FromToken builds a non-owning PageTable view over an already-active
// address space, identified by its satp token. It holds no frames and
// must never have Map/Unmap called on it for frames it doesn't own - it
// exists only to walk an existing table (e.g. to translate a user
// pointer passed in a syscall).
func FromToken(satp uintptr) *PageTable {
	return &PageTable{RootPPN: addr.PhysPageNumFromUint(satp & ((1 << 44) - 1))}
}

// Token returns the satp register value (Sv39 mode, this table's root
// PPN) that activates this address space.
func (pt *PageTable) Token() uintptr {
	const modeSv39 = uintptr(8) << 60
	return modeSv39 | uintptr(pt.RootPPN)
}

// findPTE walks the three SV39 levels for vpn and returns the leaf entry,
// or nil if any intermediate table is missing.
func (pt *PageTable) findPTE(vpn addr.VirtPageNum) *PageTableEntry {
	idxs := vpn.Indexes()
	ppn := pt.RootPPN
	var result *PageTableEntry
	for i, idx := range idxs {
		pte := &ptesOf(ppn)[idx]
		if i == len(idxs)-1 {
			result = pte
			break
		}
		if !pte.IsValid() {
			return nil
		}
		ppn = pte.PPN()
	}
	return result
}

// findPTECreate walks the three SV39 levels for vpn, allocating any
// missing intermediate table as it goes, and returns the leaf entry.
func (pt *PageTable) findPTECreate(vpn addr.VirtPageNum) *PageTableEntry {
	idxs := vpn.Indexes()
	ppn := pt.RootPPN
	var result *PageTableEntry
	for i, idx := range idxs {
		pte := &ptesOf(ppn)[idx]
		if i == len(idxs)-1 {
			result = pte
			break
		}
		if !pte.IsValid() {
			frame := pmm.Alloc()
			if frame == nil {
				panic("vmm: frame alloc failed creating intermediate page table")
			}
			*pte = newPTE(frame.PhysPageNum(), FlagV)
			pt.frames = append(pt.frames, frame)
		}
		ppn = pte.PPN()
	}
	return result
}

// Translate returns the page table entry mapping vpn, if any.
func (pt *PageTable) Translate(vpn addr.VirtPageNum) (PageTableEntry, bool) {
	pte := pt.findPTE(vpn)
	if pte == nil || !pte.IsValid() {
		return 0, false
	}
	return *pte, true
}

// Map installs vpn -> ppn with the given flags (V is set automatically).
// It panics if vpn is already mapped.
func (pt *PageTable) Map(vpn addr.VirtPageNum, ppn addr.PhysPageNum, flags PTEFlags) {
	pte := pt.findPTECreate(vpn)
	if pte.IsValid() {
		panic("vmm: vpn already mapped")
	}
	*pte = newPTE(ppn, flags|FlagV)
}

// Unmap removes the mapping for vpn. It panics if vpn is not mapped.
func (pt *PageTable) Unmap(vpn addr.VirtPageNum) {
	pte := pt.findPTE(vpn)
	if pte == nil || !pte.IsValid() {
		panic("vmm: unmap of unmapped vpn")
	}
	*pte = PageTableEntry(0)
}
