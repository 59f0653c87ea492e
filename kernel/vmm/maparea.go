package vmm

import (
	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/pmm"
)

// MapType selects how a MapArea's virtual pages back physical frames.
type MapType int

const (
	// MapIdentical maps each virtual page number to the physical page of
	// the same number. Used for the kernel's own sections.
	MapIdentical MapType = iota
	// MapFramed allocates a fresh physical frame per virtual page.
	MapFramed
)

// MapPermission is the subset of PTEFlags a caller may request for a
// MapArea; V is always added by the page table itself, never requested
// directly.
type MapPermission uint8

const (
	PermR MapPermission = 1 << 1
	PermW MapPermission = 1 << 2
	PermX MapPermission = 1 << 3
	PermU MapPermission = 1 << 4
)

// MapArea is a contiguous range of virtual pages sharing one mapping type
// and permission set.
type MapArea struct {
	startVPN, endVPN addr.VirtPageNum // [startVPN, endVPN)
	dataFrames       map[addr.VirtPageNum]*pmm.FrameTracker
	mapType          MapType
	perm             MapPermission
}

// NewMapArea describes the virtual page range covering [startVA, endVA)
// with the given mapping type and permission. It does not touch the page
// table; call Map to install it.
func NewMapArea(startVA, endVA addr.VirtAddr, mapType MapType, perm MapPermission) *MapArea {
	return &MapArea{
		startVPN:   startVA.Floor(),
		endVPN:     endVA.Ceil(),
		dataFrames: make(map[addr.VirtPageNum]*pmm.FrameTracker),
		mapType:    mapType,
		perm:       perm,
	}
}

// EndVPN returns the first virtual page number past this area.
func (a *MapArea) EndVPN() addr.VirtPageNum { return a.endVPN }

func (a *MapArea) mapOne(pt *PageTable, vpn addr.VirtPageNum) {
	var ppn addr.PhysPageNum
	switch a.mapType {
	case MapIdentical:
		ppn = addr.PhysPageNumFromUint(uintptr(vpn))
	case MapFramed:
		frame := pmm.Alloc()
		if frame == nil {
			panic("vmm: frame alloc failed mapping area")
		}
		ppn = frame.PhysPageNum()
		a.dataFrames[vpn] = frame
	}
	pt.Map(vpn, ppn, PTEFlags(a.perm))
}

func (a *MapArea) unmapOne(pt *PageTable, vpn addr.VirtPageNum) {
	if a.mapType == MapFramed {
		if frame, ok := a.dataFrames[vpn]; ok {
			frame.Release()
			delete(a.dataFrames, vpn)
		}
	}
	pt.Unmap(vpn)
}

// Map installs every virtual page in the area into pt.
func (a *MapArea) Map(pt *PageTable) {
	for vpn := a.startVPN; vpn != a.endVPN; vpn++ {
		a.mapOne(pt, vpn)
	}
}

// Unmap removes every virtual page in the area from pt, releasing any
// frames this area owns.
func (a *MapArea) Unmap(pt *PageTable) {
	for vpn := a.startVPN; vpn != a.endVPN; vpn++ {
		a.unmapOne(pt, vpn)
	}
}

// WriteBytes copies data into the area's backing frames, page by page.
// The area must use MapFramed and already be mapped into pt.
func (a *MapArea) WriteBytes(pt *PageTable, data []byte) {
	if a.mapType != MapFramed {
		panic("vmm: WriteBytes on a non-framed area")
	}
	vpn := a.startVPN
	for offset := 0; offset < len(data); offset += config.PageSize {
		end := offset + config.PageSize
		if end > len(data) {
			end = len(data)
		}
		src := data[offset:end]

		pte, ok := pt.Translate(vpn)
		if !ok {
			panic("vmm: failed to translate vpn while writing area contents")
		}
		dst := pte.PPN().Bytes()
		copy(dst, src)
		vpn++
	}
}
