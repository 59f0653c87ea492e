// Package addr implements the SV39 address and page-number newtypes:
// PhysAddr, VirtAddr, PhysPageNum and VirtPageNum. Conversions from raw
// integers mask down to the respective SV39 bit width.
package addr

import (
	"unsafe"

	"github.com/LiamStanDev/mini-os/kernel/config"
)

const (
	paWidth  = 56
	vaWidth  = 39
	ppnWidth = paWidth - config.PageSizeBits
	vpnWidth = vaWidth - config.PageSizeBits
)

// PhysAddr is a physical memory address, masked to 56 bits.
type PhysAddr uintptr

// VirtAddr is a virtual memory address, masked to 39 bits.
type VirtAddr uintptr

// PhysPageNum is a physical page number, masked to 44 bits.
type PhysPageNum uintptr

// VirtPageNum is a virtual page number, masked to 27 bits.
type VirtPageNum uintptr

// PhysAddrFromUint masks v down to the physical address width.
func PhysAddrFromUint(v uintptr) PhysAddr { return PhysAddr(v & ((1 << paWidth) - 1)) }

// VirtAddrFromUint masks v down to the virtual address width.
func VirtAddrFromUint(v uintptr) VirtAddr { return VirtAddr(v & ((1 << vaWidth) - 1)) }

// PhysPageNumFromUint masks v down to the physical page number width.
func PhysPageNumFromUint(v uintptr) PhysPageNum { return PhysPageNum(v & ((1 << ppnWidth) - 1)) }

// VirtPageNumFromUint masks v down to the virtual page number width.
func VirtPageNumFromUint(v uintptr) VirtPageNum { return VirtPageNum(v & ((1 << vpnWidth) - 1)) }

// PageOffset returns the byte offset of a within its containing page.
func (a PhysAddr) PageOffset() uintptr { return uintptr(a) & (config.PageSize - 1) }

// Floor returns the physical page number containing a, rounded down.
func (a PhysAddr) Floor() PhysPageNum { return PhysPageNum(uintptr(a) / config.PageSize) }

// Ceil returns the physical page number containing a, rounded up.
func (a PhysAddr) Ceil() PhysPageNum {
	if a == 0 {
		return 0
	}
	return PhysPageNum((uintptr(a) + config.PageSize - 1) / config.PageSize)
}

// PageOffset returns the byte offset of a within its containing page.
func (a VirtAddr) PageOffset() uintptr { return uintptr(a) & (config.PageSize - 1) }

// Floor returns the virtual page number containing a, rounded down.
func (a VirtAddr) Floor() VirtPageNum { return VirtPageNum(uintptr(a) / config.PageSize) }

// Ceil returns the virtual page number containing a, rounded up.
func (a VirtAddr) Ceil() VirtPageNum {
	return VirtPageNum((uintptr(a) + config.PageSize - 1) / config.PageSize)
}

// Address returns the byte address at the start of page p.
func (p PhysPageNum) Address() PhysAddr { return PhysAddr(uintptr(p) << config.PageSizeBits) }

// Address returns the byte address at the start of page p.
func (p VirtPageNum) Address() VirtAddr { return VirtAddr(uintptr(p) << config.PageSizeBits) }

// Indexes returns the three 9-bit SV39 page-table indexes for vpn, ordered
// from the top-level table first (bits 26..18) to the leaf level last
// (bits 8..0).
func (p VirtPageNum) Indexes() [3]uintptr {
	const mask = 0x1ff
	v := uintptr(p)
	return [3]uintptr{
		(v >> 18) & mask,
		(v >> 9) & mask,
		(v >> 0) & mask,
	}
}

// Bytes returns a byte slice viewing the 4KiB frame named by p.
func (p PhysPageNum) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(p.Address()))), config.PageSize)
}

// AsPointer returns a typed pointer to the start of the frame named by p.
// The caller is responsible for ensuring T's size and alignment are
// compatible with page-granular storage.
func AsPointer[T any](p PhysPageNum) *T {
	return (*T)(unsafe.Pointer(uintptr(p.Address())))
}
