package vmm

import (
	"unsafe"

	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/config"
)

// TranslatedByteBuffer walks the address space named by satp and returns
// the physical byte slices backing [ptr, ptr+length), one slice per page
// the range crosses. It panics if any page in the range is unmapped.
//
// This walks exactly length bytes starting at ptr, splitting strictly at
// page boundaries, rather than re-deriving the next page's start address
// from the previous slice's end - the two only differ when a caller's
// length does not land on a page boundary, and the explicit walk is the
// one that can't drift.
func TranslatedByteBuffer(satp uintptr, ptr uintptr, length int) [][]byte {
	pt := FromToken(satp)

	var result [][]byte
	remaining := length
	cursor := ptr

	for remaining > 0 {
		va := addr.VirtAddrFromUint(cursor)
		vpn := va.Floor()
		pte, ok := pt.Translate(vpn)
		if !ok {
			panic("vmm: cannot translate page")
		}

		pageStart := uintptr(vpn.Address())
		offsetInPage := cursor - pageStart
		chunk := config.PageSize - int(offsetInPage)
		if chunk > remaining {
			chunk = remaining
		}

		page := pte.PPN().Bytes()
		result = append(result, page[offsetInPage:int(offsetInPage)+chunk])

		cursor += uintptr(chunk)
		remaining -= chunk
	}

	return result
}

// TranslatedStr reads a NUL-terminated string starting at ptr out of the
// address space named by satp, one byte at a time via TranslatedByteBuffer
// so it also crosses page boundaries safely.
func TranslatedStr(satp uintptr, ptr uintptr) string {
	var out []byte
	for {
		b := TranslatedByteBuffer(satp, ptr, 1)[0][0]
		if b == 0 {
			break
		}
		out = append(out, b)
		ptr++
	}
	return string(out)
}

// TranslatedRef returns a pointer to a single T located at ptr in the
// address space named by satp. T must fit within one page without
// crossing a page boundary.
func TranslatedRef[T any](satp uintptr, ptr uintptr) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	bufs := TranslatedByteBuffer(satp, ptr, size)
	if len(bufs) != 1 {
		panic("vmm: translated value crosses a page boundary")
	}
	return (*T)(unsafe.Pointer(&bufs[0][0]))
}
