package vmm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/pmm"
)

// buildMinimalELF assembles a minimal valid little-endian ELF64 executable
// with a single PT_LOAD segment, entirely by hand - there is no assembler
// in this build chain to produce a real one.
func buildMinimalELF(t *testing.T, entry, vaddr uint64, segment []byte) []byte {
	t.Helper()

	const ehsize = 64
	const phentsize = 56
	phoff := uint64(ehsize)
	dataOff := ehsize + phentsize

	var buf bytes.Buffer

	ident := [16]byte{0x7f, 'E', 'L', 'F', 2 /* ELFCLASS64 */, 1 /* little endian */, 1 /* version */}
	buf.Write(ident[:])
	binary.Write(&buf, binary.LittleEndian, uint16(2))   // e_type = ET_EXEC
	binary.Write(&buf, binary.LittleEndian, uint16(243)) // e_machine = EM_RISCV
	binary.Write(&buf, binary.LittleEndian, uint32(1))   // e_version
	binary.Write(&buf, binary.LittleEndian, entry)
	binary.Write(&buf, binary.LittleEndian, phoff)
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // e_shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // e_flags
	binary.Write(&buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(&buf, binary.LittleEndian, uint16(phentsize))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shstrndx

	const pfR, pfW, pfX = 4, 2, 1
	binary.Write(&buf, binary.LittleEndian, uint32(1))               // p_type = PT_LOAD
	binary.Write(&buf, binary.LittleEndian, uint32(pfR|pfW|pfX))     // p_flags
	binary.Write(&buf, binary.LittleEndian, uint64(dataOff))         // p_offset
	binary.Write(&buf, binary.LittleEndian, vaddr)                   // p_vaddr
	binary.Write(&buf, binary.LittleEndian, vaddr)                   // p_paddr
	binary.Write(&buf, binary.LittleEndian, uint64(len(segment)))    // p_filesz
	binary.Write(&buf, binary.LittleEndian, uint64(len(segment)+16)) // p_memsz (some bss)
	binary.Write(&buf, binary.LittleEndian, uint64(0x1000))          // p_align

	buf.Write(segment)

	return buf.Bytes()
}

func TestFromELFMapsLoadSegmentAndStack(t *testing.T) {
	pmm.Init(addr.PhysPageNumFromUint(0x80000), addr.PhysPageNumFromUint(0x81000))

	const vaddr = 0x10000
	const entry = vaddr
	payload := []byte("user program body")
	elfData := buildMinimalELF(t, entry, vaddr, payload)

	ms, userStackTop, gotEntry := FromELF(elfData)

	if gotEntry != uintptr(entry) {
		t.Fatalf("got entry %x, want %x", gotEntry, entry)
	}
	if userStackTop <= addr.VirtAddrFromUint(vaddr) {
		t.Fatalf("expected user stack to sit above the loaded segment")
	}

	vpn := addr.VirtAddrFromUint(vaddr).Floor()
	pte, ok := ms.Translate(vpn)
	if !ok {
		t.Fatal("expected the loaded segment's page to be mapped")
	}
	got := pte.PPN().Bytes()[:len(payload)]
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}
