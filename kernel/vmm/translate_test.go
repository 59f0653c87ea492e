package vmm

import (
	"bytes"
	"testing"

	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/pmm"
)

func TestTranslatedByteBufferWithinOnePage(t *testing.T) {
	pmm.Init(addr.PhysPageNumFromUint(0x80000), addr.PhysPageNumFromUint(0x80100))
	pt := NewPageTable()

	vpn := addr.VirtPageNumFromUint(0x55)
	frame := pmm.Alloc()
	pt.Map(vpn, frame.PhysPageNum(), FlagR|FlagW)

	page := frame.PhysPageNum().Bytes()
	copy(page, []byte("hello world"))

	va := uintptr(vpn.Address()) + 6
	bufs := TranslatedByteBuffer(pt.Token()&((1<<44)-1), va, 5)
	if len(bufs) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(bufs))
	}
	if !bytes.Equal(bufs[0], []byte("world")) {
		t.Fatalf("got %q", bufs[0])
	}
}

func TestTranslatedByteBufferCrossesPageBoundary(t *testing.T) {
	pmm.Init(addr.PhysPageNumFromUint(0x80000), addr.PhysPageNumFromUint(0x80100))
	pt := NewPageTable()

	vpnA := addr.VirtPageNumFromUint(0x60)
	vpnB := addr.VirtPageNumFromUint(0x61)

	frameA := pmm.Alloc()
	frameB := pmm.Alloc()
	pt.Map(vpnA, frameA.PhysPageNum(), FlagR|FlagW)
	pt.Map(vpnB, frameB.PhysPageNum(), FlagR|FlagW)

	pageA := frameA.PhysPageNum().Bytes()
	pageB := frameB.PhysPageNum().Bytes()
	copy(pageA[config.PageSize-3:], []byte("abc"))
	copy(pageB[:3], []byte("def"))

	va := uintptr(vpnA.Address()) + uintptr(config.PageSize-3)
	bufs := TranslatedByteBuffer(pt.Token()&((1<<44)-1), va, 6)

	var got []byte
	for _, b := range bufs {
		got = append(got, b...)
	}
	if !bytes.Equal(got, []byte("abcdef")) {
		t.Fatalf("got %q", got)
	}
	if len(bufs) != 2 {
		t.Fatalf("expected the read to split into 2 chunks at the page boundary, got %d", len(bufs))
	}
}

func TestTranslatedStrReadsUntilNUL(t *testing.T) {
	pmm.Init(addr.PhysPageNumFromUint(0x80000), addr.PhysPageNumFromUint(0x80100))
	pt := NewPageTable()

	vpn := addr.VirtPageNumFromUint(0x70)
	frame := pmm.Alloc()
	pt.Map(vpn, frame.PhysPageNum(), FlagR|FlagW)

	page := frame.PhysPageNum().Bytes()
	copy(page, []byte("hi\x00garbage"))

	va := uintptr(vpn.Address())
	got := TranslatedStr(pt.Token()&((1<<44)-1), va)
	if got != "hi" {
		t.Fatalf("got %q", got)
	}
}
