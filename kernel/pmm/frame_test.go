package pmm

import (
	"testing"

	"github.com/LiamStanDev/mini-os/kernel/addr"
)

func resetAllocator(t *testing.T, start, end uintptr) {
	t.Helper()
	acc := global.Access()
	*acc.Value() = allocator{}
	acc.Release()
	Init(addr.PhysPageNumFromUint(start), addr.PhysPageNumFromUint(end))
}

func TestAllocZeroesFrame(t *testing.T) {
	resetAllocator(t, 0x80000, 0x80010)

	f := Alloc()
	if f == nil {
		t.Fatal("expected a frame")
	}
	defer f.Release()

	b := f.PhysPageNum().Bytes()
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not zeroed: %x", i, v)
		}
	}
}

func TestAllocExhaustion(t *testing.T) {
	resetAllocator(t, 0x80000, 0x80002)

	f1 := Alloc()
	f2 := Alloc()
	f3 := Alloc()

	if f1 == nil || f2 == nil {
		t.Fatal("expected first two allocations to succeed")
	}
	if f3 != nil {
		t.Fatal("expected third allocation to fail")
	}

	f1.Release()
	f2.Release()
}

func TestReleaseAndReallocRoundTrip(t *testing.T) {
	resetAllocator(t, 0x80000, 0x80001)

	f1 := Alloc()
	if f1 == nil {
		t.Fatal("expected allocation to succeed")
	}
	ppn := f1.PhysPageNum()
	f1.Release()

	f2 := Alloc()
	if f2 == nil {
		t.Fatal("expected reallocation after release to succeed")
	}
	defer f2.Release()
	if f2.PhysPageNum() != ppn {
		t.Fatalf("expected recycled ppn %v, got %v", ppn, f2.PhysPageNum())
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	resetAllocator(t, 0x80000, 0x80001)
	f := Alloc()
	f.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double release")
		}
	}()
	f.Release()
}
