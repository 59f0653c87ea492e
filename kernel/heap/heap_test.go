package heap

import (
	"testing"

	"github.com/LiamStanDev/mini-os/kernel/config"
)

func TestAllocReturnsDistinctNonOverlappingBlocks(t *testing.T) {
	Init()

	o1, ord1, ok := Alloc(100)
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	o2, ord2, ok := Alloc(100)
	if !ok {
		t.Fatal("expected second allocation to succeed")
	}

	sz := blockSize(ord1)
	if o1 == o2 {
		t.Fatal("expected distinct blocks")
	}
	if o1 < o2 && o2 < o1+sz {
		t.Fatalf("blocks overlap: o1=%d sz=%d o2=%d", o1, sz, o2)
	}
	if o2 < o1 && o1 < o2+blockSize(ord2) {
		t.Fatalf("blocks overlap: o2=%d sz=%d o1=%d", o2, blockSize(ord2), o1)
	}
}

func TestFreeCoalescesBuddiesBackToTopOrder(t *testing.T) {
	Init()

	a, aOrd, ok := Alloc(64)
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	b, bOrd, ok := Alloc(64)
	if !ok {
		t.Fatal("expected allocation to succeed")
	}

	acc := global.Access()
	top := maxOrder - 1
	before := acc.Value().freeList[top]
	acc.Release()
	if before != noNext {
		t.Fatalf("expected top order exhausted by two small allocs, got free head %d", before)
	}

	Free(a, aOrd)
	Free(b, bOrd)

	acc = global.Access()
	after := acc.Value().freeList[top]
	acc.Release()
	if after == noNext {
		t.Fatal("expected freeing both buddies to coalesce back to one top-order block")
	}
}

func TestAllocExhaustionFailsCleanly(t *testing.T) {
	Init()

	var got []struct {
		offset uintptr
		ord    int
	}
	for {
		o, ord, ok := Alloc(config.KernelHeapSize)
		if !ok {
			break
		}
		got = append(got, struct {
			offset uintptr
			ord    int
		}{o, ord})
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one whole-arena allocation to succeed, got %d", len(got))
	}

	if _, _, ok := Alloc(1); ok {
		t.Fatal("expected allocation to fail once the arena is exhausted")
	}

	for _, g := range got {
		Free(g.offset, g.ord)
	}
}

func TestUintptrStackPushPopIsLIFO(t *testing.T) {
	Init()

	var s UintptrStack
	for _, v := range []uintptr{10, 20, 30, 40, 50, 60, 70, 80, 90} {
		s.Push(v)
	}

	want := []uintptr{90, 80, 70, 60, 50, 40, 30, 20, 10}
	for _, w := range want {
		got, ok := s.Pop()
		if !ok {
			t.Fatalf("expected a value, stack empty early")
		}
		if got != w {
			t.Fatalf("expected %d, got %d", w, got)
		}
	}
	if _, ok := s.Pop(); ok {
		t.Fatal("expected stack to be empty")
	}
}

func TestUintptrStackContains(t *testing.T) {
	Init()

	var s UintptrStack
	s.Push(1)
	s.Push(2)
	s.Push(3)

	if !s.Contains(2) {
		t.Fatal("expected Contains(2) to be true")
	}
	if s.Contains(99) {
		t.Fatal("expected Contains(99) to be false")
	}
}
