// Package pmm is the physical memory manager: a stack-based frame
// allocator handing out 4KiB physical frames between ekernel and the end
// of usable RAM.
package pmm

import (
	"github.com/LiamStanDev/mini-os/kernel/addr"
	"github.com/LiamStanDev/mini-os/kernel/heap"
	"github.com/LiamStanDev/mini-os/kernel/klog"
	"github.com/LiamStanDev/mini-os/kernel/sync"
)

// FrameTracker owns one physical frame and zeroes it on allocation. Unlike
// the tracker it's modeled on, it has no destructor: Go has no
// deterministic Drop, so callers must call Release explicitly once the
// frame is no longer needed. A frame whose Release is never called is
// simply leaked, same as forgetting to free in any manual-allocator
// language; callers that need the frame to outlive a function scope
// should hold onto the tracker, not its PPN alone.
type FrameTracker struct {
	PPN      addr.PhysPageNum
	released bool
}

// PhysPageNum returns the physical page number owned by this tracker.
func (f *FrameTracker) PhysPageNum() addr.PhysPageNum { return f.PPN }

// Release returns the frame to the global allocator. Calling Release
// twice on the same tracker panics.
func (f *FrameTracker) Release() {
	if f.released {
		panic("pmm: double release of frame tracker")
	}
	f.released = true
	dealloc(f.PPN)
}

func newFrameTracker(ppn addr.PhysPageNum) *FrameTracker {
	b := ppn.Bytes()
	for i := range b {
		b[i] = 0
	}
	return &FrameTracker{PPN: ppn}
}

// allocator is a stack (LIFO) physical frame allocator: a recycled page,
// most recently freed first, satisfies an allocation whenever one is
// available; otherwise pages are handed out sequentially from
// [current, end) until that range is exhausted. The recycled list is backed
// by the kernel heap rather than a Go slice - it is exactly the kind of
// growable bookkeeping data the heap package exists to hold.
type allocator struct {
	current  uintptr
	end      uintptr
	recycled heap.UintptrStack
}

func (a *allocator) init(start, end addr.PhysPageNum) {
	a.current = uintptr(start)
	a.end = uintptr(end)
}

func (a *allocator) alloc() (addr.PhysPageNum, bool) {
	if ppn, ok := a.recycled.Pop(); ok {
		return addr.PhysPageNumFromUint(ppn), true
	}
	if a.current == a.end {
		klog.Warn("frame allocator out of memory: current=%x end=%x", a.current, a.end)
		return 0, false
	}
	ppn := a.current
	a.current++
	return addr.PhysPageNumFromUint(ppn), true
}

func (a *allocator) dealloc(ppn addr.PhysPageNum) {
	v := uintptr(ppn)
	if v >= a.current {
		panic("pmm: frame has not been allocated")
	}
	if a.recycled.Contains(v) {
		panic("pmm: frame already deallocated")
	}
	a.recycled.Push(v)
}

var global = sync.NewCell(allocator{})

// Init sets the managed physical page range to [start, end).
func Init(start, end addr.PhysPageNum) {
	acc := global.Access()
	defer acc.Release()
	acc.Value().init(start, end)
}

// Alloc allocates one physical frame, zeroes it, and returns a tracker
// owning it. Returns nil if physical memory is exhausted.
func Alloc() *FrameTracker {
	acc := global.Access()
	ppn, ok := acc.Value().alloc()
	acc.Release()
	if !ok {
		return nil
	}
	return newFrameTracker(ppn)
}

func dealloc(ppn addr.PhysPageNum) {
	acc := global.Access()
	defer acc.Release()
	acc.Value().dealloc(ppn)
}
