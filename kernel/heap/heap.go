// Package heap is the kernel's dynamic allocator: a buddy allocator over a
// fixed-size static arena, used to back variable-sized bookkeeping data
// (free-list stacks, growable tables) that would otherwise have to commit
// to a worst-case static array size. It never hands out memory that could
// alias a FrameTracker's physical frame or a page-table frame - those stay
// under pmm's exclusive ownership; heap only ever carves up its own arena.
//
// Blocks handed out by Alloc must never store a Go pointer: the arena is a
// plain byte array outside anything the garbage collector scans, so a
// pointer written there would not keep its target alive. Callers store
// only fixed-width scalars (uintptr, and the like).
package heap

import (
	"unsafe"

	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/sync"
)

// minBlockShift bounds the smallest block Alloc will ever hand out (64
// bytes), keeping the order count small enough that the free-list array is
// itself a small fixed allocation.
const minBlockShift = 6

// maxOrder is the number of buddy orders the arena supports, derived from
// KernelHeapSize. Order 0 is 1<<minBlockShift bytes; order maxOrder-1 covers
// the whole arena.
var maxOrder = log2(config.KernelHeapSize) - minBlockShift + 1

// arena is the raw backing store every block is carved from. Its size is
// fixed at compile time per spec.md §6's KernelHeapSize; it is never
// resized and never touched by the Go runtime's own allocator.
var arena [config.KernelHeapSize]byte

// freeNode is an intrusive singly-linked list node written directly into a
// free block's first bytes (the classic buddy-allocator trick of using the
// free memory itself to hold the free list, so no separate allocator backs
// the allocator).
type freeNode struct {
	next uintptr // offset into arena, or noNext
}

const noNext = ^uintptr(0)

type state struct {
	freeList [64]uintptr // freeList[order] = offset of first free block, or noNext
	inited   bool
}

var global = sync.NewCell(state{})

func log2(v uintptr) int {
	n := 0
	for (uintptr(1) << uint(n)) < v {
		n++
	}
	return n
}

func order(size uintptr) int {
	if size < (1 << minBlockShift) {
		size = 1 << minBlockShift
	}
	return log2(size) - minBlockShift
}

func blockSize(ord int) uintptr { return uintptr(1) << uint(ord+minBlockShift) }

func nodeAt(offset uintptr) *freeNode {
	return (*freeNode)(unsafe.Pointer(&arena[offset]))
}

func init() {
	Init()
}

// Init resets the allocator to a single free block spanning the whole
// arena. It is idempotent and safe to call more than once (each call
// discards every outstanding allocation, so it must only be called during
// boot before any Alloc). boot.Kmain calls it explicitly (redundantly with
// the package init above) purely to get a log line at a known point in the
// boot sequence; package init alone is what makes the allocator usable to
// packages that reach for heap.Alloc before boot wires anything up, such
// as host-side unit tests.
func Init() {
	acc := global.Access()
	defer acc.Release()
	st := acc.Value()

	for i := range st.freeList {
		st.freeList[i] = noNext
	}
	top := maxOrder - 1
	nodeAt(0).next = noNext
	st.freeList[top] = 0
	st.inited = true
}

// push inserts the block at offset into order ord's free list.
func (st *state) push(ord int, offset uintptr) {
	nodeAt(offset).next = st.freeList[ord]
	st.freeList[ord] = offset
}

// pop removes and returns the head of order ord's free list, or (0, false)
// if empty.
func (st *state) pop(ord int) (uintptr, bool) {
	offset := st.freeList[ord]
	if offset == noNext {
		return 0, false
	}
	st.freeList[ord] = nodeAt(offset).next
	return offset, true
}

// remove deletes offset from order ord's free list if present, returning
// whether it was found. Used when coalescing finds its buddy already free.
func (st *state) remove(ord int, offset uintptr) bool {
	cur := st.freeList[ord]
	if cur == offset {
		st.freeList[ord] = nodeAt(offset).next
		return true
	}
	for cur != noNext {
		n := nodeAt(cur)
		if n.next == offset {
			n.next = nodeAt(offset).next
			return true
		}
		cur = n.next
	}
	return false
}

// split repeatedly halves a block of order from down to order want,
// pushing the unused halves onto their own free lists, and returns the
// offset of a block of order want.
func (st *state) split(from int, offset uintptr, want int) uintptr {
	for from > want {
		from--
		buddy := offset + blockSize(from)
		st.push(from, buddy)
	}
	return offset
}

// Alloc returns the offset (relative to the arena base, not an absolute
// address) of a block of at least size bytes, and the order it was
// allocated at, or ok=false if the arena has no block large enough.
// Callers that need an absolute pointer use Addr(offset).
func Alloc(size uintptr) (offset uintptr, ord int, ok bool) {
	want := order(size)
	acc := global.Access()
	defer acc.Release()
	st := acc.Value()
	if !st.inited {
		panic("heap: Alloc before Init")
	}

	for from := want; from < maxOrder; from++ {
		if blk, found := st.pop(from); found {
			return st.split(from, blk, want), want, true
		}
	}
	return 0, 0, false
}

// Free returns the block at offset, allocated at order ord by Alloc, to
// the allocator, coalescing with its buddy where possible.
func Free(offset uintptr, ord int) {
	acc := global.Access()
	defer acc.Release()
	st := acc.Value()

	for ord < maxOrder-1 {
		buddy := offset ^ blockSize(ord)
		if !st.remove(ord, buddy) {
			break
		}
		if buddy < offset {
			offset = buddy
		}
		ord++
	}
	st.push(ord, offset)
}

// Addr returns the absolute address of the byte at offset within the
// arena, for callers that need a real pointer (e.g. to hand to unsafe.Slice).
func Addr(offset uintptr) uintptr {
	return uintptr(unsafe.Pointer(&arena[offset]))
}
