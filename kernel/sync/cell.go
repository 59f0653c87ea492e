// Package sync provides the uniprocessor exclusive-access primitive used to
// guard every globally mutable kernel singleton (frame allocator, kernel
// memory set, task manager). The kernel runs on a single hardware thread, so
// the primitive does not spin or block: it hands out exclusive access and
// panics if that access is still outstanding when requested again. A
// multicore port would replace Cell with a per-CPU structure or spinlock;
// call sites keep the same "exclusive borrow for the duration of one method"
// contract either way.
package sync

import "sync/atomic"

// Cell wraps a value of type T so that it can only be accessed through
// Access, which panics on reentrant use.
type Cell[T any] struct {
	held  atomic.Bool
	value T
}

// NewCell wraps v in a Cell.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Access returns an exclusive accessor for the wrapped value. The accessor
// must be released via Release before any other Access call on the same
// Cell, including recursive calls from the same call stack, or Access
// panics.
func (c *Cell[T]) Access() *Accessor[T] {
	if !c.held.CompareAndSwap(false, true) {
		panic("sync: reentrant access to uniprocessor cell")
	}
	return &Accessor[T]{cell: c}
}

// Accessor is the exclusive handle returned by Cell.Access.
type Accessor[T any] struct {
	cell *Cell[T]
}

// Value returns a pointer to the guarded value.
func (a *Accessor[T]) Value() *T { return &a.cell.value }

// Release relinquishes the accessor, allowing a subsequent Access call to
// succeed. Calling Release more than once panics.
func (a *Accessor[T]) Release() {
	if !a.cell.held.CompareAndSwap(true, false) {
		panic("sync: double release of uniprocessor cell")
	}
}
