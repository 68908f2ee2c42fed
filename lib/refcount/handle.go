package refcount

import "sync/atomic"

// Handle is a shared-ownership wrapper around a value of type T.
// It replaces intrusive reference counting: every owner holds the same
// *Handle, Acquire/Release adjust the count atomically, and the destroy
// callback runs exactly once when the last reference is dropped.
type Handle[T any] struct {
	refs    atomic.Int32
	value   T
	destroy func(T)
}

// New creates a handle holding v with a reference count of one.
// destroy may be nil.
func New[T any](v T, destroy func(T)) *Handle[T] {
	h := &Handle[T]{value: v, destroy: destroy}
	h.refs.Store(1)
	return h
}

// Acquire adds a reference and returns h for convenience.
// Safe to call concurrently with other Acquire/Release calls.
func (h *Handle[T]) Acquire() *Handle[T] {
	if h.refs.Add(1) <= 1 {
		panic("refcount: acquire on destroyed handle")
	}
	return h
}

// Release drops a reference. The destroy callback runs on the call that
// brings the count to zero. After that the handle must not be used.
func (h *Handle[T]) Release() {
	switch n := h.refs.Add(-1); {
	case n > 0:
	case n == 0:
		if h.destroy != nil {
			h.destroy(h.value)
		}
	default:
		panic("refcount: release without matching acquire")
	}
}

// Value returns the wrapped value. The caller must hold a reference.
func (h *Handle[T]) Value() T { return h.value }

// Refs returns the current reference count. Diagnostics only.
func (h *Handle[T]) Refs() int32 { return h.refs.Load() }
