// Package memory provides the allocation strategies used by the sift value
// model. Every heap-backed value carries a Handle identifying which strategy
// owns it: unowned values are static and never freed, arena-owned values are
// released en masse when the arena is torn down, and reference-counted values
// are released individually when their count reaches zero.
package memory

import (
	"fmt"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Owner tags
// ---------------------------------------------------------------------------

// Owner identifies which allocation strategy backs a value.
type Owner uint8

const (
	// OwnerNone marks static or externally owned values that are never freed.
	OwnerNone Owner = iota
	// OwnerArena marks values freed in bulk when their arena is destroyed.
	OwnerArena
	// OwnerRefCount marks values freed individually at refcount zero.
	OwnerRefCount
)

// String returns the owner tag name.
func (o Owner) String() string {
	switch o {
	case OwnerNone:
		return "NONE"
	case OwnerArena:
		return "ARENA"
	case OwnerRefCount:
		return "REFCOUNT"
	default:
		return fmt.Sprintf("OWNER(%d)", uint8(o))
	}
}

// ---------------------------------------------------------------------------
// Handle
// ---------------------------------------------------------------------------

// refCount is the shared state behind a reference-counted handle. The count
// is atomic so handles may cross frame/thread boundaries.
type refCount struct {
	n       atomic.Int32
	destroy func()
}

// Handle is a value's ownership tag. The zero Handle is unowned.
type Handle struct {
	owner Owner
	rc    *refCount
	arena *Arena
}

// Unowned returns a handle for static/shared values that are never freed.
func Unowned() Handle {
	return Handle{owner: OwnerNone}
}

// Owner reports which strategy backs this handle.
func (h Handle) Owner() Owner {
	return h.owner
}

// Arena returns the owning arena, or nil if the handle is not arena-owned.
func (h Handle) Arena() *Arena {
	return h.arena
}

// Retain increments the reference count. It is a no-op for unowned and
// arena-owned handles.
func (h Handle) Retain() {
	if h.owner != OwnerRefCount {
		return
	}
	if n := h.rc.n.Add(1); n <= 1 {
		panic(fmt.Sprintf("memory: Retain on released handle (count %d)", n))
	}
}

// Release decrements the reference count, running the registered destructor
// when the count reaches zero. It is a no-op for unowned and arena-owned
// handles: arena-owned values must only be reclaimed by the arena itself.
func (h Handle) Release() {
	if h.owner != OwnerRefCount {
		return
	}
	n := h.rc.n.Add(-1)
	switch {
	case n == 0:
		if h.rc.destroy != nil {
			h.rc.destroy()
		}
	case n < 0:
		panic(fmt.Sprintf("memory: Release past zero (count %d)", n))
	}
}

// Count returns the current reference count, or 0 for non-refcounted handles.
// Intended for tests and debug assertions.
func (h Handle) Count() int {
	if h.owner != OwnerRefCount {
		return 0
	}
	return int(h.rc.n.Load())
}
