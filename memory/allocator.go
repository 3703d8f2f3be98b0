package memory

import "fmt"

// ---------------------------------------------------------------------------
// Allocator interface
// ---------------------------------------------------------------------------

// Strategy identifies an allocator's allocation discipline.
type Strategy uint8

const (
	StrategyArena Strategy = iota + 1
	StrategyRefCount
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyArena:
		return "ARENA"
	case StrategyRefCount:
		return "REFCOUNT"
	default:
		return fmt.Sprintf("STRATEGY(%d)", uint8(s))
	}
}

// Allocator is the capability object through which all heap-backed values are
// produced. An allocator is bound to exactly one strategy; objects constructed
// under one strategy must never be destroyed through the other strategy's
// path. Delete checks that pairing and panics on misuse.
type Allocator interface {
	// Strategy reports the allocation discipline backing this allocator.
	Strategy() Strategy

	// AllocateBytes returns a buffer of n bytes from the underlying resource.
	AllocateBytes(n int) []byte

	// DeallocateBytes releases a buffer previously returned by AllocateBytes.
	// For the arena strategy this is a no-op: memory is reclaimed in bulk when
	// the arena is destroyed.
	DeallocateBytes(buf []byte)

	// NewHandle creates an owner tag under this allocator's strategy. destroy,
	// if non-nil, runs when the object is reclaimed: at refcount zero, or in
	// bulk at arena teardown. Trivially destructible objects pass nil and are
	// not registered for cleanup.
	NewHandle(destroy func()) Handle

	// Delete destroys an object through its handle. The handle must have been
	// created by this allocator's strategy; mixing strategies panics.
	Delete(h Handle)
}

// NewObject allocates and constructs a T under the given allocator, returning
// the object and its owning handle. If the constructed object implements
// interface{ Destroy() }, its Destroy method is registered as the destructor.
func NewObject[T any](a Allocator, init func(*T)) (*T, Handle) {
	p := new(T)
	if init != nil {
		init(p)
	}
	var destroy func()
	if d, ok := any(p).(interface{ Destroy() }); ok {
		destroy = d.Destroy
	}
	return p, a.NewHandle(destroy)
}

// DeleteObject destroys an object previously produced by NewObject under the
// same allocator. Arena-owned objects are not reclaimed here; only their
// destructor obligation is discharged at arena teardown.
func DeleteObject[T any](a Allocator, p *T, h Handle) {
	if p == nil {
		panic("memory: DeleteObject of nil object")
	}
	a.Delete(h)
}

// checkOwner panics if the handle was not created under the given strategy.
func checkOwner(h Handle, s Strategy) {
	want := OwnerArena
	if s == StrategyRefCount {
		want = OwnerRefCount
	}
	if h.owner != want {
		panic(fmt.Sprintf("memory: %s allocator asked to destroy %s-owned handle", s, h.owner))
	}
}
