package memory

import "sync/atomic"

// ---------------------------------------------------------------------------
// Reference-counted allocator
// ---------------------------------------------------------------------------

// RefCounted allocates individually reference-counted objects. Counts are
// atomic, so values may be handed across frame and thread boundaries; object
// lifetime is independent of any single evaluation frame.
//
// Byte buffers come from the Go heap. DeallocateBytes only maintains the
// outstanding-allocation accounting used by debug assertions and tests; the
// runtime reclaims the storage itself.
type RefCounted struct {
	outstanding atomic.Int64
}

// NewRefCounted creates a reference-counted allocator.
func NewRefCounted() *RefCounted {
	return &RefCounted{}
}

// Strategy returns StrategyRefCount.
func (r *RefCounted) Strategy() Strategy { return StrategyRefCount }

// AllocateBytes returns a fresh buffer of n bytes.
func (r *RefCounted) AllocateBytes(n int) []byte {
	if n == 0 {
		return nil
	}
	r.outstanding.Add(1)
	return make([]byte, n)
}

// DeallocateBytes releases a buffer previously returned by AllocateBytes.
// Every allocation must be matched by exactly one deallocation.
func (r *RefCounted) DeallocateBytes(buf []byte) {
	if buf == nil {
		return
	}
	if r.outstanding.Add(-1) < 0 {
		panic("memory: DeallocateBytes without matching AllocateBytes")
	}
}

// NewHandle returns a handle with a reference count of one.
func (r *RefCounted) NewHandle(destroy func()) Handle {
	rc := &refCount{destroy: destroy}
	rc.n.Store(1)
	return Handle{owner: OwnerRefCount, rc: rc}
}

// Delete releases one reference, destroying the object at zero. The handle
// must be refcount-owned; arena-owned handles panic.
func (r *RefCounted) Delete(h Handle) {
	checkOwner(h, StrategyRefCount)
	h.Release()
}

// Outstanding reports the number of byte allocations not yet deallocated.
func (r *RefCounted) Outstanding() int {
	return int(r.outstanding.Load())
}

// ---------------------------------------------------------------------------
// Either allocator
// ---------------------------------------------------------------------------

// Either dispatches to the arena strategy when constructed with an arena, and
// to the reference-counted strategy otherwise. It lets host-facing code be
// written once while supporting both ownership disciplines; prefer passing a
// concrete *Arena or *RefCounted where the choice is statically known.
type Either struct {
	arena *Arena
	rc    *RefCounted
}

// NewEither creates an allocator bound at construction time: a non-nil arena
// selects the arena strategy, nil selects reference counting.
func NewEither(arena *Arena) *Either {
	e := &Either{arena: arena}
	if arena == nil {
		e.rc = NewRefCounted()
	}
	return e
}

// Strategy reports the strategy chosen at construction.
func (e *Either) Strategy() Strategy {
	if e.arena != nil {
		return StrategyArena
	}
	return StrategyRefCount
}

// AllocateBytes dispatches to the bound strategy.
func (e *Either) AllocateBytes(n int) []byte {
	if e.arena != nil {
		return e.arena.AllocateBytes(n)
	}
	return e.rc.AllocateBytes(n)
}

// DeallocateBytes dispatches to the bound strategy.
func (e *Either) DeallocateBytes(buf []byte) {
	if e.arena != nil {
		e.arena.DeallocateBytes(buf)
		return
	}
	e.rc.DeallocateBytes(buf)
}

// NewHandle dispatches to the bound strategy.
func (e *Either) NewHandle(destroy func()) Handle {
	if e.arena != nil {
		return e.arena.NewHandle(destroy)
	}
	return e.rc.NewHandle(destroy)
}

// Delete dispatches to the bound strategy.
func (e *Either) Delete(h Handle) {
	if e.arena != nil {
		e.arena.Delete(h)
		return
	}
	e.rc.Delete(h)
}
