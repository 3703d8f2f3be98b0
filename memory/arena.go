package memory

// ---------------------------------------------------------------------------
// Arena allocator
// ---------------------------------------------------------------------------

// arenaSlabSize is the default size of a bump-allocation slab.
const arenaSlabSize = 64 * 1024

// Arena is a bump allocator. Raw byte requests are carved out of slabs;
// nothing is freed individually. Objects with non-trivial destructors are
// registered and destroyed, in reverse registration order, when the arena is
// reset or destroyed.
//
// An arena's backing storage must never be shared between concurrently
// running evaluation frames; arenas are not safe for concurrent use.
type Arena struct {
	slabs    [][]byte
	off      int
	cleanups []func()
	dead     bool
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Strategy returns StrategyArena.
func (a *Arena) Strategy() Strategy { return StrategyArena }

// AllocateBytes carves n bytes out of the current slab, growing as needed.
// Requests larger than the slab size get a dedicated slab.
func (a *Arena) AllocateBytes(n int) []byte {
	if a.dead {
		panic("memory: AllocateBytes on destroyed arena")
	}
	if n == 0 {
		return nil
	}
	if n > arenaSlabSize {
		slab := make([]byte, n)
		// Dedicated slab; keep the current bump slab in place.
		if len(a.slabs) == 0 {
			a.slabs = append(a.slabs, slab)
			a.off = n
			return slab
		}
		last := len(a.slabs) - 1
		a.slabs = append(a.slabs, a.slabs[last])
		a.slabs[last] = slab
		return slab
	}
	if len(a.slabs) == 0 || a.off+n > len(a.slabs[len(a.slabs)-1]) {
		a.slabs = append(a.slabs, make([]byte, arenaSlabSize))
		a.off = 0
	}
	slab := a.slabs[len(a.slabs)-1]
	buf := slab[a.off : a.off+n : a.off+n]
	a.off += n
	return buf
}

// DeallocateBytes is a no-op: arena memory is reclaimed in bulk.
func (a *Arena) DeallocateBytes([]byte) {}

// NewHandle returns an arena-owned handle, registering destroy (if non-nil)
// to run at arena teardown.
func (a *Arena) NewHandle(destroy func()) Handle {
	if a.dead {
		panic("memory: NewHandle on destroyed arena")
	}
	if destroy != nil {
		a.cleanups = append(a.cleanups, destroy)
	}
	return Handle{owner: OwnerArena, arena: a}
}

// Delete verifies the handle is arena-owned. Individual deletion is a no-op:
// the destructor obligation is discharged at teardown, never here.
func (a *Arena) Delete(h Handle) {
	checkOwner(h, StrategyArena)
	if h.arena != a {
		panic("memory: Delete of handle owned by a different arena")
	}
}

// Reset runs all registered destructors in reverse order and drops the
// arena's slabs, leaving it reusable.
func (a *Arena) Reset() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
	a.slabs = nil
	a.off = 0
}

// Destroy releases the arena. Further allocation panics.
func (a *Arena) Destroy() {
	a.Reset()
	a.dead = true
}

// BytesAllocated reports the total slab bytes held by the arena.
func (a *Arena) BytesAllocated() int {
	total := 0
	for _, s := range a.slabs {
		total += len(s)
	}
	return total
}
