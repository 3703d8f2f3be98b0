package types

import "github.com/sift-lang/sift/memory"

// ---------------------------------------------------------------------------
// Map payloads
// ---------------------------------------------------------------------------

// MapEntry is one key/value pair in insertion order.
type MapEntry struct {
	Key Value
	Val Value
}

// mapKey is the canonical index form of a map key. Int and uint keys that
// denote the same number share a canonical form; the entry retains the
// original key so strict lookups can still distinguish kinds.
type mapKey struct {
	kind Kind
	num  uint64
	str  string
}

// canonicalMapKey produces the index form for a key value. Only bool, int,
// uint, and string keys are valid; doubles participate in lookups (never
// storage) when they convert losslessly to an integer form.
func canonicalMapKey(v Value) (mapKey, bool) {
	switch v.kind {
	case KindBool:
		return mapKey{kind: KindBool, num: v.num}, true
	case KindString:
		return mapKey{kind: KindString, str: v.str}, true
	case KindInt, KindUint, KindDouble:
		n, _ := NumberFromValue(v)
		kind, bits := n.canonical()
		if kind == KindDouble {
			return mapKey{}, false
		}
		return mapKey{kind: kind, num: bits}, true
	default:
		return mapKey{}, false
	}
}

// Map is the payload of a map-kind value: insertion-ordered entries with a
// canonical-key index. Iteration order is insertion order, which is the
// deterministic-per-value order required of comprehension ranges.
type Map struct {
	h       memory.Handle
	entries []MapEntry
	index   map[mapKey][]int
}

// Len returns the entry count.
func (m *Map) Len() int { return len(m.entries) }

// Entry returns the entry at insertion position i.
func (m *Map) Entry(i int) MapEntry { return m.entries[i] }

// Handle returns the map's owner tag.
func (m *Map) Handle() memory.Handle { return m.h }

// Find looks up a key. In heterogeneous mode, numeric keys match across
// int/uint/double when the number converts losslessly; otherwise the key's
// kind must match the stored key exactly.
func (m *Map) Find(key Value, heterogeneous bool) (Value, bool) {
	ck, ok := canonicalMapKey(key)
	if !ok {
		return Value{}, false
	}
	for _, i := range m.index[ck] {
		if heterogeneous || m.entries[i].Key.kind == key.kind {
			return m.entries[i].Val, true
		}
	}
	return Value{}, false
}

// Has reports whether the key is present under the given equality regime.
func (m *Map) Has(key Value, heterogeneous bool) bool {
	_, ok := m.Find(key, heterogeneous)
	return ok
}

// MapBuilder accumulates entries and seals them into an immutable Map.
type MapBuilder struct {
	a             memory.Allocator
	heterogeneous bool
	entries       []MapEntry
	index         map[mapKey][]int
}

// NewMapBuilder creates a builder. In heterogeneous mode, int/uint keys that
// denote the same number collide; in strict mode only same-kind keys do.
func NewMapBuilder(a memory.Allocator, capacity int, heterogeneous bool) *MapBuilder {
	return &MapBuilder{
		a:             a,
		heterogeneous: heterogeneous,
		entries:       make([]MapEntry, 0, capacity),
		index:         make(map[mapKey][]int, capacity),
	}
}

// Put adds an entry, rejecting invalid key kinds and duplicate keys.
func (b *MapBuilder) Put(key, val Value) error {
	switch key.kind {
	case KindBool, KindInt, KindUint, KindString:
	default:
		// Doubles participate in lookups only; stored keys are restricted
		// to bool/int/uint/string.
		return StatusErrorf(CodeInvalidArgument, "invalid map key kind: %s", key.kind)
	}
	ck, _ := canonicalMapKey(key)
	for _, i := range b.index[ck] {
		if b.heterogeneous || b.entries[i].Key.kind == key.kind {
			return StatusErrorf(CodeInvalidArgument, "duplicate map key: %s", key.DebugString())
		}
	}
	b.index[ck] = append(b.index[ck], len(b.entries))
	b.entries = append(b.entries, MapEntry{Key: key, Val: val})
	return nil
}

// Build seals the builder into an immutable map value.
func (b *MapBuilder) Build() Value {
	m := &Map{entries: b.entries, index: b.index}
	m.h = b.a.NewHandle(nil)
	b.entries = nil
	b.index = nil
	return MapValue(m)
}
