package types

import "github.com/sift-lang/sift/memory"

// ---------------------------------------------------------------------------
// List payloads
// ---------------------------------------------------------------------------

// List is the payload of a list-kind value: an immutable element sequence in
// insertion order. Elements are allocated under the same allocator scope as
// the list itself; a list never mixes arena and refcounted children.
type List struct {
	h     memory.Handle
	elems []Value
}

// Len returns the element count.
func (l *List) Len() int { return len(l.elems) }

// Get returns the element at index i; i must be in range.
func (l *List) Get(i int) Value { return l.elems[i] }

// Handle returns the list's owner tag.
func (l *List) Handle() memory.Handle { return l.h }

// ListBuilder accumulates elements without repeated full copies and seals
// them into an immutable List. It is the sanctioned mutable list used by the
// interpreter to build comprehension results.
type ListBuilder struct {
	a     memory.Allocator
	elems []Value
}

// NewListBuilder creates a builder under the given allocator.
func NewListBuilder(a memory.Allocator, capacity int) *ListBuilder {
	return &ListBuilder{a: a, elems: make([]Value, 0, capacity)}
}

// Add appends an element.
func (b *ListBuilder) Add(v Value) {
	b.elems = append(b.elems, v)
}

// Len returns the number of elements added so far.
func (b *ListBuilder) Len() int { return len(b.elems) }

// Build seals the builder into an immutable list value. The builder must not
// be used afterwards.
func (b *ListBuilder) Build() Value {
	l := &List{elems: b.elems}
	l.h = b.a.NewHandle(nil)
	b.elems = nil
	return ListValue(l)
}

// NewList builds a list value from the given elements.
func NewList(a memory.Allocator, elems ...Value) Value {
	b := NewListBuilder(a, len(elems))
	for _, e := range elems {
		b.Add(e)
	}
	return b.Build()
}
