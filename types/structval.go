package types

import (
	"sort"

	"github.com/sift-lang/sift/memory"
)

// ---------------------------------------------------------------------------
// Struct values
// ---------------------------------------------------------------------------

// StructImpl is the payload behind a struct-kind value. Implementations are
// immutable once published to a Value; SetField exists only for builders that
// have not yet shared the struct.
type StructImpl interface {
	// TypeName returns the fully qualified type name.
	TypeName() string
	// HasField reports whether the named field is present (set).
	HasField(name string) (bool, error)
	// GetField returns the named field's value.
	GetField(name string, heterogeneous bool) (Value, error)
	// SetField assigns a field during construction.
	SetField(name string, v Value) error
	// FieldNames returns the set field names in a deterministic order.
	FieldNames() []string
	// Equal compares against another struct payload.
	Equal(other StructImpl, heterogeneous bool) bool
	// Hash folds the struct into the running hash h.
	Hash(h uint64) uint64
	// DebugString renders the struct for diagnostics.
	DebugString() string
	// Handle returns the payload's owner tag.
	Handle() memory.Handle
}

// FieldStruct is a map-backed StructImpl for struct values assembled directly
// from field initializers, with no descriptor behind them.
type FieldStruct struct {
	h        memory.Handle
	typeName string
	fields   map[string]Value
}

// NewFieldStruct creates an empty field-backed struct.
func NewFieldStruct(a memory.Allocator, typeName string) *FieldStruct {
	return &FieldStruct{
		h:        a.NewHandle(nil),
		typeName: typeName,
		fields:   make(map[string]Value),
	}
}

func (s *FieldStruct) TypeName() string { return s.typeName }

func (s *FieldStruct) HasField(name string) (bool, error) {
	_, ok := s.fields[name]
	return ok, nil
}

func (s *FieldStruct) GetField(name string, heterogeneous bool) (Value, error) {
	v, ok := s.fields[name]
	if !ok {
		return Value{}, StatusErrorf(CodeNotFound, "no_such_field : %s", name)
	}
	return v, nil
}

func (s *FieldStruct) SetField(name string, v Value) error {
	if _, ok := s.fields[name]; ok {
		return StatusErrorf(CodeInvalidArgument, "duplicate field: %s", name)
	}
	s.fields[name] = v
	return nil
}

func (s *FieldStruct) FieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *FieldStruct) Equal(other StructImpl, heterogeneous bool) bool {
	if s.typeName != other.TypeName() {
		return false
	}
	names := s.FieldNames()
	otherNames := other.FieldNames()
	if len(names) != len(otherNames) {
		return false
	}
	for i, name := range names {
		if name != otherNames[i] {
			return false
		}
		ov, err := other.GetField(name, heterogeneous)
		if err != nil {
			return false
		}
		if !Equal(s.fields[name], ov, heterogeneous) {
			return false
		}
	}
	return true
}

func (s *FieldStruct) Hash(h uint64) uint64 {
	h = hashString(h, s.typeName)
	// Field order is already deterministic, so fold in sequence.
	for _, name := range s.FieldNames() {
		h = hashString(h, name)
		h = hashMix(h, Hash(s.fields[name]))
	}
	return h
}

func (s *FieldStruct) DebugString() string {
	out := s.typeName + "{"
	for i, name := range s.FieldNames() {
		if i > 0 {
			out += ", "
		}
		out += name + ": " + s.fields[name].DebugString()
	}
	return out + "}"
}

func (s *FieldStruct) Handle() memory.Handle { return s.h }
