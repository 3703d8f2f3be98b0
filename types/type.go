package types

import "strings"

// ---------------------------------------------------------------------------
// Type: the parallel tagged union describing value shapes
// ---------------------------------------------------------------------------

// Type describes the shape of a value. Parameterless shapes are shared
// singletons so pointer comparison works as a fast path, but equality always
// falls back to structural comparison of kind, name, and parameters.
type Type struct {
	kind   Kind
	name   string
	params []*Type
}

// Shared singletons for the parameterless shapes.
var (
	DynType       = &Type{kind: KindDyn, name: "dyn"}
	NullType      = &Type{kind: KindNull, name: "null_type"}
	BoolType      = &Type{kind: KindBool, name: "bool"}
	IntType       = &Type{kind: KindInt, name: "int"}
	UintType      = &Type{kind: KindUint, name: "uint"}
	DoubleType    = &Type{kind: KindDouble, name: "double"}
	StringType    = &Type{kind: KindString, name: "string"}
	BytesType     = &Type{kind: KindBytes, name: "bytes"}
	DurationType  = &Type{kind: KindDuration, name: "google.protobuf.Duration"}
	TimestampType = &Type{kind: KindTimestamp, name: "google.protobuf.Timestamp"}
	ErrorType     = &Type{kind: KindError, name: "*error*"}
	UnknownType   = &Type{kind: KindUnknown, name: "*unknown*"}
)

// TypeType is the type of type values. NewTypeType produces the
// parameterized form type(T).
var TypeType = &Type{kind: KindType, name: "type"}

// ListOf returns the list type with the given element type.
func ListOf(elem *Type) *Type {
	return &Type{kind: KindList, name: "list", params: []*Type{elem}}
}

// MapOf returns the map type with the given key and value types.
func MapOf(key, value *Type) *Type {
	return &Type{kind: KindMap, name: "map", params: []*Type{key, value}}
}

// FunctionOf returns a function type; the first parameter is the result.
func FunctionOf(result *Type, args ...*Type) *Type {
	return &Type{kind: KindFunction, name: "function", params: append([]*Type{result}, args...)}
}

// MessageOf returns the struct type for the named message schema.
func MessageOf(name string) *Type {
	return &Type{kind: KindStruct, name: name}
}

// EnumOf returns the enum type with the given name.
func EnumOf(name string) *Type {
	return &Type{kind: KindEnum, name: name}
}

// TypeParamOf returns a type-parameter placeholder.
func TypeParamOf(name string) *Type {
	return &Type{kind: KindTypeParam, name: name}
}

// NewTypeType returns the type of a type value, parameterized by the
// described type.
func NewTypeType(param *Type) *Type {
	return &Type{kind: KindType, name: "type", params: []*Type{param}}
}

// OpaqueOf returns an abstract type with the given name and parameters.
func OpaqueOf(name string, params ...*Type) *Type {
	return &Type{kind: KindOpaque, name: name, params: params}
}

// OptionalOf returns the optional type wrapping the given element type.
func OptionalOf(elem *Type) *Type {
	return &Type{kind: KindOptional, name: "optional_type", params: []*Type{elem}}
}

// WrapperOf returns the wrapper type around a primitive type.
func WrapperOf(prim *Type) *Type {
	return &Type{kind: KindWrapper, name: "wrapper", params: []*Type{prim}}
}

// Kind returns the type's kind.
func (t *Type) Kind() Kind { return t.kind }

// Name returns the type's name: the kind name for builtins, the schema name
// for messages and enums.
func (t *Type) Name() string { return t.name }

// Params returns the type's parameters. Callers must not mutate the slice.
func (t *Type) Params() []*Type { return t.params }

// Equal reports structural equality: same kind, same name, and pairwise
// equal parameters.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.kind != o.kind || t.name != o.name || len(t.params) != len(o.params) {
		return false
	}
	for i := range t.params {
		if !t.params[i].Equal(o.params[i]) {
			return false
		}
	}
	return true
}

// String renders the type deterministically, e.g. "list(int)",
// "map(string, dyn)", "function(bool, int, int)".
func (t *Type) String() string {
	if len(t.params) == 0 {
		return t.name
	}
	var b strings.Builder
	b.WriteString(t.name)
	b.WriteByte('(')
	for i, p := range t.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}

// hash folds the type's structure into the given seed.
func (t *Type) hash(h uint64) uint64 {
	h = hashMix(h, uint64(t.kind))
	h = hashString(h, t.name)
	for _, p := range t.params {
		h = p.hash(h)
	}
	return h
}
