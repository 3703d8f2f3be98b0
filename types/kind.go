// Package types implements the sift runtime value model: a closed tagged
// union over the language's value kinds, the parallel Type union describing
// value shapes, and the equality, ordering, hashing, and rendering rules the
// interpreter depends on.
package types

// Kind discriminates both runtime values and type shapes. Values only ever
// carry the concrete kinds; Dyn, Wrapper, Opaque, Function, TypeParam and
// Optional appear in Type descriptions and function registries.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindDouble
	KindString
	KindBytes
	KindStruct
	KindDuration
	KindTimestamp
	KindList
	KindMap
	KindUnknown
	KindType
	KindError
	KindEnum
	KindDyn
	KindWrapper
	KindOpaque
	KindFunction
	KindTypeParam
	KindOptional
)

var kindNames = [...]string{
	KindNull:      "null_type",
	KindBool:      "bool",
	KindInt:       "int",
	KindUint:      "uint",
	KindDouble:    "double",
	KindString:    "string",
	KindBytes:     "bytes",
	KindStruct:    "struct",
	KindDuration:  "duration",
	KindTimestamp: "timestamp",
	KindList:      "list",
	KindMap:       "map",
	KindUnknown:   "unknown",
	KindType:      "type",
	KindError:     "error",
	KindEnum:      "enum",
	KindDyn:       "dyn",
	KindWrapper:   "wrapper",
	KindOpaque:    "opaque",
	KindFunction:  "function",
	KindTypeParam: "type_param",
	KindOptional:  "optional",
}

// String returns the kind name used in diagnostics and overload signatures.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "*unknown_kind*"
}
