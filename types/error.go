package types

import "fmt"

// ---------------------------------------------------------------------------
// Error codes and error-kind payloads
// ---------------------------------------------------------------------------

// Code classifies error values and engine statuses. The numbering follows
// the canonical RPC status codes so hosts can map them directly.
type Code uint8

const (
	CodeOK              Code = 0
	CodeUnknown         Code = 2
	CodeInvalidArgument Code = 3
	CodeNotFound        Code = 5
	CodeOutOfRange      Code = 11
	CodeUnimplemented   Code = 12
	CodeInternal        Code = 13
)

// String returns the code name.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeUnknown:
		return "UNKNOWN"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeOutOfRange:
		return "OUT_OF_RANGE"
	case CodeUnimplemented:
		return "UNIMPLEMENTED"
	case CodeInternal:
		return "INTERNAL"
	default:
		return fmt.Sprintf("CODE(%d)", uint8(c))
	}
}

// ErrorValue is the payload of an error-kind value. Language-level errors are
// values: they travel the operand stack like any other value and are
// observable by the caller as the evaluation result. They are never raised
// through host-level error propagation.
type ErrorValue struct {
	Code    Code
	Message string
}

// Equal reports whether two error payloads carry the same code and message.
func (e *ErrorValue) Equal(o *ErrorValue) bool {
	return e.Code == o.Code && e.Message == o.Message
}

// NewError creates an error-kind value.
func NewError(code Code, message string) Value {
	return Value{kind: KindError, ptr: &ErrorValue{Code: code, Message: message}}
}

// Errorf creates an error-kind value with a formatted message.
func Errorf(code Code, format string, args ...any) Value {
	return NewError(code, fmt.Sprintf(format, args...))
}

// NoMatchingOverloadError is the error value produced when function dispatch
// finds no overload for the given call signature.
func NoMatchingOverloadError(fn string) Value {
	return NewError(CodeUnknown, "No matching overloads found : "+fn)
}

// NoSuchFieldError is the error value produced by field selection on a struct
// lacking the field.
func NoSuchFieldError(field string) Value {
	return NewError(CodeNotFound, "no_such_field : "+field)
}

// NoSuchKeyError is the error value produced by key selection on a map
// lacking the key.
func NoSuchKeyError(key string) Value {
	return NewError(CodeNotFound, "Key not found in map : "+key)
}

// UnresolvedIdentError is the error value produced when an identifier cannot
// be resolved against the activation.
func UnresolvedIdentError(name string) Value {
	return NewError(CodeUnknown, fmt.Sprintf("No value with name %q found in Activation", name))
}

// MissingAttributeError is the error value produced for reads of attributes
// registered as missing when missing-attribute errors are enabled.
func MissingAttributeError(path string) Value {
	return NewError(CodeInvalidArgument, "MissingAttributeError: "+path)
}
