package types

import "fmt"

// StatusError is a host-level failure: a malformed construction, a resource
// limit, or an engine invariant violation. It is distinct from error-kind
// values, which are language-level results carried on the operand stack.
type StatusError struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return e.Message
}

// NewStatusError creates a StatusError.
func NewStatusError(code Code, message string) *StatusError {
	return &StatusError{Code: code, Message: message}
}

// StatusErrorf creates a StatusError with a formatted message.
func StatusErrorf(code Code, format string, args ...any) *StatusError {
	return &StatusError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// StatusCode extracts the code from an error, defaulting to Internal for
// errors that are not StatusErrors, and OK for nil.
func StatusCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	if se, ok := err.(*StatusError); ok {
		return se.Code
	}
	return CodeInternal
}
