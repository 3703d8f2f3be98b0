package interp

import "fmt"

// ---------------------------------------------------------------------------
// Evaluation options
// ---------------------------------------------------------------------------

// UnknownProcessing selects how unknown attribute patterns affect evaluation.
type UnknownProcessing uint8

const (
	// UnknownDisabled ignores unknown patterns entirely.
	UnknownDisabled UnknownProcessing = iota
	// UnknownAttributesOnly tracks unknown attributes through evaluation.
	UnknownAttributesOnly
	// UnknownAttributesAndFunctions additionally records opted-in function
	// invocations whose arguments were unknown.
	UnknownAttributesAndFunctions
)

func (u UnknownProcessing) String() string {
	switch u {
	case UnknownDisabled:
		return "disabled"
	case UnknownAttributesOnly:
		return "attributes_only"
	case UnknownAttributesAndFunctions:
		return "attributes_and_functions"
	default:
		return fmt.Sprintf("UnknownProcessing(%d)", uint8(u))
	}
}

// Options configure a compiled program. The zero value is a strict,
// unbounded evaluation with no unknown tracking.
type Options struct {
	// UnknownProcessing enables unknown-attribute tracking. Mutually
	// exclusive with EnableMissingAttributeErrors.
	UnknownProcessing UnknownProcessing

	// EnableMissingAttributeErrors turns reads of attributes registered as
	// missing into NotFound-coded error values.
	EnableMissingAttributeErrors bool

	// ComprehensionMaxIterations bounds the total elements visited by all
	// comprehensions in one evaluation. Zero means unbounded.
	ComprehensionMaxIterations int64

	// EnableHeterogeneousEquality compares numeric values across int, uint,
	// and double kinds by their mathematical value.
	EnableHeterogeneousEquality bool

	// EnableListContains allows the membership builtin to scan lists.
	EnableListContains bool

	// StackDepthHint pre-sizes each evaluation's operand stack. Zero sizes
	// the stack from the path length. A capacity hint only, never a limit.
	StackDepthHint int
}

// Validate rejects option combinations the evaluator cannot honor.
func (o Options) Validate() error {
	if o.UnknownProcessing != UnknownDisabled && o.EnableMissingAttributeErrors {
		return fmt.Errorf("options: unknown processing and missing attribute errors are mutually exclusive")
	}
	if o.ComprehensionMaxIterations < 0 {
		return fmt.Errorf("options: negative comprehension iteration budget %d", o.ComprehensionMaxIterations)
	}
	if o.StackDepthHint < 0 {
		return fmt.Errorf("options: negative stack depth hint %d", o.StackDepthHint)
	}
	return nil
}
