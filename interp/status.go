// Package interp implements the stack-machine expression interpreter: linear
// step programs evaluated over a per-evaluation frame, with comprehension
// loops, attribute tracking, and unknown propagation.
package interp

import "github.com/sift-lang/sift/types"

// Status is an engine-level failure: stack underflow, malformed jumps,
// exceeded budgets. It aborts the evaluation through the host error return
// and is distinct from language-level error values, which travel the operand
// stack as results.
type Status = types.StatusError

func internalf(format string, args ...any) error {
	return types.StatusErrorf(types.CodeInternal, format, args...)
}
