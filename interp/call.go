package interp

import "github.com/sift-lang/sift/types"

// ---------------------------------------------------------------------------
// Function calls
// ---------------------------------------------------------------------------

type callStep struct {
	stepBase
	function string
	argCount int
}

// NewCallStep creates a step dispatching a function call over the top
// argCount stack values.
func NewCallStep(exprID int64, function string, argCount int) Step {
	return &callStep{
		stepBase: stepBase{id: exprID, fromAST: true},
		function: function,
		argCount: argCount,
	}
}

func (s *callStep) Evaluate(f *Frame) error {
	args, _, err := f.stack.topN(s.argCount)
	if err != nil {
		return err
	}

	overload, found := f.registry.FindOverload(s.function, args)
	strict := !found || !overload.NonStrict

	if strict {
		// Unknown operands win over error operands so unknown sets keep
		// accumulating through mixed expressions.
		if f.enableUnknowns() {
			if merged, ok := MergeUnknowns(args); ok {
				return f.stack.popAndPush(s.argCount, merged, types.Attribute{})
			}
		}
		for _, a := range args {
			if a.IsError() {
				return f.stack.popAndPush(s.argCount, a, types.Attribute{})
			}
		}
	}

	if f.enableUnknownFunctionResults() && f.registry.unknownResult(s.function) {
		unknown := f.attrUtil.CreateUnknownFunction(s.function, s.id)
		return f.stack.popAndPush(s.argCount, unknown, types.Attribute{})
	}

	if !found {
		return f.stack.popAndPush(s.argCount,
			types.NoMatchingOverloadError(s.function), types.Attribute{})
	}

	// The implementation may allocate; copy the argument view before the
	// stack mutates under it.
	callArgs := make([]types.Value, s.argCount)
	copy(callArgs, args)
	result, err := overload.Fn(f.alloc, callArgs)
	if err != nil {
		return err
	}
	return f.stack.popAndPush(s.argCount, result, types.Attribute{})
}
