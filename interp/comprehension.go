package interp

import "github.com/sift-lang/sift/types"

// ---------------------------------------------------------------------------
// Comprehension steps
// ---------------------------------------------------------------------------
//
// A comprehension compiles into one contiguous region of the path:
//
//	<range segment>
//	compreInit          error/unknown range: push result, jump past the loop
//	<accu-init segment>
//	compreNext          store accu, advance; exhausted: jump to result
//	<loop-condition segment>
//	compreCond          short-circuit gate
//	<loop-step segment>
//	jump                back to compreNext
//	<result segment>
//	compreFinish        pop the iteration frame
//
// Engine statuses from any segment abort the whole evaluation unchanged.
// Error and unknown values become the comprehension's result.

type compreInitStep struct {
	stepBase
	iterVar  string
	accuVar  string
	iterSlot int
	accuSlot int
	// errorJump skips everything up to and including compreFinish.
	errorJump int
}

// NewCompreInitStep creates the comprehension entry step. errorJump is the
// offset from the following instruction to just past the comprehension's
// final step.
func NewCompreInitStep(exprID int64, iterVar, accuVar string, iterSlot, accuSlot, errorJump int) Step {
	return &compreInitStep{
		stepBase:  stepBase{id: exprID},
		iterVar:   iterVar,
		accuVar:   accuVar,
		iterSlot:  iterSlot,
		accuSlot:  accuSlot,
		errorJump: errorJump,
	}
}

func (s *compreInitStep) Evaluate(f *Frame) error {
	rangeVal, rangeAttr, err := f.stack.pop()
	if err != nil {
		return err
	}
	if rangeVal.IsError() || rangeVal.IsUnknown() {
		f.stack.push(rangeVal, rangeAttr)
		return f.JumpTo(s.errorJump)
	}
	// A range that is even partially unknown cannot be iterated without
	// leaking its known entries, so the whole range becomes unknown.
	if f.enableUnknowns() && f.attrUtil.CheckForUnknown(rangeAttr, true) {
		f.stack.push(f.attrUtil.CreateUnknown(rangeAttr), rangeAttr)
		return f.JumpTo(s.errorJump)
	}
	if k := rangeVal.Kind(); k != types.KindList && k != types.KindMap {
		f.stack.push(types.NoMatchingOverloadError("<iter_range>"), types.Attribute{})
		return f.JumpTo(s.errorJump)
	}
	f.pushIterFrame(iterFrame{
		iterVar:   s.iterVar,
		accuVar:   s.accuVar,
		iterSlot:  s.iterSlot,
		accuSlot:  s.accuSlot,
		rangeVal:  rangeVal,
		rangeAttr: rangeAttr,
		pos:       -1,
	})
	return nil
}

type compreNextStep struct {
	stepBase
	// resultJump targets the result segment.
	resultJump int
	// errorJump skips past compreFinish.
	errorJump int
}

// NewCompreNextStep creates the loop head: it stores the accumulator from
// the stack, advances the range, and either binds the next element or jumps
// to the result segment on exhaustion.
func NewCompreNextStep(exprID int64, resultJump, errorJump int) Step {
	return &compreNextStep{stepBase: stepBase{id: exprID}, resultJump: resultJump, errorJump: errorJump}
}

func (s *compreNextStep) Evaluate(f *Frame) error {
	accu, accuAttr, err := f.stack.pop()
	if err != nil {
		return err
	}
	it, err := f.currentIterFrame()
	if err != nil {
		return err
	}
	// A failed accumulator ends the comprehension with that failure, whether
	// it came from the initializer or a loop step.
	if accu.IsError() || accu.IsUnknown() {
		if err := f.popIterFrame(); err != nil {
			return err
		}
		f.stack.push(accu, accuAttr)
		return f.JumpTo(s.errorJump)
	}
	if err := f.setSlot(it.accuSlot, accu, accuAttr); err != nil {
		return err
	}
	it.pos++
	if it.pos >= it.rangeLen() {
		return f.JumpTo(s.resultJump)
	}
	if err := f.IncrementIterations(); err != nil {
		return err
	}
	elem, elemAttr := it.element(it.pos)
	return f.setSlot(it.iterSlot, elem, elemAttr)
}

type compreCondStep struct {
	stepBase
	shortcircuit bool
	// resultJump targets the result segment.
	resultJump int
	// errorJump skips past compreFinish.
	errorJump int
}

// NewCompreCondStep creates the loop gate. In shortcircuiting mode a false
// condition jumps to the result segment; exhaustive mode always falls
// through to the loop step.
func NewCompreCondStep(exprID int64, shortcircuit bool, resultJump, errorJump int) Step {
	return &compreCondStep{
		stepBase:     stepBase{id: exprID},
		shortcircuit: shortcircuit,
		resultJump:   resultJump,
		errorJump:    errorJump,
	}
}

func (s *compreCondStep) Evaluate(f *Frame) error {
	cond, condAttr, err := f.stack.pop()
	if err != nil {
		return err
	}
	if cond.IsError() || cond.IsUnknown() {
		if err := f.popIterFrame(); err != nil {
			return err
		}
		f.stack.push(cond, condAttr)
		return f.JumpTo(s.errorJump)
	}
	if cond.Kind() != types.KindBool {
		return types.StatusErrorf(types.CodeInvalidArgument,
			"loop condition must be a bool, found %s", cond.TypeOf())
	}
	if s.shortcircuit && !cond.AsBool() {
		return f.JumpTo(s.resultJump)
	}
	return nil
}

type compreFinishStep struct {
	stepBase
}

// NewCompreFinishStep creates the comprehension exit: it discards the
// iteration frame, leaving the result segment's value on the stack.
func NewCompreFinishStep(exprID int64) Step {
	return &compreFinishStep{stepBase: stepBase{id: exprID, fromAST: true}}
}

func (s *compreFinishStep) Evaluate(f *Frame) error {
	return f.popIterFrame()
}
