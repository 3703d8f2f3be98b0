package interp

import "github.com/sift-lang/sift/types"

// ---------------------------------------------------------------------------
// Jumps
// ---------------------------------------------------------------------------

type jumpStep struct {
	stepBase
	offset int
}

// NewJumpStep creates an unconditional jump. Offsets are relative to the
// following instruction.
func NewJumpStep(exprID int64, offset int) Step {
	return &jumpStep{stepBase: stepBase{id: exprID}, offset: offset}
}

func (s *jumpStep) Evaluate(f *Frame) error {
	return f.JumpTo(s.offset)
}

type condJumpStep struct {
	stepBase
	jumpIf       bool
	leaveOnStack bool
	offset       int
}

// NewCondJumpStep creates a jump taken when the top of stack is a bool equal
// to jumpIf. Non-bool tops (errors, unknowns) never jump. With leaveOnStack
// the operand stays for the fall-through or jump target to consume;
// otherwise it is popped first.
func NewCondJumpStep(exprID int64, jumpIf, leaveOnStack bool, offset int) Step {
	return &condJumpStep{
		stepBase:     stepBase{id: exprID},
		jumpIf:       jumpIf,
		leaveOnStack: leaveOnStack,
		offset:       offset,
	}
}

func (s *condJumpStep) Evaluate(f *Frame) error {
	v, _, err := f.stack.peek()
	if err != nil {
		return err
	}
	if !s.leaveOnStack {
		if _, _, err := f.stack.pop(); err != nil {
			return err
		}
	}
	if v.Kind() == types.KindBool && v.AsBool() == s.jumpIf {
		return f.JumpTo(s.offset)
	}
	return nil
}

type boolCheckJumpStep struct {
	stepBase
	offset int
}

// NewBoolCheckJumpStep creates a jump taken when the top of stack is an
// error or unknown value, leaving it in place as the branch result. Ternary
// plans use it to skip both branches on a bad condition.
func NewBoolCheckJumpStep(exprID int64, offset int) Step {
	return &boolCheckJumpStep{stepBase: stepBase{id: exprID}, offset: offset}
}

func (s *boolCheckJumpStep) Evaluate(f *Frame) error {
	v, _, err := f.stack.peek()
	if err != nil {
		return err
	}
	if v.IsError() || v.IsUnknown() {
		return f.JumpTo(s.offset)
	}
	return nil
}
