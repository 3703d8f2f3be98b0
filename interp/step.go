package interp

import (
	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// ---------------------------------------------------------------------------
// Steps
// ---------------------------------------------------------------------------

// Step is one instruction of a compiled path. Steps are immutable and
// stateless beyond their compile-time operands, so a Path may be shared by
// concurrent evaluations.
//
// Evaluate returns an error only for engine failures; language-level errors
// are pushed as error-kind values.
type Step interface {
	Evaluate(f *Frame) error

	// ID returns the originating expression id, or 0 for synthetic steps.
	ID() int64

	// ComesFromAST reports whether a tracing listener should observe this
	// step's result.
	ComesFromAST() bool
}

// Path is an immutable step sequence.
type Path []Step

// TypeProvider resolves struct type names during object construction.
type TypeProvider interface {
	// NewStruct creates an empty struct of the named type, ready for field
	// assignment. Unknown type names fail with a NotFound status.
	NewStruct(a memory.Allocator, typeName string) (types.StructImpl, error)
}

// fieldStructProvider builds schema-less field structs for any type name.
type fieldStructProvider struct{}

func (fieldStructProvider) NewStruct(a memory.Allocator, typeName string) (types.StructImpl, error) {
	return types.NewFieldStruct(a, typeName), nil
}

type stepBase struct {
	id      int64
	fromAST bool
}

func (s stepBase) ID() int64          { return s.id }
func (s stepBase) ComesFromAST() bool { return s.fromAST }

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

type constStep struct {
	stepBase
	value types.Value
}

// NewConstStep creates a step pushing a literal value.
func NewConstStep(exprID int64, v types.Value) Step {
	return &constStep{stepBase: stepBase{id: exprID, fromAST: true}, value: v}
}

func (s *constStep) Evaluate(f *Frame) error {
	f.stack.push(s.value, types.Attribute{})
	return nil
}

// ---------------------------------------------------------------------------
// Identifiers
// ---------------------------------------------------------------------------

type identStep struct {
	stepBase
	name string
}

// NewIdentStep creates a step resolving a top-level identifier.
func NewIdentStep(exprID int64, name string) Step {
	return &identStep{stepBase: stepBase{id: exprID, fromAST: true}, name: name}
}

func (s *identStep) Evaluate(f *Frame) error {
	// Comprehension variables shadow activation bindings.
	if v, a, ok := f.lookupSlot(s.name); ok {
		f.stack.push(v, a)
		return nil
	}
	trail := types.NewAttribute(s.name)
	if f.enableUnknowns() && f.attrUtil.CheckForUnknown(trail, false) {
		f.stack.push(f.attrUtil.CreateUnknown(trail), trail)
		return nil
	}
	if f.opts.EnableMissingAttributeErrors && f.attrUtil.CheckForMissing(trail) {
		f.stack.push(types.MissingAttributeError(trail.String()), trail)
		return nil
	}
	if v, a, ok := f.activation.ResolveName(s.name); ok {
		f.stack.push(v, a)
		return nil
	}
	f.stack.push(types.UnresolvedIdentError(s.name), trail)
	return nil
}

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

type slotStep struct {
	stepBase
	slot int
}

// NewSlotStep creates a step reading a planner-resolved comprehension slot.
func NewSlotStep(exprID int64, slotIndex int) Step {
	return &slotStep{stepBase: stepBase{id: exprID, fromAST: true}, slot: slotIndex}
}

func (s *slotStep) Evaluate(f *Frame) error {
	if s.slot < 0 || s.slot >= len(f.slots) {
		return internalf("comprehension slot %d out of range", s.slot)
	}
	entry := f.slots[s.slot]
	if !entry.set {
		return internalf("read of unset comprehension slot %d", s.slot)
	}
	f.stack.push(entry.value, entry.attr)
	return nil
}

// ---------------------------------------------------------------------------
// Field selection
// ---------------------------------------------------------------------------

type selectStep struct {
	stepBase
	field    string
	testOnly bool
}

// NewSelectStep creates a field-selection step. With testOnly the step
// performs a presence test and pushes a bool instead of the field value.
func NewSelectStep(exprID int64, field string, testOnly bool) Step {
	return &selectStep{
		stepBase: stepBase{id: exprID, fromAST: true},
		field:    field,
		testOnly: testOnly,
	}
}

func (s *selectStep) Evaluate(f *Frame) error {
	operand, attr, err := f.stack.pop()
	if err != nil {
		return err
	}
	if operand.IsError() {
		f.stack.push(operand, attr)
		return nil
	}
	trail := attr.Step(types.FieldQualifier(s.field))
	if operand.IsUnknown() {
		f.stack.push(operand, trail)
		return nil
	}
	if f.enableUnknowns() && f.attrUtil.CheckForUnknown(trail, false) {
		f.stack.push(f.attrUtil.CreateUnknown(trail), trail)
		return nil
	}
	if f.opts.EnableMissingAttributeErrors && f.attrUtil.CheckForMissing(trail) {
		f.stack.push(types.MissingAttributeError(trail.String()), trail)
		return nil
	}

	switch operand.Kind() {
	case types.KindMap:
		v, ok := operand.AsMap().Find(types.String(s.field), f.opts.EnableHeterogeneousEquality)
		if s.testOnly {
			f.stack.push(types.Bool(ok), types.Attribute{})
			return nil
		}
		if !ok {
			f.stack.push(types.NoSuchKeyError(s.field), trail)
			return nil
		}
		f.stack.push(v, trail)
		return nil
	case types.KindStruct:
		impl := operand.AsStruct()
		has, err := impl.HasField(s.field)
		if err != nil {
			f.stack.push(statusToErrorValue(err), trail)
			return nil
		}
		if s.testOnly {
			f.stack.push(types.Bool(has), types.Attribute{})
			return nil
		}
		if !has {
			f.stack.push(types.NoSuchFieldError(s.field), trail)
			return nil
		}
		v, err := impl.GetField(s.field, f.opts.EnableHeterogeneousEquality)
		if err != nil {
			f.stack.push(statusToErrorValue(err), trail)
			return nil
		}
		f.stack.push(v, trail)
		return nil
	default:
		if s.testOnly {
			f.stack.push(types.Errorf(types.CodeInvalidArgument,
				"presence test on unsupported type: %s", operand.TypeOf()), trail)
			return nil
		}
		f.stack.push(types.Errorf(types.CodeInvalidArgument,
			"cannot select field %q on %s", s.field, operand.TypeOf()), trail)
		return nil
	}
}

// statusToErrorValue lowers a provider status into a language error value.
func statusToErrorValue(err error) types.Value {
	if code := types.StatusCode(err); code != types.CodeOK {
		return types.NewError(code, err.Error())
	}
	return types.NewError(types.CodeUnknown, err.Error())
}
