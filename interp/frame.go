package interp

import (
	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// ---------------------------------------------------------------------------
// Execution frame
// ---------------------------------------------------------------------------

// slot is one entry in the comprehension variable table.
type slot struct {
	value types.Value
	attr  types.Attribute
	set   bool
}

// iterFrame tracks one active comprehension: its range, the current
// position, and the names and slots of its loop variables.
type iterFrame struct {
	iterVar  string
	accuVar  string
	iterSlot int
	accuSlot int

	rangeVal  types.Value
	rangeAttr types.Attribute
	pos       int
}

func (it *iterFrame) rangeLen() int {
	if it.rangeVal.Kind() == types.KindMap {
		return it.rangeVal.AsMap().Len()
	}
	return it.rangeVal.AsList().Len()
}

// element returns the value bound to the iteration variable at position pos
// and the attribute trail reaching it. Maps iterate their keys in entry
// order.
func (it *iterFrame) element(pos int) (types.Value, types.Attribute) {
	if it.rangeVal.Kind() == types.KindMap {
		key := it.rangeVal.AsMap().Entry(pos).Key
		if q, ok := types.QualifierFromValue(key); ok {
			return key, it.rangeAttr.Step(q)
		}
		return key, types.Attribute{}
	}
	elem := it.rangeVal.AsList().Get(pos)
	return elem, it.rangeAttr.Step(types.IntQualifier(int64(pos)))
}

// Frame is the per-evaluation machine state: program counter, operand stack,
// comprehension slots, iteration budget, and read-only evaluation inputs.
// Frames are created fresh per evaluation and never shared.
type Frame struct {
	path  Path
	pc    int
	stack stack

	slots []slot
	iters []iterFrame

	iterations    int64
	maxIterations int64

	activation Activation
	registry   *FunctionRegistry
	provider   TypeProvider
	opts       Options
	attrUtil   *AttributeUtility
	alloc      memory.Allocator
}

func newFrame(p *Program, activation Activation, alloc memory.Allocator) *Frame {
	depth := p.opts.StackDepthHint
	if depth == 0 {
		depth = len(p.path)
	}
	return &Frame{
		path:          p.path,
		stack:         newStack(depth),
		slots:         make([]slot, p.slotCount),
		maxIterations: p.opts.ComprehensionMaxIterations,
		activation:    activation,
		registry:      p.registry,
		provider:      p.provider,
		opts:          p.opts,
		attrUtil:      NewAttributeUtility(activation),
		alloc:         alloc,
	}
}

// next returns the step to execute and advances the program counter.
func (f *Frame) next() Step {
	if f.pc >= len(f.path) {
		return nil
	}
	s := f.path[f.pc]
	f.pc++
	return s
}

// JumpTo moves the program counter by offset relative to the next
// instruction. Jumping exactly to the path end terminates the evaluation.
func (f *Frame) JumpTo(offset int) error {
	newPC := f.pc + offset
	if newPC < 0 || newPC > len(f.path) {
		return internalf("jump address out of range: position: %d, offset: %d, range: %d",
			f.pc, offset, len(f.path))
	}
	f.pc = newPC
	return nil
}

// IncrementIterations charges one comprehension element against the budget.
func (f *Frame) IncrementIterations() error {
	if f.maxIterations == 0 {
		return nil
	}
	f.iterations++
	if f.iterations >= f.maxIterations {
		return internalf("Iteration budget exceeded")
	}
	return nil
}

func (f *Frame) enableUnknowns() bool {
	return f.opts.UnknownProcessing != UnknownDisabled
}

func (f *Frame) enableUnknownFunctionResults() bool {
	return f.opts.UnknownProcessing == UnknownAttributesAndFunctions
}

// Allocator returns the evaluation's allocator for function implementations
// and aggregate construction.
func (f *Frame) Allocator() memory.Allocator { return f.alloc }

// pushIterFrame activates a comprehension over the given range.
func (f *Frame) pushIterFrame(it iterFrame) {
	f.iters = append(f.iters, it)
}

// popIterFrame deactivates the innermost comprehension and clears its slots.
func (f *Frame) popIterFrame() error {
	n := len(f.iters)
	if n == 0 {
		return internalf("iteration frame stack underflow")
	}
	it := f.iters[n-1]
	f.slots[it.iterSlot] = slot{}
	f.slots[it.accuSlot] = slot{}
	f.iters = f.iters[:n-1]
	return nil
}

func (f *Frame) currentIterFrame() (*iterFrame, error) {
	if len(f.iters) == 0 {
		return nil, internalf("no active iteration frame")
	}
	return &f.iters[len(f.iters)-1], nil
}

func (f *Frame) setSlot(i int, v types.Value, a types.Attribute) error {
	if i < 0 || i >= len(f.slots) {
		return internalf("comprehension slot %d out of range", i)
	}
	f.slots[i] = slot{value: v, attr: a, set: true}
	return nil
}

// lookupSlot resolves a name against the active iteration frames, innermost
// first. Loop variables shadow activation bindings of the same name.
func (f *Frame) lookupSlot(name string) (types.Value, types.Attribute, bool) {
	for i := len(f.iters) - 1; i >= 0; i-- {
		it := &f.iters[i]
		if name == it.iterVar && f.slots[it.iterSlot].set {
			s := f.slots[it.iterSlot]
			return s.value, s.attr, true
		}
		if name == it.accuVar && f.slots[it.accuSlot].set {
			s := f.slots[it.accuSlot]
			return s.value, s.attr, true
		}
	}
	return types.Value{}, types.Attribute{}, false
}

// evaluate runs the path to completion. The evaluation result is the single
// remaining stack value; any other stack depth is an engine failure.
func (f *Frame) evaluate(listener Listener) (types.Value, types.Attribute, error) {
	for {
		step := f.next()
		if step == nil {
			break
		}
		if err := step.Evaluate(f); err != nil {
			return types.Value{}, types.Attribute{}, err
		}
		if listener != nil && step.ComesFromAST() && f.stack.size() > 0 {
			v, a, _ := f.stack.peek()
			listener(step.ID(), v, a)
		}
	}
	if f.stack.size() != 1 {
		return types.Value{}, types.Attribute{}, internalf(
			"expected exactly one value on the stack, found %d", f.stack.size())
	}
	v, a, err := f.stack.pop()
	return v, a, err
}
