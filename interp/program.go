package interp

import (
	"fmt"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// ---------------------------------------------------------------------------
// Programs
// ---------------------------------------------------------------------------

// Program is an immutable compiled expression: a step path plus the
// registries and options it evaluates under. One Program serves any number
// of concurrent evaluations; all per-evaluation state lives in frames.
type Program struct {
	path      Path
	slotCount int
	registry  *FunctionRegistry
	provider  TypeProvider
	opts      Options
}

// NewProgram assembles a program. A nil registry gets an empty one; a nil
// provider falls back to schema-less field structs. slotCount is the
// comprehension slot table size, two per nesting level.
func NewProgram(path Path, slotCount int, registry *FunctionRegistry, provider TypeProvider, opts Options) (*Program, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	if slotCount < 0 {
		return nil, fmt.Errorf("program: negative slot count %d", slotCount)
	}
	if registry == nil {
		registry = NewFunctionRegistry()
	}
	if provider == nil {
		provider = fieldStructProvider{}
	}
	return &Program{
		path:      path,
		slotCount: slotCount,
		registry:  registry,
		provider:  provider,
		opts:      opts,
	}, nil
}

// Options returns the program's evaluation options.
func (p *Program) Options() Options { return p.opts }

// Eval runs the program against the activation. The allocator scopes every
// value the evaluation creates; passing a *memory.Arena makes the evaluation
// arena-backed, with the arena's owner responsible for the result's
// lifetime. A nil allocator gets a fresh refcounted one.
func (p *Program) Eval(activation Activation, alloc memory.Allocator) (types.Value, error) {
	return p.run(activation, alloc, nil)
}

// Trace runs the program like Eval, invoking the listener after every
// AST-originated step with the value it produced.
func (p *Program) Trace(activation Activation, alloc memory.Allocator, listener Listener) (types.Value, error) {
	return p.run(activation, alloc, listener)
}

func (p *Program) run(activation Activation, alloc memory.Allocator, listener Listener) (types.Value, error) {
	if activation == nil {
		activation = EmptyActivation{}
	}
	if alloc == nil {
		alloc = memory.NewRefCounted()
	}
	frame := newFrame(p, activation, alloc)
	v, _, err := frame.evaluate(listener)
	return v, err
}
