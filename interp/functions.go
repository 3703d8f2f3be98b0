package interp

import (
	"fmt"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// ---------------------------------------------------------------------------
// Function registry
// ---------------------------------------------------------------------------

// Function is a host-implemented operation. Arguments arrive fully
// evaluated; results are allocated under the evaluation's allocator. A
// returned error is an engine failure and aborts the evaluation; language
// errors are returned as error-kind values.
type Function func(a memory.Allocator, args []types.Value) (types.Value, error)

// Overload binds a function body to a call signature. KindDyn in ArgKinds
// matches any argument kind.
type Overload struct {
	// Operator is the overload's distinct name, used in diagnostics.
	Operator string
	// ArgKinds is the expected argument kind per position; its length is the
	// overload's arity.
	ArgKinds []types.Kind
	// Fn is the implementation.
	Fn Function
	// NonStrict overloads receive error and unknown operands unfiltered
	// instead of the default forward-first-error convention.
	NonStrict bool
}

func (o *Overload) matches(args []types.Value) bool {
	if len(args) != len(o.ArgKinds) {
		return false
	}
	for i, k := range o.ArgKinds {
		if k != types.KindDyn && k != args[i].Kind() {
			return false
		}
	}
	return true
}

// FunctionRegistry resolves call steps to overloads by function name, arity,
// and argument kinds. Registration happens before evaluation; lookups are
// read-only and safe for concurrent evaluations.
type FunctionRegistry struct {
	overloads      map[string][]*Overload
	unknownResults map[string]bool
}

// NewFunctionRegistry creates an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		overloads:      make(map[string][]*Overload),
		unknownResults: make(map[string]bool),
	}
}

// Register adds an overload for the function name. Two overloads of one
// function may not share an arity and kind signature.
func (r *FunctionRegistry) Register(name string, o Overload) error {
	for _, existing := range r.overloads[name] {
		if kindsEqual(existing.ArgKinds, o.ArgKinds) {
			return fmt.Errorf("functions: duplicate overload for %s/%d", name, len(o.ArgKinds))
		}
	}
	copied := o
	r.overloads[name] = append(r.overloads[name], &copied)
	return nil
}

// MarkUnknownResult records that calls to name produce unknown function
// results when unknown-function processing is enabled.
func (r *FunctionRegistry) MarkUnknownResult(name string) {
	r.unknownResults[name] = true
}

func (r *FunctionRegistry) unknownResult(name string) bool {
	return r.unknownResults[name]
}

// FindOverload resolves a call. Exact kind matches win over dyn matches.
func (r *FunctionRegistry) FindOverload(name string, args []types.Value) (*Overload, bool) {
	var dynMatch *Overload
	for _, o := range r.overloads[name] {
		if !o.matches(args) {
			continue
		}
		if !hasDyn(o.ArgKinds) {
			return o, true
		}
		if dynMatch == nil {
			dynMatch = o
		}
	}
	if dynMatch != nil {
		return dynMatch, true
	}
	return nil, false
}

func kindsEqual(a, b []types.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasDyn(kinds []types.Kind) bool {
	for _, k := range kinds {
		if k == types.KindDyn {
			return true
		}
	}
	return false
}
