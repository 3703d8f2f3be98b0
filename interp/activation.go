package interp

import (
	"sync"

	"github.com/sift-lang/sift/types"
)

// ---------------------------------------------------------------------------
// Activations
// ---------------------------------------------------------------------------

// Activation supplies variable bindings for one evaluation. Implementations
// must be safe for reads from a single evaluation goroutine; the engine never
// writes through an activation.
type Activation interface {
	// ResolveName returns the value bound to a top-level identifier, with the
	// attribute trail naming it. The bool result is false for unbound names.
	ResolveName(name string) (types.Value, types.Attribute, bool)

	// UnknownPatterns returns the attribute patterns to treat as unknown.
	UnknownPatterns() []types.AttributePattern

	// MissingPatterns returns the attribute patterns to treat as missing.
	MissingPatterns() []types.AttributePattern
}

// MapActivation binds names from a map, with optional lazy providers that
// are invoked at most once per activation.
type MapActivation struct {
	values   map[string]types.Value
	lazy     map[string]func() types.Value
	unknown  []types.AttributePattern
	missing  []types.AttributePattern
	mu       sync.Mutex
	memoized map[string]types.Value
}

// NewMapActivation creates an activation over the given bindings. The map is
// not copied; callers must not mutate it while evaluations run.
func NewMapActivation(values map[string]types.Value) *MapActivation {
	return &MapActivation{values: values}
}

// BindLazy registers a provider invoked on first resolution of name. The
// result is memoized for the activation's lifetime.
func (a *MapActivation) BindLazy(name string, provider func() types.Value) {
	if a.lazy == nil {
		a.lazy = make(map[string]func() types.Value)
	}
	a.lazy[name] = provider
}

// SetUnknownPatterns registers the attribute patterns treated as unknown.
func (a *MapActivation) SetUnknownPatterns(patterns []types.AttributePattern) {
	a.unknown = patterns
}

// SetMissingPatterns registers the attribute patterns treated as missing.
func (a *MapActivation) SetMissingPatterns(patterns []types.AttributePattern) {
	a.missing = patterns
}

func (a *MapActivation) ResolveName(name string) (types.Value, types.Attribute, bool) {
	if v, ok := a.values[name]; ok {
		return v, types.NewAttribute(name), true
	}
	if provider, ok := a.lazy[name]; ok {
		a.mu.Lock()
		defer a.mu.Unlock()
		if v, ok := a.memoized[name]; ok {
			return v, types.NewAttribute(name), true
		}
		v := provider()
		if a.memoized == nil {
			a.memoized = make(map[string]types.Value)
		}
		a.memoized[name] = v
		return v, types.NewAttribute(name), true
	}
	return types.Value{}, types.Attribute{}, false
}

func (a *MapActivation) UnknownPatterns() []types.AttributePattern { return a.unknown }

func (a *MapActivation) MissingPatterns() []types.AttributePattern { return a.missing }

// HierarchicalActivation resolves against a child activation first and falls
// back to a parent; pattern sets are the concatenation of both levels.
type HierarchicalActivation struct {
	parent Activation
	child  Activation
}

// NewHierarchicalActivation layers child over parent.
func NewHierarchicalActivation(parent, child Activation) *HierarchicalActivation {
	return &HierarchicalActivation{parent: parent, child: child}
}

func (a *HierarchicalActivation) ResolveName(name string) (types.Value, types.Attribute, bool) {
	if v, attr, ok := a.child.ResolveName(name); ok {
		return v, attr, true
	}
	return a.parent.ResolveName(name)
}

func (a *HierarchicalActivation) UnknownPatterns() []types.AttributePattern {
	return concatPatterns(a.child.UnknownPatterns(), a.parent.UnknownPatterns())
}

func (a *HierarchicalActivation) MissingPatterns() []types.AttributePattern {
	return concatPatterns(a.child.MissingPatterns(), a.parent.MissingPatterns())
}

// concatPatterns copies into a fresh slice; appending to the child's slice
// could clobber its backing array when it has spare capacity.
func concatPatterns(child, parent []types.AttributePattern) []types.AttributePattern {
	if len(child) == 0 {
		return parent
	}
	if len(parent) == 0 {
		return child
	}
	out := make([]types.AttributePattern, 0, len(child)+len(parent))
	out = append(out, child...)
	return append(out, parent...)
}

// EmptyActivation binds nothing.
type EmptyActivation struct{}

func (EmptyActivation) ResolveName(string) (types.Value, types.Attribute, bool) {
	return types.Value{}, types.Attribute{}, false
}

func (EmptyActivation) UnknownPatterns() []types.AttributePattern { return nil }

func (EmptyActivation) MissingPatterns() []types.AttributePattern { return nil }
