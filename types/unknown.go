package types

import (
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Unknown: intentionally partial results
// ---------------------------------------------------------------------------

// FunctionResult identifies a function invocation whose result is not yet
// known, recorded when unknown function results are enabled.
type FunctionResult struct {
	Name string
	ID   int64
}

// Unknown is the payload of an unknown-kind value: the set of attributes and
// function invocations the result depends on. Unknowns are not errors; they
// represent information that is not yet available, and they propagate through
// downstream operations as the union of all contributing sets.
type Unknown struct {
	attrs []Attribute
	funcs []FunctionResult
}

// NewUnknown creates an unknown payload, deduplicating and ordering its
// members deterministically.
func NewUnknown(attrs []Attribute, funcs []FunctionResult) *Unknown {
	u := &Unknown{}
	for _, a := range attrs {
		u.addAttribute(a)
	}
	for _, f := range funcs {
		u.addFunction(f)
	}
	u.normalize()
	return u
}

// UnknownFromAttribute creates an unknown depending on a single attribute.
func UnknownFromAttribute(a Attribute) *Unknown {
	return &Unknown{attrs: []Attribute{a}}
}

// UnknownFromFunction creates an unknown depending on a single invocation.
func UnknownFromFunction(f FunctionResult) *Unknown {
	return &Unknown{funcs: []FunctionResult{f}}
}

// MergeUnknowns returns the union of the given unknown sets.
func MergeUnknowns(us ...*Unknown) *Unknown {
	merged := &Unknown{}
	for _, u := range us {
		if u == nil {
			continue
		}
		for _, a := range u.attrs {
			merged.addAttribute(a)
		}
		for _, f := range u.funcs {
			merged.addFunction(f)
		}
	}
	merged.normalize()
	return merged
}

func (u *Unknown) addAttribute(a Attribute) {
	for _, have := range u.attrs {
		if have.Equal(a) {
			return
		}
	}
	u.attrs = append(u.attrs, a)
}

func (u *Unknown) addFunction(f FunctionResult) {
	for _, have := range u.funcs {
		if have == f {
			return
		}
	}
	u.funcs = append(u.funcs, f)
}

func (u *Unknown) normalize() {
	sort.Slice(u.attrs, func(i, j int) bool {
		return u.attrs[i].String() < u.attrs[j].String()
	})
	sort.Slice(u.funcs, func(i, j int) bool {
		if u.funcs[i].Name != u.funcs[j].Name {
			return u.funcs[i].Name < u.funcs[j].Name
		}
		return u.funcs[i].ID < u.funcs[j].ID
	})
}

// Attributes returns the attribute set. Callers must not mutate the slice.
func (u *Unknown) Attributes() []Attribute { return u.attrs }

// FunctionResults returns the invocation set. Callers must not mutate it.
func (u *Unknown) FunctionResults() []FunctionResult { return u.funcs }

// Equal reports whether two unknown sets have the same members.
func (u *Unknown) Equal(o *Unknown) bool {
	if len(u.attrs) != len(o.attrs) || len(u.funcs) != len(o.funcs) {
		return false
	}
	for i := range u.attrs {
		if !u.attrs[i].Equal(o.attrs[i]) {
			return false
		}
	}
	for i := range u.funcs {
		if u.funcs[i] != o.funcs[i] {
			return false
		}
	}
	return true
}

// DebugString renders the unknown set deterministically.
func (u *Unknown) DebugString() string {
	var b strings.Builder
	b.WriteString("unknown<")
	for i, a := range u.attrs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	for i, f := range u.funcs {
		if i > 0 || len(u.attrs) > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte('#')
		b.WriteString(strconv.FormatInt(f.ID, 10))
	}
	b.WriteByte('>')
	return b.String()
}
