package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Attributes: structural descriptors of external variable paths
// ---------------------------------------------------------------------------

// Qualifier is one step in an attribute path: a field name, a list index, or
// a map key. Qualifier kinds are restricted to string, int, uint, and bool.
type Qualifier struct {
	kind Kind
	s    string
	n    uint64
}

// FieldQualifier returns a field-name or string-key qualifier.
func FieldQualifier(name string) Qualifier {
	return Qualifier{kind: KindString, s: name}
}

// IntQualifier returns an integer index qualifier.
func IntQualifier(i int64) Qualifier {
	return Qualifier{kind: KindInt, n: uint64(i)}
}

// UintQualifier returns an unsigned index qualifier.
func UintQualifier(u uint64) Qualifier {
	return Qualifier{kind: KindUint, n: u}
}

// BoolQualifier returns a boolean key qualifier.
func BoolQualifier(b bool) Qualifier {
	q := Qualifier{kind: KindBool}
	if b {
		q.n = 1
	}
	return q
}

// QualifierFromValue converts a string/int/uint/bool value into a qualifier.
func QualifierFromValue(v Value) (Qualifier, bool) {
	switch v.kind {
	case KindString:
		return FieldQualifier(v.str), true
	case KindInt:
		return IntQualifier(int64(v.num)), true
	case KindUint:
		return UintQualifier(v.num), true
	case KindBool:
		return BoolQualifier(v.num != 0), true
	default:
		return Qualifier{}, false
	}
}

// Kind returns the qualifier's kind.
func (q Qualifier) Kind() Kind { return q.kind }

// FieldName returns the string payload of a string qualifier.
func (q Qualifier) FieldName() string { return q.s }

// Matches reports whether two qualifiers address the same element. Integer
// qualifiers match across int/uint when they denote the same value.
func (q Qualifier) Matches(o Qualifier) bool {
	if q.kind == o.kind {
		return q.s == o.s && q.n == o.n
	}
	if (q.kind == KindInt || q.kind == KindUint) && (o.kind == KindInt || o.kind == KindUint) {
		qn, qok := q.number().Int64()
		on, ook := o.number().Int64()
		if qok && ook {
			return qn == on
		}
		qu, qok := q.number().Uint64()
		ou, ook := o.number().Uint64()
		return qok && ook && qu == ou
	}
	return false
}

func (q Qualifier) number() Number {
	if q.kind == KindUint {
		return UintNumber(q.n)
	}
	return IntNumber(int64(q.n))
}

// String renders the qualifier as it appears in an attribute path.
func (q Qualifier) String() string {
	switch q.kind {
	case KindString:
		if isIdent(q.s) {
			return "." + q.s
		}
		return "[" + strconv.Quote(q.s) + "]"
	case KindInt:
		return "[" + strconv.FormatInt(int64(q.n), 10) + "]"
	case KindUint:
		return "[" + strconv.FormatUint(q.n, 10) + "u]"
	case KindBool:
		if q.n != 0 {
			return "[true]"
		}
		return "[false]"
	default:
		return fmt.Sprintf("[?%s]", q.kind)
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !alpha && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Attribute is the trail identifying which external variable and path
// produced a value. The zero Attribute means "computed, no external source".
type Attribute struct {
	variable string
	quals    []Qualifier
}

// NewAttribute creates an attribute rooted at the named variable.
func NewAttribute(variable string, quals ...Qualifier) Attribute {
	return Attribute{variable: variable, quals: quals}
}

// Empty reports whether the attribute denotes no external source.
func (a Attribute) Empty() bool { return a.variable == "" }

// Variable returns the root variable name.
func (a Attribute) Variable() string { return a.variable }

// Qualifiers returns the qualifier path. Callers must not mutate the slice.
func (a Attribute) Qualifiers() []Qualifier { return a.quals }

// Step extends the trail by one qualifier, leaving the receiver unchanged.
// Stepping an empty trail stays empty: qualifying a computed value does not
// invent an external source.
func (a Attribute) Step(q Qualifier) Attribute {
	if a.Empty() {
		return a
	}
	quals := make([]Qualifier, len(a.quals)+1)
	copy(quals, a.quals)
	quals[len(a.quals)] = q
	return Attribute{variable: a.variable, quals: quals}
}

// Equal reports whether two attributes denote the same path.
func (a Attribute) Equal(o Attribute) bool {
	if a.variable != o.variable || len(a.quals) != len(o.quals) {
		return false
	}
	for i := range a.quals {
		if !a.quals[i].Matches(o.quals[i]) {
			return false
		}
	}
	return true
}

// String renders the attribute path, e.g. `var.field[0]["k"]`.
func (a Attribute) String() string {
	var b strings.Builder
	b.WriteString(a.variable)
	for _, q := range a.quals {
		b.WriteString(q.String())
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Attribute patterns
// ---------------------------------------------------------------------------

// QualifierPattern matches one qualifier position; it is either a concrete
// qualifier or a wildcard matching anything.
type QualifierPattern struct {
	wildcard bool
	q        Qualifier
}

// Wildcard returns a pattern position matching any qualifier.
func Wildcard() QualifierPattern {
	return QualifierPattern{wildcard: true}
}

// QualifierOf returns a pattern position matching exactly the qualifier.
func QualifierOf(q Qualifier) QualifierPattern {
	return QualifierPattern{q: q}
}

// Matches reports whether the pattern position accepts the qualifier.
func (p QualifierPattern) Matches(q Qualifier) bool {
	return p.wildcard || p.q.Matches(q)
}

// AttributePattern matches attribute trails: a variable name plus a path of
// qualifier patterns. Patterns are registered on an activation to mark
// unknown or missing external state.
type AttributePattern struct {
	variable string
	quals    []QualifierPattern
}

// NewAttributePattern creates a pattern rooted at the named variable.
func NewAttributePattern(variable string, quals ...QualifierPattern) AttributePattern {
	return AttributePattern{variable: variable, quals: quals}
}

// Variable returns the root variable the pattern applies to.
func (p AttributePattern) Variable() string { return p.variable }

// Matches reports whether the pattern covers the attribute: the variable
// matches and every pattern qualifier matches the attribute's corresponding
// position. A pattern shorter than the attribute covers everything beneath
// the matched prefix.
func (p AttributePattern) Matches(a Attribute) bool {
	if p.variable != a.variable || len(p.quals) > len(a.quals) {
		return false
	}
	for i, qp := range p.quals {
		if !qp.Matches(a.quals[i]) {
			return false
		}
	}
	return true
}

// MatchesPartially reports whether the attribute might contain state covered
// by the pattern: the two agree on the shorter of their paths. A partial
// match on a container's trail means some element within it is unknown.
func (p AttributePattern) MatchesPartially(a Attribute) bool {
	if p.variable != a.variable {
		return false
	}
	n := len(p.quals)
	if len(a.quals) < n {
		n = len(a.quals)
	}
	for i := 0; i < n; i++ {
		if !p.quals[i].Matches(a.quals[i]) {
			return false
		}
	}
	return true
}
