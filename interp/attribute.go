package interp

import "github.com/sift-lang/sift/types"

// ---------------------------------------------------------------------------
// Attribute utility
// ---------------------------------------------------------------------------

// AttributeUtility answers unknown/missing questions about attribute trails
// against the patterns registered on the activation. It is built once per
// frame; pattern sets do not change during an evaluation.
type AttributeUtility struct {
	unknown []types.AttributePattern
	missing []types.AttributePattern
}

// NewAttributeUtility captures the activation's pattern sets.
func NewAttributeUtility(a Activation) *AttributeUtility {
	return &AttributeUtility{
		unknown: a.UnknownPatterns(),
		missing: a.MissingPatterns(),
	}
}

// CheckForUnknown reports whether the trail matches a registered unknown
// pattern. With usePartial, a pattern that agrees with the trail on their
// common prefix also matches; this is the test comprehension ranges use, so
// that iterating a partially-unknown aggregate yields an unknown rather than
// leaking known siblings.
func (u *AttributeUtility) CheckForUnknown(trail types.Attribute, usePartial bool) bool {
	if trail.Empty() {
		return false
	}
	for _, p := range u.unknown {
		if usePartial {
			if p.MatchesPartially(trail) {
				return true
			}
		} else if p.Matches(trail) {
			return true
		}
	}
	return false
}

// CheckForMissing reports whether the trail matches a registered missing
// pattern.
func (u *AttributeUtility) CheckForMissing(trail types.Attribute) bool {
	if trail.Empty() {
		return false
	}
	for _, p := range u.missing {
		if p.Matches(trail) {
			return true
		}
	}
	return false
}

// CreateUnknown builds an unknown value carrying the given trail. The
// unknown names the trail as evaluated, not the pattern that matched it.
func (u *AttributeUtility) CreateUnknown(trail types.Attribute) types.Value {
	return types.UnknownValue(types.UnknownFromAttribute(trail))
}

// CreateUnknownFunction builds an unknown value recording a function
// invocation whose result could not be computed.
func (u *AttributeUtility) CreateUnknownFunction(name string, exprID int64) types.Value {
	return types.UnknownValue(types.UnknownFromFunction(types.FunctionResult{Name: name, ID: exprID}))
}

// MergeUnknowns folds every unknown value among vals into one combined
// unknown, preserving deterministic attribute order. It returns false when
// no operand is unknown.
func MergeUnknowns(vals []types.Value) (types.Value, bool) {
	var sets []*types.Unknown
	for _, v := range vals {
		if v.IsUnknown() {
			sets = append(sets, v.AsUnknown())
		}
	}
	if len(sets) == 0 {
		return types.Value{}, false
	}
	return types.UnknownValue(types.MergeUnknowns(sets...)), true
}
