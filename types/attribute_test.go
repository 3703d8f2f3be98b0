package types

import "testing"

func TestAttributeStepAndString(t *testing.T) {
	a := NewAttribute("msg")
	b := a.Step(FieldQualifier("items")).Step(IntQualifier(0)).Step(FieldQualifier("weird name"))
	if got := b.String(); got != `msg.items[0]["weird name"]` {
		t.Errorf("String = %q", got)
	}
	// Step on the base attribute must not have been observed by b's siblings.
	c := a.Step(FieldQualifier("other"))
	if got := c.String(); got != "msg.other" {
		t.Errorf("sibling String = %q", got)
	}
	if !NewAttribute("").Step(FieldQualifier("x")).Empty() {
		t.Error("stepping an empty attribute produced a non-empty trail")
	}
}

func TestQualifierMatchesCrossNumeric(t *testing.T) {
	if !IntQualifier(3).Matches(UintQualifier(3)) {
		t.Error("int 3 does not match uint 3")
	}
	if IntQualifier(-1).Matches(UintQualifier(0)) {
		t.Error("int -1 matches uint 0")
	}
	if FieldQualifier("a").Matches(FieldQualifier("b")) {
		t.Error("distinct fields match")
	}
	if !BoolQualifier(true).Matches(BoolQualifier(true)) {
		t.Error("bool true does not match itself")
	}
}

func TestAttributePatternMatching(t *testing.T) {
	pat := NewAttributePattern("var", QualifierOf(FieldQualifier("field")), Wildcard())

	tests := []struct {
		attr    Attribute
		full    bool
		partial bool
	}{
		// Pattern is a prefix of the trail (wildcard covers any qualifier).
		{NewAttribute("var", FieldQualifier("field"), IntQualifier(1)), true, true},
		{NewAttribute("var", FieldQualifier("field"), IntQualifier(1), FieldQualifier("x")), true, true},
		// Trail shorter than the pattern: partial only.
		{NewAttribute("var", FieldQualifier("field")), false, true},
		{NewAttribute("var"), false, true},
		// Mismatched qualifier: neither.
		{NewAttribute("var", FieldQualifier("other")), false, false},
		{NewAttribute("other"), false, false},
	}
	for _, tc := range tests {
		if got := pat.Matches(tc.attr); got != tc.full {
			t.Errorf("Matches(%s) = %v, want %v", tc.attr.String(), got, tc.full)
		}
		if got := pat.MatchesPartially(tc.attr); got != tc.partial {
			t.Errorf("MatchesPartially(%s) = %v, want %v", tc.attr.String(), got, tc.partial)
		}
	}
}

func TestUnknownMergeAndNormalize(t *testing.T) {
	a1 := NewAttribute("a", FieldQualifier("x"))
	a2 := NewAttribute("b")
	u1 := UnknownFromAttribute(a1)
	u2 := UnknownFromAttribute(a2)
	u3 := UnknownFromFunction(FunctionResult{Name: "now", ID: 7})

	merged := MergeUnknowns(u1, u2, u1, u3)
	if got := len(merged.Attributes()); got != 2 {
		t.Fatalf("merged attribute count = %d, want 2", got)
	}
	if got := len(merged.FunctionResults()); got != 1 {
		t.Fatalf("merged function count = %d, want 1", got)
	}
	// Normalization sorts, so merge order does not affect equality.
	other := MergeUnknowns(u3, u2, u1)
	if !merged.Equal(other) {
		t.Errorf("merge order changed result: %s vs %s", merged.DebugString(), other.DebugString())
	}
}
