package interp

import (
	"strings"
	"testing"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

func TestConstStep(t *testing.T) {
	got, err := evalPath(t, Path{NewConstStep(1, types.Int(42))}, 0, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.AsInt() != 42 {
		t.Errorf("result = %s, want 42", got.DebugString())
	}
}

func TestIdentStep(t *testing.T) {
	activation := NewMapActivation(map[string]types.Value{"x": types.String("bound")})

	got, err := evalPath(t, Path{NewIdentStep(1, "x")}, 0, activation, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.AsString() != "bound" {
		t.Errorf("x = %s, want bound", got.DebugString())
	}

	got, err = evalPath(t, Path{NewIdentStep(1, "missing")}, 0, activation, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() {
		t.Fatalf("unbound ident = %s, want error value", got.DebugString())
	}
	e := got.AsError()
	if e.Code != types.CodeUnknown {
		t.Errorf("code = %v, want UNKNOWN", e.Code)
	}
	if e.Message != `No value with name "missing" found in Activation` {
		t.Errorf("message = %q", e.Message)
	}
}

func TestIdentStepUnknownPattern(t *testing.T) {
	activation := NewMapActivation(map[string]types.Value{"x": types.Int(1)})
	activation.SetUnknownPatterns([]types.AttributePattern{types.NewAttributePattern("x")})

	opts := Options{UnknownProcessing: UnknownAttributesOnly}
	got, err := evalPath(t, Path{NewIdentStep(1, "x")}, 0, activation, nil, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsUnknown() {
		t.Fatalf("result = %s, want unknown", got.DebugString())
	}
	attrs := got.AsUnknown().Attributes()
	if len(attrs) != 1 || attrs[0].Variable() != "x" {
		t.Errorf("unknown attributes = %v", attrs)
	}
}

func TestIdentStepMissingAttribute(t *testing.T) {
	activation := NewMapActivation(map[string]types.Value{"x": types.Int(1)})
	activation.SetMissingPatterns([]types.AttributePattern{types.NewAttributePattern("x")})

	opts := Options{EnableMissingAttributeErrors: true}
	got, err := evalPath(t, Path{NewIdentStep(1, "x")}, 0, activation, nil, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() {
		t.Fatalf("result = %s, want error value", got.DebugString())
	}
	e := got.AsError()
	if e.Code != types.CodeInvalidArgument || e.Message != "MissingAttributeError: x" {
		t.Errorf("error = %v: %q", e.Code, e.Message)
	}
}

func TestSelectStep(t *testing.T) {
	arena := memory.NewArena()
	defer arena.Destroy()
	mb := types.NewMapBuilder(arena, 1, false)
	mb.Put(types.String("name"), types.String("sift"))
	activation := NewMapActivation(map[string]types.Value{"obj": mb.Build()})

	got, err := evalPath(t, Path{NewIdentStep(1, "obj"), NewSelectStep(2, "name", false)},
		0, activation, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.AsString() != "sift" {
		t.Errorf("obj.name = %s, want sift", got.DebugString())
	}

	got, err = evalPath(t, Path{NewIdentStep(1, "obj"), NewSelectStep(2, "nope", false)},
		0, activation, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() || got.AsError().Message != "Key not found in map : nope" {
		t.Errorf("missing key result = %s", got.DebugString())
	}

	// Presence test variant.
	got, err = evalPath(t, Path{NewIdentStep(1, "obj"), NewSelectStep(2, "nope", true)},
		0, activation, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Kind() != types.KindBool || got.AsBool() {
		t.Errorf("has(obj.nope) = %s, want false", got.DebugString())
	}
}

func TestSelectStepStruct(t *testing.T) {
	arena := memory.NewArena()
	defer arena.Destroy()
	s := types.NewFieldStruct(arena, "test.Widget")
	if err := s.SetField("size", types.Int(3)); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	activation := NewMapActivation(map[string]types.Value{"w": types.StructValue(s)})

	got, err := evalPath(t, Path{NewIdentStep(1, "w"), NewSelectStep(2, "size", false)},
		0, activation, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.AsInt() != 3 {
		t.Errorf("w.size = %s, want 3", got.DebugString())
	}

	got, err = evalPath(t, Path{NewIdentStep(1, "w"), NewSelectStep(2, "color", false)},
		0, activation, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() || got.AsError().Message != "no_such_field : color" {
		t.Errorf("missing field result = %s", got.DebugString())
	}
}

func TestSelectStepForwardsErrors(t *testing.T) {
	// Selection on an error operand forwards the operand untouched.
	path := Path{NewIdentStep(1, "nope"), NewSelectStep(2, "field", false)}
	got, err := evalPath(t, path, 0, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() || !strings.Contains(got.AsError().Message, `"nope"`) {
		t.Errorf("result = %s, want forwarded resolution error", got.DebugString())
	}
}

func TestSelectStepUnknownPattern(t *testing.T) {
	arena := memory.NewArena()
	defer arena.Destroy()
	mb := types.NewMapBuilder(arena, 1, false)
	mb.Put(types.String("secret"), types.Int(1))
	activation := NewMapActivation(map[string]types.Value{"obj": mb.Build()})
	activation.SetUnknownPatterns([]types.AttributePattern{
		types.NewAttributePattern("obj", types.QualifierOf(types.FieldQualifier("secret"))),
	})

	opts := Options{UnknownProcessing: UnknownAttributesOnly}
	got, err := evalPath(t, Path{NewIdentStep(1, "obj"), NewSelectStep(2, "secret", false)},
		0, activation, nil, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsUnknown() {
		t.Fatalf("result = %s, want unknown", got.DebugString())
	}
	attrs := got.AsUnknown().Attributes()
	if len(attrs) != 1 || attrs[0].String() != "obj.secret" {
		t.Errorf("unknown attributes = %v", attrs)
	}
}

func TestCallStepDispatchAndNoOverload(t *testing.T) {
	opts := Options{}
	registry := sumRegistry(t, opts)
	path := Path{
		NewConstStep(1, types.Int(2)),
		NewConstStep(2, types.Int(3)),
		NewCallStep(3, OperatorAdd, 2),
	}
	got, err := evalPath(t, path, 0, nil, registry, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.AsInt() != 5 {
		t.Errorf("2 + 3 = %s", got.DebugString())
	}

	// Mixed kinds have no overload without heterogeneous support.
	path = Path{
		NewConstStep(1, types.Int(2)),
		NewConstStep(2, types.Double(3)),
		NewCallStep(3, OperatorAdd, 2),
	}
	got, err = evalPath(t, path, 0, nil, registry, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() || got.AsError().Message != "No matching overloads found : _+_" {
		t.Errorf("result = %s", got.DebugString())
	}
}

func TestCallStepForwardsFirstError(t *testing.T) {
	opts := Options{}
	registry := sumRegistry(t, opts)
	path := Path{
		NewIdentStep(1, "a"),
		NewIdentStep(2, "b"),
		NewCallStep(3, OperatorAdd, 2),
	}
	got, err := evalPath(t, path, 0, nil, registry, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() || !strings.Contains(got.AsError().Message, `"a"`) {
		t.Errorf("result = %s, want error naming a", got.DebugString())
	}
}

func TestCallStepMergesUnknowns(t *testing.T) {
	activation := NewMapActivation(map[string]types.Value{
		"a": types.Int(1),
		"b": types.Int(2),
	})
	activation.SetUnknownPatterns([]types.AttributePattern{
		types.NewAttributePattern("a"),
		types.NewAttributePattern("b"),
	})
	opts := Options{UnknownProcessing: UnknownAttributesOnly}
	registry := sumRegistry(t, opts)

	path := Path{
		NewIdentStep(1, "a"),
		NewIdentStep(2, "b"),
		NewCallStep(3, OperatorAdd, 2),
	}
	got, err := evalPath(t, path, 0, activation, registry, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsUnknown() {
		t.Fatalf("result = %s, want unknown", got.DebugString())
	}
	if attrs := got.AsUnknown().Attributes(); len(attrs) != 2 {
		t.Errorf("merged attribute count = %d, want 2", len(attrs))
	}
}

func TestCallStepUnknownFunctionResult(t *testing.T) {
	opts := Options{UnknownProcessing: UnknownAttributesAndFunctions}
	registry := NewFunctionRegistry()
	registry.MarkUnknownResult("now")

	got, err := evalPath(t, Path{NewCallStep(7, "now", 0)}, 0, nil, registry, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsUnknown() {
		t.Fatalf("result = %s, want unknown", got.DebugString())
	}
	funcs := got.AsUnknown().FunctionResults()
	if len(funcs) != 1 || funcs[0].Name != "now" || funcs[0].ID != 7 {
		t.Errorf("function results = %v", funcs)
	}
}

func TestCreateListAndMapSteps(t *testing.T) {
	path := Path{
		NewConstStep(1, types.Int(1)),
		NewConstStep(2, types.Int(2)),
		NewCreateListStep(3, 2),
	}
	got, err := evalPath(t, path, 0, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.DebugString() != "[1, 2]" {
		t.Errorf("list = %s", got.DebugString())
	}

	path = Path{
		NewConstStep(1, types.String("k")),
		NewConstStep(2, types.Int(1)),
		NewCreateMapStep(3, 1),
	}
	got, err = evalPath(t, path, 0, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.DebugString() != `{"k": 1}` {
		t.Errorf("map = %s", got.DebugString())
	}

	// Duplicate keys surface as a language error, not an engine failure.
	path = Path{
		NewConstStep(1, types.String("k")),
		NewConstStep(2, types.Int(1)),
		NewConstStep(3, types.String("k")),
		NewConstStep(4, types.Int(2)),
		NewCreateMapStep(5, 2),
	}
	got, err = evalPath(t, path, 0, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() || !strings.Contains(got.AsError().Message, "duplicate map key") {
		t.Errorf("duplicate key result = %s", got.DebugString())
	}
}

func TestCreateStructStep(t *testing.T) {
	path := Path{
		NewConstStep(1, types.Int(3)),
		NewConstStep(2, types.String("blue")),
		NewCreateStructStep(3, "test.Widget", []string{"size", "color"}),
	}
	got, err := evalPath(t, path, 0, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Kind() != types.KindStruct {
		t.Fatalf("result = %s, want struct", got.DebugString())
	}
	impl := got.AsStruct()
	if impl.TypeName() != "test.Widget" {
		t.Errorf("TypeName = %q", impl.TypeName())
	}
	v, err := impl.GetField("color", false)
	if err != nil || v.AsString() != "blue" {
		t.Errorf("color = %v, %v", v, err)
	}
}

func TestJumpSteps(t *testing.T) {
	// false || jump plan: cond-jump skips the alternative when true.
	path := Path{
		NewConstStep(1, types.Bool(true)),
		NewCondJumpStep(2, true, true, 1),
		NewConstStep(3, types.Bool(false)),
	}
	got, err := evalPath(t, path, 0, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.AsBool() {
		t.Errorf("result = %s, want true", got.DebugString())
	}

	// BoolCheck jump carries errors over both branches.
	path = Path{
		NewIdentStep(1, "cond"),
		NewBoolCheckJumpStep(2, 1),
		NewConstStep(3, types.Int(1)),
	}
	got, err = evalPath(t, path, 0, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() {
		t.Errorf("result = %s, want forwarded error", got.DebugString())
	}
}

func TestJumpOutOfRange(t *testing.T) {
	path := Path{
		NewConstStep(1, types.Int(1)),
		NewJumpStep(2, 5),
	}
	_, err := evalPath(t, path, 0, nil, nil, Options{})
	if err == nil {
		t.Fatal("out-of-range jump succeeded")
	}
	if types.StatusCode(err) != types.CodeInternal {
		t.Errorf("code = %v, want INTERNAL", types.StatusCode(err))
	}
	if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestEvaluateRequiresSingleResult(t *testing.T) {
	path := Path{
		NewConstStep(1, types.Int(1)),
		NewConstStep(2, types.Int(2)),
	}
	_, err := evalPath(t, path, 0, nil, nil, Options{})
	if err == nil {
		t.Fatal("two-value stack accepted")
	}
	if types.StatusCode(err) != types.CodeInternal {
		t.Errorf("code = %v, want INTERNAL", types.StatusCode(err))
	}
}
