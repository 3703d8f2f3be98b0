package interp

import (
	"strings"
	"testing"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// compreSegments holds the five sub-expression segments of a comprehension.
type compreSegments struct {
	rng      []Step
	accuInit []Step
	cond     []Step
	loop     []Step
	result   []Step
}

// buildComprehension lays the segments out with the interleaved
// comprehension steps and computed jump offsets.
func buildComprehension(s compreSegments, shortcircuit bool) Path {
	lenA, lenC, lenL, lenS := len(s.accuInit), len(s.cond), len(s.loop), len(s.result)

	var path Path
	path = append(path, s.rng...)
	path = append(path, NewCompreInitStep(1, "iter", "accu", 0, 1,
		lenA+1+lenC+1+lenL+1+lenS+1))
	path = append(path, s.accuInit...)
	path = append(path, NewCompreNextStep(2,
		lenC+1+lenL+1,
		lenC+1+lenL+1+lenS+1))
	path = append(path, s.cond...)
	path = append(path, NewCompreCondStep(3, shortcircuit,
		lenL+1,
		lenL+1+lenS+1))
	path = append(path, s.loop...)
	path = append(path, NewJumpStep(0, -(lenC+lenL+3)))
	path = append(path, s.result...)
	path = append(path, NewCompreFinishStep(4))
	return path
}

func evalPath(t *testing.T, path Path, slotCount int, activation Activation, registry *FunctionRegistry, opts Options) (types.Value, error) {
	t.Helper()
	prog, err := NewProgram(path, slotCount, registry, nil, opts)
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	arena := memory.NewArena()
	t.Cleanup(arena.Destroy)
	return prog.Eval(activation, arena)
}

func intList(t *testing.T, elems ...int64) types.Value {
	t.Helper()
	arena := memory.NewArena()
	t.Cleanup(arena.Destroy)
	b := types.NewListBuilder(arena, len(elems))
	for _, e := range elems {
		b.Add(types.Int(e))
	}
	return b.Build()
}

func sumRegistry(t *testing.T, opts Options) *FunctionRegistry {
	t.Helper()
	r := NewFunctionRegistry()
	if err := RegisterBuiltins(r, opts); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	return r
}

func TestComprehensionSum(t *testing.T) {
	opts := Options{}
	path := buildComprehension(compreSegments{
		rng:      []Step{NewConstStep(10, intList(t, 1, 2, 3))},
		accuInit: []Step{NewConstStep(11, types.Int(0))},
		cond:     []Step{NewConstStep(12, types.Bool(true))},
		loop:     []Step{NewSlotStep(13, 1), NewSlotStep(14, 0), NewCallStep(15, OperatorAdd, 2)},
		result:   []Step{NewSlotStep(16, 1)},
	}, true)

	got, err := evalPath(t, path, 2, nil, sumRegistry(t, opts), opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Kind() != types.KindInt || got.AsInt() != 6 {
		t.Errorf("sum = %s, want 6", got.DebugString())
	}
}

func TestComprehensionEmptyRange(t *testing.T) {
	opts := Options{}
	path := buildComprehension(compreSegments{
		rng:      []Step{NewConstStep(10, intList(t))},
		accuInit: []Step{NewConstStep(11, types.Int(42))},
		cond:     []Step{NewConstStep(12, types.Bool(true))},
		loop:     []Step{NewConstStep(13, types.Int(0))},
		result:   []Step{NewSlotStep(14, 1)},
	}, true)

	got, err := evalPath(t, path, 2, nil, sumRegistry(t, opts), opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.AsInt() != 42 {
		t.Errorf("empty-range result = %s, want 42", got.DebugString())
	}
}

// orEq2Registry registers or_eq2(accu bool, elem int) = accu || elem == 2
// and counts invocations.
func orEq2Registry(t *testing.T, calls *int) *FunctionRegistry {
	t.Helper()
	r := NewFunctionRegistry()
	err := r.Register("or_eq2", Overload{
		Operator: "or_eq2",
		ArgKinds: []types.Kind{types.KindBool, types.KindInt},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			*calls++
			return types.Bool(args[0].AsBool() || args[1].AsInt() == 2), nil
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(OperatorNot, Overload{
		Operator: "logical_not",
		ArgKinds: []types.Kind{types.KindBool},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			return types.Bool(!args[0].AsBool()), nil
		},
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r
}

func existsSegments(t *testing.T) compreSegments {
	return compreSegments{
		rng:      []Step{NewConstStep(10, intList(t, 1, 2, 3))},
		accuInit: []Step{NewConstStep(11, types.Bool(false))},
		cond:     []Step{NewSlotStep(12, 1), NewCallStep(13, OperatorNot, 1)},
		loop:     []Step{NewSlotStep(14, 1), NewSlotStep(15, 0), NewCallStep(16, "or_eq2", 2)},
		result:   []Step{NewSlotStep(17, 1)},
	}
}

func TestComprehensionShortcircuit(t *testing.T) {
	calls := 0
	path := buildComprehension(existsSegments(t), true)
	got, err := evalPath(t, path, 2, nil, orEq2Registry(t, &calls), Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.AsBool() {
		t.Error("exists over [1,2,3] = false, want true")
	}
	// The accumulator turns true after the second element; the third is
	// bound but its loop step must not run.
	if calls != 2 {
		t.Errorf("loop step invoked %d times, want 2", calls)
	}
}

func TestComprehensionExhaustive(t *testing.T) {
	calls := 0
	path := buildComprehension(existsSegments(t), false)
	got, err := evalPath(t, path, 2, nil, orEq2Registry(t, &calls), Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.AsBool() {
		t.Error("exhaustive exists = false, want true")
	}
	if calls != 3 {
		t.Errorf("loop step invoked %d times, want 3", calls)
	}
}

func TestComprehensionIterationBudget(t *testing.T) {
	segments := compreSegments{
		rng:      []Step{NewConstStep(10, intList(t, 1, 2, 3))},
		accuInit: []Step{NewConstStep(11, types.Int(0))},
		cond:     []Step{NewConstStep(12, types.Bool(true))},
		loop:     []Step{NewSlotStep(13, 1)},
		result:   []Step{NewSlotStep(14, 1)},
	}

	opts := Options{ComprehensionMaxIterations: 2}
	_, err := evalPath(t, buildComprehension(segments, true), 2, nil, nil, opts)
	if err == nil {
		t.Fatal("budget 2 over 3 elements: want error")
	}
	if types.StatusCode(err) != types.CodeInternal || err.Error() != "Iteration budget exceeded" {
		t.Errorf("budget error = %v (code %v)", err, types.StatusCode(err))
	}

	// Zero disables the budget entirely.
	if _, err := evalPath(t, buildComprehension(segments, true), 2, nil, nil, Options{}); err != nil {
		t.Errorf("unbounded evaluation failed: %v", err)
	}
}

// failStep returns a fixed engine status, standing in for a failing
// sub-expression.
type failStep struct {
	stepBase
	message string
}

func (s *failStep) Evaluate(*Frame) error {
	return types.StatusErrorf(types.CodeInternal, "%s", s.message)
}

func TestComprehensionStatusPropagation(t *testing.T) {
	fail := func(msg string) Step { return &failStep{message: msg} }
	ok := func(v types.Value) Step { return NewConstStep(0, v) }

	base := func() compreSegments {
		return compreSegments{
			rng:      []Step{ok(intList(t, 1, 2))},
			accuInit: []Step{ok(types.Bool(false))},
			cond:     []Step{ok(types.Bool(true))},
			loop:     []Step{ok(types.Bool(false))},
			result:   []Step{NewSlotStep(0, 1)},
		}
	}

	tests := []struct {
		name   string
		mutate func(*compreSegments)
		want   string
	}{
		{"range", func(s *compreSegments) { s.rng = []Step{fail("test range error")} }, "test range error"},
		{"accu init", func(s *compreSegments) { s.accuInit = []Step{fail("test accu init error")} }, "test accu init error"},
		{"condition", func(s *compreSegments) { s.cond = []Step{fail("test condition error")} }, "test condition error"},
		{"loop", func(s *compreSegments) { s.loop = []Step{fail("test loop error")} }, "test loop error"},
		{"result", func(s *compreSegments) { s.result = []Step{fail("test result error")} }, "test result error"},
	}
	for _, tc := range tests {
		segments := base()
		tc.mutate(&segments)
		_, err := evalPath(t, buildComprehension(segments, true), 2, nil, nil, Options{})
		if err == nil {
			t.Errorf("%s: evaluation succeeded, want %q", tc.name, tc.want)
			continue
		}
		if err.Error() != tc.want {
			t.Errorf("%s: error = %q, want %q", tc.name, err.Error(), tc.want)
		}
		if types.StatusCode(err) != types.CodeInternal {
			t.Errorf("%s: code = %v, want INTERNAL", tc.name, types.StatusCode(err))
		}
	}
}

func TestComprehensionErrorRangePassedThrough(t *testing.T) {
	// An unresolved range identifier becomes the comprehension's result.
	segments := compreSegments{
		rng:      []Step{NewIdentStep(9, "var")},
		accuInit: []Step{NewConstStep(0, types.Bool(false))},
		cond:     []Step{NewConstStep(0, types.Bool(true))},
		loop:     []Step{NewConstStep(0, types.Bool(false))},
		result:   []Step{NewSlotStep(0, 1)},
	}
	got, err := evalPath(t, buildComprehension(segments, true), 2, EmptyActivation{}, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() {
		t.Fatalf("result = %s, want error value", got.DebugString())
	}
	e := got.AsError()
	if e.Code != types.CodeUnknown || !strings.Contains(e.Message, `"var"`) {
		t.Errorf("error = %v: %q", e.Code, e.Message)
	}
}

func TestComprehensionNonIterableRange(t *testing.T) {
	segments := compreSegments{
		rng:      []Step{NewConstStep(0, types.Int(7))},
		accuInit: []Step{NewConstStep(0, types.Bool(false))},
		cond:     []Step{NewConstStep(0, types.Bool(true))},
		loop:     []Step{NewConstStep(0, types.Bool(false))},
		result:   []Step{NewSlotStep(0, 1)},
	}
	got, err := evalPath(t, buildComprehension(segments, true), 2, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsError() {
		t.Fatalf("result = %s, want error value", got.DebugString())
	}
	if got.AsError().Message != "No matching overloads found : <iter_range>" {
		t.Errorf("message = %q", got.AsError().Message)
	}
}

func TestComprehensionPartiallyUnknownRange(t *testing.T) {
	arena := memory.NewArena()
	defer arena.Destroy()
	mb := types.NewMapBuilder(arena, 3, false)
	mb.Put(types.String("key1"), types.Double(1))
	mb.Put(types.String("key2"), types.Double(2))
	mb.Put(types.String("key3"), types.Double(3))

	activation := NewMapActivation(map[string]types.Value{"var": mb.Build()})
	activation.SetUnknownPatterns([]types.AttributePattern{
		types.NewAttributePattern("var",
			types.QualifierOf(types.FieldQualifier("key2")),
			types.QualifierOf(types.FieldQualifier("foo")),
			types.Wildcard()),
	})

	segments := compreSegments{
		rng:      []Step{NewIdentStep(9, "var")},
		accuInit: []Step{NewConstStep(0, types.Bool(false))},
		cond:     []Step{NewConstStep(0, types.Bool(true))},
		loop:     []Step{NewConstStep(0, types.Bool(false))},
		result:   []Step{NewSlotStep(0, 1)},
	}
	opts := Options{UnknownProcessing: UnknownAttributesAndFunctions}
	got, err := evalPath(t, buildComprehension(segments, true), 2, activation, nil, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got.IsUnknown() {
		t.Fatalf("result = %s, want unknown", got.DebugString())
	}
	attrs := got.AsUnknown().Attributes()
	if len(attrs) != 1 {
		t.Fatalf("unknown attribute count = %d, want 1", len(attrs))
	}
	if attrs[0].Variable() != "var" || len(attrs[0].Qualifiers()) != 0 {
		t.Errorf("unknown attribute = %s, want bare var", attrs[0].String())
	}
}

func TestComprehensionNested(t *testing.T) {
	// Inner comprehension sums [1,2]; outer sums the inner result over
	// [10, 20], so the total is 10+3 + 20+3 = 36... the loop adds the inner
	// sum to each element and accumulates: accu + elem + 3.
	opts := Options{}
	registry := sumRegistry(t, opts)

	inner := buildComprehension(compreSegments{
		rng:      []Step{NewConstStep(0, intList(t, 1, 2))},
		accuInit: []Step{NewConstStep(0, types.Int(0))},
		cond:     []Step{NewConstStep(0, types.Bool(true))},
		loop:     []Step{NewSlotStep(0, 3), NewSlotStep(0, 2), NewCallStep(0, OperatorAdd, 2)},
		result:   []Step{NewSlotStep(0, 3)},
	}, true)
	// Inner uses slots 2/3 so it nests inside the outer's 0/1.
	innerAdjusted := make(Path, 0, len(inner))
	for _, s := range inner {
		if init, ok := s.(*compreInitStep); ok {
			adjusted := *init
			adjusted.iterSlot, adjusted.accuSlot = 2, 3
			adjusted.iterVar, adjusted.accuVar = "inner_iter", "inner_accu"
			innerAdjusted = append(innerAdjusted, &adjusted)
			continue
		}
		innerAdjusted = append(innerAdjusted, s)
	}

	loop := []Step{NewSlotStep(0, 1), NewSlotStep(0, 0), NewCallStep(0, OperatorAdd, 2)}
	loop = append(loop, innerAdjusted...)
	loop = append(loop, NewCallStep(0, OperatorAdd, 2))

	outer := buildComprehension(compreSegments{
		rng:      []Step{NewConstStep(0, intList(t, 10, 20))},
		accuInit: []Step{NewConstStep(0, types.Int(0))},
		cond:     []Step{NewConstStep(0, types.Bool(true))},
		loop:     loop,
		result:   []Step{NewSlotStep(0, 1)},
	}, true)

	got, err := evalPath(t, outer, 4, nil, registry, opts)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.AsInt() != 36 {
		t.Errorf("nested sum = %s, want 36", got.DebugString())
	}
}
