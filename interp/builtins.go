package interp

import (
	"math"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// ---------------------------------------------------------------------------
// Builtin functions
// ---------------------------------------------------------------------------

// Builtin operator names. The planner emits calls against these; hosts
// register everything else.
const (
	OperatorIn       = "@in"
	OperatorEquals   = "_==_"
	OperatorNotEq    = "_!=_"
	OperatorNot      = "!_"
	OperatorAdd      = "_+_"
	OperatorIndex    = "_[_]"
	OperatorLogicAnd = "_&&_"
	OperatorLogicOr  = "_||_"
)

// RegisterBuiltins installs the engine's builtin set. Options are captured
// at registration, matching the program they will evaluate under.
func RegisterBuiltins(r *FunctionRegistry, opts Options) error {
	hetero := opts.EnableHeterogeneousEquality
	listContains := opts.EnableListContains

	register := func(name string, o Overload) error { return r.Register(name, o) }

	if err := register(OperatorIn, Overload{
		Operator: "in_list",
		ArgKinds: []types.Kind{types.KindDyn, types.KindList},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			if !listContains {
				return types.NoMatchingOverloadError(OperatorIn), nil
			}
			target, list := args[0], args[1].AsList()
			for i := 0; i < list.Len(); i++ {
				if types.Equal(list.Get(i), target, hetero) {
					return types.Bool(true), nil
				}
			}
			return types.Bool(false), nil
		},
	}); err != nil {
		return err
	}

	if err := register(OperatorIn, Overload{
		Operator: "in_map",
		ArgKinds: []types.Kind{types.KindDyn, types.KindMap},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			return types.Bool(args[1].AsMap().Has(args[0], hetero)), nil
		},
	}); err != nil {
		return err
	}

	if err := register(OperatorEquals, Overload{
		Operator: "equals",
		ArgKinds: []types.Kind{types.KindDyn, types.KindDyn},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			return equalValues(args[0], args[1], hetero, OperatorEquals)
		},
	}); err != nil {
		return err
	}

	if err := register(OperatorNotEq, Overload{
		Operator: "not_equals",
		ArgKinds: []types.Kind{types.KindDyn, types.KindDyn},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			v, err := equalValues(args[0], args[1], hetero, OperatorNotEq)
			if err != nil || v.IsError() {
				return v, err
			}
			return types.Bool(!v.AsBool()), nil
		},
	}); err != nil {
		return err
	}

	if err := register(OperatorNot, Overload{
		Operator: "logical_not",
		ArgKinds: []types.Kind{types.KindBool},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			return types.Bool(!args[0].AsBool()), nil
		},
	}); err != nil {
		return err
	}

	if err := register(OperatorLogicAnd, Overload{
		Operator:  "logical_and",
		ArgKinds:  []types.Kind{types.KindDyn, types.KindDyn},
		NonStrict: true,
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			return logicalCombine(args, false, OperatorLogicAnd), nil
		},
	}); err != nil {
		return err
	}

	if err := register(OperatorLogicOr, Overload{
		Operator:  "logical_or",
		ArgKinds:  []types.Kind{types.KindDyn, types.KindDyn},
		NonStrict: true,
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			return logicalCombine(args, true, OperatorLogicOr), nil
		},
	}); err != nil {
		return err
	}

	addOverloads := []struct {
		operator string
		kind     types.Kind
		fn       Function
	}{
		{"add_int", types.KindInt, addInt},
		{"add_uint", types.KindUint, addUint},
		{"add_double", types.KindDouble, func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			return types.Double(args[0].AsDouble() + args[1].AsDouble()), nil
		}},
		{"add_string", types.KindString, func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			return types.String(args[0].AsString() + args[1].AsString()), nil
		}},
		{"add_bytes", types.KindBytes, func(a memory.Allocator, args []types.Value) (types.Value, error) {
			return types.ConcatBytes(a, args[0], args[1]), nil
		}},
		{"add_list", types.KindList, addList},
	}
	for _, o := range addOverloads {
		if err := register(OperatorAdd, Overload{
			Operator: o.operator,
			ArgKinds: []types.Kind{o.kind, o.kind},
			Fn:       o.fn,
		}); err != nil {
			return err
		}
	}

	if err := register(OperatorIndex, Overload{
		Operator: "index_map",
		ArgKinds: []types.Kind{types.KindMap, types.KindDyn},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			v, ok := args[0].AsMap().Find(args[1], hetero)
			if !ok {
				return types.NoSuchKeyError(args[1].DebugString()), nil
			}
			return v, nil
		},
	}); err != nil {
		return err
	}

	return register(OperatorIndex, Overload{
		Operator: "index_list",
		ArgKinds: []types.Kind{types.KindList, types.KindInt},
		Fn: func(_ memory.Allocator, args []types.Value) (types.Value, error) {
			list, i := args[0].AsList(), args[1].AsInt()
			if i < 0 || i >= int64(list.Len()) {
				return types.Errorf(types.CodeInvalidArgument, "index %d out of range", i), nil
			}
			return list.Get(int(i)), nil
		},
	})
}

// logicalCombine is the non-shortcircuit fallback for && and ||: an
// absorbing bool operand (false for and, true for or) settles the result no
// matter what the other operand holds, then unknowns win over errors.
func logicalCombine(args []types.Value, absorb bool, op string) types.Value {
	for _, a := range args {
		if a.Kind() == types.KindBool && a.AsBool() == absorb {
			return types.Bool(absorb)
		}
	}
	if merged, ok := MergeUnknowns(args); ok {
		return merged
	}
	for _, a := range args {
		if a.IsError() {
			return a
		}
	}
	for _, a := range args {
		if a.Kind() != types.KindBool {
			return types.NoMatchingOverloadError(op)
		}
	}
	return types.Bool(!absorb)
}

func equalValues(a, b types.Value, hetero bool, op string) (types.Value, error) {
	if !hetero && a.Kind() != b.Kind() {
		return types.NoMatchingOverloadError(op), nil
	}
	return types.Bool(types.Equal(a, b, hetero)), nil
}

func addInt(_ memory.Allocator, args []types.Value) (types.Value, error) {
	x, y := args[0].AsInt(), args[1].AsInt()
	if (y > 0 && x > math.MaxInt64-y) || (y < 0 && x < math.MinInt64-y) {
		return types.Errorf(types.CodeOutOfRange, "integer overflow"), nil
	}
	return types.Int(x + y), nil
}

func addUint(_ memory.Allocator, args []types.Value) (types.Value, error) {
	x, y := args[0].AsUint(), args[1].AsUint()
	if x > math.MaxUint64-y {
		return types.Errorf(types.CodeOutOfRange, "unsigned integer overflow"), nil
	}
	return types.Uint(x + y), nil
}

func addList(a memory.Allocator, args []types.Value) (types.Value, error) {
	x, y := args[0].AsList(), args[1].AsList()
	b := types.NewListBuilder(a, x.Len()+y.Len())
	for i := 0; i < x.Len(); i++ {
		b.Add(x.Get(i))
	}
	for i := 0; i < y.Len(); i++ {
		b.Add(y.Get(i))
	}
	return b.Build(), nil
}
