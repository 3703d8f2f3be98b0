package plan

import (
	"fmt"
	"strings"

	"github.com/sift-lang/sift/interp"
	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// ---------------------------------------------------------------------------
// Options fingerprint
// ---------------------------------------------------------------------------

// FingerprintOptions captures engine options into a wire fingerprint.
// Capacity hints are not semantic and stay out of the fingerprint.
func FingerprintOptions(opts interp.Options) Fingerprint {
	return Fingerprint{
		UnknownProcessing:      uint8(opts.UnknownProcessing),
		MissingAttributeErrors: opts.EnableMissingAttributeErrors,
		MaxIterations:          opts.ComprehensionMaxIterations,
		HeterogeneousEquality:  opts.EnableHeterogeneousEquality,
		ListContains:           opts.EnableListContains,
	}
}

// OptionsFromFingerprint reconstructs engine options from a wire fingerprint.
func OptionsFromFingerprint(fp Fingerprint) (interp.Options, error) {
	up := interp.UnknownProcessing(fp.UnknownProcessing)
	switch up {
	case interp.UnknownDisabled, interp.UnknownAttributesOnly, interp.UnknownAttributesAndFunctions:
	default:
		return interp.Options{}, types.StatusErrorf(types.CodeInternal,
			"invalid unknown processing mode in fingerprint: %d", fp.UnknownProcessing)
	}
	return interp.Options{
		UnknownProcessing:            up,
		EnableMissingAttributeErrors: fp.MissingAttributeErrors,
		ComprehensionMaxIterations:   fp.MaxIterations,
		EnableHeterogeneousEquality:  fp.HeterogeneousEquality,
		EnableListContains:           fp.ListContains,
	}, nil
}

// ---------------------------------------------------------------------------
// Literal pool
// ---------------------------------------------------------------------------

// EncodeLiteral converts a constant value into its wire literal form. Only
// value kinds with a stable serialized representation are encodable.
func EncodeLiteral(v types.Value) (Literal, error) {
	switch v.Kind() {
	case types.KindNull:
		return Literal{Kind: LitNull}, nil
	case types.KindBool:
		return Literal{Kind: LitBool, Bool: v.AsBool()}, nil
	case types.KindInt:
		return Literal{Kind: LitInt, Int: v.AsInt()}, nil
	case types.KindUint:
		return Literal{Kind: LitUint, Uint: v.AsUint()}, nil
	case types.KindDouble:
		return Literal{Kind: LitDouble, Double: v.AsDouble()}, nil
	case types.KindString:
		return Literal{Kind: LitString, Str: v.AsString()}, nil
	case types.KindBytes:
		data := v.AsBytes()
		return Literal{Kind: LitBytes, Bytes: append([]byte(nil), data...)}, nil
	case types.KindDuration:
		s, n := v.AsDuration()
		return Literal{Kind: LitDuration, Seconds: s, Nanos: n}, nil
	case types.KindTimestamp:
		t := v.AsTimestamp()
		return Literal{Kind: LitTimestamp, Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}, nil
	case types.KindList:
		l := v.AsList()
		elems := make([]Literal, l.Len())
		for i := 0; i < l.Len(); i++ {
			el, err := EncodeLiteral(l.Get(i))
			if err != nil {
				return Literal{}, err
			}
			elems[i] = el
		}
		return Literal{Kind: LitList, Elems: elems}, nil
	case types.KindMap:
		m := v.AsMap()
		keys := make([]Literal, m.Len())
		vals := make([]Literal, m.Len())
		for i := 0; i < m.Len(); i++ {
			e := m.Entry(i)
			k, err := EncodeLiteral(e.Key)
			if err != nil {
				return Literal{}, err
			}
			val, err := EncodeLiteral(e.Val)
			if err != nil {
				return Literal{}, err
			}
			keys[i] = k
			vals[i] = val
		}
		return Literal{Kind: LitMap, Keys: keys, Vals: vals}, nil
	default:
		return Literal{}, types.StatusErrorf(types.CodeInvalidArgument,
			"value of kind %s is not encodable as a literal", v.Kind())
	}
}

// DecodeLiteral materializes a wire literal under the given allocator.
func DecodeLiteral(a memory.Allocator, lit Literal, heterogeneous bool) (types.Value, error) {
	switch lit.Kind {
	case LitNull:
		return types.NullValue, nil
	case LitBool:
		return types.Bool(lit.Bool), nil
	case LitInt:
		return types.Int(lit.Int), nil
	case LitUint:
		return types.Uint(lit.Uint), nil
	case LitDouble:
		return types.Double(lit.Double), nil
	case LitString:
		return types.String(lit.Str), nil
	case LitBytes:
		return types.BytesOwned(a, lit.Bytes), nil
	case LitDuration:
		return types.DurationFromSecondsNanos(lit.Seconds, lit.Nanos)
	case LitTimestamp:
		return types.TimestampFromUnix(lit.Seconds, lit.Nanos)
	case LitList:
		b := types.NewListBuilder(a, len(lit.Elems))
		for _, el := range lit.Elems {
			v, err := DecodeLiteral(a, el, heterogeneous)
			if err != nil {
				return types.Value{}, err
			}
			b.Add(v)
		}
		return b.Build(), nil
	case LitMap:
		if len(lit.Keys) != len(lit.Vals) {
			return types.Value{}, types.StatusErrorf(types.CodeInternal,
				"malformed map literal: %d keys, %d values", len(lit.Keys), len(lit.Vals))
		}
		b := types.NewMapBuilder(a, len(lit.Keys), heterogeneous)
		for i := range lit.Keys {
			k, err := DecodeLiteral(a, lit.Keys[i], heterogeneous)
			if err != nil {
				return types.Value{}, err
			}
			v, err := DecodeLiteral(a, lit.Vals[i], heterogeneous)
			if err != nil {
				return types.Value{}, err
			}
			if err := b.Put(k, v); err != nil {
				return types.Value{}, err
			}
		}
		return b.Build(), nil
	default:
		return types.Value{}, types.StatusErrorf(types.CodeInternal,
			"unknown literal kind: %d", lit.Kind)
	}
}

// ---------------------------------------------------------------------------
// Assembly
// ---------------------------------------------------------------------------

func assembleErrorf(pc int, format string, args ...any) error {
	return types.StatusErrorf(types.CodeInternal,
		"malformed program at instruction %d: %s", pc, fmt.Sprintf(format, args...))
}

// checkJump validates a relative offset from instruction pc. The target is
// the instruction after pc plus the offset, and may land one past the end.
func checkJump(pc, offset, length int) error {
	target := pc + 1 + offset
	if target < 0 || target > length {
		return assembleErrorf(pc, "jump target %d outside [0, %d]", target, length)
	}
	return nil
}

// Assemble lowers a wire program into an executable interpreter program.
// Literal values are materialized under alloc, which must outlive the
// returned program. Jump targets, literal indices, and slot references are
// validated here so evaluation never has to.
func Assemble(p *Program, registry *interp.FunctionRegistry, provider interp.TypeProvider, alloc memory.Allocator) (*interp.Program, error) {
	opts, err := OptionsFromFingerprint(p.Options)
	if err != nil {
		return nil, err
	}
	n := len(p.Instructions)
	path := make(interp.Path, 0, n)
	for pc, ins := range p.Instructions {
		var step interp.Step
		switch ins.Op {
		case OpConst:
			if ins.Literal < 0 || ins.Literal >= len(p.Literals) {
				return nil, assembleErrorf(pc, "literal index %d outside pool of %d", ins.Literal, len(p.Literals))
			}
			v, err := DecodeLiteral(alloc, p.Literals[ins.Literal], opts.EnableHeterogeneousEquality)
			if err != nil {
				return nil, err
			}
			step = interp.NewConstStep(ins.ExprID, v)
		case OpIdent:
			if ins.Name == "" {
				return nil, assembleErrorf(pc, "ident with empty name")
			}
			step = interp.NewIdentStep(ins.ExprID, ins.Name)
		case OpSlot:
			if ins.SlotA < 0 || ins.SlotA >= p.SlotCount {
				return nil, assembleErrorf(pc, "slot index %d outside %d slots", ins.SlotA, p.SlotCount)
			}
			step = interp.NewSlotStep(ins.ExprID, ins.SlotA)
		case OpSelect:
			if ins.Name == "" {
				return nil, assembleErrorf(pc, "select with empty field")
			}
			step = interp.NewSelectStep(ins.ExprID, ins.Name, ins.Flag)
		case OpCall:
			if ins.Name == "" {
				return nil, assembleErrorf(pc, "call with empty function")
			}
			if ins.Count < 0 {
				return nil, assembleErrorf(pc, "call with negative arg count %d", ins.Count)
			}
			step = interp.NewCallStep(ins.ExprID, ins.Name, ins.Count)
		case OpCreateList:
			if ins.Count < 0 {
				return nil, assembleErrorf(pc, "create_list with negative count %d", ins.Count)
			}
			step = interp.NewCreateListStep(ins.ExprID, ins.Count)
		case OpCreateMap:
			if ins.Count < 0 {
				return nil, assembleErrorf(pc, "create_map with negative entry count %d", ins.Count)
			}
			step = interp.NewCreateMapStep(ins.ExprID, ins.Count)
		case OpCreateStruct:
			if ins.Name == "" {
				return nil, assembleErrorf(pc, "create_struct with empty type name")
			}
			step = interp.NewCreateStructStep(ins.ExprID, ins.Name, ins.Fields)
		case OpJump:
			if err := checkJump(pc, ins.Offset, n); err != nil {
				return nil, err
			}
			step = interp.NewJumpStep(ins.ExprID, ins.Offset)
		case OpCondJump:
			if err := checkJump(pc, ins.Offset, n); err != nil {
				return nil, err
			}
			step = interp.NewCondJumpStep(ins.ExprID, ins.Flag, ins.Flag2, ins.Offset)
		case OpBoolCheckJump:
			if err := checkJump(pc, ins.Offset, n); err != nil {
				return nil, err
			}
			step = interp.NewBoolCheckJumpStep(ins.ExprID, ins.Offset)
		case OpCompreInit:
			if ins.SlotA < 0 || ins.SlotA >= p.SlotCount || ins.SlotB < 0 || ins.SlotB >= p.SlotCount {
				return nil, assembleErrorf(pc, "comprehension slots %d/%d outside %d slots", ins.SlotA, ins.SlotB, p.SlotCount)
			}
			if err := checkJump(pc, ins.Offset2, n); err != nil {
				return nil, err
			}
			step = interp.NewCompreInitStep(ins.ExprID, ins.VarA, ins.VarB, ins.SlotA, ins.SlotB, ins.Offset2)
		case OpCompreNext:
			if err := checkJump(pc, ins.Offset, n); err != nil {
				return nil, err
			}
			if err := checkJump(pc, ins.Offset2, n); err != nil {
				return nil, err
			}
			step = interp.NewCompreNextStep(ins.ExprID, ins.Offset, ins.Offset2)
		case OpCompreCond:
			if err := checkJump(pc, ins.Offset, n); err != nil {
				return nil, err
			}
			if err := checkJump(pc, ins.Offset2, n); err != nil {
				return nil, err
			}
			step = interp.NewCompreCondStep(ins.ExprID, ins.Flag, ins.Offset, ins.Offset2)
		case OpCompreFinish:
			step = interp.NewCompreFinishStep(ins.ExprID)
		default:
			return nil, assembleErrorf(pc, "unknown opcode %d", uint8(ins.Op))
		}
		path = append(path, step)
	}
	return interp.NewProgram(path, p.SlotCount, registry, provider, opts)
}

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// Disassemble renders a wire program as a human-readable listing for
// diagnostics. The output is line-oriented: one instruction per line with its
// index, opcode, and operands.
func Disassemble(p *Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "version %d, %d instructions, %d literals, %d slots\n",
		p.Version, len(p.Instructions), len(p.Literals), p.SlotCount)
	for pc, ins := range p.Instructions {
		fmt.Fprintf(&b, "%4d  %-16s", pc, ins.Op)
		switch ins.Op {
		case OpConst:
			fmt.Fprintf(&b, " lit=%d", ins.Literal)
		case OpIdent, OpSelect, OpCreateStruct:
			fmt.Fprintf(&b, " %q", ins.Name)
			if ins.Op == OpSelect && ins.Flag {
				b.WriteString(" test")
			}
			if len(ins.Fields) > 0 {
				fmt.Fprintf(&b, " fields=%v", ins.Fields)
			}
		case OpSlot:
			fmt.Fprintf(&b, " slot=%d", ins.SlotA)
		case OpCall:
			fmt.Fprintf(&b, " %q argc=%d", ins.Name, ins.Count)
		case OpCreateList, OpCreateMap:
			fmt.Fprintf(&b, " count=%d", ins.Count)
		case OpJump, OpBoolCheckJump:
			fmt.Fprintf(&b, " offset=%d", ins.Offset)
		case OpCondJump:
			fmt.Fprintf(&b, " if=%t leave=%t offset=%d", ins.Flag, ins.Flag2, ins.Offset)
		case OpCompreInit:
			fmt.Fprintf(&b, " iter=%q accu=%q slots=%d/%d error=%d", ins.VarA, ins.VarB, ins.SlotA, ins.SlotB, ins.Offset2)
		case OpCompreNext:
			fmt.Fprintf(&b, " result=%d error=%d", ins.Offset, ins.Offset2)
		case OpCompreCond:
			fmt.Fprintf(&b, " shortcircuit=%t result=%d error=%d", ins.Flag, ins.Offset, ins.Offset2)
		}
		if ins.ExprID != 0 {
			fmt.Fprintf(&b, "  ; id=%d", ins.ExprID)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
