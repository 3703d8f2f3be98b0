package interp

import "github.com/sift-lang/sift/types"

// ---------------------------------------------------------------------------
// Aggregate construction
// ---------------------------------------------------------------------------

// forwardBadOperand replaces the top n stack entries with the merged unknown
// or first error among vals, reporting whether it did.
func forwardBadOperand(f *Frame, vals []types.Value, n int) (bool, error) {
	if f.enableUnknowns() {
		if merged, ok := MergeUnknowns(vals); ok {
			return true, f.stack.popAndPush(n, merged, types.Attribute{})
		}
	}
	for _, v := range vals {
		if v.IsError() {
			return true, f.stack.popAndPush(n, v, types.Attribute{})
		}
	}
	return false, nil
}

type createListStep struct {
	stepBase
	count int
}

// NewCreateListStep creates a step building a list from the top count stack
// values.
func NewCreateListStep(exprID int64, count int) Step {
	return &createListStep{stepBase: stepBase{id: exprID, fromAST: true}, count: count}
}

func (s *createListStep) Evaluate(f *Frame) error {
	elems, _, err := f.stack.topN(s.count)
	if err != nil {
		return err
	}
	if done, err := forwardBadOperand(f, elems, s.count); done || err != nil {
		return err
	}
	b := types.NewListBuilder(f.alloc, s.count)
	for _, e := range elems {
		b.Add(e)
	}
	return f.stack.popAndPush(s.count, b.Build(), types.Attribute{})
}

type createMapStep struct {
	stepBase
	entryCount int
}

// NewCreateMapStep creates a step building a map from the top 2*entryCount
// stack values, pushed as alternating key then value.
func NewCreateMapStep(exprID int64, entryCount int) Step {
	return &createMapStep{stepBase: stepBase{id: exprID, fromAST: true}, entryCount: entryCount}
}

func (s *createMapStep) Evaluate(f *Frame) error {
	n := 2 * s.entryCount
	operands, _, err := f.stack.topN(n)
	if err != nil {
		return err
	}
	if done, err := forwardBadOperand(f, operands, n); done || err != nil {
		return err
	}
	b := types.NewMapBuilder(f.alloc, s.entryCount, f.opts.EnableHeterogeneousEquality)
	for i := 0; i < n; i += 2 {
		if err := b.Put(operands[i], operands[i+1]); err != nil {
			// Invalid or duplicate keys are language errors, not engine
			// failures.
			return f.stack.popAndPush(n, statusToErrorValue(err), types.Attribute{})
		}
	}
	return f.stack.popAndPush(n, b.Build(), types.Attribute{})
}

type createStructStep struct {
	stepBase
	typeName string
	fields   []string
}

// NewCreateStructStep creates a step building a struct of the named type
// from the top len(fields) stack values, pushed in field order.
func NewCreateStructStep(exprID int64, typeName string, fields []string) Step {
	return &createStructStep{
		stepBase: stepBase{id: exprID, fromAST: true},
		typeName: typeName,
		fields:   fields,
	}
}

func (s *createStructStep) Evaluate(f *Frame) error {
	n := len(s.fields)
	operands, _, err := f.stack.topN(n)
	if err != nil {
		return err
	}
	if done, err := forwardBadOperand(f, operands, n); done || err != nil {
		return err
	}
	impl, err := f.provider.NewStruct(f.alloc, s.typeName)
	if err != nil {
		return f.stack.popAndPush(n, statusToErrorValue(err), types.Attribute{})
	}
	for i, name := range s.fields {
		if err := impl.SetField(name, operands[i]); err != nil {
			return f.stack.popAndPush(n, statusToErrorValue(err), types.Attribute{})
		}
	}
	return f.stack.popAndPush(n, types.StructValue(impl), types.Attribute{})
}
