package interp

import "github.com/sift-lang/sift/types"

// ---------------------------------------------------------------------------
// Operand stack
// ---------------------------------------------------------------------------

// stack is the frame's operand stack. Values and their attribute trails move
// together: the trail at index i describes how vals[i] was reached from the
// activation, or is empty for computed values.
type stack struct {
	vals  []types.Value
	attrs []types.Attribute
}

func newStack(capacity int) stack {
	return stack{
		vals:  make([]types.Value, 0, capacity),
		attrs: make([]types.Attribute, 0, capacity),
	}
}

func (s *stack) size() int { return len(s.vals) }

func (s *stack) push(v types.Value, a types.Attribute) {
	s.vals = append(s.vals, v)
	s.attrs = append(s.attrs, a)
}

func (s *stack) pop() (types.Value, types.Attribute, error) {
	n := len(s.vals)
	if n == 0 {
		return types.Value{}, types.Attribute{}, internalf("value stack underflow")
	}
	v, a := s.vals[n-1], s.attrs[n-1]
	s.vals = s.vals[:n-1]
	s.attrs = s.attrs[:n-1]
	return v, a, nil
}

// peek returns the top entry without removing it.
func (s *stack) peek() (types.Value, types.Attribute, error) {
	n := len(s.vals)
	if n == 0 {
		return types.Value{}, types.Attribute{}, internalf("value stack underflow")
	}
	return s.vals[n-1], s.attrs[n-1], nil
}

// topN returns views of the top n entries, oldest first. The views alias the
// stack and are invalidated by the next push or pop.
func (s *stack) topN(n int) ([]types.Value, []types.Attribute, error) {
	if len(s.vals) < n {
		return nil, nil, internalf("value stack underflow: need %d, have %d", n, len(s.vals))
	}
	return s.vals[len(s.vals)-n:], s.attrs[len(s.attrs)-n:], nil
}

func (s *stack) popN(n int) error {
	if len(s.vals) < n {
		return internalf("value stack underflow: need %d, have %d", n, len(s.vals))
	}
	s.vals = s.vals[:len(s.vals)-n]
	s.attrs = s.attrs[:len(s.attrs)-n]
	return nil
}

// popAndPush replaces the top n entries with a single entry.
func (s *stack) popAndPush(n int, v types.Value, a types.Attribute) error {
	if err := s.popN(n); err != nil {
		return err
	}
	s.push(v, a)
	return nil
}
