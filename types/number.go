package types

import "math"

// ---------------------------------------------------------------------------
// Number: lossless cross-kind numeric comparison
// ---------------------------------------------------------------------------

// Double values at or beyond these bounds cannot be represented by the
// corresponding integer kind. 2^63 and 2^64 are exactly representable as
// doubles; int64 max and uint64 max are not.
const (
	maxIntAsDouble  = 9223372036854775808.0  // 2^63
	maxUintAsDouble = 18446744073709551616.0 // 2^64
)

type numberKind uint8

const (
	numberInt numberKind = iota
	numberUint
	numberDouble
)

// Number holds one numeric value of int, uint, or double kind and implements
// the lossless-conversion comparison rules used for heterogeneous equality
// and map-key coercion. Conversions only succeed when the exact value is
// representable in the target kind.
type Number struct {
	kind numberKind
	i    int64
	u    uint64
	d    float64
}

// IntNumber wraps an int64.
func IntNumber(i int64) Number { return Number{kind: numberInt, i: i} }

// UintNumber wraps a uint64.
func UintNumber(u uint64) Number { return Number{kind: numberUint, u: u} }

// DoubleNumber wraps a float64.
func DoubleNumber(d float64) Number { return Number{kind: numberDouble, d: d} }

// NumberFromValue extracts the numeric payload of an int, uint, or double
// value. The second result is false for non-numeric kinds.
func NumberFromValue(v Value) (Number, bool) {
	switch v.kind {
	case KindInt:
		return IntNumber(int64(v.num)), true
	case KindUint:
		return UintNumber(v.num), true
	case KindDouble:
		return DoubleNumber(math.Float64frombits(v.num)), true
	default:
		return Number{}, false
	}
}

// Int64 returns the value as an int64 if the conversion is lossless.
func (n Number) Int64() (int64, bool) {
	switch n.kind {
	case numberInt:
		return n.i, true
	case numberUint:
		if n.u <= math.MaxInt64 {
			return int64(n.u), true
		}
		return 0, false
	default:
		d := n.d
		if d >= -maxIntAsDouble && d < maxIntAsDouble && math.Trunc(d) == d {
			return int64(d), true
		}
		return 0, false
	}
}

// Uint64 returns the value as a uint64 if the conversion is lossless.
func (n Number) Uint64() (uint64, bool) {
	switch n.kind {
	case numberUint:
		return n.u, true
	case numberInt:
		if n.i >= 0 {
			return uint64(n.i), true
		}
		return 0, false
	default:
		d := n.d
		if d >= 0 && d < maxUintAsDouble && math.Trunc(d) == d {
			return uint64(d), true
		}
		return 0, false
	}
}

// Float64 returns the value as a float64. The conversion may round for
// integers beyond 2^53; Equal never relies on it.
func (n Number) Float64() float64 {
	switch n.kind {
	case numberInt:
		return float64(n.i)
	case numberUint:
		return float64(n.u)
	default:
		return n.d
	}
}

// Equal reports whether two numbers denote exactly the same value. NaN is
// equal to nothing, including itself.
func (n Number) Equal(o Number) bool {
	if n.kind == o.kind {
		switch n.kind {
		case numberInt:
			return n.i == o.i
		case numberUint:
			return n.u == o.u
		default:
			return n.d == o.d
		}
	}
	// Cross-kind: route the comparison through a lossless integer form when
	// one exists; a double with no integer form can never equal an integer.
	if i, ok := n.Int64(); ok {
		if j, jok := o.Int64(); jok {
			return i == j
		}
		if u, uok := o.Uint64(); uok {
			return i >= 0 && uint64(i) == u
		}
		return false
	}
	if u, ok := n.Uint64(); ok {
		if w, wok := o.Uint64(); wok {
			return u == w
		}
		return false
	}
	return false
}

// canonical returns the hash-canonical form of the number: the lossless
// int64 form when one exists, then the lossless uint64 form, then the raw
// double bits. Values that compare equal share a canonical form, so hashes
// stay consistent with equality under both equality regimes.
func (n Number) canonical() (Kind, uint64) {
	if i, ok := n.Int64(); ok {
		return KindInt, uint64(i)
	}
	if u, ok := n.Uint64(); ok {
		return KindUint, u
	}
	return KindDouble, math.Float64bits(n.d)
}
