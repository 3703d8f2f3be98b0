package types

import (
	"bytes"
	"math"
	"strings"
)

// ---------------------------------------------------------------------------
// Equality, ordering, hashing
// ---------------------------------------------------------------------------

// FNV-1a parameters. The mixing functions below fold words and strings into
// a running 64-bit hash.
const (
	hashOffset = 14695981039346656037
	hashPrime  = 1099511628211
)

func hashMix(h, word uint64) uint64 {
	for shift := 0; shift < 64; shift += 8 {
		h ^= (word >> shift) & 0xff
		h *= hashPrime
	}
	return h
}

func hashString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= hashPrime
	}
	// Length terminator keeps adjacent strings from running together.
	return hashMix(h, uint64(len(s)))
}

func isNumericKind(k Kind) bool {
	return k == KindInt || k == KindUint || k == KindDouble
}

// Equal reports value equality. In heterogeneous mode, numeric values compare
// across int/uint/double using lossless conversion; otherwise values of
// different kinds are never equal. NaN is unequal to everything, including
// itself, in both modes.
func Equal(a, b Value, heterogeneous bool) bool {
	if heterogeneous && isNumericKind(a.kind) && isNumericKind(b.kind) {
		an, _ := NumberFromValue(a)
		bn, _ := NumberFromValue(b)
		return an.Equal(bn)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool, KindInt, KindUint:
		return a.num == b.num
	case KindDouble:
		return math.Float64frombits(a.num) == math.Float64frombits(b.num)
	case KindString:
		return a.str == b.str
	case KindBytes:
		return bytes.Equal(a.AsBytes(), b.AsBytes())
	case KindDuration, KindTimestamp:
		return a.num == b.num && a.aux == b.aux
	case KindEnum:
		return a.str == b.str && a.num == b.num
	case KindList:
		al, bl := a.AsList(), b.AsList()
		if al.Len() != bl.Len() {
			return false
		}
		for i := 0; i < al.Len(); i++ {
			if !Equal(al.Get(i), bl.Get(i), heterogeneous) {
				return false
			}
		}
		return true
	case KindMap:
		am, bm := a.AsMap(), b.AsMap()
		if am.Len() != bm.Len() {
			return false
		}
		for i := 0; i < am.Len(); i++ {
			entry := am.Entry(i)
			v, ok := bm.Find(entry.Key, heterogeneous)
			if !ok || !Equal(entry.Val, v, heterogeneous) {
				return false
			}
		}
		return true
	case KindStruct:
		return a.AsStruct().Equal(b.AsStruct(), heterogeneous)
	case KindType:
		return a.AsType().Equal(b.AsType())
	case KindError:
		return a.AsError().Equal(b.AsError())
	case KindUnknown:
		return a.AsUnknown().Equal(b.AsUnknown())
	default:
		return false
	}
}

// Compare orders two values of the same comparable kind, returning -1, 0, or
// 1. Only strings and bytes carry a defined total order here; other kinds
// fail with InvalidArgument.
func Compare(a, b Value) (int, error) {
	if a.kind != b.kind {
		return 0, StatusErrorf(CodeInvalidArgument, "cannot compare %s with %s", a.kind, b.kind)
	}
	switch a.kind {
	case KindString:
		return strings.Compare(a.str, b.str), nil
	case KindBytes:
		return bytes.Compare(a.AsBytes(), b.AsBytes()), nil
	default:
		return 0, StatusErrorf(CodeInvalidArgument, "kind %s has no defined order", a.kind)
	}
}

// Hash returns a hash consistent with Equal under both equality regimes:
// numeric values that compare equal cross-kind hash identically because they
// share a canonical form.
func Hash(v Value) uint64 {
	h := uint64(hashOffset)
	switch v.kind {
	case KindNull:
		return hashMix(h, uint64(KindNull))
	case KindBool:
		h = hashMix(h, uint64(KindBool))
		return hashMix(h, v.num)
	case KindInt, KindUint, KindDouble:
		n, _ := NumberFromValue(v)
		kind, bits := n.canonical()
		h = hashMix(h, uint64(kind))
		return hashMix(h, bits)
	case KindString:
		h = hashMix(h, uint64(KindString))
		return hashString(h, v.str)
	case KindBytes:
		h = hashMix(h, uint64(KindBytes))
		data := v.AsBytes()
		for _, c := range data {
			h ^= uint64(c)
			h *= hashPrime
		}
		return hashMix(h, uint64(len(data)))
	case KindDuration, KindTimestamp:
		h = hashMix(h, uint64(v.kind))
		h = hashMix(h, v.num)
		return hashMix(h, uint64(uint32(v.aux)))
	case KindEnum:
		h = hashMix(h, uint64(KindEnum))
		h = hashString(h, v.str)
		return hashMix(h, v.num)
	case KindList:
		h = hashMix(h, uint64(KindList))
		l := v.AsList()
		for i := 0; i < l.Len(); i++ {
			h = hashMix(h, Hash(l.Get(i)))
		}
		return h
	case KindMap:
		// Entry hashes combine by XOR so the hash is independent of
		// insertion order, matching map equality.
		h = hashMix(h, uint64(KindMap))
		m := v.AsMap()
		var fold uint64
		for i := 0; i < m.Len(); i++ {
			entry := m.Entry(i)
			eh := hashMix(Hash(entry.Key), Hash(entry.Val))
			fold ^= eh
		}
		return hashMix(h, fold)
	case KindStruct:
		h = hashMix(h, uint64(KindStruct))
		return v.AsStruct().Hash(h)
	case KindType:
		h = hashMix(h, uint64(KindType))
		return v.AsType().hash(h)
	case KindError:
		e := v.AsError()
		h = hashMix(h, uint64(KindError))
		h = hashMix(h, uint64(e.Code))
		return hashString(h, e.Message)
	case KindUnknown:
		h = hashMix(h, uint64(KindUnknown))
		u := v.AsUnknown()
		for _, a := range u.Attributes() {
			h = hashString(h, a.String())
		}
		for _, f := range u.FunctionResults() {
			h = hashString(h, f.Name)
			h = hashMix(h, uint64(f.ID))
		}
		return h
	default:
		return hashMix(h, uint64(v.kind))
	}
}
