package types

import (
	"fmt"
	"math"
	"time"

	"github.com/sift-lang/sift/memory"
)

// ---------------------------------------------------------------------------
// Value: the closed runtime tagged union
// ---------------------------------------------------------------------------

// Value is a sift runtime value. Exactly one kind is active at a time; the
// payload lives in the scalar word, the string field, or the pointer field
// depending on the kind. Values are immutable after construction except for
// the two sanctioned interpreter-internal cases: the mutable list builder and
// struct field setters used while an object-construction step builds its
// result.
//
// Accessors panic on kind mismatch; a mismatched access is a programming
// error, not a language-level error.
type Value struct {
	kind Kind
	num  uint64 // bool, int bits, uint, double bits, enum number, seconds
	aux  int32  // duration/timestamp nanoseconds
	str  string // string payload, enum/type names
	ptr  any    // *Bytes, *List, *Map, StructImpl, *Type, *ErrorValue, *Unknown
}

// Representable ranges for duration and timestamp values, matching the
// protobuf well-known types: durations within ±10,000 years, timestamps
// between 0001-01-01T00:00:00Z and 9999-12-31T23:59:59.999999999Z.
const (
	maxDurationSeconds  = 315576000000
	minTimestampSeconds = -62135596800
	maxTimestampSeconds = 253402300799
)

// NullValue is the singleton null.
var NullValue = Value{kind: KindNull}

// Bool creates a bool value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Int creates an int value.
func Int(i int64) Value {
	return Value{kind: KindInt, num: uint64(i)}
}

// Uint creates a uint value.
func Uint(u uint64) Value {
	return Value{kind: KindUint, num: u}
}

// Double creates a double value.
func Double(d float64) Value {
	return Value{kind: KindDouble, num: math.Float64bits(d)}
}

// String creates a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Duration creates a duration value from a Go duration. Go durations always
// fit the representable range.
func Duration(d time.Duration) Value {
	sec := int64(d) / int64(time.Second)
	nanos := int32(int64(d) % int64(time.Second))
	return Value{kind: KindDuration, num: uint64(sec), aux: nanos}
}

// DurationFromSecondsNanos creates a duration value, failing with
// InvalidArgument when the input lies outside the representable range or the
// components disagree in sign.
func DurationFromSecondsNanos(seconds int64, nanos int32) (Value, error) {
	if seconds > maxDurationSeconds || seconds < -maxDurationSeconds {
		return Value{}, StatusErrorf(CodeInvalidArgument, "duration seconds %d out of range", seconds)
	}
	if nanos <= -1000000000 || nanos >= 1000000000 {
		return Value{}, StatusErrorf(CodeInvalidArgument, "duration nanos %d out of range", nanos)
	}
	if (seconds > 0 && nanos < 0) || (seconds < 0 && nanos > 0) {
		return Value{}, NewStatusError(CodeInvalidArgument, "duration seconds and nanos differ in sign")
	}
	return Value{kind: KindDuration, num: uint64(seconds), aux: nanos}, nil
}

// Timestamp creates a timestamp value, failing with InvalidArgument when the
// time lies outside the representable range.
func Timestamp(t time.Time) (Value, error) {
	return TimestampFromUnix(t.Unix(), int32(t.Nanosecond()))
}

// TimestampFromUnix creates a timestamp value from Unix seconds and
// nanoseconds, validating the representable range.
func TimestampFromUnix(seconds int64, nanos int32) (Value, error) {
	if seconds < minTimestampSeconds || seconds > maxTimestampSeconds {
		return Value{}, StatusErrorf(CodeInvalidArgument, "timestamp seconds %d out of range", seconds)
	}
	if nanos < 0 || nanos >= 1000000000 {
		return Value{}, StatusErrorf(CodeInvalidArgument, "timestamp nanos %d out of range", nanos)
	}
	return Value{kind: KindTimestamp, num: uint64(seconds), aux: nanos}, nil
}

// Enum creates an enum value with its schema name and number.
func Enum(name string, number int64) Value {
	return Value{kind: KindEnum, num: uint64(number), str: name}
}

// TypeValue creates a first-class type value.
func TypeValue(t *Type) Value {
	return Value{kind: KindType, ptr: t}
}

// ErrorFromValue wraps an existing error payload as a value.
func ErrorFromValue(e *ErrorValue) Value {
	return Value{kind: KindError, ptr: e}
}

// UnknownValue creates an unknown-kind value.
func UnknownValue(u *Unknown) Value {
	return Value{kind: KindUnknown, ptr: u}
}

// BytesFromPayload wraps a bytes payload produced through an allocator.
func BytesFromPayload(b *Bytes) Value {
	return Value{kind: KindBytes, ptr: b}
}

// ListValue wraps a sealed list payload.
func ListValue(l *List) Value {
	return Value{kind: KindList, ptr: l}
}

// MapValue wraps a sealed map payload.
func MapValue(m *Map) Value {
	return Value{kind: KindMap, ptr: m}
}

// StructValue wraps a struct implementation.
func StructValue(impl StructImpl) Value {
	return Value{kind: KindStruct, ptr: impl}
}

// ---------------------------------------------------------------------------
// Checked numeric conversions
// ---------------------------------------------------------------------------

// IntFromUint converts losslessly or fails with OutOfRange.
func IntFromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, StatusErrorf(CodeOutOfRange, "uint %d out of int range", u)
	}
	return Int(int64(u)), nil
}

// UintFromInt converts losslessly or fails with OutOfRange.
func UintFromInt(i int64) (Value, error) {
	if i < 0 {
		return Value{}, StatusErrorf(CodeOutOfRange, "int %d out of uint range", i)
	}
	return Uint(uint64(i)), nil
}

// IntFromDouble converts losslessly or fails with OutOfRange.
func IntFromDouble(d float64) (Value, error) {
	if i, ok := DoubleNumber(d).Int64(); ok {
		return Int(i), nil
	}
	return Value{}, StatusErrorf(CodeOutOfRange, "double %v out of int range", d)
}

// UintFromDouble converts losslessly or fails with OutOfRange.
func UintFromDouble(d float64) (Value, error) {
	if u, ok := DoubleNumber(d).Uint64(); ok {
		return Uint(u), nil
	}
	return Value{}, StatusErrorf(CodeOutOfRange, "double %v out of uint range", d)
}

// ---------------------------------------------------------------------------
// Kind queries and accessors
// ---------------------------------------------------------------------------

// Kind returns the active kind.
func (v Value) Kind() Kind { return v.kind }

// IsError reports whether the value is error-kind.
func (v Value) IsError() bool { return v.kind == KindError }

// IsUnknown reports whether the value is unknown-kind.
func (v Value) IsUnknown() bool { return v.kind == KindUnknown }

func (v Value) expect(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("types: %s accessor on %s value", k, v.kind))
	}
}

// AsBool returns the bool payload.
func (v Value) AsBool() bool {
	v.expect(KindBool)
	return v.num != 0
}

// AsInt returns the int payload.
func (v Value) AsInt() int64 {
	v.expect(KindInt)
	return int64(v.num)
}

// AsUint returns the uint payload.
func (v Value) AsUint() uint64 {
	v.expect(KindUint)
	return v.num
}

// AsDouble returns the double payload.
func (v Value) AsDouble() float64 {
	v.expect(KindDouble)
	return math.Float64frombits(v.num)
}

// AsString returns the string payload.
func (v Value) AsString() string {
	v.expect(KindString)
	return v.str
}

// AsBytes returns the bytes payload. Callers must not mutate the buffer.
func (v Value) AsBytes() []byte {
	v.expect(KindBytes)
	return v.ptr.(*Bytes).data
}

// AsDuration returns the duration payload as seconds and nanoseconds.
func (v Value) AsDuration() (seconds int64, nanos int32) {
	v.expect(KindDuration)
	return int64(v.num), v.aux
}

// AsGoDuration returns the duration payload as a Go duration, saturating at
// the Go duration range.
func (v Value) AsGoDuration() time.Duration {
	sec, nanos := v.AsDuration()
	if sec > int64(math.MaxInt64)/int64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	if sec < int64(math.MinInt64)/int64(time.Second) {
		return time.Duration(math.MinInt64)
	}
	return time.Duration(sec)*time.Second + time.Duration(nanos)
}

// AsTimestamp returns the timestamp payload in UTC.
func (v Value) AsTimestamp() time.Time {
	v.expect(KindTimestamp)
	return time.Unix(int64(v.num), int64(v.aux)).UTC()
}

// AsList returns the list payload.
func (v Value) AsList() *List {
	v.expect(KindList)
	return v.ptr.(*List)
}

// AsMap returns the map payload.
func (v Value) AsMap() *Map {
	v.expect(KindMap)
	return v.ptr.(*Map)
}

// AsStruct returns the struct implementation.
func (v Value) AsStruct() StructImpl {
	v.expect(KindStruct)
	return v.ptr.(StructImpl)
}

// AsType returns the type payload.
func (v Value) AsType() *Type {
	v.expect(KindType)
	return v.ptr.(*Type)
}

// AsError returns the error payload.
func (v Value) AsError() *ErrorValue {
	v.expect(KindError)
	return v.ptr.(*ErrorValue)
}

// AsUnknown returns the unknown payload.
func (v Value) AsUnknown() *Unknown {
	v.expect(KindUnknown)
	return v.ptr.(*Unknown)
}

// EnumName returns the enum value's schema name.
func (v Value) EnumName() string {
	v.expect(KindEnum)
	return v.str
}

// EnumNumber returns the enum value's number.
func (v Value) EnumNumber() int64 {
	v.expect(KindEnum)
	return int64(v.num)
}

// Handle returns the owner tag of heap-backed values; scalar kinds are
// unowned.
func (v Value) Handle() memory.Handle {
	switch v.kind {
	case KindBytes:
		return v.ptr.(*Bytes).h
	case KindList:
		return v.ptr.(*List).h
	case KindMap:
		return v.ptr.(*Map).h
	case KindStruct:
		return v.ptr.(StructImpl).Handle()
	default:
		return memory.Unowned()
	}
}

// TypeOf returns the Type describing this value's shape.
func (v Value) TypeOf() *Type {
	switch v.kind {
	case KindNull:
		return NullType
	case KindBool:
		return BoolType
	case KindInt:
		return IntType
	case KindUint:
		return UintType
	case KindDouble:
		return DoubleType
	case KindString:
		return StringType
	case KindBytes:
		return BytesType
	case KindDuration:
		return DurationType
	case KindTimestamp:
		return TimestampType
	case KindList:
		return ListOf(DynType)
	case KindMap:
		return MapOf(DynType, DynType)
	case KindStruct:
		return MessageOf(v.ptr.(StructImpl).TypeName())
	case KindEnum:
		return EnumOf(v.str)
	case KindType:
		return NewTypeType(v.ptr.(*Type))
	case KindError:
		return ErrorType
	case KindUnknown:
		return UnknownType
	default:
		return DynType
	}
}
