package protomsg

import (
	"math"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// Well-known type names with special conversions.
const (
	wktDuration  = "google.protobuf.Duration"
	wktTimestamp = "google.protobuf.Timestamp"
	wktStruct    = "google.protobuf.Struct"
	wktValue     = "google.protobuf.Value"
	wktListValue = "google.protobuf.ListValue"
	wktNullValue = "google.protobuf.NullValue"

	wktBoolValue   = "google.protobuf.BoolValue"
	wktInt32Value  = "google.protobuf.Int32Value"
	wktInt64Value  = "google.protobuf.Int64Value"
	wktUint32Value = "google.protobuf.UInt32Value"
	wktUint64Value = "google.protobuf.UInt64Value"
	wktFloatValue  = "google.protobuf.FloatValue"
	wktDoubleValue = "google.protobuf.DoubleValue"
	wktStringValue = "google.protobuf.StringValue"
	wktBytesValue  = "google.protobuf.BytesValue"
)

// fieldToValue converts a populated protobuf field into a runtime value.
func fieldToValue(a memory.Allocator, fd protoreflect.FieldDescriptor, v protoreflect.Value) (types.Value, error) {
	switch {
	case fd.IsMap():
		return mapToValue(a, fd, v.Map())
	case fd.IsList():
		return listToValue(a, fd, v.List())
	default:
		return scalarToValue(a, fd, v)
	}
}

func listToValue(a memory.Allocator, fd protoreflect.FieldDescriptor, l protoreflect.List) (types.Value, error) {
	b := types.NewListBuilder(a, l.Len())
	for i := 0; i < l.Len(); i++ {
		ev, err := scalarToValue(a, fd, l.Get(i))
		if err != nil {
			return types.Value{}, err
		}
		b.Add(ev)
	}
	return b.Build(), nil
}

func mapToValue(a memory.Allocator, fd protoreflect.FieldDescriptor, m protoreflect.Map) (types.Value, error) {
	b := types.NewMapBuilder(a, m.Len(), false)
	var rangeErr error
	m.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
		kv, err := scalarToValue(a, fd.MapKey(), k.Value())
		if err != nil {
			rangeErr = err
			return false
		}
		vv, err := scalarToValue(a, fd.MapValue(), v)
		if err != nil {
			rangeErr = err
			return false
		}
		rangeErr = b.Put(kv, vv)
		return rangeErr == nil
	})
	if rangeErr != nil {
		return types.Value{}, rangeErr
	}
	return b.Build(), nil
}

func scalarToValue(a memory.Allocator, fd protoreflect.FieldDescriptor, v protoreflect.Value) (types.Value, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return types.Bool(v.Bool()), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return types.Int(v.Int()), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return types.Uint(v.Uint()), nil
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return types.Double(v.Float()), nil
	case protoreflect.StringKind:
		return types.String(v.String()), nil
	case protoreflect.BytesKind:
		return types.BytesOwned(a, v.Bytes()), nil
	case protoreflect.EnumKind:
		if fd.Enum().FullName() == wktNullValue {
			return types.NullValue, nil
		}
		return types.Enum(string(fd.Enum().FullName()), int64(v.Enum())), nil
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return messageToValue(a, v.Message())
	default:
		return types.Value{}, types.StatusErrorf(types.CodeUnimplemented,
			"unsupported field kind: %v", fd.Kind())
	}
}

// messageToValue converts a message, unwrapping the well-known types.
func messageToValue(a memory.Allocator, m protoreflect.Message) (types.Value, error) {
	md := m.Descriptor()
	fields := md.Fields()
	switch string(md.FullName()) {
	case wktDuration:
		seconds := m.Get(fields.ByNumber(1)).Int()
		nanos := int32(m.Get(fields.ByNumber(2)).Int())
		return types.DurationFromSecondsNanos(seconds, nanos)
	case wktTimestamp:
		seconds := m.Get(fields.ByNumber(1)).Int()
		nanos := int32(m.Get(fields.ByNumber(2)).Int())
		return types.TimestampFromUnix(seconds, nanos)
	case wktBoolValue:
		return types.Bool(m.Get(fields.ByNumber(1)).Bool()), nil
	case wktInt32Value, wktInt64Value:
		return types.Int(m.Get(fields.ByNumber(1)).Int()), nil
	case wktUint32Value, wktUint64Value:
		return types.Uint(m.Get(fields.ByNumber(1)).Uint()), nil
	case wktFloatValue, wktDoubleValue:
		return types.Double(m.Get(fields.ByNumber(1)).Float()), nil
	case wktStringValue:
		return types.String(m.Get(fields.ByNumber(1)).String()), nil
	case wktBytesValue:
		return types.BytesOwned(a, m.Get(fields.ByNumber(1)).Bytes()), nil
	case wktStruct:
		// Struct is map<string, Value> in field 1.
		return fieldToValue(a, fields.ByNumber(1), m.Get(fields.ByNumber(1)))
	case wktListValue:
		return fieldToValue(a, fields.ByNumber(1), m.Get(fields.ByNumber(1)))
	case wktValue:
		return jsonValueToValue(a, m)
	default:
		return types.StructValue(NewMessageValue(a, m)), nil
	}
}

// jsonValueToValue unwraps a google.protobuf.Value by its active oneof case.
func jsonValueToValue(a memory.Allocator, m protoreflect.Message) (types.Value, error) {
	md := m.Descriptor()
	od := md.Oneofs().ByName("kind")
	fd := m.WhichOneof(od)
	if fd == nil {
		return types.NullValue, nil
	}
	switch fd.Name() {
	case "null_value":
		return types.NullValue, nil
	case "number_value":
		return types.Double(m.Get(fd).Float()), nil
	case "string_value":
		return types.String(m.Get(fd).String()), nil
	case "bool_value":
		return types.Bool(m.Get(fd).Bool()), nil
	case "struct_value", "list_value":
		return messageToValue(a, m.Get(fd).Message())
	default:
		return types.Value{}, types.StatusErrorf(types.CodeUnimplemented,
			"unsupported Value case: %s", fd.Name())
	}
}

// valueToField converts a runtime value into the protobuf representation the
// field expects. Numeric conversions are checked; lossy assignments fail.
func valueToField(fd protoreflect.FieldDescriptor, v types.Value, parent protoreflect.Message) (protoreflect.Value, error) {
	switch {
	case fd.IsMap():
		return valueToMap(fd, v, parent)
	case fd.IsList():
		return valueToList(fd, v, parent)
	default:
		return valueToScalar(fd, v, parent)
	}
}

func valueToList(fd protoreflect.FieldDescriptor, v types.Value, parent protoreflect.Message) (protoreflect.Value, error) {
	if v.Kind() != types.KindList {
		return protoreflect.Value{}, types.StatusErrorf(types.CodeInvalidArgument,
			"field %s expects a list, got %s", fd.Name(), v.TypeOf())
	}
	list := parent.NewField(fd)
	l := list.List()
	src := v.AsList()
	for i := 0; i < src.Len(); i++ {
		ev, err := valueToScalar(fd, src.Get(i), parent)
		if err != nil {
			return protoreflect.Value{}, err
		}
		l.Append(ev)
	}
	return list, nil
}

func valueToMap(fd protoreflect.FieldDescriptor, v types.Value, parent protoreflect.Message) (protoreflect.Value, error) {
	if v.Kind() != types.KindMap {
		return protoreflect.Value{}, types.StatusErrorf(types.CodeInvalidArgument,
			"field %s expects a map, got %s", fd.Name(), v.TypeOf())
	}
	field := parent.NewField(fd)
	m := field.Map()
	src := v.AsMap()
	for i := 0; i < src.Len(); i++ {
		entry := src.Entry(i)
		kv, err := valueToScalar(fd.MapKey(), entry.Key, parent)
		if err != nil {
			return protoreflect.Value{}, err
		}
		vv, err := valueToScalar(fd.MapValue(), entry.Val, parent)
		if err != nil {
			return protoreflect.Value{}, err
		}
		m.Set(kv.MapKey(), vv)
	}
	return field, nil
}

func valueToScalar(fd protoreflect.FieldDescriptor, v types.Value, parent protoreflect.Message) (protoreflect.Value, error) {
	mismatch := func() (protoreflect.Value, error) {
		return protoreflect.Value{}, types.StatusErrorf(types.CodeInvalidArgument,
			"field %s (%v) cannot hold %s", fd.Name(), fd.Kind(), v.TypeOf())
	}
	switch fd.Kind() {
	case protoreflect.BoolKind:
		if v.Kind() != types.KindBool {
			return mismatch()
		}
		return protoreflect.ValueOfBool(v.AsBool()), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		if v.Kind() != types.KindInt {
			return mismatch()
		}
		i := v.AsInt()
		if i < math.MinInt32 || i > math.MaxInt32 {
			return protoreflect.Value{}, types.StatusErrorf(types.CodeOutOfRange,
				"value %d out of range for field %s", i, fd.Name())
		}
		return protoreflect.ValueOfInt32(int32(i)), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		if v.Kind() != types.KindInt {
			return mismatch()
		}
		return protoreflect.ValueOfInt64(v.AsInt()), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		if v.Kind() != types.KindUint {
			return mismatch()
		}
		u := v.AsUint()
		if u > math.MaxUint32 {
			return protoreflect.Value{}, types.StatusErrorf(types.CodeOutOfRange,
				"value %d out of range for field %s", u, fd.Name())
		}
		return protoreflect.ValueOfUint32(uint32(u)), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		if v.Kind() != types.KindUint {
			return mismatch()
		}
		return protoreflect.ValueOfUint64(v.AsUint()), nil
	case protoreflect.FloatKind:
		if v.Kind() != types.KindDouble {
			return mismatch()
		}
		return protoreflect.ValueOfFloat32(float32(v.AsDouble())), nil
	case protoreflect.DoubleKind:
		if v.Kind() != types.KindDouble {
			return mismatch()
		}
		return protoreflect.ValueOfFloat64(v.AsDouble()), nil
	case protoreflect.StringKind:
		if v.Kind() != types.KindString {
			return mismatch()
		}
		return protoreflect.ValueOfString(v.AsString()), nil
	case protoreflect.BytesKind:
		if v.Kind() != types.KindBytes {
			return mismatch()
		}
		buf := make([]byte, len(v.AsBytes()))
		copy(buf, v.AsBytes())
		return protoreflect.ValueOfBytes(buf), nil
	case protoreflect.EnumKind:
		switch v.Kind() {
		case types.KindEnum:
			return protoreflect.ValueOfEnum(protoreflect.EnumNumber(v.EnumNumber())), nil
		case types.KindInt:
			return protoreflect.ValueOfEnum(protoreflect.EnumNumber(v.AsInt())), nil
		case types.KindNull:
			if fd.Enum().FullName() == wktNullValue {
				return protoreflect.ValueOfEnum(0), nil
			}
			return mismatch()
		default:
			return mismatch()
		}
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return valueToMessage(fd, v)
	default:
		return protoreflect.Value{}, types.StatusErrorf(types.CodeUnimplemented,
			"unsupported field kind: %v", fd.Kind())
	}
}

func valueToMessage(fd protoreflect.FieldDescriptor, v types.Value) (protoreflect.Value, error) {
	md := fd.Message()
	fields := md.Fields()
	switch string(md.FullName()) {
	case wktDuration:
		if v.Kind() != types.KindDuration {
			break
		}
		seconds, nanos := v.AsDuration()
		m := dynamicpb.NewMessage(md)
		m.Set(fields.ByNumber(1), protoreflect.ValueOfInt64(seconds))
		m.Set(fields.ByNumber(2), protoreflect.ValueOfInt32(nanos))
		return protoreflect.ValueOfMessage(m), nil
	case wktTimestamp:
		if v.Kind() != types.KindTimestamp {
			break
		}
		t := v.AsTimestamp()
		m := dynamicpb.NewMessage(md)
		m.Set(fields.ByNumber(1), protoreflect.ValueOfInt64(t.Unix()))
		m.Set(fields.ByNumber(2), protoreflect.ValueOfInt32(int32(t.Nanosecond())))
		return protoreflect.ValueOfMessage(m), nil
	default:
		if v.Kind() == types.KindStruct {
			if mv, ok := v.AsStruct().(*MessageValue); ok && string(md.FullName()) == mv.TypeName() {
				return protoreflect.ValueOfMessage(mv.Proto()), nil
			}
		}
	}
	return protoreflect.Value{}, types.StatusErrorf(types.CodeInvalidArgument,
		"field %s (%s) cannot hold %s", fd.Name(), md.FullName(), v.TypeOf())
}
