package protomsg

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/sift-lang/sift/types"
)

// ToProto extracts the protobuf message behind a struct value. It fails for
// struct values not backed by a message.
func ToProto(v types.Value) (proto.Message, error) {
	if v.Kind() != types.KindStruct {
		return nil, types.StatusErrorf(types.CodeInvalidArgument,
			"not a struct value: %s", v.TypeOf())
	}
	mv, ok := v.AsStruct().(*MessageValue)
	if !ok {
		return nil, types.StatusErrorf(types.CodeInvalidArgument,
			"struct %s is not message-backed", v.AsStruct().TypeName())
	}
	return mv.Message(), nil
}

// ToJSONValue adapts a runtime value to a google.protobuf.Value for hosts
// consuming results as JSON-shaped protos. Kinds without a JSON analogue
// (bytes, durations, types) fail with InvalidArgument.
func ToJSONValue(v types.Value) (*structpb.Value, error) {
	switch v.Kind() {
	case types.KindNull:
		return structpb.NewNullValue(), nil
	case types.KindBool:
		return structpb.NewBoolValue(v.AsBool()), nil
	case types.KindInt:
		return structpb.NewNumberValue(float64(v.AsInt())), nil
	case types.KindUint:
		return structpb.NewNumberValue(float64(v.AsUint())), nil
	case types.KindDouble:
		return structpb.NewNumberValue(v.AsDouble()), nil
	case types.KindString:
		return structpb.NewStringValue(v.AsString()), nil
	case types.KindList:
		l := v.AsList()
		out := &structpb.ListValue{Values: make([]*structpb.Value, 0, l.Len())}
		for i := 0; i < l.Len(); i++ {
			ev, err := ToJSONValue(l.Get(i))
			if err != nil {
				return nil, err
			}
			out.Values = append(out.Values, ev)
		}
		return structpb.NewListValue(out), nil
	case types.KindMap:
		m := v.AsMap()
		out := &structpb.Struct{Fields: make(map[string]*structpb.Value, m.Len())}
		for i := 0; i < m.Len(); i++ {
			entry := m.Entry(i)
			if entry.Key.Kind() != types.KindString {
				return nil, types.StatusErrorf(types.CodeInvalidArgument,
					"JSON objects require string keys, got %s", entry.Key.TypeOf())
			}
			ev, err := ToJSONValue(entry.Val)
			if err != nil {
				return nil, err
			}
			out.Fields[entry.Key.AsString()] = ev
		}
		return structpb.NewStructValue(out), nil
	default:
		return nil, types.StatusErrorf(types.CodeInvalidArgument,
			"no JSON form for %s", v.TypeOf())
	}
}
