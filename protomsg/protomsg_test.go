package protomsg

import (
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// testFileSet builds the descriptor set for:
//
//	syntax = "proto3";
//	package sift.test;
//	import "google/protobuf/duration.proto";
//	message Widget {
//	  int64 size = 1;
//	  string name = 2;
//	  repeated int32 tags = 3;
//	  google.protobuf.Duration ttl = 4;
//	}
func testFileSet(t *testing.T) *descriptorpb.FileDescriptorSet {
	t.Helper()
	field := func(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type, label descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			Number:   proto.Int32(num),
			Type:     typ.Enum(),
			Label:    label.Enum(),
			JsonName: proto.String(name),
		}
	}
	ttl := field("ttl", 4, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL)
	ttl.TypeName = proto.String(".google.protobuf.Duration")

	file := &descriptorpb.FileDescriptorProto{
		Name:       proto.String("sift/test/widget.proto"),
		Package:    proto.String("sift.test"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/duration.proto"},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Widget"),
			Field: []*descriptorpb.FieldDescriptorProto{
				field("size", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64,
					descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL),
				field("name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING,
					descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL),
				field("tags", 3, descriptorpb.FieldDescriptorProto_TYPE_INT32,
					descriptorpb.FieldDescriptorProto_LABEL_REPEATED),
				ttl,
			},
		}},
	}
	return &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			protodesc.ToFileDescriptorProto(durationpb.File_google_protobuf_duration_proto),
			file,
		},
	}
}

func testProvider(t *testing.T) *Provider {
	t.Helper()
	p := NewProvider()
	if err := p.RegisterFileSet(testFileSet(t)); err != nil {
		t.Fatalf("RegisterFileSet: %v", err)
	}
	return p
}

func TestProviderResolvesMessages(t *testing.T) {
	p := testProvider(t)
	md, err := p.FindMessage("sift.test.Widget")
	if err != nil {
		t.Fatalf("FindMessage: %v", err)
	}
	if md.Fields().Len() != 4 {
		t.Errorf("field count = %d, want 4", md.Fields().Len())
	}

	if _, err := p.FindMessage("sift.test.Nope"); err == nil {
		t.Error("unknown type resolved")
	} else if types.StatusCode(err) != types.CodeNotFound {
		t.Errorf("code = %v, want NOT_FOUND", types.StatusCode(err))
	}
}

func TestMessageValueFieldAccess(t *testing.T) {
	p := testProvider(t)
	arena := memory.NewArena()
	defer arena.Destroy()

	impl, err := p.NewStruct(arena, "sift.test.Widget")
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	if err := impl.SetField("size", types.Int(7)); err != nil {
		t.Fatalf("SetField(size): %v", err)
	}
	if err := impl.SetField("name", types.String("gizmo")); err != nil {
		t.Fatalf("SetField(name): %v", err)
	}
	tagsArena := types.NewList(arena, types.Int(1), types.Int(2))
	if err := impl.SetField("tags", tagsArena); err != nil {
		t.Fatalf("SetField(tags): %v", err)
	}
	ttl, _ := types.DurationFromSecondsNanos(90, 0)
	if err := impl.SetField("ttl", ttl); err != nil {
		t.Fatalf("SetField(ttl): %v", err)
	}

	if has, err := impl.HasField("size"); err != nil || !has {
		t.Errorf("HasField(size) = %v, %v, want true", has, err)
	}
	if has, err := impl.HasField("name"); err != nil || !has {
		t.Errorf("HasField(name) = %v, %v, want true", has, err)
	}
	if _, err := impl.HasField("bogus"); types.StatusCode(err) != types.CodeNotFound {
		t.Errorf("HasField(bogus) error = %v, want NOT_FOUND", err)
	}

	v, err := impl.GetField("size", false)
	if err != nil || v.AsInt() != 7 {
		t.Errorf("size = %v, %v, want 7", v, err)
	}
	v, err = impl.GetField("tags", false)
	if err != nil {
		t.Fatalf("GetField(tags): %v", err)
	}
	if v.Kind() != types.KindList || v.AsList().Len() != 2 || v.AsList().Get(0).AsInt() != 1 {
		t.Errorf("tags = %s", v.DebugString())
	}
	v, err = impl.GetField("ttl", false)
	if err != nil {
		t.Fatalf("GetField(ttl): %v", err)
	}
	if sec, nanos := v.AsDuration(); sec != 90 || nanos != 0 {
		t.Errorf("ttl = %ds %dns, want 90s", sec, nanos)
	}

	// Checked conversion failures.
	if err := impl.SetField("size", types.String("no")); types.StatusCode(err) != types.CodeInvalidArgument {
		t.Errorf("SetField kind mismatch error = %v", err)
	}
}

func TestWellKnownConversions(t *testing.T) {
	arena := memory.NewArena()
	defer arena.Destroy()

	dur := durationpb.New(90 * time.Second)
	v, err := messageToValue(arena, dur.ProtoReflect())
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if sec, _ := v.AsDuration(); sec != 90 {
		t.Errorf("duration seconds = %d, want 90", sec)
	}

	ts := timestamppb.New(timestamppb.Now().AsTime())
	v, err = messageToValue(arena, ts.ProtoReflect())
	if err != nil {
		t.Fatalf("timestamp: %v", err)
	}
	if v.Kind() != types.KindTimestamp {
		t.Errorf("timestamp kind = %v", v.Kind())
	}

	w := wrapperspb.Int32(41)
	v, err = messageToValue(arena, w.ProtoReflect())
	if err != nil || v.AsInt() != 41 {
		t.Errorf("Int32Value = %v, %v, want 41", v, err)
	}

	sv, err := structpb.NewStruct(map[string]any{
		"name":  "x",
		"count": 2.0,
		"flags": []any{true, nil},
	})
	if err != nil {
		t.Fatalf("structpb.NewStruct: %v", err)
	}
	v, err = messageToValue(arena, sv.ProtoReflect())
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	if v.Kind() != types.KindMap || v.AsMap().Len() != 3 {
		t.Fatalf("struct = %s", v.DebugString())
	}
	name, ok := v.AsMap().Find(types.String("name"), false)
	if !ok || name.AsString() != "x" {
		t.Errorf("struct name = %v, %v", name, ok)
	}
	flags, _ := v.AsMap().Find(types.String("flags"), false)
	if flags.Kind() != types.KindList || flags.AsList().Get(1).Kind() != types.KindNull {
		t.Errorf("flags = %s", flags.DebugString())
	}

	// Dynamic messages convert the same as generated ones.
	dynDur := dynamicpb.NewMessage(dur.ProtoReflect().Descriptor())
	dynDur.Set(dynDur.Descriptor().Fields().ByNumber(1), protoreflect.ValueOfInt64(45))
	v, err = messageToValue(arena, dynDur)
	if err != nil {
		t.Fatalf("dynamic duration: %v", err)
	}
	if sec, _ := v.AsDuration(); sec != 45 {
		t.Errorf("dynamic duration seconds = %d, want 45", sec)
	}
}

func TestToProtoAndJSON(t *testing.T) {
	p := testProvider(t)
	arena := memory.NewArena()
	defer arena.Destroy()

	impl, err := p.NewStruct(arena, "sift.test.Widget")
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	if err := impl.SetField("name", types.String("gizmo")); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	msg, err := ToProto(types.StructValue(impl))
	if err != nil {
		t.Fatalf("ToProto: %v", err)
	}
	if name := string(msg.ProtoReflect().Descriptor().FullName()); name != "sift.test.Widget" {
		t.Errorf("ToProto type = %q", name)
	}
	if _, err := ToProto(types.Int(1)); err == nil {
		t.Error("ToProto accepted a non-struct")
	}

	mb := types.NewMapBuilder(arena, 2, false)
	mb.Put(types.String("n"), types.Int(3))
	mb.Put(types.String("items"), types.NewList(arena, types.String("a"), types.NullValue))
	jv, err := ToJSONValue(mb.Build())
	if err != nil {
		t.Fatalf("ToJSONValue: %v", err)
	}
	st := jv.GetStructValue()
	if st == nil || st.Fields["n"].GetNumberValue() != 3 {
		t.Errorf("JSON value = %v", jv)
	}
	if _, err := ToJSONValue(types.BytesExternal([]byte("x"))); err == nil {
		t.Error("ToJSONValue accepted bytes")
	}
}
