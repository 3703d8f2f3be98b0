package protomsg

import (
	"sort"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// MessageValue is a struct payload backed by a protobuf message, typically a
// dynamicpb message built from a registered descriptor. It implements
// types.StructImpl.
type MessageValue struct {
	h   memory.Handle
	msg protoreflect.Message
}

// NewMessageValue wraps a message under the given allocator scope.
func NewMessageValue(a memory.Allocator, msg protoreflect.Message) *MessageValue {
	return &MessageValue{h: a.NewHandle(nil), msg: msg}
}

// Proto returns the backing reflective message.
func (m *MessageValue) Proto() protoreflect.Message { return m.msg }

// Message returns the backing message as a proto.Message for hosts that
// extract results in protobuf form.
func (m *MessageValue) Message() proto.Message { return m.msg.Interface() }

func (m *MessageValue) TypeName() string {
	return string(m.msg.Descriptor().FullName())
}

func (m *MessageValue) field(name string) (protoreflect.FieldDescriptor, error) {
	fd := m.msg.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		return nil, types.StatusErrorf(types.CodeNotFound, "no_such_field : %s", name)
	}
	return fd, nil
}

// HasField reports presence: set for fields supporting explicit presence,
// non-default otherwise, non-empty for lists and maps.
func (m *MessageValue) HasField(name string) (bool, error) {
	fd, err := m.field(name)
	if err != nil {
		return false, err
	}
	return m.msg.Has(fd), nil
}

// GetField converts the field to a runtime value. Unset scalar fields yield
// their default; unset message fields yield an empty message.
func (m *MessageValue) GetField(name string, heterogeneous bool) (types.Value, error) {
	fd, err := m.field(name)
	if err != nil {
		return types.Value{}, err
	}
	alloc := allocatorFor(m.h)
	return fieldToValue(alloc, fd, m.msg.Get(fd))
}

// SetField assigns a field from a runtime value with checked conversion.
func (m *MessageValue) SetField(name string, v types.Value) error {
	fd, err := m.field(name)
	if err != nil {
		return err
	}
	pv, err := valueToField(fd, v, m.msg)
	if err != nil {
		return err
	}
	m.msg.Set(fd, pv)
	return nil
}

// FieldNames returns the names of the populated fields in sorted order.
func (m *MessageValue) FieldNames() []string {
	var names []string
	m.msg.Range(func(fd protoreflect.FieldDescriptor, _ protoreflect.Value) bool {
		names = append(names, string(fd.Name()))
		return true
	})
	sort.Strings(names)
	return names
}

func (m *MessageValue) Equal(other types.StructImpl, heterogeneous bool) bool {
	om, ok := other.(*MessageValue)
	if !ok {
		return false
	}
	return proto.Equal(m.msg.Interface(), om.msg.Interface())
}

func (m *MessageValue) Hash(h uint64) uint64 {
	// Deterministic marshaling keeps the hash stable across field set order.
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(m.msg.Interface())
	if err != nil {
		data = []byte(m.TypeName())
	}
	const prime = 1099511628211
	for _, c := range data {
		h ^= uint64(c)
		h *= prime
	}
	return h
}

func (m *MessageValue) DebugString() string {
	out := m.TypeName() + "{"
	for i, name := range m.FieldNames() {
		if i > 0 {
			out += ", "
		}
		v, err := m.GetField(name, false)
		if err != nil {
			out += name + ": <error>"
			continue
		}
		out += name + ": " + v.DebugString()
	}
	return out + "}"
}

func (m *MessageValue) Handle() memory.Handle { return m.h }

// allocatorFor recovers an allocator compatible with the handle's owner for
// values derived from this message's fields.
func allocatorFor(h memory.Handle) memory.Allocator {
	if h.Owner() == memory.OwnerArena && h.Arena() != nil {
		return h.Arena()
	}
	return memory.NewRefCounted()
}
