// Package protomsg backs struct values with protobuf messages: descriptor
// resolution, dynamic message construction, and conversion between protobuf
// field values and runtime values, including the well-known types.
package protomsg

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/sift-lang/sift/memory"
	"github.com/sift-lang/sift/types"
)

// Provider resolves message type names to descriptors and builds dynamic
// messages for struct construction. It implements interp.TypeProvider.
type Provider struct {
	files *protoregistry.Files
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{files: new(protoregistry.Files)}
}

// RegisterFile adds one compiled file descriptor, typically the generated
// File_* value of a compiled package.
func (p *Provider) RegisterFile(fd protoreflect.FileDescriptor) error {
	if err := p.files.RegisterFile(fd); err != nil {
		return fmt.Errorf("protomsg: register %s: %w", fd.Path(), err)
	}
	return nil
}

// RegisterFileSet loads every file of a serialized FileDescriptorSet, the
// form produced by protoc --descriptor_set_out.
func (p *Provider) RegisterFileSet(set *descriptorpb.FileDescriptorSet) error {
	fds, err := desc.CreateFileDescriptorsFromSet(set)
	if err != nil {
		return fmt.Errorf("protomsg: load descriptor set: %w", err)
	}
	for _, fd := range fds {
		unwrapped := fd.UnwrapFile()
		if _, err := p.files.FindFileByPath(unwrapped.Path()); err == nil {
			continue
		}
		if err := p.files.RegisterFile(unwrapped); err != nil {
			return fmt.Errorf("protomsg: register %s: %w", unwrapped.Path(), err)
		}
	}
	return nil
}

// FindMessage resolves a fully qualified message type name.
func (p *Provider) FindMessage(typeName string) (protoreflect.MessageDescriptor, error) {
	d, err := p.files.FindDescriptorByName(protoreflect.FullName(typeName))
	if err != nil {
		return nil, types.StatusErrorf(types.CodeNotFound, "unknown message type: %s", typeName)
	}
	md, ok := d.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, types.StatusErrorf(types.CodeInvalidArgument, "%s is not a message type", typeName)
	}
	return md, nil
}

// NewStruct creates an empty dynamic message wrapped as a struct value.
func (p *Provider) NewStruct(a memory.Allocator, typeName string) (types.StructImpl, error) {
	md, err := p.FindMessage(typeName)
	if err != nil {
		return nil, err
	}
	return NewMessageValue(a, dynamicpb.NewMessage(md)), nil
}
