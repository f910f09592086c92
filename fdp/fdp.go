// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fdp converts parse results into descriptor protos, the form used by
// protoc plugins and the protobuf runtime.
//
// The descriptors are not linked. Options are kept as uninterpreted options
// (except for a field's default value and JSON name, which have dedicated
// fields). A type reference that could not be resolved keeps its name as
// written and has no type, which is what protoc's parser does before linking.
package fdp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protoschema/internal/cases"
	"github.com/bufbuild/protoschema/parser"
	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/types"
)

// ErrUnsupported is returned for trees that cannot be described by a single
// file descriptor, such as a root holding declarations outside the file's
// package.
var ErrUnsupported = errors.New("unsupported declaration")

// ToFileDescriptorProto converts a parse result into a file descriptor proto.
// Comments of declarations are recorded in its source code info.
func ToFileDescriptorProto(res *parser.Result) (*descriptorpb.FileDescriptorProto, error) {
	fd := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(res.Filename),
		Dependency: append([]string(nil), res.Imports...),
	}
	if res.Package != "" {
		fd.Package = proto.String(res.Package)
	}
	if res.Syntax != "" {
		fd.Syntax = proto.String(res.Syntax)
	}
	for _, pub := range res.PublicImports {
		for i, dep := range res.Imports {
			if dep == pub {
				fd.PublicDependency = append(fd.PublicDependency, int32(i))
				break
			}
		}
	}
	for _, weak := range res.WeakImports {
		fd.WeakDependency = append(fd.WeakDependency, int32(len(fd.Dependency)))
		fd.Dependency = append(fd.Dependency, weak)
	}
	if res.Options != nil && res.Options.Len() > 0 {
		fd.Options = &descriptorpb.FileOptions{UninterpretedOption: uninterpreted(res.Options)}
	}

	scope := schema.Node(res.Root)
	if res.Package != "" {
		if scope = schema.Find(res.Root, res.Package); scope == nil {
			return nil, fmt.Errorf("%w: package %q is not declared", ErrUnsupported, res.Package)
		}
	}
	ns, ok := scope.(interface{ Nested() []schema.Node })
	if !ok {
		return nil, fmt.Errorf("%w: package %q is not a namespace", ErrUnsupported, res.Package)
	}

	c := converter{root: res.Root}
	sci := sourceCodeInfo{}
	for _, child := range ns.Nested() {
		switch child := child.(type) {
		case *schema.Message:
			path := []int32{fileMessagesTag, int32(len(fd.MessageType))}
			msg, err := c.message(child, &sci, path)
			if err != nil {
				return nil, err
			}
			fd.MessageType = append(fd.MessageType, msg)
		case *schema.Enum:
			path := []int32{fileEnumsTag, int32(len(fd.EnumType))}
			fd.EnumType = append(fd.EnumType, c.enum(child, &sci, path))
		case *schema.Service:
			path := []int32{fileServicesTag, int32(len(fd.Service))}
			fd.Service = append(fd.Service, c.service(child, &sci, path))
		case *schema.Field:
			path := []int32{fileExtensionsTag, int32(len(fd.Extension))}
			fd.Extension = append(fd.Extension, c.field(child, nil, &sci, path))
		default:
			return nil, fmt.Errorf("%w: %s %q in file %q", ErrUnsupported, schema.KindOf(child), child.FullName(), res.Filename)
		}
	}
	if len(sci.locs) > 0 {
		fd.SourceCodeInfo = &descriptorpb.SourceCodeInfo{Location: sci.locs}
	}
	return fd, nil
}

type converter struct {
	root *schema.Root
}

func (c *converter) message(m *schema.Message, sci *sourceCodeInfo, path []int32) (*descriptorpb.DescriptorProto, error) {
	sci.add(m, path)
	msg := &descriptorpb.DescriptorProto{Name: proto.String(m.Name())}
	if m.Options().Len() > 0 {
		msg.Options = &descriptorpb.MessageOptions{UninterpretedOption: uninterpreted(m.Options())}
	}
	for _, f := range m.Fields() {
		fieldPath := append(dup(path), messageFieldsTag, int32(len(msg.Field)))
		fld := c.field(f, m, sci, fieldPath)
		if f.Map {
			entry := c.mapEntry(f)
			fld.TypeName = proto.String(m.FullName() + "." + entry.GetName())
			msg.NestedType = append(msg.NestedType, entry)
		}
		msg.Field = append(msg.Field, fld)
	}
	for i, o := range m.OneOfs() {
		sci.add(o, append(dup(path), messageOneOfsTag, int32(i)))
		decl := &descriptorpb.OneofDescriptorProto{Name: proto.String(o.Name())}
		if o.Options().Len() > 0 {
			decl.Options = &descriptorpb.OneofOptions{UninterpretedOption: uninterpreted(o.Options())}
		}
		msg.OneofDecl = append(msg.OneofDecl, decl)
	}
	for _, child := range m.Nested() {
		switch child := child.(type) {
		case *schema.Message:
			nested, err := c.message(child, sci, append(dup(path), messageNestedMessagesTag, int32(len(msg.NestedType))))
			if err != nil {
				return nil, err
			}
			msg.NestedType = append(msg.NestedType, nested)
		case *schema.Enum:
			msg.EnumType = append(msg.EnumType, c.enum(child, sci, append(dup(path), messageEnumsTag, int32(len(msg.EnumType)))))
		case *schema.Field:
			extPath := append(dup(path), messageExtensionsTag, int32(len(msg.Extension)))
			msg.Extension = append(msg.Extension, c.field(child, nil, sci, extPath))
		default:
			return nil, fmt.Errorf("%w: %s %q in message %q", ErrUnsupported, schema.KindOf(child), child.Name(), m.FullName())
		}
	}
	for _, r := range m.Reserved() {
		if r.IsName() {
			msg.ReservedName = append(msg.ReservedName, r.Name)
			continue
		}
		// message ranges are exclusive of the end
		msg.ReservedRange = append(msg.ReservedRange, &descriptorpb.DescriptorProto_ReservedRange{
			Start: proto.Int32(r.Range.Start),
			End:   proto.Int32(r.Range.End + 1),
		})
	}
	for _, r := range m.Extensions() {
		msg.ExtensionRange = append(msg.ExtensionRange, &descriptorpb.DescriptorProto_ExtensionRange{
			Start: proto.Int32(r.Start),
			End:   proto.Int32(r.End + 1),
		})
	}
	return msg, nil
}

// mapEntry synthesizes the nested message that describes the entries of a
// map field.
func (c *converter) mapEntry(f *schema.Field) *descriptorpb.DescriptorProto {
	key := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("key"),
		Number:   proto.Int32(1),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		JsonName: proto.String("key"),
	}
	c.setType(key, f.KeyType)
	value := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("value"),
		Number:   proto.Int32(2),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		JsonName: proto.String("value"),
	}
	c.setType(value, f.Type)
	return &descriptorpb.DescriptorProto{
		Name:    proto.String(MapEntryName(f.Name())),
		Field:   []*descriptorpb.FieldDescriptorProto{key, value},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}
}

// MapEntryName returns the name of the synthesized entry message of a map
// field, e.g. "AttrsEntry" for a field named "attrs".
func MapEntryName(fieldName string) string {
	return cases.UpperFirst(cases.JSONName(fieldName)) + "Entry"
}

// field converts a field. The owner is the message whose oneofs the field
// may belong to; it is nil for extensions.
func (c *converter) field(f *schema.Field, owner *schema.Message, sci *sourceCodeInfo, path []int32) *descriptorpb.FieldDescriptorProto {
	sci.add(f, path)
	fld := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(f.Name()),
		Number:   proto.Int32(f.ID),
		JsonName: proto.String(cases.JSONName(f.Name())),
	}
	switch {
	case f.Map, f.Repeated():
		fld.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	case f.Required():
		fld.Label = descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum()
	default:
		fld.Label = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	}
	if f.Map {
		fld.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
	} else {
		c.setType(fld, f.Type)
	}
	if f.IsExtension() {
		fld.Extendee = proto.String(f.Extend)
	}
	if oneof := f.PartOf(); oneof != nil && owner != nil {
		for i, o := range owner.OneOfs() {
			if o == oneof {
				fld.OneofIndex = proto.Int32(int32(i))
				break
			}
		}
	}

	opts := f.Options()
	var rest schema.Options
	for _, name := range opts.Names() {
		v, _ := opts.Get(name)
		switch name {
		case "default":
			fld.DefaultValue = proto.String(defaultValue(f.Type, v))
		case "json_name":
			if s, ok := v.(string); ok {
				fld.JsonName = proto.String(s)
				continue
			}
			rest.Set(name, v, false)
		default:
			rest.Set(name, v, false)
		}
	}
	if rest.Len() > 0 {
		fld.Options = &descriptorpb.FieldOptions{UninterpretedOption: uninterpreted(&rest)}
	}
	return fld
}

// setType fills in the type and type name of a field. References to types
// that are not in the tree get a type name but no type.
func (c *converter) setType(fld *descriptorpb.FieldDescriptorProto, ref types.Ref) {
	if ref.IsScalar() {
		if t, ok := types.DescriptorType(ref.Value); ok {
			fld.Type = t.Enum()
			return
		}
	}
	fld.TypeName = proto.String(ref.Value)
	if !strings.HasPrefix(ref.Value, ".") {
		return
	}
	switch n := schema.Find(c.root, ref.Value).(type) {
	case *schema.Message:
		if n.Group {
			fld.Type = descriptorpb.FieldDescriptorProto_TYPE_GROUP.Enum()
		} else {
			fld.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		}
	case *schema.Enum:
		fld.Type = descriptorpb.FieldDescriptorProto_TYPE_ENUM.Enum()
	}
}

func (c *converter) enum(e *schema.Enum, sci *sourceCodeInfo, path []int32) *descriptorpb.EnumDescriptorProto {
	sci.add(e, path)
	en := &descriptorpb.EnumDescriptorProto{Name: proto.String(e.Name())}
	if e.Options().Len() > 0 {
		en.Options = &descriptorpb.EnumOptions{UninterpretedOption: uninterpreted(e.Options())}
	}
	for i, v := range e.Values() {
		sci.addValue(v, append(dup(path), enumValuesTag, int32(i)))
		val := &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v.Name),
			Number: proto.Int32(v.ID),
		}
		if v.Options.Len() > 0 {
			val.Options = &descriptorpb.EnumValueOptions{UninterpretedOption: uninterpreted(&v.Options)}
		}
		en.Value = append(en.Value, val)
	}
	for _, r := range e.Reserved() {
		if r.IsName() {
			en.ReservedName = append(en.ReservedName, r.Name)
			continue
		}
		// enum ranges are inclusive
		en.ReservedRange = append(en.ReservedRange, &descriptorpb.EnumDescriptorProto_EnumReservedRange{
			Start: proto.Int32(r.Range.Start),
			End:   proto.Int32(r.Range.End),
		})
	}
	return en
}

func (c *converter) service(s *schema.Service, sci *sourceCodeInfo, path []int32) *descriptorpb.ServiceDescriptorProto {
	sci.add(s, path)
	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String(s.Name())}
	if s.Options().Len() > 0 {
		svc.Options = &descriptorpb.ServiceOptions{UninterpretedOption: uninterpreted(s.Options())}
	}
	for i, m := range s.Methods() {
		sci.add(m, append(dup(path), serviceMethodsTag, int32(i)))
		mtd := &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.Name()),
			InputType:  proto.String(m.RequestType.Value),
			OutputType: proto.String(m.ResponseType.Value),
		}
		if m.RequestStream {
			mtd.ClientStreaming = proto.Bool(true)
		}
		if m.ResponseStream {
			mtd.ServerStreaming = proto.Bool(true)
		}
		if m.Options().Len() > 0 {
			mtd.Options = &descriptorpb.MethodOptions{UninterpretedOption: uninterpreted(m.Options())}
		}
		svc.Method = append(svc.Method, mtd)
	}
	return svc
}

// defaultValue renders a default the way descriptors store it: bytes are
// C-escaped, floats use inf, -inf, and nan, and everything else is written
// in its plain text form.
func defaultValue(typ types.Ref, v any) string {
	switch v := v.(type) {
	case string:
		if typ.Value == "bytes" {
			return cEscape(v)
		}
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		switch {
		case math.IsInf(v, 1):
			return "inf"
		case math.IsInf(v, -1):
			return "-inf"
		case math.IsNaN(v):
			return "nan"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case schema.Ident:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func cEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}
