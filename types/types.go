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

// Package types classifies the type names that appear in field and method
// declarations, and exposes the wire-format tables for built-in scalars.
package types

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Kind distinguishes built-in scalar types from symbolic references to
// messages and enums.
type Kind int

const (
	// Scalar is one of the fifteen built-in types, such as int32 or string.
	Scalar Kind = iota
	// Identifier is a reference to a message or enum, possibly qualified.
	Identifier
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "BaseType"
	case Identifier:
		return "Identifier"
	default:
		return "Unknown"
	}
}

// Ref is a type reference as it appears on a field or method. For an
// Identifier, Value is rewritten by the resolver to a fully-qualified name.
type Ref struct {
	Kind  Kind
	Value string
}

// Of classifies name and wraps it in a Ref.
func Of(name string) Ref {
	return Ref{Kind: Classify(name), Value: name}
}

// IsScalar reports whether the reference names a built-in scalar.
func (r Ref) IsScalar() bool {
	return r.Kind == Scalar
}

// Classify returns Scalar if name is a built-in scalar type name and
// Identifier otherwise.
func Classify(name string) Kind {
	if _, ok := Basic[name]; ok {
		return Scalar
	}
	return Identifier
}

// Basic maps every built-in scalar to its wire type.
var Basic = map[string]protowire.Type{
	"double":   protowire.Fixed64Type,
	"float":    protowire.Fixed32Type,
	"int32":    protowire.VarintType,
	"uint32":   protowire.VarintType,
	"sint32":   protowire.VarintType,
	"fixed32":  protowire.Fixed32Type,
	"sfixed32": protowire.Fixed32Type,
	"int64":    protowire.VarintType,
	"uint64":   protowire.VarintType,
	"sint64":   protowire.VarintType,
	"fixed64":  protowire.Fixed64Type,
	"sfixed64": protowire.Fixed64Type,
	"bool":     protowire.VarintType,
	"string":   protowire.BytesType,
	"bytes":    protowire.BytesType,
}

// Long maps the 64-bit integer scalars to their wire type.
var Long = map[string]protowire.Type{
	"int64":    protowire.VarintType,
	"uint64":   protowire.VarintType,
	"sint64":   protowire.VarintType,
	"fixed64":  protowire.Fixed64Type,
	"sfixed64": protowire.Fixed64Type,
}

// MapKey maps the scalars allowed as map keys to their wire type. Floating
// point types and bytes are excluded.
var MapKey = map[string]protowire.Type{
	"int32":    protowire.VarintType,
	"uint32":   protowire.VarintType,
	"sint32":   protowire.VarintType,
	"fixed32":  protowire.Fixed32Type,
	"sfixed32": protowire.Fixed32Type,
	"int64":    protowire.VarintType,
	"uint64":   protowire.VarintType,
	"sint64":   protowire.VarintType,
	"fixed64":  protowire.Fixed64Type,
	"sfixed64": protowire.Fixed64Type,
	"bool":     protowire.VarintType,
	"string":   protowire.BytesType,
}

// Packed maps the scalars that may use packed encoding when repeated to
// their wire type. It is Basic without string and bytes.
var Packed = map[string]protowire.Type{
	"double":   protowire.Fixed64Type,
	"float":    protowire.Fixed32Type,
	"int32":    protowire.VarintType,
	"uint32":   protowire.VarintType,
	"sint32":   protowire.VarintType,
	"fixed32":  protowire.Fixed32Type,
	"sfixed32": protowire.Fixed32Type,
	"int64":    protowire.VarintType,
	"uint64":   protowire.VarintType,
	"sint64":   protowire.VarintType,
	"fixed64":  protowire.Fixed64Type,
	"sfixed64": protowire.Fixed64Type,
	"bool":     protowire.VarintType,
}

// Defaults holds the zero value of every scalar. Message-typed fields have
// no entry; their default is nil.
var Defaults = map[string]any{
	"double":   float64(0),
	"float":    float64(0),
	"int32":    int64(0),
	"uint32":   uint64(0),
	"sint32":   int64(0),
	"fixed32":  uint64(0),
	"sfixed32": int64(0),
	"int64":    int64(0),
	"uint64":   uint64(0),
	"sint64":   int64(0),
	"fixed64":  uint64(0),
	"sfixed64": int64(0),
	"bool":     false,
	"string":   "",
	"bytes":    []byte{},
}

var descriptorTypes = map[string]descriptorpb.FieldDescriptorProto_Type{
	"double":   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	"float":    descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	"int32":    descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"int64":    descriptorpb.FieldDescriptorProto_TYPE_INT64,
	"uint32":   descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"uint64":   descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	"sint32":   descriptorpb.FieldDescriptorProto_TYPE_SINT32,
	"sint64":   descriptorpb.FieldDescriptorProto_TYPE_SINT64,
	"fixed32":  descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
	"fixed64":  descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
	"sfixed32": descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
	"sfixed64": descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
	"bool":     descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	"string":   descriptorpb.FieldDescriptorProto_TYPE_STRING,
	"bytes":    descriptorpb.FieldDescriptorProto_TYPE_BYTES,
}

// DescriptorType returns the descriptor field type for a scalar name.
func DescriptorType(name string) (descriptorpb.FieldDescriptorProto_Type, bool) {
	t, ok := descriptorTypes[name]
	return t, ok
}
