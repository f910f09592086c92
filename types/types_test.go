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

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protoschema/types"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	scalars := []string{
		"double", "float", "int32", "int64", "uint32", "uint64", "sint32", "sint64",
		"fixed32", "fixed64", "sfixed32", "sfixed64", "bool", "string", "bytes",
	}
	for _, name := range scalars {
		assert.Equal(t, types.Scalar, types.Classify(name), name)
		_, ok := types.DescriptorType(name)
		assert.True(t, ok, name)
		assert.Contains(t, types.Defaults, name)
	}
	for _, name := range []string{"Foo", "foo.Bar", ".foo.Bar", "String", "int", ""} {
		assert.Equal(t, types.Identifier, types.Classify(name), name)
		_, ok := types.DescriptorType(name)
		assert.False(t, ok, name)
	}
}

func TestTables(t *testing.T) {
	t.Parallel()
	assert.Len(t, types.Basic, 15)
	assert.Equal(t, protowire.Fixed64Type, types.Basic["double"])
	assert.Equal(t, protowire.Fixed32Type, types.Basic["float"])
	assert.Equal(t, protowire.BytesType, types.Basic["string"])

	// map keys exclude floating point and bytes
	for _, name := range []string{"double", "float", "bytes"} {
		assert.NotContains(t, types.MapKey, name)
	}
	assert.Len(t, types.MapKey, 12)

	// everything but length-delimited scalars can be packed
	for name, wt := range types.Basic {
		_, packed := types.Packed[name]
		assert.Equal(t, wt != protowire.BytesType, packed, name)
	}
	for name, wt := range types.Long {
		assert.Equal(t, types.Basic[name], wt, name)
	}
}

func TestRef(t *testing.T) {
	t.Parallel()
	ref := types.Of("string")
	assert.True(t, ref.IsScalar())
	assert.Equal(t, "BaseType", ref.Kind.String())

	ref = types.Of("Person.PhoneNumber")
	assert.False(t, ref.IsScalar())
	assert.Equal(t, "Identifier", ref.Kind.String())

	typ, ok := types.DescriptorType("sfixed64")
	assert.True(t, ok)
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64, typ)
}
