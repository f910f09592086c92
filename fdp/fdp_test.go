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

package fdp

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protoschema/parser"
	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/types"
)

func convert(t *testing.T, src string, opts parser.Options) *descriptorpb.FileDescriptorProto {
	t.Helper()
	res, err := parser.ParseString("test.proto", src, opts)
	require.NoError(t, err)
	fd, err := ToFileDescriptorProto(res)
	require.NoError(t, err)
	return fd
}

func TestToFileDescriptorProtoLinks(t *testing.T) {
	t.Parallel()
	fd := convert(t, `syntax = "proto3";
package shop;

// An order.
message Order {
  string id = 1;
  map<string, Item> items = 2;
  oneof payment {
    string card = 3;
    int64 voucher = 4;
  }
  Status status = 5;
  message Item {
    int32 quantity = 1;
  }
  enum Status {
    UNKNOWN = 0;
    PAID = 1;
  }
}

service Orders {
  rpc Watch (Order) returns (stream Order.Item);
}
`, parser.Options{})

	// the result must be accepted by the protobuf runtime
	file, err := protodesc.NewFile(fd, nil)
	require.NoError(t, err)

	order := file.Messages().ByName("Order")
	require.NotNil(t, order)
	items := order.Fields().ByName("items")
	require.NotNil(t, items)
	assert.True(t, items.IsMap())
	assert.Equal(t, "shop.Order.Item", string(items.MapValue().Message().FullName()))
	assert.Equal(t, "shop.Order.ItemsEntry", string(items.Message().FullName()))
	assert.Equal(t, 2, order.Oneofs().ByName("payment").Fields().Len())
	assert.Equal(t, "shop.Order.Status", string(order.Fields().ByName("status").Enum().FullName()))

	watch := file.Services().ByName("Orders").Methods().ByName("Watch")
	require.NotNil(t, watch)
	assert.False(t, watch.IsStreamingClient())
	assert.True(t, watch.IsStreamingServer())
	assert.Equal(t, "shop.Order.Item", string(watch.Output().FullName()))

	loc := fd.GetSourceCodeInfo().GetLocation()[0]
	assert.Equal(t, []int32{4, 0}, loc.GetPath())
	assert.Equal(t, []int32{4, 8, 13}, loc.GetSpan())
	assert.Equal(t, "An order.", loc.GetLeadingComments())
}

func TestToFileDescriptorProtoUnlinked(t *testing.T) {
	t.Parallel()
	fd := convert(t, `syntax = "proto2";
package legacy;
import "a.proto";
import public "b.proto";
import weak "c.proto";
option java_package = "com.example.legacy";

message Base {
  option (custom.opt).name = "x";
  reserved 5 to 7;
  reserved "old";
  extensions 100 to max;
  optional bytes data = 1 [default = "\001a\n"];
  optional double ratio = 2 [default = -inf];
  optional string label = 3 [json_name = "lbl", deprecated = true];
  repeated int32 ids = 4;
  optional group Extra = 8 {
    optional int32 n = 1;
  }
  optional Missing missing = 9;
}

enum Level {
  reserved 10 to 12;
  LOW = 0;
}

extend Base {
  optional Level level = 100;
}
`, parser.Options{ResolveMode: schema.ResolveWeak})

	assert.Equal(t, []string{"a.proto", "b.proto", "c.proto"}, fd.GetDependency())
	assert.Equal(t, []int32{1}, fd.GetPublicDependency())
	assert.Equal(t, []int32{2}, fd.GetWeakDependency())
	assert.Equal(t, "proto2", fd.GetSyntax())

	diff := cmp.Diff([]*descriptorpb.UninterpretedOption{{
		Name:        []*descriptorpb.UninterpretedOption_NamePart{{NamePart: proto.String("java_package"), IsExtension: proto.Bool(false)}},
		StringValue: []byte("com.example.legacy"),
	}}, fd.GetOptions().GetUninterpretedOption(), protocmp.Transform())
	assert.Empty(t, diff)

	require.Len(t, fd.GetMessageType(), 1)
	base := fd.GetMessageType()[0]
	diff = cmp.Diff(&descriptorpb.UninterpretedOption{
		Name: []*descriptorpb.UninterpretedOption_NamePart{
			{NamePart: proto.String("custom.opt"), IsExtension: proto.Bool(true)},
			{NamePart: proto.String("name"), IsExtension: proto.Bool(false)},
		},
		StringValue: []byte("x"),
	}, base.GetOptions().GetUninterpretedOption()[0], protocmp.Transform())
	assert.Empty(t, diff)

	require.Len(t, base.GetReservedRange(), 1)
	assert.Equal(t, int32(5), base.GetReservedRange()[0].GetStart())
	assert.Equal(t, int32(8), base.GetReservedRange()[0].GetEnd())
	assert.Equal(t, []string{"old"}, base.GetReservedName())
	require.Len(t, base.GetExtensionRange(), 1)
	assert.Equal(t, int32(100), base.GetExtensionRange()[0].GetStart())
	assert.Equal(t, int32(schema.MaxFieldID+1), base.GetExtensionRange()[0].GetEnd())

	fields := map[string]*descriptorpb.FieldDescriptorProto{}
	for _, f := range base.GetField() {
		fields[f.GetName()] = f
	}
	assert.Equal(t, `\001a\n`, fields["data"].GetDefaultValue())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_BYTES, fields["data"].GetType())
	assert.Equal(t, "-inf", fields["ratio"].GetDefaultValue())
	assert.Equal(t, "lbl", fields["label"].GetJsonName())
	require.Len(t, fields["label"].GetOptions().GetUninterpretedOption(), 1)
	assert.Equal(t, "true", fields["label"].GetOptions().GetUninterpretedOption()[0].GetIdentifierValue())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, fields["ids"].GetLabel())
	assert.Equal(t, "false", fields["ids"].GetOptions().GetUninterpretedOption()[0].GetIdentifierValue())

	extra := fields["extra"]
	require.NotNil(t, extra)
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_GROUP, extra.GetType())
	assert.Equal(t, ".legacy.Base.Extra", extra.GetTypeName())
	require.Len(t, base.GetNestedType(), 1)
	assert.Equal(t, "Extra", base.GetNestedType()[0].GetName())

	missing := fields["missing"]
	assert.Nil(t, missing.Type)
	assert.Equal(t, "Missing", missing.GetTypeName())

	require.Len(t, fd.GetEnumType(), 1)
	level := fd.GetEnumType()[0]
	require.Len(t, level.GetReservedRange(), 1)
	assert.Equal(t, int32(10), level.GetReservedRange()[0].GetStart())
	assert.Equal(t, int32(12), level.GetReservedRange()[0].GetEnd())

	require.Len(t, fd.GetExtension(), 1)
	ext := fd.GetExtension()[0]
	assert.Equal(t, ".legacy.Base", ext.GetExtendee())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_ENUM, ext.GetType())
	assert.Equal(t, ".legacy.Level", ext.GetTypeName())
}

func TestOptionNameParts(t *testing.T) {
	t.Parallel()
	type part struct {
		name string
		ext  bool
	}
	tests := map[string][]part{
		"deprecated":       {{"deprecated", false}},
		"(foo.bar)":        {{"foo.bar", true}},
		"(foo.bar).baz":    {{"foo.bar", true}, {"baz", false}},
		"(other).b.c":      {{"other", true}, {"b", false}, {"c", false}},
		"a.(b.c).d":        {{"a", false}, {"b.c", true}, {"d", false}},
		"features.(x).y.z": {{"features", false}, {"x", true}, {"y", false}, {"z", false}},
	}
	for name, want := range tests {
		var got []part
		for _, p := range OptionNameParts(name) {
			got = append(got, part{p.GetNamePart(), p.GetIsExtension()})
		}
		assert.Equal(t, want, got, name)
	}
}

func TestDefaultValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		typ   string
		value any
		want  string
	}{
		{"string", "a\nb", "a\nb"},
		{"bytes", "a\nb\x00\xff'", `a\nb\000\377\'`},
		{"bool", true, "true"},
		{"int32", int64(-12), "-12"},
		{"uint64", uint64(math.MaxUint64), "18446744073709551615"},
		{"double", 1.5, "1.5"},
		{"double", 1e21, "1e+21"},
		{"float", math.Inf(1), "inf"},
		{"float", math.NaN(), "nan"},
		{".pkg.Enum", schema.Ident("VALUE"), "VALUE"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, defaultValue(types.Of(test.typ), test.value), "%s %v", test.typ, test.value)
	}
}

func TestMapEntryName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "AttrsEntry", MapEntryName("attrs"))
	assert.Equal(t, "ExtraAttrsEntry", MapEntryName("extra_attrs"))
	assert.Equal(t, "ExtraAttrsEntry", MapEntryName("extraAttrs"))
}
