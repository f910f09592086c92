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

package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/reporter"
	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/types"
)

// buildPerson builds the equivalent of:
//
//	package example;
//	message Person {
//	  message PhoneNumber { string number = 1; }
//	  enum Kind { HOME = 0; }
//	  PhoneNumber phones = 4;
//	  <typ> other = 5;
//	}
//	service Directory { rpc Find(Person) returns (stream Person.PhoneNumber); }
func buildPerson(t *testing.T, typ string) (*schema.Root, *schema.Message) {
	t.Helper()
	root := schema.NewRoot()
	pkg, err := root.Define("example")
	require.NoError(t, err)

	person := schema.NewMessage("Person")
	phone := schema.NewMessage("PhoneNumber")
	require.NoError(t, phone.Add(newField(t, "number", 1, "string", schema.RuleNone)))
	require.NoError(t, person.Add(phone))
	kind := schema.NewEnum("Kind")
	_, err = kind.AddValue("HOME", 0, "")
	require.NoError(t, err)
	require.NoError(t, person.Add(kind))
	require.NoError(t, person.Add(newField(t, "phones", 4, "PhoneNumber", schema.RuleRepeated)))
	require.NoError(t, person.Add(newField(t, "other", 5, typ, schema.RuleNone)))
	require.NoError(t, pkg.Add(person))

	svc := schema.NewService("Directory")
	require.NoError(t, svc.Add(schema.NewMethod("Find", "Person", "Person.PhoneNumber", false, true)))
	require.NoError(t, pkg.Add(svc))
	return root, person
}

func TestResolveStrict(t *testing.T) {
	t.Parallel()
	root, person := buildPerson(t, "Kind")
	require.NoError(t, schema.Resolve(root, schema.ResolveStrict))

	assert.Equal(t, types.Ref{Kind: types.Identifier, Value: ".example.Person.PhoneNumber"}, person.Field("phones").Type)
	assert.Equal(t, ".example.Person.Kind", person.Field("other").Type.Value)
	assert.Equal(t, ".example.Person.phones", person.Field("phones").FullName())

	method := root.Get("example").(*schema.Namespace).Get("Directory").(*schema.Service).Method("Find")
	assert.Equal(t, ".example.Person", method.RequestType.Value)
	assert.Equal(t, ".example.Person.PhoneNumber", method.ResponseType.Value)
	assert.Equal(t, ".example.Directory.Find", method.FullName())

	// resolving again is a no-op
	require.NoError(t, schema.Resolve(root, schema.ResolveStrict))
	assert.Equal(t, ".example.Person.PhoneNumber", person.Field("phones").Type.Value)
}

func TestResolveUnknown(t *testing.T) {
	t.Parallel()
	root, person := buildPerson(t, "Missing")

	err := schema.Resolve(root, schema.ResolveStrict)
	var resErr *reporter.ResolutionError
	require.True(t, errors.As(err, &resErr), "%v", err)
	assert.Equal(t, "Missing", resErr.Name)
	assert.Equal(t, ".example.Person", resErr.Scope)
	assert.ErrorIs(t, err, reporter.ErrUnresolvedType)

	root, person = buildPerson(t, "Missing")
	require.NoError(t, schema.Resolve(root, schema.ResolveWeak))
	assert.Equal(t, "Missing", person.Field("other").Type.Value)
	assert.Equal(t, ".example.Person.PhoneNumber", person.Field("phones").Type.Value)

	root, person = buildPerson(t, "Missing")
	require.NoError(t, schema.Resolve(root, schema.ResolveNone))
	assert.Equal(t, "PhoneNumber", person.Field("phones").Type.Value)
}

func TestResolveQualified(t *testing.T) {
	t.Parallel()
	tests := []struct {
		typ, want string
	}{
		{typ: ".already.Absolute", want: ".already.Absolute"},
		{typ: "Person.Kind", want: ".example.Person.Kind"},
		{typ: "example.Person", want: ".example.Person"},
		{typ: "google.protobuf.Timestamp", want: ".google.protobuf.Timestamp"},
		{typ: "Person.Nope", want: ".Person.Nope"},
		{typ: "int64", want: "int64"},
	}
	for _, test := range tests {
		t.Run(test.typ, func(t *testing.T) {
			t.Parallel()
			root, person := buildPerson(t, test.typ)
			require.NoError(t, schema.Resolve(root, schema.ResolveStrict))
			assert.Equal(t, test.want, person.Field("other").Type.Value)
		})
	}
}

func TestResolveExtension(t *testing.T) {
	t.Parallel()
	root, _ := buildPerson(t, "string")
	pkg := root.Get("example").(*schema.Namespace)
	ext, err := schema.NewField("nickname", 100, "string", schema.RuleNone, "Person")
	require.NoError(t, err)
	require.NoError(t, pkg.Add(ext))

	require.NoError(t, schema.Resolve(root, schema.ResolveStrict))
	assert.Equal(t, ".example.Person", ext.Extend)
	assert.Equal(t, ".example.nickname", ext.FullName())
}

func TestLookup(t *testing.T) {
	t.Parallel()
	root, person := buildPerson(t, "string")
	phone := person.Get("PhoneNumber")
	name, ok := schema.Lookup(phone, "Kind")
	assert.True(t, ok)
	assert.Equal(t, ".example.Person.Kind", name)
	name, ok = schema.Lookup(phone, "Person")
	assert.True(t, ok)
	assert.Equal(t, ".example.Person", name)
	// fields and services are not types
	_, ok = schema.Lookup(phone, "phones")
	assert.False(t, ok)
	_, ok = schema.Lookup(root, "Directory")
	assert.False(t, ok)
}

func TestResolveModeText(t *testing.T) {
	t.Parallel()
	var mode schema.ResolveMode
	require.NoError(t, mode.UnmarshalText([]byte("weak")))
	assert.Equal(t, schema.ResolveWeak, mode)
	require.NoError(t, mode.Set("NONE"))
	assert.Equal(t, schema.ResolveNone, mode)
	text, err := mode.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "none", string(text))
	assert.Error(t, mode.Set("lenient"))
}

func TestFind(t *testing.T) {
	t.Parallel()
	root, person := buildPerson(t, "string")
	assert.Same(t, person, schema.Find(root, ".example.Person"))
	assert.Same(t, person.Get("Kind"), schema.Find(person, "example.Person.Kind"))
	assert.NotNil(t, schema.Find(person.Get("PhoneNumber"), ".example.Directory"))
	assert.Nil(t, schema.Find(root, ".example.Person.phones"))
	assert.Nil(t, schema.Find(root, ".example.Missing"))
	assert.Nil(t, schema.Find(root, "."))
}
