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

package cases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/protoschema/internal/cases"
)

func TestCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		str               string
		camel, json       string
		lowerFirst, upper string
	}{
		{str: ""},
		{str: "_", camel: "_", lowerFirst: "_", upper: "_"},
		{
			str:   "foo",
			camel: "foo", json: "foo",
			lowerFirst: "foo", upper: "Foo",
		},
		{
			str:   "foo_bar",
			camel: "fooBar", json: "fooBar",
			lowerFirst: "foo_bar", upper: "Foo_bar",
		},
		{
			str:   "_foo_bar",
			camel: "_fooBar", json: "FooBar",
			lowerFirst: "_foo_bar", upper: "_foo_bar",
		},
		{
			str:   "foo__bar",
			camel: "foo_Bar", json: "fooBar",
			lowerFirst: "foo__bar", upper: "Foo__bar",
		},
		{
			str:   "FOO_BAR",
			camel: "FOO_BAR", json: "FOOBAR",
			lowerFirst: "fOO_BAR", upper: "FOO_BAR",
		},
		{
			str:   "foo_1",
			camel: "foo_1", json: "foo1",
			lowerFirst: "foo_1", upper: "Foo_1",
		},
		{
			str:   "MyGroup",
			camel: "MyGroup", json: "MyGroup",
			lowerFirst: "myGroup", upper: "MyGroup",
		},
	}

	for _, test := range tests {
		t.Run(test.str, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.camel, cases.CamelCase(test.str))
			assert.Equal(t, test.json, cases.JSONName(test.str))
			assert.Equal(t, test.lowerFirst, cases.LowerFirst(test.str))
			assert.Equal(t, test.upper, cases.UpperFirst(test.str))
		})
	}
}
