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

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/protoschema/ast"
)

func TestSourcePos(t *testing.T) {
	t.Parallel()
	data := []byte("syntax = \"proto3\";\n\tmessage Foo {}\n")
	info := ast.NewFileInfo("test.proto", data)
	info.AddLine(19)
	info.AddLine(len(data))

	assert.Equal(t, ast.SourcePos{Filename: "test.proto", Line: 1, Col: 1}, info.SourcePos(0))
	assert.Equal(t, ast.SourcePos{Filename: "test.proto", Line: 1, Col: 8, Offset: 7}, info.SourcePos(7))
	// tabs advance to the next multiple of 8
	assert.Equal(t, ast.SourcePos{Filename: "test.proto", Line: 2, Col: 9, Offset: 20}, info.SourcePos(20))
	assert.Equal(t, "test.proto:2:9", info.SourcePos(20).String())
	assert.Equal(t, 3, info.LineCount())
}

func TestLineText(t *testing.T) {
	t.Parallel()
	data := []byte("a = 1;\r\nb = 2;")
	info := ast.NewFileInfo("test.proto", data)
	info.AddLine(8)

	assert.Equal(t, "a = 1;", info.LineText(1))
	assert.Equal(t, "b = 2;", info.LineText(2))
	assert.Empty(t, info.LineText(3))
	assert.Empty(t, info.LineText(0))
}

func TestUnknownPos(t *testing.T) {
	t.Parallel()
	pos := ast.UnknownPos("foo.proto")
	assert.Equal(t, "foo.proto", pos.String())
}

func TestAddLinePanicsOnRegression(t *testing.T) {
	t.Parallel()
	info := ast.NewFileInfo("test.proto", []byte("a\nb\nc"))
	info.AddLine(2)
	assert.Panics(t, func() { info.AddLine(2) })
	assert.Panics(t, func() { info.AddLine(-1) })
	assert.Panics(t, func() { info.AddLine(100) })
}
