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

package reporter_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/reporter"
)

func TestHandlerKeepsFirstError(t *testing.T) {
	t.Parallel()
	h := reporter.NewHandler(nil)
	pos := ast.SourcePos{Filename: "a.proto", Line: 1, Col: 1}
	first := h.HandleErrorf(pos, "first")
	second := h.HandleErrorf(pos, "second")
	assert.Equal(t, first, second)
	assert.EqualError(t, h.Error(), "a.proto:1:1: first")
}

func TestHandlerSwallowedErrors(t *testing.T) {
	t.Parallel()
	var reported []reporter.ErrorWithPos
	rep := reporter.NewReporter(func(err reporter.ErrorWithPos) error {
		reported = append(reported, err)
		return nil
	}, nil)
	h := reporter.NewHandler(rep)
	err := h.HandleError(&reporter.SemanticError{Pos: ast.UnknownPos("a.proto"), Err: errors.New("dup")})
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, h.Error(), reporter.ErrInvalidSource)
}

func TestHandlerWarnings(t *testing.T) {
	t.Parallel()
	var warnings []string
	h := reporter.NewHandler(reporter.NewReporter(nil, func(err reporter.ErrorWithPos) {
		warnings = append(warnings, err.Error())
	}))
	h.HandleWarning(ast.SourcePos{Filename: "a.proto", Line: 2, Col: 3}, errors.New("careful"))
	assert.Equal(t, []string{"a.proto:2:3: careful"}, warnings)
	assert.Equal(t, 1, h.WarningCount())
	assert.NoError(t, h.Error())
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()
	pos := ast.SourcePos{Filename: "a.proto", Line: 3, Col: 7}
	sentinel := errors.New("duplicate name")

	tests := []struct {
		name   string
		err    reporter.ErrorWithPos
		msg    string
		target error
	}{
		{
			name:   "lex",
			err:    &reporter.LexError{Pos: pos, Err: sentinel},
			msg:    "a.proto:3:7: duplicate name",
			target: sentinel,
		},
		{
			name:   "syntax",
			err:    &reporter.SyntaxError{Pos: pos, Token: "}", Expected: "'='"},
			msg:    `a.proto:3:7: unexpected "}", expecting '='`,
			target: reporter.ErrUnexpectedToken,
		},
		{
			name:   "syntax eof",
			err:    &reporter.SyntaxError{Pos: pos, EOF: true, Expected: "'}'"},
			msg:    "a.proto:3:7: unexpected end of input, expecting '}'",
			target: reporter.ErrUnexpectedToken,
		},
		{
			name:   "semantic",
			err:    &reporter.SemanticError{Pos: pos, Err: sentinel},
			msg:    "a.proto:3:7: duplicate name",
			target: sentinel,
		},
		{
			name:   "resolution",
			err:    &reporter.ResolutionError{Pos: pos, Name: "Foo", Scope: ".pkg.Bar"},
			msg:    `a.proto:3:7: invalid type "Foo": not found in .pkg.Bar`,
			target: reporter.ErrUnresolvedType,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.EqualError(t, test.err, test.msg)
			assert.ErrorIs(t, test.err, test.target)
			assert.Equal(t, pos, test.err.GetPosition())
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()
	src := []byte("syntax = \"proto3\";\nmessage Foo {\n\tstring name = ;\n}\n")
	err := &reporter.SyntaxError{
		Pos:      ast.SourcePos{Filename: "foo.proto", Line: 3, Col: 23, Offset: 48},
		Token:    ";",
		Expected: "id",
	}
	out := reporter.Renderer{}.Render(reporter.LevelError, err, src)
	assert.Equal(t, "error: foo.proto:3:23: unexpected \";\", expecting id\n"+
		"3 | "+strings.Repeat(" ", 4)+"string name = ;\n"+
		"  | "+strings.Repeat(" ", 18)+"^\n", out)

	out = reporter.Renderer{}.Render(reporter.LevelWarning, errors.New("no position"), src)
	assert.Equal(t, "warning: no position\n", out)
}
