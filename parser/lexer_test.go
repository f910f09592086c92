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

package parser

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/reporter"
)

func allTokens(t *testing.T, l *Lexer) []string {
	t.Helper()
	var toks []string
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return toks
		}
		require.NoError(t, err)
		toks = append(toks, tok)
	}
}

func TestLexerTokens(t *testing.T) {
	t.Parallel()
	l := NewLexer("test.proto", []byte(`syntax = "proto3"; message Foo {}`), false)
	assert.Equal(t, []string{"syntax", "=", `"`, "proto3", `"`, ";", "message", "Foo", "{", "}"}, allTokens(t, l))

	// end of input is sticky
	_, err := l.Next()
	assert.Equal(t, io.EOF, err)
}

func TestLexerDelimiters(t *testing.T) {
	t.Parallel()
	src := "map<string,.pkg.Type> m=1 [(opt).x=-2.5e3];\noption a/b = x:y"
	l := NewLexer("test.proto", []byte(src), false)
	assert.Equal(t, []string{
		"map", "<", "string", ",", ".pkg.Type", ">", "m", "=", "1",
		"[", "(", "opt", ")", ".x", "=", "-2.5e3", "]", ";",
		"option", "a/b", "=", "x", ":", "y",
	}, allTokens(t, l))
}

func TestLexerStrings(t *testing.T) {
	t.Parallel()
	src := `"a\"b" 'c\td' "\x41\101é\U0001F600" '' "it's"`
	l := NewLexer("test.proto", []byte(src), false)
	assert.Equal(t, []string{
		`"`, `a"b`, `"`,
		`'`, "c\td", `'`,
		`"`, "AAé\U0001F600", `"`,
		`'`, "", `'`,
		`"`, "it's", `"`,
	}, allTokens(t, l))
}

func TestLexerPeekAndPushBack(t *testing.T) {
	t.Parallel()
	l := NewLexer("test.proto", []byte("message Foo\n{ }"), false)

	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, "message", tok)
	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, "message", tok)

	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, "Foo", tok)
	assert.Equal(t, 1, l.Line())
	assert.Equal(t, "test.proto:1:9", l.Pos().String())
	l.PushBack(tok)
	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, "Foo", tok)

	ok, err := l.Skip("{", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, l.Line())
	assert.Equal(t, "test.proto:2:1", l.Pos().String())

	ok, err = l.Skip(";", true)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.Skip(";", false)
	var syntaxErr *reporter.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "}", syntaxErr.Token)
	assert.EqualError(t, err, `test.proto:2:3: unexpected "}", expecting ";"`)

	ok, err = l.Skip("}", false)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = l.Skip("}", false)
	require.ErrorAs(t, err, &syntaxErr)
	assert.True(t, syntaxErr.EOF)
}

func TestLexerErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		src     string
		wantErr error
		wantPos string
	}{
		{name: "unterminated string", src: `x = "abc`, wantErr: ErrUnterminatedString, wantPos: "test.proto:1:5"},
		{name: "newline in string", src: "x = 'abc\n'", wantErr: ErrUnterminatedString, wantPos: "test.proto:1:5"},
		{name: "unterminated comment", src: "x\n  /* abc\n", wantErr: ErrUnterminatedComment, wantPos: "test.proto:2:3"},
		{name: "slash at end", src: "x /", wantErr: ErrIllegalComment, wantPos: "test.proto:1:3"},
		{name: "bad escape", src: `"a\qb"`, wantPos: "test.proto:1:3"},
		{name: "octal out of range", src: `"\477"`, wantPos: "test.proto:1:2"},
		{name: "invalid utf8", src: "x \xff", wantPos: "test.proto:1:3"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			l := NewLexer("test.proto", []byte(test.src), false)
			var err error
			for err == nil {
				_, err = l.Next()
			}
			var lexErr *reporter.LexError
			require.ErrorAs(t, err, &lexErr)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
			}
			assert.Equal(t, test.wantPos, lexErr.Pos.String())

			// errors are sticky
			_, again := l.Next()
			assert.True(t, errors.Is(again, lexErr))
		})
	}
}

func TestLexerLenientComments(t *testing.T) {
	t.Parallel()
	src := `// first line
// second line
message Foo {} // trailing
/* block
 * doc */
enum Bar {}

// detached

service Baz {}
`
	l := NewLexer("test.proto", []byte(src), false)
	expectToken(t, l, "message")
	text, ok := l.TakeLeadingComment()
	require.True(t, ok)
	assert.Equal(t, "first line\nsecond line", text)
	_, ok = l.TakeLeadingComment()
	assert.False(t, ok, "comments are consumed once taken")

	expectToken(t, l, "Foo")
	expectToken(t, l, "{")
	expectToken(t, l, "}")
	text, ok = l.TakeTrailingComment(3)
	require.True(t, ok)
	assert.Equal(t, "trailing", text)

	expectToken(t, l, "enum")
	text, ok = l.TakeLeadingComment()
	require.True(t, ok)
	assert.Equal(t, "block\ndoc", text)

	for _, tok := range []string{"Bar", "{", "}", "service"} {
		expectToken(t, l, tok)
	}
	_, ok = l.TakeLeadingComment()
	assert.False(t, ok)
	require.Len(t, l.Comments(), 1)
	assert.Equal(t, "detached", l.Comments()[0].Text)
	assert.Equal(t, 8, l.Comments()[0].Line)
}

func TestLexerTrailingCommentsDoNotMerge(t *testing.T) {
	t.Parallel()
	src := "int32 a = 1; // about a\n// about b\nint32 b = 2;\n"
	l := NewLexer("test.proto", []byte(src), false)
	for _, tok := range []string{"int32", "a", "=", "1", ";"} {
		expectToken(t, l, tok)
	}
	text, ok := l.TakeTrailingComment(1)
	require.True(t, ok)
	assert.Equal(t, "about a", text)

	expectToken(t, l, "int32")
	text, ok = l.TakeLeadingComment()
	require.True(t, ok)
	assert.Equal(t, "about b", text)
}

func TestLexerStrictComments(t *testing.T) {
	t.Parallel()
	src := `/// doc one
/// doc two
message A {}
// plain
message B {}
/** block doc */
message C {}
/* plain block */
message D {}
int32 x = 1; /// trailing doc
int32 y = 2; /** not trailing */
`
	l := NewLexer("test.proto", []byte(src), true)

	expectToken(t, l, "message")
	text, ok := l.TakeLeadingComment()
	require.True(t, ok)
	assert.Equal(t, "doc one\ndoc two", text)

	for _, tok := range []string{"A", "{", "}", "message"} {
		expectToken(t, l, tok)
	}
	_, ok = l.TakeLeadingComment()
	assert.False(t, ok)

	for _, tok := range []string{"B", "{", "}", "message"} {
		expectToken(t, l, tok)
	}
	text, ok = l.TakeLeadingComment()
	require.True(t, ok)
	assert.Equal(t, "block doc", text)

	for _, tok := range []string{"C", "{", "}", "message"} {
		expectToken(t, l, tok)
	}
	_, ok = l.TakeLeadingComment()
	assert.False(t, ok)

	for _, tok := range []string{"D", "{", "}", "int32", "x", "=", "1", ";"} {
		expectToken(t, l, tok)
	}
	text, ok = l.TakeTrailingComment(10)
	require.True(t, ok)
	assert.Equal(t, "trailing doc", text)

	for _, tok := range []string{"int32", "y", "=", "2", ";"} {
		expectToken(t, l, tok)
	}
	_, ok = l.TakeTrailingComment(11)
	assert.False(t, ok)
}

func expectToken(t *testing.T, l *Lexer, want string) {
	t.Helper()
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, want, tok)
}
