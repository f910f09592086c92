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

package reporter

import (
	"errors"
	"fmt"

	"github.com/bufbuild/protoschema/ast"
)

// ErrInvalidSource is a sentinel error that is returned by calls to
// parser.Parse and Compiler.Compile in the event that errors are
// encountered, but the configured ErrorReporter always returns nil.
var ErrInvalidSource = errors.New("parse failed: invalid proto source")

var (
	// ErrUnexpectedToken is the underlying error of every *SyntaxError.
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrUnresolvedType is the underlying error of every *ResolutionError.
	ErrUnresolvedType = errors.New("unresolvable type reference")
)

// ErrorWithPos is an error about a proto source file that includes information
// about the location in the file that caused the error.
//
// The value of Error() will contain both the SourcePos and Underlying error.
// The value of Unwrap() will only be the Underlying error.
type ErrorWithPos interface {
	error
	GetPosition() ast.SourcePos
	Unwrap() error
}

func Error(pos ast.SourcePos, err error) ErrorWithPos {
	return errorWithSourcePos{pos: pos, underlying: err}
}

func Errorf(pos ast.SourcePos, format string, args ...interface{}) ErrorWithPos {
	return errorWithSourcePos{pos: pos, underlying: fmt.Errorf(format, args...)}
}

// errorWithSourcePos is an error about a proto source file that includes
// information about the location in the file that caused the error. It is
// used for warnings and for errors that do not fit one of the more specific
// kinds below.
type errorWithSourcePos struct {
	underlying error
	pos        ast.SourcePos
}

func (e errorWithSourcePos) Error() string {
	sourcePos := e.GetPosition()
	return fmt.Sprintf("%s: %v", sourcePos, e.underlying)
}

// GetPosition implements the ErrorWithPos interface, supplying a location in
// proto source that caused the error.
func (e errorWithSourcePos) GetPosition() ast.SourcePos {
	return e.pos
}

// Unwrap implements the ErrorWithPos interface, supplying the underlying
// error. This error will not include location information.
func (e errorWithSourcePos) Unwrap() error {
	return e.underlying
}

// LexError reports malformed input found while scanning: an unterminated
// comment or string, a bad escape sequence, or an invalid character. Pos is
// where the offending construct started.
type LexError struct {
	Pos ast.SourcePos
	Err error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *LexError) GetPosition() ast.SourcePos {
	return e.Pos
}

func (e *LexError) Unwrap() error {
	return e.Err
}

// SyntaxError reports a token that the grammar does not allow at its
// location. Token is empty and EOF is true when input ended prematurely.
type SyntaxError struct {
	Pos      ast.SourcePos
	Token    string
	Expected string
	EOF      bool
}

func (e *SyntaxError) Error() string {
	found := fmt.Sprintf("%q", e.Token)
	if e.EOF {
		found = "end of input"
	}
	if e.Expected == "" {
		return fmt.Sprintf("%s: unexpected %s", e.Pos, found)
	}
	return fmt.Sprintf("%s: unexpected %s, expecting %s", e.Pos, found, e.Expected)
}

func (e *SyntaxError) GetPosition() ast.SourcePos {
	return e.Pos
}

func (e *SyntaxError) Unwrap() error {
	return ErrUnexpectedToken
}

// SemanticError reports input that is grammatically valid but violates a
// rule of the schema model, such as a duplicate name or a reserved id.
type SemanticError struct {
	Pos ast.SourcePos
	Err error
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *SemanticError) GetPosition() ast.SourcePos {
	return e.Pos
}

func (e *SemanticError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a type reference that could not be found by
// searching outward from Scope.
type ResolutionError struct {
	Pos   ast.SourcePos
	Name  string
	Scope string
}

func (e *ResolutionError) Error() string {
	scope := e.Scope
	if scope == "" {
		scope = "root scope"
	}
	return fmt.Sprintf("%s: invalid type %q: not found in %s", e.Pos, e.Name, scope)
}

func (e *ResolutionError) GetPosition() ast.SourcePos {
	return e.Pos
}

func (e *ResolutionError) Unwrap() error {
	return ErrUnresolvedType
}

var (
	_ ErrorWithPos = errorWithSourcePos{}
	_ ErrorWithPos = (*LexError)(nil)
	_ ErrorWithPos = (*SyntaxError)(nil)
	_ ErrorWithPos = (*SemanticError)(nil)
	_ ErrorWithPos = (*ResolutionError)(nil)
)
