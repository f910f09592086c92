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
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/reporter"
)

var (
	// ErrUnterminatedComment is the underlying error of a *reporter.LexError
	// for a block comment that reaches the end of input.
	ErrUnterminatedComment = errors.New("block comment never terminates, unexpected EOF")
	// ErrUnterminatedString is the underlying error of a *reporter.LexError
	// for a string literal that reaches the end of its line or of input.
	ErrUnterminatedString = errors.New("unterminated string literal")
	// ErrIllegalComment is the underlying error of a *reporter.LexError for
	// a slash that ends the input.
	ErrIllegalComment = errors.New("illegal comment")
)

// Comment is a documentation comment scanned by a Lexer.
type Comment struct {
	// Text is the comment with its markers stripped, one line per
	// source line.
	Text string
	// StartLine and Line are the first and last lines of the comment.
	StartLine, Line int
	// BlockStyle is true for /* */ comments.
	BlockStyle bool
	// Leading is true when no token precedes the comment on its first line.
	Leading bool
	// PrecededByBlankLine is true when only spaces or tabs separate the
	// comment from the start of its line.
	PrecededByBlankLine bool
}

type token struct {
	text   string
	offset int
	line   int
}

var (
	strictCommentPrefix  = regexp.MustCompile(`^ *[*/]+ *`)
	lenientCommentPrefix = regexp.MustCompile(`^\s*\*?/*`)
)

// Lexer splits proto source into string tokens. Punctuation is a token by
// itself, and everything else runs until the next punctuation or whitespace.
// A quote token switches the Lexer into string mode: the following token is
// the unescaped contents of the literal, and the one after that is the
// closing quote.
//
// Documentation comments are collected while scanning and can be claimed by
// the parser with TakeLeadingComment and TakeTrailingComment. In strict mode
// only /// and /** comments are documentation; otherwise all comments are,
// and runs of // lines that start their lines are merged.
type Lexer struct {
	info   *ast.FileInfo
	data   []byte
	strict bool

	offset  int
	line    int
	leading bool

	quote   byte
	pending *token
	stack   []token
	last    token
	err     error

	comments []*Comment
}

// NewLexer creates a lexer over src. The name is only used to report
// positions.
func NewLexer(filename string, src []byte, strict bool) *Lexer {
	l := &Lexer{
		info:    ast.NewFileInfo(filename, src),
		data:    src,
		strict:  strict,
		line:    1,
		leading: true,
		last:    token{line: 1},
	}
	if !utf8.Valid(src) {
		off := 0
		for off < len(src) {
			r, sz := utf8.DecodeRune(src[off:])
			if r == utf8.RuneError && sz <= 1 {
				break
			}
			off += sz
		}
		l.err = &reporter.LexError{Pos: l.info.SourcePos(off), Err: fmt.Errorf("invalid UTF-8 at offset %d: %x", off, src[off])}
	}
	return l
}

// FileInfo returns the line table built so far.
func (l *Lexer) FileInfo() *ast.FileInfo {
	return l.info
}

// Next returns the next token. At the end of input it returns io.EOF. Any
// other error is a *reporter.LexError and is returned again by every later
// call.
func (l *Lexer) Next() (string, error) {
	if len(l.stack) > 0 {
		l.last = l.stack[0]
		l.stack = l.stack[1:]
		return l.last.text, nil
	}
	tok, err := l.scan()
	if err != nil {
		return "", err
	}
	l.last = tok
	return tok.text, nil
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (string, error) {
	tok, err := l.peek()
	return tok.text, err
}

func (l *Lexer) peek() (token, error) {
	if len(l.stack) == 0 {
		tok, err := l.scan()
		if err != nil {
			return token{offset: l.offset, line: l.line}, err
		}
		l.stack = append(l.stack, tok)
	}
	return l.stack[0], nil
}

// PushBack returns tok to the front of the token stream. It is reported at
// the position of the token most recently returned by Next.
func (l *Lexer) PushBack(tok string) {
	pushed := l.last
	pushed.text = tok
	l.stack = append([]token{pushed}, l.stack...)
}

// Skip consumes the next token if it equals expected and reports whether it
// did. A mismatch is a *reporter.SyntaxError unless optional is set.
func (l *Lexer) Skip(expected string, optional bool) (bool, error) {
	tok, err := l.peek()
	switch {
	case err == io.EOF:
		if optional {
			return false, nil
		}
		return false, &reporter.SyntaxError{Pos: l.info.SourcePos(tok.offset), Expected: strconv.Quote(expected), EOF: true}
	case err != nil:
		return false, err
	case tok.text == expected:
		_, err := l.Next()
		return true, err
	case optional:
		return false, nil
	default:
		return false, &reporter.SyntaxError{Pos: l.info.SourcePos(tok.offset), Token: tok.text, Expected: strconv.Quote(expected)}
	}
}

// Line returns the line of the token most recently returned by Next.
func (l *Lexer) Line() int {
	return l.last.line
}

// Pos returns the position of the token most recently returned by Next.
func (l *Lexer) Pos() ast.SourcePos {
	return l.info.SourcePos(l.last.offset)
}

// PeekPos returns the position of the next token, or of the end of input.
func (l *Lexer) PeekPos() ast.SourcePos {
	tok, _ := l.peek()
	return l.info.SourcePos(tok.offset)
}

// TakeLeadingComment claims the documentation comment that ends on the line
// before the current token. In strict mode a /// comment only qualifies if
// it starts its line.
func (l *Lexer) TakeLeadingComment() (string, bool) {
	for i, c := range l.comments {
		if c.Line != l.last.line-1 || !c.Leading {
			continue
		}
		if !l.strict || c.BlockStyle || c.PrecededByBlankLine {
			l.comments = append(l.comments[:i], l.comments[i+1:]...)
			return c.Text, true
		}
	}
	return "", false
}

// TakeTrailingComment claims the documentation comment that starts after a
// token on the given line. In strict mode only /// comments qualify.
func (l *Lexer) TakeTrailingComment(line int) (string, bool) {
	if l.line <= line {
		// scan past any comments on the rest of the line
		_, _ = l.peek()
	}
	for i, c := range l.comments {
		if c.StartLine != line || c.Leading || c.PrecededByBlankLine {
			continue
		}
		if !l.strict || !c.BlockStyle {
			l.comments = append(l.comments[:i], l.comments[i+1:]...)
			return c.Text, true
		}
	}
	return "", false
}

// Comments returns the documentation comments that have been scanned but
// not claimed.
func (l *Lexer) Comments() []*Comment {
	return l.comments
}

func (l *Lexer) errorf(offset int, err error) error {
	l.err = &reporter.LexError{Pos: l.info.SourcePos(offset), Err: err}
	return l.err
}

func (l *Lexer) newline() {
	l.offset++
	l.info.AddLine(l.offset)
	l.line++
	l.leading = true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\f', '\v', '\n':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	if isSpace(c) {
		return true
	}
	return strings.IndexByte(`{}=;:[],'"()<>`, c) >= 0
}

func (l *Lexer) scan() (token, error) {
	if l.err != nil {
		return token{}, l.err
	}
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok, nil
	}
	if l.quote != 0 {
		return l.readString()
	}
	for {
		if l.offset >= len(l.data) {
			return token{}, io.EOF
		}
		c := l.data[l.offset]
		if c == '\n' {
			l.newline()
			continue
		}
		if isSpace(c) {
			l.offset++
			continue
		}
		if c != '/' {
			break
		}
		if l.offset+1 >= len(l.data) {
			return token{}, l.errorf(l.offset, ErrIllegalComment)
		}
		switch l.data[l.offset+1] {
		case '/':
			l.lineComment()
			continue
		case '*':
			if err := l.blockComment(); err != nil {
				return token{}, err
			}
			continue
		}
		tok := token{text: "/", offset: l.offset, line: l.line}
		l.offset++
		l.leading = false
		return tok, nil
	}

	start := l.offset
	if isDelimiter(l.data[l.offset]) {
		l.offset++
	} else {
		for l.offset < len(l.data) && !isDelimiter(l.data[l.offset]) && !l.atComment() {
			l.offset++
		}
	}
	tok := token{text: string(l.data[start:l.offset]), offset: start, line: l.line}
	l.leading = false
	if tok.text == `"` || tok.text == `'` {
		l.quote = tok.text[0]
	}
	return tok, nil
}

func (l *Lexer) atComment() bool {
	return l.data[l.offset] == '/' && l.offset+1 < len(l.data) &&
		(l.data[l.offset+1] == '/' || l.data[l.offset+1] == '*')
}

// startsLine reports whether only spaces and tabs precede offset on its line.
func (l *Lexer) startsLine(offset int) bool {
	for i := offset - 1; i >= 0; i-- {
		switch l.data[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func (l *Lexer) lineEnd(offset int) int {
	for offset < len(l.data) && l.data[offset] != '\n' {
		offset++
	}
	return offset
}

// continuesComment reports whether the line at offset holds only a //
// comment that should be merged with the one before it.
func (l *Lexer) continuesComment(offset int) bool {
	for offset < len(l.data) && (l.data[offset] == ' ' || l.data[offset] == '\t') {
		offset++
	}
	rest := l.data[offset:]
	if l.strict {
		return len(rest) >= 3 && string(rest[:3]) == "///"
	}
	return len(rest) >= 2 && string(rest[:2]) == "//"
}

func (l *Lexer) lineComment() {
	start := l.offset
	doc := !l.strict || (start+2 < len(l.data) && l.data[start+2] == '/')
	c := &Comment{
		StartLine:           l.line,
		Leading:             l.leading,
		PrecededByBlankLine: l.startsLine(start),
	}
	var lines []string
	for {
		end := l.lineEnd(l.offset)
		lines = append(lines, string(l.data[l.offset:end]))
		c.Line = l.line
		l.offset = end
		if l.offset == len(l.data) {
			break
		}
		l.newline()
		if !doc || !c.Leading || !l.continuesComment(l.offset) {
			break
		}
		for l.data[l.offset] != '/' {
			l.offset++
		}
	}
	if doc {
		c.Text = l.commentText(lines)
		l.comments = append(l.comments, c)
	}
}

func (l *Lexer) blockComment() error {
	start := l.offset
	doc := !l.strict || (start+3 < len(l.data) && l.data[start+2] == '*' && l.data[start+3] != '/')
	c := &Comment{
		StartLine:           l.line,
		BlockStyle:          true,
		Leading:             l.leading,
		PrecededByBlankLine: l.startsLine(start),
	}
	l.offset += 2
	for {
		if l.offset+1 >= len(l.data) {
			l.offset = len(l.data)
			return l.errorf(start, ErrUnterminatedComment)
		}
		if l.data[l.offset] == '*' && l.data[l.offset+1] == '/' {
			break
		}
		if l.data[l.offset] == '\n' {
			l.newline()
		} else {
			l.offset++
		}
	}
	body := string(l.data[start+2 : l.offset])
	l.offset += 2
	c.Line = l.line
	if doc {
		c.Text = l.commentText(strings.Split(body, "\n"))
		l.comments = append(l.comments, c)
	}
	return nil
}

func (l *Lexer) commentText(lines []string) string {
	prefix := lenientCommentPrefix
	if l.strict {
		prefix = strictCommentPrefix
	}
	for i, line := range lines {
		lines[i] = strings.TrimSpace(prefix.ReplaceAllString(line, ""))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (l *Lexer) readString() (token, error) {
	quote := l.quote
	l.quote = 0
	start := l.offset
	var buf strings.Builder
	for {
		if l.offset >= len(l.data) || l.data[l.offset] == '\n' {
			return token{}, l.errorf(start-1, ErrUnterminatedString)
		}
		c, sz := utf8.DecodeRune(l.data[l.offset:])
		escapeAt := l.offset
		l.offset += sz
		switch c {
		case rune(quote):
			l.pending = &token{text: string(quote), offset: l.offset - 1, line: l.line}
			return token{text: buf.String(), offset: start, line: l.line}, nil
		case 0:
			return token{}, l.errorf(escapeAt, errors.New("null character ('\\0') not allowed in string literal"))
		case '\\':
			if err := l.readEscape(&buf); err != nil {
				return token{}, l.errorf(escapeAt, err)
			}
		default:
			buf.WriteRune(c)
		}
	}
}

func (l *Lexer) readRune() (rune, error) {
	if l.offset >= len(l.data) || l.data[l.offset] == '\n' {
		return 0, ErrUnterminatedString
	}
	c, sz := utf8.DecodeRune(l.data[l.offset:])
	l.offset += sz
	return c, nil
}

func (l *Lexer) unreadRune(c rune) {
	l.offset -= utf8.RuneLen(c)
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isOctal(c rune) bool {
	return c >= '0' && c <= '7'
}

func (l *Lexer) readEscape(buf *strings.Builder) error {
	c, err := l.readRune()
	if err != nil {
		return err
	}
	switch {
	case c == 'x' || c == 'X':
		hex := make([]rune, 0, 2)
		for len(hex) < 2 {
			c, err := l.readRune()
			if err != nil {
				return err
			}
			if !isHex(c) {
				l.unreadRune(c)
				break
			}
			hex = append(hex, c)
		}
		i, err := strconv.ParseUint(string(hex), 16, 8)
		if err != nil {
			return fmt.Errorf("invalid hex escape: \\x%q", string(hex))
		}
		buf.WriteByte(byte(i))
	case isOctal(c):
		octal := []rune{c}
		for len(octal) < 3 {
			c, err := l.readRune()
			if err != nil {
				return err
			}
			if !isOctal(c) {
				l.unreadRune(c)
				break
			}
			octal = append(octal, c)
		}
		i, _ := strconv.ParseUint(string(octal), 8, 16)
		if i > 0xff {
			return fmt.Errorf("octal escape is out range, must be between 0 and 377: \\%s", string(octal))
		}
		buf.WriteByte(byte(i))
	case c == 'u' || c == 'U':
		n := 4
		if c == 'U' {
			n = 8
		}
		u := make([]rune, n)
		for i := range u {
			if u[i], err = l.readRune(); err != nil {
				return err
			}
		}
		i, err := strconv.ParseUint(string(u), 16, 32)
		if err != nil {
			return fmt.Errorf("invalid unicode escape: \\%c%s", c, string(u))
		}
		if i > utf8.MaxRune {
			return fmt.Errorf("unicode escape is out of range, must be between 0 and 0x10ffff: \\%c%s", c, string(u))
		}
		buf.WriteRune(rune(i))
	default:
		simple, ok := simpleEscapes[c]
		if !ok {
			return fmt.Errorf("invalid escape sequence: %q", "\\"+string(c))
		}
		buf.WriteByte(simple)
	}
	return nil
}

var simpleEscapes = map[rune]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'?':  '?',
}
