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
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/internal/cases"
	"github.com/bufbuild/protoschema/reporter"
	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/types"
)

var (
	base10Re      = regexp.MustCompile(`^[1-9][0-9]*$`)
	base10NegRe   = regexp.MustCompile(`^-?[1-9][0-9]*$`)
	base16Re      = regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`)
	base16NegRe   = regexp.MustCompile(`^-?0[xX][0-9a-fA-F]+$`)
	base8Re       = regexp.MustCompile(`^0[0-7]+$`)
	base8NegRe    = regexp.MustCompile(`^-?0[0-7]+$`)
	numberRe      = regexp.MustCompile(`^[0-9]*(?:\.[0-9]*)?(?:[eE][+-]?[0-9]+)?$`)
	nameRe        = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*$`)
	optionNameRe  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*(?:\.[a-zA-Z_][a-zA-Z_0-9]*)*$`)
	typeRefRe     = regexp.MustCompile(`^\.?[a-zA-Z_][a-zA-Z_0-9]*(?:\.[a-zA-Z_][a-zA-Z_0-9]*)*$`)
	fqTypeRefRe   = regexp.MustCompile(`^(?:\.[a-zA-Z_][a-zA-Z_0-9]*)+$`)
	utf8Bom       = []byte{0xEF, 0xBB, 0xBF}
	topLevelDecls = `"message", "enum", "service", "extend", or "option"`
)

// Options configures Parse. The zero value keeps names as written, treats
// every comment as documentation, and resolves types strictly.
type Options struct {
	// CamelCase converts field and oneof names to camelCase.
	CamelCase bool
	// StrictComments only treats /// and /** comments as documentation.
	StrictComments bool
	// ResolveMode controls how type references are resolved once the file
	// has been read.
	ResolveMode schema.ResolveMode
}

// Result is a parsed file.
type Result struct {
	Filename string
	// Package is empty if the file has no package statement.
	Package string
	// Imports lists regular and public imports in order. Public imports are
	// listed again in PublicImports.
	Imports       []string
	PublicImports []string
	WeakImports   []string
	// Syntax is "proto2", "proto3", or empty if the file has no syntax
	// statement.
	Syntax string
	// Options holds the file-level options.
	Options *schema.Options
	Root    *schema.Root
}

// Parse reads proto source from r and builds its schema tree. The filename is
// used in source positions. Parsing stops at the first error, which is passed
// to handler; a nil handler returns errors as is.
func Parse(filename string, r io.Reader, handler *reporter.Handler, opts Options) (*Result, error) {
	if handler == nil {
		handler = reporter.NewHandler(nil)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// if file has UTF8 byte order marker preface, consume it
	data = bytes.TrimPrefix(data, utf8Bom)

	p := &parser{
		lx:      NewLexer(filename, data, opts.StrictComments),
		opts:    opts,
		handler: handler,
		res: &Result{
			Filename: filename,
			Options:  &schema.Options{},
			Root:     schema.NewRoot(),
		},
	}
	p.ptr = p.res.Root
	if err := p.parseFile(); err != nil {
		_ = handler.HandleError(err)
		return nil, handler.Error()
	}
	if err := schema.Resolve(p.res.Root, opts.ResolveMode); err != nil {
		_ = handler.HandleError(err)
		return nil, handler.Error()
	}
	return p.res, nil
}

// ParseString parses src with no reporter.
func ParseString(filename, src string, opts Options) (*Result, error) {
	return Parse(filename, strings.NewReader(src), nil, opts)
}

// scope is a node that declarations can be added to.
type scope interface {
	schema.Node
	Add(child schema.Node) error
}

// container receives parsed fields.
type container interface {
	Add(child schema.Node) error
}

type oneofMembers struct {
	oneof *schema.OneOf
}

func (m oneofMembers) Add(child schema.Node) error {
	f, ok := child.(*schema.Field)
	if !ok {
		return fmt.Errorf("%w: oneof %q can only hold fields", schema.ErrInvalidChild, m.oneof.Name())
	}
	return m.oneof.Add(f)
}

// documented is anything a doc comment can be attached to.
type documented interface {
	Comment() string
	SetComment(comment string)
}

// enumValueDecl collects the parts of an enum value declaration before the
// value is added to its enum.
type enumValueDecl struct {
	comment string
	options schema.Options
}

func (d *enumValueDecl) Comment() string {
	return d.comment
}

func (d *enumValueDecl) SetComment(comment string) {
	d.comment = comment
}

type parser struct {
	lx      *Lexer
	opts    Options
	handler *reporter.Handler
	res     *Result

	ptr    scope
	proto3 bool
}

func (p *parser) next(expected string) (string, error) {
	tok, err := p.lx.Next()
	if err == io.EOF {
		return "", &reporter.SyntaxError{Pos: p.lx.PeekPos(), Expected: expected, EOF: true}
	}
	return tok, err
}

// peek returns the next token, or an empty string at the end of input.
func (p *parser) peek() (string, error) {
	tok, err := p.lx.Peek()
	if err == io.EOF {
		return "", nil
	}
	return tok, err
}

func (p *parser) skip(tok string) error {
	_, err := p.lx.Skip(tok, false)
	return err
}

func (p *parser) maybe(tok string) (bool, error) {
	return p.lx.Skip(tok, true)
}

// unexpected reports the token most recently read.
func (p *parser) unexpected(tok, expected string) error {
	return &reporter.SyntaxError{Pos: p.lx.Pos(), Token: tok, Expected: expected}
}

func (p *parser) semantic(pos ast.SourcePos, err error) error {
	return &reporter.SemanticError{Pos: pos, Err: err}
}

func (p *parser) add(parent container, child schema.Node) error {
	if err := parent.Add(child); err != nil {
		return p.semantic(child.Pos(), err)
	}
	return nil
}

func (p *parser) applyCase(name string) string {
	if p.opts.CamelCase {
		return cases.CamelCase(name)
	}
	return name
}

func (p *parser) readName(expected string) (string, ast.SourcePos, error) {
	tok, err := p.next(expected)
	if err != nil {
		return "", ast.SourcePos{}, err
	}
	if !nameRe.MatchString(tok) {
		return "", ast.SourcePos{}, p.unexpected(tok, expected)
	}
	return tok, p.lx.Pos(), nil
}

func (p *parser) readTypeRef(expected string) (string, error) {
	tok, err := p.next(expected)
	if err != nil {
		return "", err
	}
	if !typeRefRe.MatchString(tok) {
		return "", p.unexpected(tok, expected)
	}
	return tok, nil
}

// readString reads a string literal. Adjacent literals are concatenated.
func (p *parser) readString() (string, error) {
	var parts []string
	for {
		quote, err := p.next("string literal")
		if err != nil {
			return "", err
		}
		if quote != `"` && quote != `'` {
			return "", p.unexpected(quote, "string literal")
		}
		content, err := p.next("string literal")
		if err != nil {
			return "", err
		}
		if err := p.skip(quote); err != nil {
			return "", err
		}
		parts = append(parts, content)
		tok, err := p.peek()
		if err != nil {
			return "", err
		}
		if tok != `"` && tok != `'` {
			return strings.Join(parts, ""), nil
		}
	}
}

// readID reads a field number, an enum number if negative is set, or the
// keyword max.
func (p *parser) readID(negative bool) (int32, error) {
	tok, err := p.next("id")
	if err != nil {
		return 0, err
	}
	switch tok {
	case "max", "MAX", "Max":
		if negative {
			return math.MaxInt32, nil
		}
		return schema.MaxFieldID, nil
	case "0":
		return 0, nil
	}
	if !negative && strings.HasPrefix(tok, "-") {
		return 0, p.unexpected(tok, "non-negative id")
	}
	if !base10NegRe.MatchString(tok) && !base16NegRe.MatchString(tok) && !base8NegRe.MatchString(tok) {
		return 0, p.unexpected(tok, "id")
	}
	id, err := strconv.ParseInt(tok, 0, 32)
	if err != nil {
		return 0, p.unexpected(tok, "32-bit id")
	}
	return int32(id), nil
}

// parseNumber interprets tok as a numeric option value. Integers become
// int64, or uint64 if they only fit unsigned; everything else is float64.
func parseNumber(tok string) (any, bool) {
	s := tok
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	sign := 1.0
	if neg {
		sign = -1
	}
	switch s {
	case "inf", "INF", "Inf":
		return math.Inf(int(sign)), true
	case "nan", "NAN", "Nan", "NaN":
		return math.NaN(), true
	case "0":
		return int64(0), true
	}
	if base10Re.MatchString(s) || base16Re.MatchString(s) || base8Re.MatchString(s) {
		u, err := strconv.ParseUint(s, 0, 64)
		switch {
		case err == nil && !neg && u <= math.MaxInt64:
			return int64(u), true
		case err == nil && !neg:
			return u, true
		case err == nil && u <= 1<<63:
			return -int64(u), true
		}
		if base16Re.MatchString(s) || base8Re.MatchString(s) {
			return nil, false
		}
	}
	if s == "" || s[0] == 'e' || s[0] == 'E' || !numberRe.MatchString(s) {
		return nil, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, false
	}
	return sign * f, true
}

func (p *parser) readValue() (any, error) {
	tok, err := p.next("option value")
	if err != nil {
		return nil, err
	}
	switch tok {
	case `"`, `'`:
		p.lx.PushBack(tok)
		return p.readString()
	case "true", "TRUE":
		return true, nil
	case "false", "FALSE":
		return false, nil
	}
	if v, ok := parseNumber(tok); ok {
		return v, nil
	}
	if typeRefRe.MatchString(tok) {
		return schema.Ident(tok), nil
	}
	return nil, p.unexpected(tok, "option value")
}

func (p *parser) parseFile() error {
	head := true
	for {
		tok, err := p.lx.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch tok {
		case "package", "import", "syntax":
			if !head {
				return p.unexpected(tok, topLevelDecls)
			}
			switch tok {
			case "package":
				err = p.parsePackage()
			case "import":
				err = p.parseImport()
			default:
				err = p.parseSyntax()
			}
		case "option":
			err = p.optionStatement(p.res.Options)(tok)
		case ";":
		default:
			var ok bool
			ok, err = p.parseCommon(p.ptr, tok)
			if err == nil && !ok {
				return p.unexpected(tok, topLevelDecls)
			}
			head = false
		}
		if err != nil {
			return err
		}
	}
	if p.res.Syntax == "" {
		p.handler.HandleWarning(p.lx.FileInfo().SourcePos(0), ErrNoSyntax)
	}
	return nil
}

func (p *parser) parsePackage() error {
	pos := p.lx.Pos()
	if p.res.Package != "" {
		return p.semantic(pos, fmt.Errorf("%w: %q", ErrDuplicatePackage, p.res.Package))
	}
	pkg, err := p.next("package name")
	if err != nil {
		return err
	}
	if !optionNameRe.MatchString(pkg) {
		return p.unexpected(pkg, "package name")
	}
	ns, err := p.res.Root.Define(pkg)
	if err != nil {
		return p.semantic(p.lx.Pos(), err)
	}
	ns.SetPos(p.lx.Pos())
	p.ptr = ns
	p.res.Package = pkg
	return p.skip(";")
}

func (p *parser) parseImport() error {
	kind, err := p.peek()
	if err != nil {
		return err
	}
	switch kind {
	case "weak", "public":
		if _, err := p.lx.Next(); err != nil {
			return err
		}
	default:
		kind = ""
	}
	path, err := p.readString()
	if err != nil {
		return err
	}
	if err := p.skip(";"); err != nil {
		return err
	}
	switch kind {
	case "weak":
		p.res.WeakImports = append(p.res.WeakImports, path)
	case "public":
		p.res.PublicImports = append(p.res.PublicImports, path)
		p.res.Imports = append(p.res.Imports, path)
	default:
		p.res.Imports = append(p.res.Imports, path)
	}
	return nil
}

func (p *parser) parseSyntax() error {
	if err := p.skip("="); err != nil {
		return err
	}
	pos := p.lx.PeekPos()
	syntax, err := p.readString()
	if err != nil {
		return err
	}
	if syntax != "proto2" && syntax != "proto3" {
		return p.semantic(pos, fmt.Errorf("%w: %q; must be \"proto2\" or \"proto3\"", ErrInvalidSyntax, syntax))
	}
	p.res.Syntax = syntax
	p.proto3 = syntax == "proto3"
	return p.skip(";")
}

// parseCommon handles the declarations allowed both at file level and in
// message bodies. It reports false if tok does not start one.
func (p *parser) parseCommon(parent scope, tok string) (bool, error) {
	var err error
	switch tok {
	case "option":
		err = p.optionStatement(parent.Options())(tok)
	case "message":
		err = p.parseMessage(parent)
	case "enum":
		err = p.parseEnum(parent)
	case "service":
		err = p.parseService(parent)
	case "extend":
		err = p.parseExtend(parent)
	default:
		return false, nil
	}
	return true, err
}

// ifBlock parses either a braced body, handing each statement's first token
// to body, or the inline remainder of a statement followed by a semicolon.
// A leading doc comment is attached to doc, or failing that in the inline
// case, a trailing one.
func (p *parser) ifBlock(doc documented, body func(tok string) error, inline func() error) error {
	trailingLine := p.lx.Line()
	if doc != nil && doc.Comment() == "" {
		if text, ok := p.lx.TakeLeadingComment(); ok {
			doc.SetComment(text)
		}
	}
	block, err := p.maybe("{")
	if err != nil {
		return err
	}
	if block {
		for {
			tok, err := p.next(`"}"`)
			if err != nil {
				return err
			}
			if tok == "}" {
				break
			}
			if tok == ";" {
				continue
			}
			if err := body(tok); err != nil {
				return err
			}
		}
		_, err := p.maybe(";")
		return err
	}
	if inline != nil {
		if err := inline(); err != nil {
			return err
		}
	}
	if err := p.skip(";"); err != nil {
		return err
	}
	if doc != nil && doc.Comment() == "" {
		if text, ok := p.lx.TakeTrailingComment(trailingLine); ok {
			doc.SetComment(text)
		}
	}
	return nil
}

// optionStatement returns a block body that accepts only option statements.
func (p *parser) optionStatement(opts *schema.Options) func(string) error {
	return func(tok string) error {
		if tok != "option" {
			return p.unexpected(tok, `"option"`)
		}
		if err := p.parseOption(opts); err != nil {
			return err
		}
		return p.skip(";")
	}
}

func (p *parser) inlineOptions(opts *schema.Options) func() error {
	return func() error {
		ok, err := p.maybe("[")
		if err != nil || !ok {
			return err
		}
		for {
			if err := p.parseOption(opts); err != nil {
				return err
			}
			more, err := p.maybe(",")
			if err != nil {
				return err
			}
			if !more {
				break
			}
		}
		return p.skip("]")
	}
}

func (p *parser) parseOption(opts *schema.Options) error {
	custom, err := p.maybe("(")
	if err != nil {
		return err
	}
	name, err := p.next("option name")
	if err != nil {
		return err
	}
	if custom {
		if !typeRefRe.MatchString(name) {
			return p.unexpected(name, "option name")
		}
		if err := p.skip(")"); err != nil {
			return err
		}
		name = "(" + name + ")"
		path, err := p.peek()
		if err != nil {
			return err
		}
		if fqTypeRefRe.MatchString(path) {
			name += path
			if _, err := p.lx.Next(); err != nil {
				return err
			}
		}
	} else if !optionNameRe.MatchString(name) {
		return p.unexpected(name, "option name")
	}
	if err := p.skip("="); err != nil {
		return err
	}
	return p.parseOptionValue(opts, name)
}

// parseOptionValue stores a scalar value under name, or for a braced
// aggregate value, each of its fields under name.field.
func (p *parser) parseOptionValue(opts *schema.Options, name string) error {
	block, err := p.maybe("{")
	if err != nil {
		return err
	}
	if !block {
		v, err := p.readValue()
		if err != nil {
			return err
		}
		opts.Set(name, v, false)
		return nil
	}
	for {
		done, err := p.maybe("}")
		if err != nil || done {
			return err
		}
		field, err := p.next("option field name")
		if err != nil {
			return err
		}
		if !nameRe.MatchString(field) {
			return p.unexpected(field, "option field name")
		}
		full := name + "." + field
		nested, err := p.maybe("{")
		if err != nil {
			return err
		}
		if nested {
			p.lx.PushBack("{")
		} else {
			if err := p.skip(":"); err != nil {
				return err
			}
		}
		if err := p.parseOptionValue(opts, full); err != nil {
			return err
		}
		if _, err := p.maybe(","); err != nil {
			return err
		}
		if _, err := p.maybe(";"); err != nil {
			return err
		}
	}
}

func (p *parser) parseMessage(parent scope) error {
	name, pos, err := p.readName("message name")
	if err != nil {
		return err
	}
	msg := schema.NewMessage(name)
	msg.SetPos(pos)
	err = p.ifBlock(msg, func(tok string) error {
		return p.parseMessageElement(msg, tok)
	}, nil)
	if err != nil {
		return err
	}
	return p.add(parent, msg)
}

func (p *parser) parseMessageElement(msg *schema.Message, tok string) error {
	if ok, err := p.parseCommon(msg, tok); ok || err != nil {
		return err
	}
	switch tok {
	case "map":
		return p.parseMapField(msg)
	case "required", "optional", "repeated":
		return p.parseField(msg, msg, tok, "")
	case "oneof":
		return p.parseOneOf(msg)
	case "extensions":
		return p.readRanges(false, false, func(r schema.Reserved) error {
			return msg.AddExtensionRange(r.Range)
		})
	case "reserved":
		return p.readRanges(true, false, msg.AddReserved)
	default:
		if !p.proto3 || !typeRefRe.MatchString(tok) {
			return p.unexpected(tok, "message element")
		}
		p.lx.PushBack(tok)
		return p.parseField(msg, msg, "optional", "")
	}
}

// parseField parses a field declaration following its rule keyword and adds
// it to parent. The message declared by a group goes to declScope.
func (p *parser) parseField(parent container, declScope scope, rule, extend string) error {
	typ, err := p.next("field type")
	if err != nil {
		return err
	}
	if typ == "group" {
		return p.parseGroup(parent, declScope, rule, extend)
	}
	if !typeRefRe.MatchString(typ) {
		return p.unexpected(typ, "field type")
	}
	name, pos, err := p.readName("field name")
	if err != nil {
		return err
	}
	if err := p.skip("="); err != nil {
		return err
	}
	id, err := p.readID(false)
	if err != nil {
		return err
	}
	field, err := p.newField(p.applyCase(name), id, typ, rule, extend, pos)
	if err != nil {
		return err
	}
	opts := field.Options()
	if err := p.ifBlock(field, p.optionStatement(opts), p.inlineOptions(opts)); err != nil {
		return err
	}
	if err := p.add(parent, field); err != nil {
		return err
	}
	if !p.proto3 && field.Repeated() {
		_, packable := types.Packed[typ]
		_, basic := types.Basic[typ]
		if packable || !basic {
			opts.Set("packed", false, true)
		}
	}
	return nil
}

func (p *parser) newField(name string, id int32, typ, rule, extend string, pos ast.SourcePos) (*schema.Field, error) {
	r, err := schema.ParseRule(rule)
	if err != nil {
		return nil, p.semantic(pos, err)
	}
	if r == schema.RuleRequired && p.proto3 {
		p.handler.HandleWarning(pos, ErrRequiredInProto3)
	}
	field, err := schema.NewField(name, id, typ, r, extend)
	if err != nil {
		return nil, p.semantic(pos, err)
	}
	field.SetPos(pos)
	return field, nil
}

func (p *parser) parseGroup(parent container, declScope scope, rule, extend string) error {
	if p.proto3 {
		return p.unexpected("group", "field type; groups are not supported in proto3")
	}
	name, pos, err := p.readName("group name")
	if err != nil {
		return err
	}
	fieldName := cases.LowerFirst(name)
	if name == fieldName {
		name = cases.UpperFirst(name)
	}
	if err := p.skip("="); err != nil {
		return err
	}
	id, err := p.readID(false)
	if err != nil {
		return err
	}
	msg := schema.NewMessage(name)
	msg.Group = true
	msg.SetPos(pos)
	field, err := p.newField(fieldName, id, name, rule, extend, pos)
	if err != nil {
		return err
	}
	err = p.ifBlock(msg, func(tok string) error {
		switch tok {
		case "option":
			return p.optionStatement(msg.Options())(tok)
		case "required", "optional", "repeated":
			return p.parseField(msg, msg, tok, "")
		default:
			return p.unexpected(tok, "group field")
		}
	}, nil)
	if err != nil {
		return err
	}
	if err := p.add(declScope, msg); err != nil {
		return err
	}
	return p.add(parent, field)
}

func (p *parser) parseMapField(msg *schema.Message) error {
	if err := p.skip("<"); err != nil {
		return err
	}
	key, err := p.next("map key type")
	if err != nil {
		return err
	}
	if _, ok := types.MapKey[key]; !ok {
		return p.unexpected(key, "map key type")
	}
	if err := p.skip(","); err != nil {
		return err
	}
	value, err := p.readTypeRef("map value type")
	if err != nil {
		return err
	}
	if err := p.skip(">"); err != nil {
		return err
	}
	name, pos, err := p.readName("field name")
	if err != nil {
		return err
	}
	if err := p.skip("="); err != nil {
		return err
	}
	id, err := p.readID(false)
	if err != nil {
		return err
	}
	field, err := schema.NewMapField(p.applyCase(name), id, key, value)
	if err != nil {
		return p.semantic(pos, err)
	}
	field.SetPos(pos)
	opts := field.Options()
	if err := p.ifBlock(field, p.optionStatement(opts), p.inlineOptions(opts)); err != nil {
		return err
	}
	return p.add(msg, field)
}

func (p *parser) parseOneOf(msg *schema.Message) error {
	name, pos, err := p.readName("oneof name")
	if err != nil {
		return err
	}
	oneof := schema.NewOneOf(p.applyCase(name))
	oneof.SetPos(pos)
	members := oneofMembers{oneof: oneof}
	err = p.ifBlock(oneof, func(tok string) error {
		switch tok {
		case "option":
			return p.optionStatement(oneof.Options())(tok)
		case "required", "optional", "repeated":
			return p.unexpected(tok, "oneof field type")
		}
		p.lx.PushBack(tok)
		return p.parseField(members, msg, "optional", "")
	}, nil)
	if err != nil {
		return err
	}
	return p.add(msg, oneof)
}

func (p *parser) parseEnum(parent scope) error {
	name, pos, err := p.readName("enum name")
	if err != nil {
		return err
	}
	enum := schema.NewEnum(name)
	enum.SetPos(pos)
	err = p.ifBlock(enum, func(tok string) error {
		switch tok {
		case "option":
			return p.optionStatement(enum.Options())(tok)
		case "reserved":
			return p.readRanges(true, true, enum.AddReserved)
		default:
			return p.parseEnumValue(enum, tok)
		}
	}, nil)
	if err != nil {
		return err
	}
	return p.add(parent, enum)
}

func (p *parser) parseEnumValue(enum *schema.Enum, name string) error {
	if !nameRe.MatchString(name) {
		return p.unexpected(name, "enum value name")
	}
	pos := p.lx.Pos()
	if err := p.skip("="); err != nil {
		return err
	}
	id, err := p.readID(true)
	if err != nil {
		return err
	}
	decl := &enumValueDecl{}
	if err := p.ifBlock(decl, p.optionStatement(&decl.options), p.inlineOptions(&decl.options)); err != nil {
		return err
	}
	v, err := enum.AddValue(name, id, decl.comment)
	if err != nil {
		return p.semantic(pos, err)
	}
	v.Options = decl.options
	v.Pos = pos
	return nil
}

// readRanges reads a comma-separated list of ids, id ranges, and, if names
// is set, quoted names, up to the closing semicolon.
func (p *parser) readRanges(names, negative bool, add func(schema.Reserved) error) error {
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		pos := p.lx.PeekPos()
		var r schema.Reserved
		if names && (tok == `"` || tok == `'`) {
			if r.Name, err = p.readString(); err != nil {
				return err
			}
		} else {
			if r.Range.Start, err = p.readID(negative); err != nil {
				return err
			}
			r.Range.End = r.Range.Start
			to, err := p.maybe("to")
			if err != nil {
				return err
			}
			if to {
				if r.Range.End, err = p.readID(negative); err != nil {
					return err
				}
			}
		}
		if err := add(r); err != nil {
			return p.semantic(pos, err)
		}
		more, err := p.maybe(",")
		if err != nil {
			return err
		}
		if !more {
			return p.skip(";")
		}
	}
}

func (p *parser) parseService(parent scope) error {
	name, pos, err := p.readName("service name")
	if err != nil {
		return err
	}
	svc := schema.NewService(name)
	svc.SetPos(pos)
	err = p.ifBlock(svc, func(tok string) error {
		switch tok {
		case "option":
			return p.optionStatement(svc.Options())(tok)
		case "rpc":
			return p.parseMethod(svc)
		default:
			return p.unexpected(tok, `"option" or "rpc"`)
		}
	}, nil)
	if err != nil {
		return err
	}
	return p.add(parent, svc)
}

func (p *parser) parseMethod(svc *schema.Service) error {
	comment, hasComment := p.lx.TakeLeadingComment()
	name, pos, err := p.readName("method name")
	if err != nil {
		return err
	}
	if err := p.skip("("); err != nil {
		return err
	}
	reqStream, err := p.maybe("stream")
	if err != nil {
		return err
	}
	req, err := p.readTypeRef("request type")
	if err != nil {
		return err
	}
	for _, tok := range []string{")", "returns", "("} {
		if err := p.skip(tok); err != nil {
			return err
		}
	}
	respStream, err := p.maybe("stream")
	if err != nil {
		return err
	}
	resp, err := p.readTypeRef("response type")
	if err != nil {
		return err
	}
	if err := p.skip(")"); err != nil {
		return err
	}
	method := schema.NewMethod(name, req, resp, reqStream, respStream)
	method.SetPos(pos)
	if hasComment {
		method.SetComment(comment)
	}
	if err := p.ifBlock(method, p.optionStatement(method.Options()), nil); err != nil {
		return err
	}
	return p.add(svc, method)
}

// parseExtend parses an extend block. Its fields are declared in parent.
func (p *parser) parseExtend(parent scope) error {
	extendee, err := p.readTypeRef("extended type")
	if err != nil {
		return err
	}
	return p.ifBlock(nil, func(tok string) error {
		switch tok {
		case "required", "optional", "repeated":
			return p.parseField(parent, parent, tok, extendee)
		}
		if !p.proto3 || !typeRefRe.MatchString(tok) {
			return p.unexpected(tok, "extension field")
		}
		p.lx.PushBack(tok)
		return p.parseField(parent, parent, "optional", extendee)
	}, nil)
}
