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

package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bufbuild/protoschema/ast"
)

var (
	ErrDuplicateName    = errors.New("duplicate name")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrReservedID       = errors.New("id is reserved")
	ErrReservedName     = errors.New("name is reserved")
	ErrInvalidRule      = errors.New("invalid rule")
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidChild     = errors.New("invalid child")
	ErrInvalidRange     = errors.New("invalid range")
	ErrOverlappingRange = errors.New("overlapping range")
	ErrPathConflict     = errors.New("path conflicts with existing declaration")
	ErrAlreadyAttached  = errors.New("node is already attached")
)

// Node is an element of a schema tree. The set of implementations is closed:
// *Root, *Namespace, *Message, *Enum, *Service, *Field, *OneOf, and *Method.
// Code that needs to distinguish them uses a type switch.
type Node interface {
	// Name returns the simple name of the node. The root's name is empty.
	Name() string
	// FullName returns the dot-separated names of the node's ancestors and
	// the node itself, starting with the root's empty name, so that the
	// result has a leading dot, e.g. ".example.Person". The result is only
	// meaningful once the node is attached to a root; it is cached from then
	// on.
	FullName() string
	// Parent returns the node this one is attached to, or nil.
	Parent() Node
	// Comment returns the documentation comment attached to the node.
	Comment() string
	// SetComment replaces the documentation comment.
	SetComment(comment string)
	// Options returns the node's option table. It is never nil.
	Options() *Options
	// Pos returns the location of the declaration in source, if known.
	Pos() ast.SourcePos
	// SetPos records the location of the declaration in source.
	SetPos(pos ast.SourcePos)

	base() *object
}

// object holds the attributes shared by all nodes.
type object struct {
	name     string
	options  Options
	comment  string
	fullName string
	// parent is a back-reference; ownership runs from parent to child
	// through the parent's collections.
	parent Node
	pos    ast.SourcePos
}

func (o *object) base() *object {
	return o
}

func (o *object) Name() string {
	return o.name
}

func (o *object) Parent() Node {
	return o.parent
}

func (o *object) Comment() string {
	return o.comment
}

func (o *object) SetComment(comment string) {
	o.comment = comment
}

func (o *object) Options() *Options {
	return &o.options
}

func (o *object) Pos() ast.SourcePos {
	return o.pos
}

func (o *object) SetPos(pos ast.SourcePos) {
	o.pos = pos
}

func (o *object) FullName() string {
	if o.fullName != "" {
		return o.fullName
	}
	path := []string{o.name}
	var top Node
	for ptr := o.parent; ptr != nil; ptr = ptr.Parent() {
		path = append(path, ptr.Name())
		top = ptr
	}
	if top == nil && o.name == "" {
		// the root
		return ""
	}
	if _, rooted := top.(*Root); !rooted {
		// A detached subtree is named as if its top were attached to a
		// root. The result is not cached since it changes on attachment.
		path = append(path, "")
	}
	slices.Reverse(path)
	name := strings.Join(path, ".")
	if _, rooted := top.(*Root); rooted {
		o.fullName = name
	}
	return name
}

// setParent records the back-reference for a newly attached node.
func (o *object) setParent(parent Node) error {
	if o.parent != nil {
		return fmt.Errorf("%w: %q already belongs to %s", ErrAlreadyAttached, o.name, describe(o.parent))
	}
	o.parent = parent
	o.fullName = ""
	return nil
}

// Range is a closed interval of field numbers or enum values.
type Range struct {
	Start, End int32
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d to %d", r.Start, r.End)
}

// Reserved is one entry of a reserved statement: either a range of numbers or,
// when Name is not empty, a reserved name.
type Reserved struct {
	Range Range
	Name  string
}

// IsName reports whether the entry reserves a name rather than numbers.
func (r Reserved) IsName() bool {
	return r.Name != ""
}

// KindOf returns the kind label of n used in plain-data projections, such as
// "MessageDefinition".
func KindOf(n Node) string {
	switch n.(type) {
	case *Root:
		return "ProtoRoot"
	case *Namespace:
		return "NamespaceDefinition"
	case *Message:
		return "MessageDefinition"
	case *Enum:
		return "EnumDefinition"
	case *Service:
		return "ServiceDefinition"
	case *Field:
		return "FieldDefinition"
	case *OneOf:
		return "OneOfDefinition"
	case *Method:
		return "MethodDefinition"
	default:
		return "Undefined"
	}
}

func describe(n Node) string {
	var kind string
	switch n.(type) {
	case *Root:
		return "root"
	case *Namespace:
		kind = "namespace"
	case *Message:
		kind = "message"
	case *Enum:
		kind = "enum"
	case *Service:
		kind = "service"
	case *Field:
		kind = "field"
	case *OneOf:
		kind = "oneof"
	case *Method:
		kind = "method"
	}
	return fmt.Sprintf("%s %q", kind, strings.TrimPrefix(n.FullName(), "."))
}

// Attach adds child to parent, checking that the child's kind is legal for
// the parent and that it respects the parent's uniqueness rules. On success
// the child's parent back-reference is set.
func Attach(parent, child Node) error {
	switch p := parent.(type) {
	case *Root:
		return p.Add(child)
	case *Namespace:
		return p.Add(child)
	case *Message:
		return p.Add(child)
	case *OneOf:
		field, ok := child.(*Field)
		if !ok {
			return invalidChild(parent, child)
		}
		return p.Add(field)
	case *Service:
		return p.Add(child)
	default:
		return invalidChild(parent, child)
	}
}

func invalidChild(parent, child Node) error {
	return fmt.Errorf("%w: cannot add %s to %s", ErrInvalidChild, describe(child), describe(parent))
}

// Lookup searches scope and then each of its ancestors for a message or enum
// with the given simple name, returning its full name.
func Lookup(scope Node, name string) (string, bool) {
	for n := scope; n != nil; n = n.Parent() {
		ns := namespaceOf(n)
		if ns == nil {
			continue
		}
		switch child := ns.get(name).(type) {
		case *Message, *Enum:
			return child.FullName(), true
		}
	}
	return "", false
}

// Find returns the declaration with the given fully-qualified name, searching
// down from the top of n's tree. The name may have a leading dot. Only
// namespaces, messages, enums, services, and extension fields can be found.
func Find(n Node, fullName string) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	fullName = strings.TrimPrefix(fullName, ".")
	if fullName == "" {
		return nil
	}
	for _, part := range strings.Split(fullName, ".") {
		ns := namespaceOf(n)
		if ns == nil {
			return nil
		}
		if n = ns.get(part); n == nil {
			return nil
		}
	}
	return n
}
