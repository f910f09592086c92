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
	"fmt"
	"strings"
)

// namespace is the symbol table of a node that owns named declarations.
type namespace struct {
	nested map[string]Node
	order  []Node
}

func (ns *namespace) get(name string) Node {
	return ns.nested[name]
}

func (ns *namespace) put(child Node) {
	if ns.nested == nil {
		ns.nested = map[string]Node{}
	}
	ns.nested[child.Name()] = child
	ns.order = append(ns.order, child)
}

// Nested returns the nested declarations in the order they were attached.
func (ns *namespace) Nested() []Node {
	return ns.order
}

// Get returns the nested declaration with the given name, or nil.
func (ns *namespace) Get(name string) Node {
	return ns.get(name)
}

// namespaceOf returns the symbol table of n, or nil if n cannot own
// declarations.
func namespaceOf(n Node) *namespace {
	switch n := n.(type) {
	case *Root:
		return &n.namespace
	case *Namespace:
		return &n.namespace
	case *Message:
		return &n.namespace
	default:
		return nil
	}
}

// addDeclaration attaches a namespace, message, enum, service, or extension
// field to a root or namespace.
func addDeclaration(parent Node, ns *namespace, child Node) error {
	switch c := child.(type) {
	case *Namespace, *Message, *Enum, *Service:
	case *Field:
		if !c.IsExtension() {
			return invalidChild(parent, child)
		}
	default:
		return invalidChild(parent, child)
	}
	if ns.get(child.Name()) != nil {
		return fmt.Errorf("%w: %q in %s", ErrDuplicateName, child.Name(), describe(parent))
	}
	if err := child.base().setParent(parent); err != nil {
		return err
	}
	ns.put(child)
	return nil
}

// Root is the top of a schema tree. Its name is empty and it has no parent.
type Root struct {
	object
	namespace
}

// NewRoot creates an empty tree.
func NewRoot() *Root {
	return &Root{}
}

// Add attaches a namespace, message, enum, service, or extension field.
func (r *Root) Add(child Node) error {
	return addDeclaration(r, &r.namespace, child)
}

// Define returns the namespace for the given dot-separated package path,
// creating any segments that do not exist yet.
func (r *Root) Define(path string) (*Namespace, error) {
	return define(r, path)
}

// Namespace is an intermediate node created for each segment of a package
// name.
type Namespace struct {
	object
	namespace
}

// NewNamespace creates a detached namespace.
func NewNamespace(name string) *Namespace {
	return &Namespace{object: object{name: name}}
}

// Add attaches a namespace, message, enum, service, or extension field.
func (n *Namespace) Add(child Node) error {
	return addDeclaration(n, &n.namespace, child)
}

// Define returns the namespace for the given dot-separated path relative to
// n, creating any segments that do not exist yet.
func (n *Namespace) Define(path string) (*Namespace, error) {
	return define(n, path)
}

func define(from Node, path string) (*Namespace, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrPathConflict)
	}
	ptr := from
	for _, segment := range strings.Split(path, ".") {
		ns := namespaceOf(ptr)
		switch existing := ns.get(segment).(type) {
		case nil:
			child := NewNamespace(segment)
			if err := Attach(ptr, child); err != nil {
				return nil, err
			}
			ptr = child
		case *Namespace:
			ptr = existing
		default:
			return nil, fmt.Errorf("%w: %q is already defined as %s", ErrPathConflict, path, describe(existing))
		}
	}
	result, ok := ptr.(*Namespace)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPathConflict, path)
	}
	return result, nil
}
