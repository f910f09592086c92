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

// Package walk provides helper functions for traversing schema trees.
package walk

import (
	"errors"

	"github.com/bufbuild/protoschema/schema"
)

// SkipChildren may be returned by an enter function to skip the children of
// the node just entered. The node's exit function is still called.
var SkipChildren = errors.New("skip children")

// Nodes walks the given node and its descendants depth-first, calling fn for
// each one. The children of a message are visited in this order: fields
// (including the fields of oneofs), oneofs, then nested declarations in the
// order they were attached. Services visit their methods. If fn returns an
// error other than SkipChildren, the walk is aborted and that error is
// returned.
func Nodes(n schema.Node, fn func(schema.Node) error) error {
	return NodesEnterAndExit(n, fn, nil)
}

// NodesEnterAndExit walks the given node and its descendants depth-first,
// calling enter before visiting a node's children and exit afterwards. The
// exit function may be nil.
func NodesEnterAndExit(n schema.Node, enter, exit func(schema.Node) error) error {
	w := walker{enter: enter, exit: exit}
	return w.walk(n)
}

// Symbols walks the given node and calls fn with the fully-qualified name of
// every declaration that can be referenced by name: namespaces, messages,
// enums, services, and extension fields. The root is not reported.
func Symbols(n schema.Node, fn func(fullName string, n schema.Node) error) error {
	return Nodes(n, func(n schema.Node) error {
		switch n := n.(type) {
		case *schema.Root:
			return nil
		case *schema.Field:
			if !n.IsExtension() {
				return nil
			}
		case *schema.OneOf, *schema.Method:
			return nil
		}
		return fn(n.FullName(), n)
	})
}

type walker struct {
	enter, exit func(schema.Node) error
}

func (w *walker) walk(n schema.Node) error {
	err := w.enter(n)
	switch {
	case errors.Is(err, SkipChildren):
	case err != nil:
		return err
	default:
		if err := w.children(n); err != nil {
			return err
		}
	}
	if w.exit != nil {
		return w.exit(n)
	}
	return nil
}

func (w *walker) children(n schema.Node) error {
	switch n := n.(type) {
	case *schema.Root:
		return w.all(n.Nested())
	case *schema.Namespace:
		return w.all(n.Nested())
	case *schema.Message:
		for _, f := range n.Fields() {
			if err := w.walk(f); err != nil {
				return err
			}
		}
		for _, o := range n.OneOfs() {
			if err := w.walk(o); err != nil {
				return err
			}
		}
		return w.all(n.Nested())
	case *schema.Service:
		for _, m := range n.Methods() {
			if err := w.walk(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) all(nodes []schema.Node) error {
	for _, n := range nodes {
		if err := w.walk(n); err != nil {
			return err
		}
	}
	return nil
}
