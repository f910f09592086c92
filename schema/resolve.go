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

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/reporter"
	"github.com/bufbuild/protoschema/types"
)

// ResolveMode controls how Resolve treats type references it cannot find.
type ResolveMode int

const (
	// ResolveStrict fails on the first unresolvable reference.
	ResolveStrict ResolveMode = iota
	// ResolveWeak leaves unresolvable references as written.
	ResolveWeak
	// ResolveNone skips resolution entirely.
	ResolveNone
)

func (m ResolveMode) String() string {
	switch m {
	case ResolveStrict:
		return "strict"
	case ResolveWeak:
		return "weak"
	case ResolveNone:
		return "none"
	default:
		return fmt.Sprintf("ResolveMode(%d)", int(m))
	}
}

// ParseResolveMode parses "strict", "weak", or "none".
func ParseResolveMode(s string) (ResolveMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return ResolveStrict, nil
	case "weak":
		return ResolveWeak, nil
	case "none":
		return ResolveNone, nil
	default:
		return ResolveStrict, fmt.Errorf("invalid resolve mode %q: must be strict, weak, or none", s)
	}
}

// Set implements pflag.Value.
func (m *ResolveMode) Set(s string) error {
	mode, err := ParseResolveMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Type implements pflag.Value.
func (m *ResolveMode) Type() string {
	return "mode"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ResolveMode) UnmarshalText(text []byte) error {
	return m.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (m ResolveMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Resolve walks the tree under n depth-first, caching the full name of every
// node and rewriting each identifier type reference of fields and methods
// into a fully-qualified name.
//
// References that already start with a dot are left alone. Simple names are
// looked up with Lookup, starting at the scope that declares the reference.
// Qualified names are searched the same way by their first component; if
// that fails they are assumed to be absolute and given a leading dot.
//
// In strict mode an unresolvable simple name is a *reporter.ResolutionError;
// in weak mode it is left as written. Resolving a resolved tree again has no
// effect.
func Resolve(n Node, mode ResolveMode) error {
	if mode == ResolveNone {
		return nil
	}
	r := resolver{mode: mode}
	return r.resolve(n)
}

type resolver struct {
	mode ResolveMode
}

func (r *resolver) resolve(n Node) error {
	n.FullName()
	switch n := n.(type) {
	case *Root:
		return r.resolveAll(n.order)
	case *Namespace:
		return r.resolveAll(n.order)
	case *Message:
		for _, f := range n.fields {
			if err := r.resolve(f); err != nil {
				return err
			}
		}
		for _, o := range n.oneofs {
			o.FullName()
		}
		return r.resolveAll(n.order)
	case *Service:
		for _, m := range n.methods {
			if err := r.resolve(m); err != nil {
				return err
			}
		}
	case *Field:
		scope := n.Parent()
		if err := r.resolveRef(scope, &n.Type, n.Pos()); err != nil {
			return err
		}
		if n.IsExtension() {
			extend := types.Ref{Kind: types.Identifier, Value: n.Extend}
			if err := r.resolveRef(scope, &extend, n.Pos()); err != nil {
				return err
			}
			n.Extend = extend.Value
		}
	case *Method:
		scope := n.Parent()
		if err := r.resolveRef(scope, &n.RequestType, n.Pos()); err != nil {
			return err
		}
		return r.resolveRef(scope, &n.ResponseType, n.Pos())
	}
	return nil
}

func (r *resolver) resolveAll(nodes []Node) error {
	for _, child := range nodes {
		if err := r.resolve(child); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveRef(scope Node, ref *types.Ref, pos ast.SourcePos) error {
	if ref.Kind != types.Identifier || strings.HasPrefix(ref.Value, ".") {
		return nil
	}
	if scope == nil {
		return fmt.Errorf("%w: cannot resolve %q without a parent scope", ErrInvalidChild, ref.Value)
	}
	if !strings.Contains(ref.Value, ".") {
		if fullName, ok := Lookup(scope, ref.Value); ok {
			ref.Value = fullName
			return nil
		}
		if r.mode == ResolveWeak {
			return nil
		}
		return &reporter.ResolutionError{Pos: pos, Name: ref.Value, Scope: scope.FullName()}
	}
	if fullName, ok := lookupQualified(scope, ref.Value); ok {
		ref.Value = fullName
		return nil
	}
	ref.Value = "." + ref.Value
	return nil
}

// lookupQualified resolves a dotted relative name: the first component is
// searched outward from scope like a simple name, and the remaining
// components are found by descending from it.
func lookupQualified(scope Node, name string) (string, bool) {
	parts := strings.Split(name, ".")
	for n := scope; n != nil; n = n.Parent() {
		ns := namespaceOf(n)
		if ns == nil {
			continue
		}
		found := ns.get(parts[0])
		if found == nil {
			continue
		}
		for _, part := range parts[1:] {
			inner := namespaceOf(found)
			if inner == nil {
				return "", false
			}
			if found = inner.get(part); found == nil {
				return "", false
			}
		}
		switch found.(type) {
		case *Message, *Enum:
			return found.FullName(), true
		}
		return "", false
	}
	return "", false
}
