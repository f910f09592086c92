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

	"github.com/bufbuild/protoschema/types"
)

// Record is the plain-data projection of a node, suitable for JSON or YAML
// encoding. Collections keep declaration order. Only the attributes that
// apply to the node's kind are set.
type Record struct {
	SyntaxType string         `json:"syntaxType" yaml:"syntaxType"`
	Name       string         `json:"name" yaml:"name"`
	FullName   string         `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Comment    string         `json:"comment,omitempty" yaml:"comment,omitempty"`
	Options    map[string]any `json:"options,omitempty" yaml:"options,omitempty"`

	Nested []*Record `json:"nested,omitempty" yaml:"nested,omitempty"`

	// messages
	Fields        []*Record  `json:"fields,omitempty" yaml:"fields,omitempty"`
	Oneofs        []*Record  `json:"oneofs,omitempty" yaml:"oneofs,omitempty"`
	Reserved      [][2]int32 `json:"reserved,omitempty" yaml:"reserved,omitempty,flow"`
	ReservedNames []string   `json:"reservedNames,omitempty" yaml:"reservedNames,omitempty,flow"`
	Extensions    [][2]int32 `json:"extensions,omitempty" yaml:"extensions,omitempty,flow"`
	Group         bool       `json:"group,omitempty" yaml:"group,omitempty"`

	// oneofs
	Oneof []string `json:"oneof,omitempty" yaml:"oneof,omitempty,flow"`

	// enums
	Values []*ValueRecord `json:"values,omitempty" yaml:"values,omitempty"`

	// services
	Methods []*Record `json:"methods,omitempty" yaml:"methods,omitempty"`

	// fields
	ID       *int32      `json:"id,omitempty" yaml:"id,omitempty"`
	Type     *TypeRecord `json:"type,omitempty" yaml:"type,omitempty"`
	Rule     string      `json:"rule,omitempty" yaml:"rule,omitempty"`
	Required *bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Optional *bool       `json:"optional,omitempty" yaml:"optional,omitempty"`
	Repeated *bool       `json:"repeated,omitempty" yaml:"repeated,omitempty"`
	Map      bool        `json:"map,omitempty" yaml:"map,omitempty"`
	KeyType  *TypeRecord `json:"keyType,omitempty" yaml:"keyType,omitempty"`
	Extend   string      `json:"extend,omitempty" yaml:"extend,omitempty"`
	PartOf   string      `json:"partOf,omitempty" yaml:"partOf,omitempty"`

	// methods
	RequestType    *TypeRecord `json:"requestType,omitempty" yaml:"requestType,omitempty"`
	ResponseType   *TypeRecord `json:"responseType,omitempty" yaml:"responseType,omitempty"`
	RequestStream  bool        `json:"requestStream,omitempty" yaml:"requestStream,omitempty"`
	ResponseStream bool        `json:"responseStream,omitempty" yaml:"responseStream,omitempty"`
}

// TypeRecord is the projection of a types.Ref.
type TypeRecord struct {
	SyntaxType string `json:"syntaxType" yaml:"syntaxType"`
	Value      string `json:"value" yaml:"value"`
}

// ValueRecord is the projection of an enum value.
type ValueRecord struct {
	Name    string         `json:"name" yaml:"name"`
	ID      int32          `json:"id" yaml:"id"`
	Comment string         `json:"comment,omitempty" yaml:"comment,omitempty"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

func projectRef(ref types.Ref) *TypeRecord {
	return &TypeRecord{SyntaxType: ref.Kind.String(), Value: ref.Value}
}

func (t *TypeRecord) ref() (types.Ref, error) {
	if t == nil {
		return types.Ref{}, fmt.Errorf("%w: missing type", ErrInvalidChild)
	}
	switch t.SyntaxType {
	case types.Scalar.String():
		return types.Ref{Kind: types.Scalar, Value: t.Value}, nil
	case types.Identifier.String():
		return types.Ref{Kind: types.Identifier, Value: t.Value}, nil
	default:
		return types.Ref{}, fmt.Errorf("%w: unknown type kind %q", ErrInvalidChild, t.SyntaxType)
	}
}

func projectRanges(ranges []Range) [][2]int32 {
	if len(ranges) == 0 {
		return nil
	}
	out := make([][2]int32, len(ranges))
	for i, r := range ranges {
		out[i] = [2]int32{r.Start, r.End}
	}
	return out
}

func projectReserved(rec *Record, reserved []Reserved) {
	for _, r := range reserved {
		if r.IsName() {
			rec.ReservedNames = append(rec.ReservedNames, r.Name)
		} else {
			rec.Reserved = append(rec.Reserved, [2]int32{r.Range.Start, r.Range.End})
		}
	}
}

// Project converts n and everything under it to plain data.
func Project(n Node) *Record {
	rec := &Record{
		SyntaxType: KindOf(n),
		Name:       n.Name(),
		FullName:   n.FullName(),
		Comment:    n.Comment(),
		Options:    n.Options().Map(),
	}
	if ns := namespaceOf(n); ns != nil {
		for _, child := range ns.order {
			rec.Nested = append(rec.Nested, Project(child))
		}
	}
	switch n := n.(type) {
	case *Message:
		for _, f := range n.fields {
			rec.Fields = append(rec.Fields, Project(f))
		}
		for _, o := range n.oneofs {
			rec.Oneofs = append(rec.Oneofs, Project(o))
		}
		projectReserved(rec, n.reserved)
		rec.Extensions = projectRanges(n.extensions)
		rec.Group = n.Group
	case *OneOf:
		rec.Oneof = n.fieldNames
	case *Enum:
		for _, v := range n.values {
			rec.Values = append(rec.Values, &ValueRecord{
				Name:    v.Name,
				ID:      v.ID,
				Comment: v.Comment,
				Options: v.Options.Map(),
			})
		}
		projectReserved(rec, n.reserved)
	case *Service:
		for _, m := range n.methods {
			rec.Methods = append(rec.Methods, Project(m))
		}
	case *Field:
		id := n.ID
		required, optional, repeated := n.Required(), n.Optional(), n.Repeated()
		rec.ID = &id
		rec.Type = projectRef(n.Type)
		rec.Rule = n.Rule.String()
		rec.Required = &required
		rec.Optional = &optional
		rec.Repeated = &repeated
		rec.Map = n.Map
		if n.Map {
			rec.KeyType = projectRef(n.KeyType)
		}
		rec.Extend = n.Extend
		if n.partOf != nil {
			rec.PartOf = n.partOf.name
		}
	case *Method:
		rec.RequestType = projectRef(n.RequestType)
		rec.ResponseType = projectRef(n.ResponseType)
		rec.RequestStream = n.RequestStream
		rec.ResponseStream = n.ResponseStream
	}
	return rec
}

// Build reconstructs a detached tree from its projection. Type references are
// taken as they are; Build does not resolve them. Fields of a oneof are
// attached to the message in order and then joined to the oneof by name.
func (r *Record) Build() (Node, error) {
	var n Node
	switch r.SyntaxType {
	case "ProtoRoot":
		n = NewRoot()
	case "NamespaceDefinition":
		n = NewNamespace(r.Name)
	case "MessageDefinition":
		msg := NewMessage(r.Name)
		msg.Group = r.Group
		n = msg
	case "EnumDefinition":
		n = NewEnum(r.Name)
	case "ServiceDefinition":
		n = NewService(r.Name)
	case "OneOfDefinition":
		n = NewOneOf(r.Name)
	case "FieldDefinition":
		f, err := r.buildField()
		if err != nil {
			return nil, err
		}
		n = f
	case "MethodDefinition":
		m := &Method{object: object{name: r.Name}, RequestStream: r.RequestStream, ResponseStream: r.ResponseStream}
		var err error
		if m.RequestType, err = r.RequestType.ref(); err != nil {
			return nil, err
		}
		if m.ResponseType, err = r.ResponseType.ref(); err != nil {
			return nil, err
		}
		n = m
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidChild, r.SyntaxType)
	}

	n.SetComment(r.Comment)
	opts := n.Options()
	for name, value := range r.Options {
		opts.Set(name, value, false)
	}

	if err := r.buildChildren(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *Record) buildField() (*Field, error) {
	if r.ID == nil {
		return nil, fmt.Errorf("%w: field %q has no id", ErrInvalidID, r.Name)
	}
	rule, err := ParseRule(r.Rule)
	if err != nil {
		return nil, err
	}
	typ, err := r.Type.ref()
	if err != nil {
		return nil, err
	}
	f, err := NewField(r.Name, *r.ID, typ.Value, rule, r.Extend)
	if err != nil {
		return nil, err
	}
	f.Type = typ
	if r.Map {
		if f.KeyType, err = r.KeyType.ref(); err != nil {
			return nil, err
		}
		f.Map = true
	}
	return f, nil
}

func (r *Record) buildChildren(n Node) error {
	switch n := n.(type) {
	case *Enum:
		for _, v := range r.Values {
			value, err := n.AddValue(v.Name, v.ID, v.Comment)
			if err != nil {
				return err
			}
			for name, opt := range v.Options {
				value.Options.Set(name, opt, false)
			}
		}
		return buildReserved(r, n.AddReserved)
	case *Service:
		for _, rec := range r.Methods {
			if err := attachRecord(n, rec); err != nil {
				return err
			}
		}
		return nil
	case *Message:
		if err := buildReserved(r, n.AddReserved); err != nil {
			return err
		}
		for _, ext := range r.Extensions {
			if err := n.AddExtensionRange(Range{Start: ext[0], End: ext[1]}); err != nil {
				return err
			}
		}
		for _, rec := range r.Fields {
			if err := attachRecord(n, rec); err != nil {
				return err
			}
		}
		for _, rec := range r.Oneofs {
			child, err := rec.Build()
			if err != nil {
				return err
			}
			oneof := child.(*OneOf)
			for _, name := range rec.Oneof {
				f := n.Field(name)
				if f == nil {
					return fmt.Errorf("%w: oneof %q lists unknown field %q", ErrInvalidChild, rec.Name, name)
				}
				if err := oneof.Add(f); err != nil {
					return err
				}
			}
			if err := n.Add(oneof); err != nil {
				return err
			}
		}
	}
	if ns := namespaceOf(n); ns != nil {
		for _, rec := range r.Nested {
			if err := attachRecord(n, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func attachRecord(parent Node, rec *Record) error {
	child, err := rec.Build()
	if err != nil {
		return err
	}
	return Attach(parent, child)
}

func buildReserved(r *Record, add func(Reserved) error) error {
	for _, rng := range r.Reserved {
		if err := add(Reserved{Range: Range{Start: rng[0], End: rng[1]}}); err != nil {
			return err
		}
	}
	for _, name := range r.ReservedNames {
		if err := add(Reserved{Name: name}); err != nil {
			return err
		}
	}
	return nil
}
