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

	"github.com/bufbuild/protoschema/types"
)

// MaxFieldID is the largest field number, written "max" in source.
const MaxFieldID = 536870911

// Rule is the cardinality label of a field. The "optional" keyword carries
// no information beyond the absence of the other two and is normalized to
// RuleNone.
type Rule int

const (
	RuleNone Rule = iota
	RuleRequired
	RuleRepeated
)

func (r Rule) String() string {
	switch r {
	case RuleRequired:
		return "required"
	case RuleRepeated:
		return "repeated"
	default:
		return ""
	}
}

// ParseRule parses a rule keyword. The empty string and "optional" yield
// RuleNone.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(s) {
	case "", "optional":
		return RuleNone, nil
	case "required":
		return RuleRequired, nil
	case "repeated":
		return RuleRepeated, nil
	default:
		return RuleNone, fmt.Errorf("%w: %q", ErrInvalidRule, s)
	}
}

// Field is a message field, a map field, or an extension field.
type Field struct {
	object

	ID   int32
	Type types.Ref
	Rule Rule
	// Extend is the name of the extended message for extension fields. It is
	// rewritten to a fully-qualified name by Resolve.
	Extend string
	// Map is set for map fields, whose key type is KeyType and whose value
	// type is Type.
	Map     bool
	KeyType types.Ref

	partOf *OneOf
}

// NewField creates a detached field. If extend is not empty the field is an
// extension of that message.
func NewField(name string, id int32, typ string, rule Rule, extend string) (*Field, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: field %q has id %d; must be a non-negative integer", ErrInvalidID, name, id)
	}
	switch rule {
	case RuleNone, RuleRequired, RuleRepeated:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidRule, rule)
	}
	return &Field{
		object: object{name: name},
		ID:     id,
		Type:   types.Of(typ),
		Rule:   rule,
		Extend: extend,
	}, nil
}

// NewMapField creates a detached map field.
func NewMapField(name string, id int32, keyType, valueType string) (*Field, error) {
	f, err := NewField(name, id, valueType, RuleNone, "")
	if err != nil {
		return nil, err
	}
	f.Map = true
	f.KeyType = types.Of(keyType)
	return f, nil
}

// Required reports whether the field has the required rule.
func (f *Field) Required() bool {
	return f.Rule == RuleRequired
}

// Repeated reports whether the field has the repeated rule.
func (f *Field) Repeated() bool {
	return f.Rule == RuleRepeated
}

// Optional reports whether the field is neither required nor repeated.
func (f *Field) Optional() bool {
	return f.Rule == RuleNone
}

// IsExtension reports whether the field extends another message.
func (f *Field) IsExtension() bool {
	return f.Extend != ""
}

// PartOf returns the oneof the field belongs to, if any.
func (f *Field) PartOf() *OneOf {
	return f.partOf
}
