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
	"math"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/internal/interval"
)

// EnumValue is a named constant of an enum.
type EnumValue struct {
	Name    string
	ID      int32
	Comment string
	Options Options
	Pos     ast.SourcePos
}

// Enum is an enum declaration.
type Enum struct {
	object

	values []*EnumValue
	byName map[string]*EnumValue
	// byID is the inverse of byName. When aliases are allowed it keeps only
	// the first name declared for each number.
	byID map[int32]string

	reserved      []Reserved
	reservedIDs   interval.Map[int32, Reserved]
	reservedNames map[string]struct{}
}

// NewEnum creates a detached enum.
func NewEnum(name string) *Enum {
	return &Enum{object: object{name: name}}
}

// Values returns the values of the enum in declaration order.
func (e *Enum) Values() []*EnumValue {
	return e.values
}

// Value returns the number assigned to name.
func (e *Enum) Value(name string) (int32, bool) {
	v, ok := e.byName[name]
	if !ok {
		return 0, false
	}
	return v.ID, true
}

// NameOf returns the canonical name of the given number: the first value
// declared with it.
func (e *Enum) NameOf(id int32) (string, bool) {
	name, ok := e.byID[id]
	return name, ok
}

// Reserved returns the reserved ranges and names in declaration order.
func (e *Enum) Reserved() []Reserved {
	return e.reserved
}

// AllowAlias reports whether the allow_alias option is set to true.
func (e *Enum) AllowAlias() bool {
	return e.options.Bool("allow_alias")
}

// AddValue adds a value. Names must be unique. Numbers must be unique too,
// unless the allow_alias option has already been set on the enum.
func (e *Enum) AddValue(name string, id int32, comment string) (*EnumValue, error) {
	if _, ok := e.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateName, name, describe(e))
	}
	if e.reservedIDs.Get(id).Value != nil {
		return nil, fmt.Errorf("%w: %d in %s", ErrReservedID, id, describe(e))
	}
	if _, ok := e.reservedNames[name]; ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrReservedName, name, describe(e))
	}
	if other, ok := e.byID[id]; ok && !e.AllowAlias() {
		return nil, fmt.Errorf("%w: %d is used by both %q and %q in %s", ErrDuplicateID, id, other, name, describe(e))
	}

	v := &EnumValue{Name: name, ID: id, Comment: comment}
	if e.byName == nil {
		e.byName = map[string]*EnumValue{}
		e.byID = map[int32]string{}
	}
	e.values = append(e.values, v)
	e.byName[name] = v
	if _, ok := e.byID[id]; !ok {
		e.byID[id] = name
	}
	return v, nil
}

// AddReserved records a reserved range or name. Values already added may not
// use it, and ranges may not overlap.
func (e *Enum) AddReserved(r Reserved) error {
	if r.IsName() {
		if _, ok := e.byName[r.Name]; ok {
			return fmt.Errorf("%w: %q is used by a value in %s", ErrReservedName, r.Name, describe(e))
		}
		if e.reservedNames == nil {
			e.reservedNames = map[string]struct{}{}
		}
		e.reservedNames[r.Name] = struct{}{}
		e.reserved = append(e.reserved, r)
		return nil
	}
	if err := checkRange(r.Range, math.MinInt32); err != nil {
		return err
	}
	for _, v := range e.values {
		if v.ID >= r.Range.Start && v.ID <= r.Range.End {
			return fmt.Errorf("%w: %d is used by value %q in %s", ErrReservedID, v.ID, v.Name, describe(e))
		}
	}
	if overlap := e.reservedIDs.Insert(r.Range.Start, r.Range.End, r); overlap.Value != nil {
		return fmt.Errorf("%w: reserved range %v overlaps %v in %s", ErrOverlappingRange, r.Range, overlap.Value.Range, describe(e))
	}
	e.reserved = append(e.reserved, r)
	return nil
}
