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

	"github.com/bufbuild/protoschema/internal/interval"
)

// Message is a message declaration, including the implicit message declared
// by a group.
type Message struct {
	object
	namespace

	// Group is set for messages declared with the group syntax.
	Group bool

	fields       []*Field
	fieldsByName map[string]*Field
	// fieldsByID is derived from fields. It is built on demand and dropped
	// whenever a field is attached.
	fieldsByID map[int32]*Field

	oneofs       []*OneOf
	oneofsByName map[string]*OneOf

	reserved      []Reserved
	reservedIDs   interval.Map[int32, Reserved]
	reservedNames map[string]struct{}

	extensions   []Range
	extensionIDs interval.Map[int32, Range]
}

// NewMessage creates a detached message.
func NewMessage(name string) *Message {
	return &Message{object: object{name: name}}
}

// Fields returns the fields of the message in the order they were attached,
// including fields that belong to a oneof.
func (m *Message) Fields() []*Field {
	return m.fields
}

// Field returns the field with the given name, or nil.
func (m *Message) Field(name string) *Field {
	return m.fieldsByName[name]
}

// FieldByID returns the field with the given number, or nil.
func (m *Message) FieldByID(id int32) *Field {
	if m.fieldsByID == nil {
		m.fieldsByID = make(map[int32]*Field, len(m.fields))
		for _, f := range m.fields {
			m.fieldsByID[f.ID] = f
		}
	}
	return m.fieldsByID[id]
}

// OneOfs returns the oneofs of the message in the order they were attached.
func (m *Message) OneOfs() []*OneOf {
	return m.oneofs
}

// OneOf returns the oneof with the given name, or nil.
func (m *Message) OneOf(name string) *OneOf {
	return m.oneofsByName[name]
}

// Reserved returns the reserved ranges and names in declaration order.
func (m *Message) Reserved() []Reserved {
	return m.reserved
}

// Extensions returns the extension ranges in declaration order.
func (m *Message) Extensions() []Range {
	return m.extensions
}

// Get returns the field, oneof, or nested declaration with the given name,
// or nil.
func (m *Message) Get(name string) Node {
	if f, ok := m.fieldsByName[name]; ok {
		return f
	}
	if o, ok := m.oneofsByName[name]; ok {
		return o
	}
	return m.namespace.get(name)
}

// IsReservedID reports whether id falls in a reserved range.
func (m *Message) IsReservedID(id int32) bool {
	return m.reservedIDs.Get(id).Value != nil
}

// IsReservedName reports whether name is reserved.
func (m *Message) IsReservedName(name string) bool {
	_, ok := m.reservedNames[name]
	return ok
}

// Add attaches a field, oneof, or nested message, enum, or service.
// Extension fields declared inside the message are nested declarations of
// the message rather than fields of it.
func (m *Message) Add(child Node) error {
	switch c := child.(type) {
	case *Field:
		if c.IsExtension() {
			return m.addNested(c)
		}
		return m.addField(c)
	case *OneOf:
		return m.addOneOf(c)
	case *Message, *Enum, *Service:
		return m.addNested(child)
	default:
		return invalidChild(m, child)
	}
}

func (m *Message) checkName(name string) error {
	if m.Get(name) != nil {
		return fmt.Errorf("%w: %q in %s", ErrDuplicateName, name, describe(m))
	}
	return nil
}

func (m *Message) addNested(child Node) error {
	if err := m.checkName(child.Name()); err != nil {
		return err
	}
	if err := child.base().setParent(m); err != nil {
		return err
	}
	m.namespace.put(child)
	return nil
}

func (m *Message) addField(f *Field) error {
	if err := m.checkName(f.name); err != nil {
		return err
	}
	if other := m.FieldByID(f.ID); other != nil {
		return fmt.Errorf("%w: %d is used by both %q and %q in %s", ErrDuplicateID, f.ID, other.name, f.name, describe(m))
	}
	if m.IsReservedID(f.ID) {
		return fmt.Errorf("%w: %d in %s", ErrReservedID, f.ID, describe(m))
	}
	if m.IsReservedName(f.name) {
		return fmt.Errorf("%w: %q in %s", ErrReservedName, f.name, describe(m))
	}
	if err := f.setParent(m); err != nil {
		return err
	}
	if m.fieldsByName == nil {
		m.fieldsByName = map[string]*Field{}
	}
	m.fields = append(m.fields, f)
	m.fieldsByName[f.name] = f
	m.fieldsByID = nil
	return nil
}

func (m *Message) addOneOf(o *OneOf) error {
	if err := m.checkName(o.name); err != nil {
		return err
	}
	if err := o.setParent(m); err != nil {
		return err
	}
	if m.oneofsByName == nil {
		m.oneofsByName = map[string]*OneOf{}
	}
	m.oneofs = append(m.oneofs, o)
	m.oneofsByName[o.name] = o
	return o.attachFields()
}

// AddReserved records a reserved range or name. Fields already attached may
// not use it, and a range may not overlap another reserved range or an
// extension range.
func (m *Message) AddReserved(r Reserved) error {
	if r.IsName() {
		if f := m.fieldsByName[r.Name]; f != nil {
			return fmt.Errorf("%w: %q is used by a field in %s", ErrReservedName, r.Name, describe(m))
		}
		if m.reservedNames == nil {
			m.reservedNames = map[string]struct{}{}
		}
		m.reservedNames[r.Name] = struct{}{}
		m.reserved = append(m.reserved, r)
		return nil
	}
	if err := checkRange(r.Range, 0); err != nil {
		return err
	}
	for ext := range m.extensionIDs.Intervals() {
		if ext.Start <= r.Range.End && r.Range.Start <= ext.End {
			return fmt.Errorf("%w: reserved range %v overlaps extension range %v in %s", ErrOverlappingRange, r.Range, *ext.Value, describe(m))
		}
	}
	for _, f := range m.fields {
		if f.ID >= r.Range.Start && f.ID <= r.Range.End {
			return fmt.Errorf("%w: %d is used by field %q in %s", ErrReservedID, f.ID, f.name, describe(m))
		}
	}
	if overlap := m.reservedIDs.Insert(r.Range.Start, r.Range.End, r); overlap.Value != nil {
		return fmt.Errorf("%w: reserved range %v overlaps %v in %s", ErrOverlappingRange, r.Range, overlap.Value.Range, describe(m))
	}
	m.reserved = append(m.reserved, r)
	return nil
}

// AddExtensionRange records a range of numbers available to extensions.
func (m *Message) AddExtensionRange(r Range) error {
	if err := checkRange(r, 1); err != nil {
		return err
	}
	for res := range m.reservedIDs.Intervals() {
		if res.Start <= r.End && r.Start <= res.End {
			return fmt.Errorf("%w: extension range %v overlaps reserved range %v in %s", ErrOverlappingRange, r, res.Value.Range, describe(m))
		}
	}
	if overlap := m.extensionIDs.Insert(r.Start, r.End, r); overlap.Value != nil {
		return fmt.Errorf("%w: extension range %v overlaps %v in %s", ErrOverlappingRange, r, *overlap.Value, describe(m))
	}
	m.extensions = append(m.extensions, r)
	return nil
}

func checkRange(r Range, min int32) error {
	if r.Start < min {
		return fmt.Errorf("%w: %v; start must be at least %d", ErrInvalidRange, r, min)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: %v; start is greater than end", ErrInvalidRange, r)
	}
	return nil
}

// OneOf is a set of fields of which at most one is populated. Its fields are
// also fields of the enclosing message.
type OneOf struct {
	object

	fieldNames []string
	fields     []*Field
}

// NewOneOf creates a detached oneof.
func NewOneOf(name string) *OneOf {
	return &OneOf{object: object{name: name}}
}

// FieldNames returns the names of the member fields in declaration order.
func (o *OneOf) FieldNames() []string {
	return o.fieldNames
}

// Fields returns the member fields in declaration order.
func (o *OneOf) Fields() []*Field {
	return o.fields
}

// Add adds a member field. If the oneof is already attached to a message,
// the field is attached to that message as well.
func (o *OneOf) Add(f *Field) error {
	if f.IsExtension() {
		return invalidChild(o, f)
	}
	if f.partOf != nil {
		return fmt.Errorf("%w: %q already belongs to %s", ErrAlreadyAttached, f.name, describe(f.partOf))
	}
	for _, name := range o.fieldNames {
		if name == f.name {
			return fmt.Errorf("%w: %q in %s", ErrDuplicateName, f.name, describe(o))
		}
	}
	o.fieldNames = append(o.fieldNames, f.name)
	o.fields = append(o.fields, f)
	f.partOf = o
	return o.attachFields()
}

// attachFields pushes members that have no parent yet into the enclosing
// message.
func (o *OneOf) attachFields() error {
	msg, ok := o.parent.(*Message)
	if !ok {
		return nil
	}
	for _, f := range o.fields {
		if f.parent != nil {
			continue
		}
		if err := msg.addField(f); err != nil {
			return err
		}
	}
	return nil
}
