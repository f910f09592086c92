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
	"maps"
	"slices"
)

// Ident is an option value written as a bare identifier, such as the
// SPEED in "option optimize_for = SPEED;". It is distinct from a string
// literal so that it can be reproduced faithfully.
type Ident string

// Options is the option table of a node. Keys are option names as written,
// with custom options in parentheses and aggregate fields flattened with
// dots, e.g. "(my.ext).field". Values are string, bool, int64, uint64,
// float64, or Ident.
//
// A zero value is ready to use.
type Options struct {
	values map[string]any
	order  []string
}

// Set stores value under name. If ifNotSet is true and the name already has
// a value, the existing value is kept.
func (o *Options) Set(name string, value any, ifNotSet bool) {
	if o.values == nil {
		o.values = map[string]any{}
	}
	if _, exists := o.values[name]; exists {
		if ifNotSet {
			return
		}
	} else {
		o.order = append(o.order, name)
	}
	o.values[name] = value
}

// Get returns the value stored under name.
func (o *Options) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Bool reports whether name is set to the boolean true.
func (o *Options) Bool(name string) bool {
	v, _ := o.values[name].(bool)
	return v
}

// Len returns the number of options set.
func (o *Options) Len() int {
	return len(o.values)
}

// Names returns the option names in the order they were first set.
func (o *Options) Names() []string {
	return slices.Clone(o.order)
}

// Map returns a copy of the option table, or nil if it is empty.
func (o *Options) Map() map[string]any {
	if len(o.values) == 0 {
		return nil
	}
	return maps.Clone(o.values)
}
