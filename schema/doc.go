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

// Package schema contains the tree model that the parser populates: a Root
// that owns namespaces, messages, enums, services, and extension fields, each
// of which owns its own children.
//
// Every node records a non-owning back-reference to its parent, assigned when
// the node is attached with Attach (or the Add method of the parent). Attach
// is the only way to mutate the structure of a tree, and it enforces the
// uniqueness rules of the schema language: sibling names, field numbers,
// reserved ranges, and reserved names.
//
// Once a tree is complete, Resolve walks it, caches the fully-qualified name
// of every node, and rewrites relative type references on fields and methods
// into fully-qualified names.
package schema
