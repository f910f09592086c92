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

// Package parser turns proto source into a schema tree.
//
// Parsing is a single pass with no error recovery. The Lexer splits the
// source into string tokens and collects documentation comments, and a
// recursive-descent parser builds a *schema.Root from them, attaching each
// declaration to its parent as soon as its body has been read. Once the
// whole file is read, type references are resolved according to the
// configured schema.ResolveMode.
//
// Errors are reported through a *reporter.Handler. Each is one of
// *reporter.LexError, *reporter.SyntaxError, *reporter.SemanticError, or
// *reporter.ResolutionError.
package parser
