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

// Package ast defines the source position model shared by the lexer, the
// parser, and the schema tree.
//
// Position information is tracked using a *FileInfo, calling AddLine as the
// file is tokenized by the lexer. Tokens and schema nodes only carry byte
// offsets or a computed SourcePos; to turn an offset into a line and column,
// use the *FileInfo that was populated while lexing that file.
package ast
