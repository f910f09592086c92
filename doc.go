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

// Package protoschema turns Protocol Buffers IDL source into schema trees.
//
// The work is split across sub-packages:
//  1. The parser package tokenizes source, attaches documentation comments,
//     and builds a schema tree.
//     Also see: parser.Parse
//  2. The schema package holds the tree model and rewrites type references
//     to fully-qualified names.
//     Also see: schema.Resolve
//  3. The fdp package converts a parse result to a descriptor proto.
//     Also see: fdp.ToFileDescriptorProto
//
// This package provides a Compiler that parses many files in parallel,
// loading them through a Resolver.
//
// # Resolvers
//
// A Resolver is how the compiler locates its inputs. It can answer a query
// with source code, which the compiler parses, or with an already parsed
// file, which is used as is. A SourceResolver reads files from the operating
// system, from an afero file system, or through an accessor function, under
// an optional list of import paths.
//
// # Compiler
//
// A Compiler accepts a list of file names and produces the list of parsed
// files. Only the Resolver field is required. A minimal Compiler, that loads
// files from the file system relative to the current working directory, can
// be had with the following snippet:
//
//	compiler := protoschema.Compiler{
//	    Resolver: &protoschema.SourceResolver{},
//	}
//
// This minimal Compiler uses default parallelism, equal to the number of CPU
// cores detected; it does not follow imports; it resolves type references
// strictly; and it fails fast at the first error. All of these aspects can be
// customized by setting other fields.
package protoschema
