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

package fdp

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/schema"
)

// Field numbers of the descriptor fields that make up source code info paths.
const (
	fileMessagesTag          = 4
	fileEnumsTag             = 5
	fileServicesTag          = 6
	fileExtensionsTag        = 7
	messageFieldsTag         = 2
	messageNestedMessagesTag = 3
	messageEnumsTag          = 4
	messageExtensionsTag     = 6
	messageOneOfsTag         = 8
	enumValuesTag            = 2
	serviceMethodsTag        = 2
)

// sourceCodeInfo collects a location for every declaration that has a known
// position. Spans cover the declaration's name.
type sourceCodeInfo struct {
	locs []*descriptorpb.SourceCodeInfo_Location
}

func (sci *sourceCodeInfo) add(n schema.Node, path []int32) {
	sci.newLoc(n.Pos(), len(n.Name()), n.Comment(), path)
}

func (sci *sourceCodeInfo) addValue(v *schema.EnumValue, path []int32) {
	sci.newLoc(v.Pos, len(v.Name), v.Comment, path)
}

func (sci *sourceCodeInfo) newLoc(pos ast.SourcePos, width int, comment string, path []int32) {
	if pos.Line <= 0 {
		return
	}
	loc := &descriptorpb.SourceCodeInfo_Location{
		Path: dup(path),
		Span: makeSpan(pos, width),
	}
	if comment != "" {
		loc.LeadingComments = &comment
	}
	sci.locs = append(sci.locs, loc)
}

// makeSpan returns a single-line span in the zero-based form descriptors use:
// line, start column, end column.
func makeSpan(start ast.SourcePos, width int) []int32 {
	return []int32{int32(start.Line - 1), int32(start.Col - 1), int32(start.Col - 1 + width)}
}

func dup(p []int32) []int32 {
	return append(([]int32)(nil), p...)
}
