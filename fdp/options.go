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
	"math"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protoschema/schema"
)

// uninterpreted converts an option table into uninterpreted options, one per
// entry, in the order the options were set.
func uninterpreted(opts *schema.Options) []*descriptorpb.UninterpretedOption {
	var result []*descriptorpb.UninterpretedOption
	for _, name := range opts.Names() {
		v, _ := opts.Get(name)
		opt := &descriptorpb.UninterpretedOption{Name: OptionNameParts(name)}
		switch v := v.(type) {
		case string:
			opt.StringValue = []byte(v)
		case bool:
			if v {
				opt.IdentifierValue = proto.String("true")
			} else {
				opt.IdentifierValue = proto.String("false")
			}
		case int64:
			if v < 0 {
				opt.NegativeIntValue = proto.Int64(v)
			} else {
				opt.PositiveIntValue = proto.Uint64(uint64(v))
			}
		case uint64:
			opt.PositiveIntValue = proto.Uint64(v)
		case float64:
			switch {
			case math.IsNaN(v):
				opt.IdentifierValue = proto.String("nan")
			case math.IsInf(v, 1):
				opt.IdentifierValue = proto.String("inf")
			default:
				opt.DoubleValue = proto.Float64(v)
			}
		case schema.Ident:
			opt.IdentifierValue = proto.String(string(v))
		}
		result = append(result, opt)
	}
	return result
}

// OptionNameParts splits an option name as stored in an option table into
// the parts of an uninterpreted option name. Parenthesized components are
// extension names, e.g. "(my.ext).field" has the parts "my.ext" (an
// extension) and "field".
func OptionNameParts(name string) []*descriptorpb.UninterpretedOption_NamePart {
	var parts []*descriptorpb.UninterpretedOption_NamePart
	for name != "" {
		var part string
		ext := false
		if strings.HasPrefix(name, "(") {
			end := strings.IndexByte(name, ')')
			if end < 0 {
				end = len(name)
				part, name = name[1:], ""
			} else {
				part, name = name[1:end], name[end+1:]
			}
			ext = true
		} else {
			end := strings.IndexByte(name, '.')
			if end < 0 {
				end = len(name)
			}
			part, name = name[:end], name[end:]
		}
		name = strings.TrimPrefix(name, ".")
		parts = append(parts, &descriptorpb.UninterpretedOption_NamePart{
			NamePart:    proto.String(part),
			IsExtension: proto.Bool(ext),
		})
	}
	return parts
}
