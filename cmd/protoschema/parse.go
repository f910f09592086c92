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

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/descriptorpb"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/protoschema"
	"github.com/bufbuild/protoschema/schema"
)

const (
	formatYAML       = "yaml"
	formatJSON       = "json"
	formatDescriptor = "descriptor"
	formatText       = "text"
)

// fileRecord is the projection of one parsed file.
type fileRecord struct {
	File          string         `json:"file" yaml:"file"`
	Syntax        string         `json:"syntax,omitempty" yaml:"syntax,omitempty"`
	Package       string         `json:"package,omitempty" yaml:"package,omitempty"`
	Imports       []string       `json:"imports,omitempty" yaml:"imports,omitempty,flow"`
	PublicImports []string       `json:"publicImports,omitempty" yaml:"publicImports,omitempty,flow"`
	WeakImports   []string       `json:"weakImports,omitempty" yaml:"weakImports,omitempty,flow"`
	Options       map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
	Root          *schema.Record `json:"root" yaml:"root"`
}

func newFileRecord(f *protoschema.File) *fileRecord {
	return &fileRecord{
		File:          f.Filename,
		Syntax:        f.Syntax,
		Package:       f.Package,
		Imports:       f.Result.Imports,
		PublicImports: f.PublicImports,
		WeakImports:   f.WeakImports,
		Options:       f.Options.Map(),
		Root:          schema.Project(f.Root),
	}
}

func getParseCmd(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [flags] FILE...",
		Short: "Parse files and print their schema trees",
		Long: `Parse files and print their schema trees.

File names are relative to the import paths. Names may be doublestar globs,
such as "**/*.proto", which are matched against the files under every import
path.`,
		Example: `
  # Print the schema of a file as YAML.
  protoschema parse -I protos example/person.proto

  # Print all files under protos/ as a JSON descriptor set.
  protoschema parse -I protos -f descriptor '**/*.proto'`[1:],
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := c.expandInputs(args)
			if err != nil {
				return err
			}
			files, err := c.compile(names)
			if err != nil {
				return err
			}
			c.gs.outMutex.Lock()
			defer c.gs.outMutex.Unlock()
			return writeFiles(c.gs.stdout, c.conf.Format, files)
		},
	}
}

// writeFiles prints the files in the given format. YAML output is a stream
// with one document per file, JSON output has one object per file, and the
// descriptor formats print a single descriptor set.
func writeFiles(w io.Writer, format string, files protoschema.Files) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, f := range files {
			if err := enc.Encode(newFileRecord(f)); err != nil {
				return err
			}
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, f := range files {
			if err := enc.Encode(newFileRecord(f)); err != nil {
				return err
			}
		}
		return nil
	case formatDescriptor, formatText:
		set := &descriptorpb.FileDescriptorSet{}
		for _, f := range files {
			fd, err := f.FileDescriptorProto()
			if err != nil {
				return err
			}
			set.File = append(set.File, fd)
		}
		var (
			data []byte
			err  error
		)
		if format == formatDescriptor {
			data, err = protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(set)
		} else {
			data, err = prototext.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(set)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("invalid format %q", format)
	}
}
