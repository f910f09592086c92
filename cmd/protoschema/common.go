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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/bufbuild/protoschema"
	"github.com/bufbuild/protoschema/reporter"
)

// errReported is returned by commands whose errors were already printed as
// diagnostics.
var errReported = errors.New("errors were reported")

func isReported(err error) bool {
	return errors.Is(err, errReported)
}

// importPaths returns the configured import paths, or the current directory.
func (c *rootCommand) importPaths() []string {
	if len(c.conf.ImportPaths) == 0 {
		return []string{"."}
	}
	return c.conf.ImportPaths
}

// expandInputs turns the command line arguments into file names relative to
// the import paths. Arguments with glob metacharacters are matched, using
// doublestar syntax, against the files under every import path. Other
// arguments are used as is.
func (c *rootCommand) expandInputs(args []string) ([]string, error) {
	var names []string
	seen := map[string]struct{}{}
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	for _, arg := range args {
		pattern := filepath.ToSlash(arg)
		if !hasMeta(pattern) {
			add(pattern)
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", arg)
		}
		var matches []string
		for _, root := range c.importPaths() {
			err := afero.Walk(c.gs.fs, root, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					if errors.Is(err, fs.ErrNotExist) {
						return nil
					}
					return err
				}
				if info.IsDir() {
					return nil
				}
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				rel = filepath.ToSlash(rel)
				if ok, _ := doublestar.Match(pattern, rel); ok {
					matches = append(matches, rel)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return names, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// readSource returns the content of the named file from the first import
// path that has it, or nil.
func (c *rootCommand) readSource(name string) []byte {
	for _, root := range c.importPaths() {
		data, err := afero.ReadFile(c.gs.fs, filepath.Join(root, name))
		if err == nil {
			return data
		}
	}
	return nil
}

// compile parses the given files. Errors and warnings are printed as they are
// found; if any file fails, errReported is returned once all files are done.
func (c *rootCommand) compile(names []string) (protoschema.Files, error) {
	report := func(level reporter.Level) func(err reporter.ErrorWithPos) {
		return func(err reporter.ErrorWithPos) {
			c.printDiagnostic(level, err, c.readSource(err.GetPosition().Filename))
		}
	}
	rep := reporter.NewReporter(
		func(err reporter.ErrorWithPos) error {
			report(reporter.LevelError)(err)
			return nil
		},
		report(reporter.LevelWarning),
	)
	compiler := protoschema.Compiler{
		Resolver: &protoschema.SourceResolver{
			ImportPaths: c.importPaths(),
			Fs:          c.gs.fs,
		},
		MaxParallelism: c.conf.Parallelism,
		Reporter:       rep,
		Options:        c.conf.ParserOptions(),
		FollowImports:  c.conf.FollowImports,
		Logger:         c.gs.logger,
	}
	files, err := compiler.Compile(c.gs.ctx, names...)
	if errors.Is(err, reporter.ErrInvalidSource) {
		return nil, errReported
	}
	return files, err
}
