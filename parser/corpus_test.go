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

package parser

import (
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/protoschema/internal/corpora"
	"github.com/bufbuild/protoschema/reporter"
	"github.com/bufbuild/protoschema/schema"
)

// TestCorpus parses every file under testdata and compares the projected
// schema tree and the reported diagnostics against golden files. Run with
// PROTOSCHEMA_REFRESH=<glob> to regenerate the goldens of matching files.
func TestCorpus(t *testing.T) {
	t.Parallel()
	corpora.Corpus{
		Root:      "testdata",
		Refresh:   "PROTOSCHEMA_REFRESH",
		Extension: "proto",
		Outputs: []corpora.Output{
			{Extension: "yaml", Compare: corpora.CompareYAML},
			{Extension: "stderr.txt"},
		},
		Test: func(t *testing.T, path, text string) []string {
			var stderr strings.Builder
			rep := reporter.NewReporter(
				func(err reporter.ErrorWithPos) error {
					fmt.Fprintf(&stderr, "error: %v\n", err)
					return nil
				},
				func(err reporter.ErrorWithPos) {
					fmt.Fprintf(&stderr, "warning: %v\n", err)
				},
			)
			res, _ := Parse(path, strings.NewReader(text), reporter.NewHandler(rep), Options{})
			if res == nil {
				return []string{"", stderr.String()}
			}
			data, err := yaml.Marshal(schema.Project(res.Root))
			if err != nil {
				t.Fatal(err)
			}
			return []string{string(data), stderr.String()}
		},
	}.Run(t)
}
