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
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/descriptorpb"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/protoschema/schema"
)

type testState struct {
	*globalState
	stdout, stderr *bytes.Buffer
}

func newTestState(t *testing.T, files map[string]string) *testState {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, src := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(src), 0o644))
	}
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	logger := logrus.New()
	logger.SetOutput(stderr)
	return &testState{
		globalState: &globalState{
			ctx:      context.Background(),
			fs:       fsys,
			stdout:   stdout,
			stderr:   stderr,
			outMutex: &sync.Mutex{},
			logger:   logger,
		},
		stdout: stdout,
		stderr: stderr,
	}
}

func (ts *testState) run(args ...string) int {
	return execute(ts.globalState, args)
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	ts := newTestState(t, map[string]string{
		"protos/a.proto": "syntax = \"proto3\";\npackage a;\n// Doc.\nmessage A { string id = 1; }\n",
	})
	require.Equal(t, 0, ts.run("parse", "-I", "protos", "a.proto"), ts.stderr.String())

	var rec fileRecord
	require.NoError(t, yaml.Unmarshal(ts.stdout.Bytes(), &rec))
	assert.Equal(t, "a.proto", rec.File)
	assert.Equal(t, "proto3", rec.Syntax)
	assert.Equal(t, "a", rec.Package)
	require.NotNil(t, rec.Root)
	require.Len(t, rec.Root.Nested, 1)
	ns := rec.Root.Nested[0]
	assert.Equal(t, "a", ns.Name)
	require.Len(t, ns.Nested, 1)
	msg := ns.Nested[0]
	assert.Equal(t, "A", msg.Name)
	assert.Equal(t, "Doc.", msg.Comment)
	require.Len(t, msg.Fields, 1)
	assert.Equal(t, "id", msg.Fields[0].Name)
}

func TestParseGlobJSON(t *testing.T) {
	t.Parallel()
	ts := newTestState(t, map[string]string{
		"protos/x/b.proto": `syntax = "proto3"; message B {}`,
		"protos/x/a.proto": `syntax = "proto3"; message A {}`,
		"protos/x/c.txt":   `not a proto file`,
	})
	require.Equal(t, 0, ts.run("parse", "-I", "protos", "-f", "json", "**/*.proto"), ts.stderr.String())

	dec := json.NewDecoder(ts.stdout)
	var names []string
	for dec.More() {
		var rec fileRecord
		require.NoError(t, dec.Decode(&rec))
		names = append(names, rec.File)
	}
	assert.Equal(t, []string{"x/a.proto", "x/b.proto"}, names)

	ts = newTestState(t, nil)
	assert.Equal(t, 1, ts.run("parse", "**/*.proto"))
	assert.Contains(t, ts.stderr.String(), `no files match "**/*.proto"`)
}

func TestParseDescriptor(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"a.proto": `syntax = "proto3"; package pkg; message A { map<string, A> children = 1; }`,
	}

	ts := newTestState(t, files)
	require.Equal(t, 0, ts.run("parse", "--format", "descriptor", "a.proto"), ts.stderr.String())
	var set descriptorpb.FileDescriptorSet
	require.NoError(t, protojson.Unmarshal(ts.stdout.Bytes(), &set))
	require.Len(t, set.GetFile(), 1)
	assert.Equal(t, "a.proto", set.GetFile()[0].GetName())
	assert.Equal(t, "ChildrenEntry", set.GetFile()[0].GetMessageType()[0].GetNestedType()[0].GetName())

	ts = newTestState(t, files)
	require.Equal(t, 0, ts.run("parse", "--format", "text", "a.proto"), ts.stderr.String())
	set.Reset()
	require.NoError(t, prototext.Unmarshal(ts.stdout.Bytes(), &set))
	assert.Equal(t, "pkg", set.GetFile()[0].GetPackage())
}

func TestParseReportsErrors(t *testing.T) {
	t.Parallel()
	ts := newTestState(t, map[string]string{
		"bad.proto":  "message A {\n  int32 x = 1\n}\n",
		"good.proto": `syntax = "proto3"; message B {}`,
	})
	assert.Equal(t, 1, ts.run("parse", "bad.proto", "good.proto"))
	assert.Empty(t, ts.stdout.String())
	stderr := ts.stderr.String()
	assert.Contains(t, stderr, `error: bad.proto:2:3: unexpected "int32"`)
	assert.Contains(t, stderr, "2 |   int32 x = 1\n  |   ^\n")
	// errors are only reported once
	assert.Equal(t, 1, strings.Count(stderr, "error:"))
}

func TestParseReportsWarnings(t *testing.T) {
	t.Parallel()
	ts := newTestState(t, map[string]string{
		"w.proto": "message W {}\n",
	})
	require.Equal(t, 0, ts.run("parse", "w.proto"))
	assert.Equal(t,
		"warning: w.proto:1:1: no syntax specified; defaulting to proto2 syntax\n"+
			"1 | message W {}\n"+
			"  | ^\n",
		ts.stderr.String())
}

func TestSymbols(t *testing.T) {
	t.Parallel()
	ts := newTestState(t, map[string]string{
		"s.proto": `syntax = "proto2";
package a.b;
message A {
  enum E { X = 0; }
  extensions 10 to 20;
}
extend A { optional int32 ext = 10; }
service S {}
`,
	})
	require.Equal(t, 0, ts.run("symbols", "s.proto"), ts.stderr.String())

	var got [][]string
	for _, line := range strings.Split(strings.TrimSpace(ts.stdout.String()), "\n") {
		fields := strings.Fields(line)
		require.Len(t, fields, 3, line)
		got = append(got, fields[:2])
	}
	assert.Equal(t, [][]string{
		{"a", "package"},
		{"a.b", "package"},
		{"a.b.A", "message"},
		{"a.b.A.E", "enum"},
		{"a.b.ext", "extension"},
		{"a.b.S", "service"},
	}, got)
	assert.Contains(t, ts.stdout.String(), "s.proto:3:9")
}

func TestInvalidConfig(t *testing.T) {
	t.Parallel()
	ts := newTestState(t, nil)
	assert.Equal(t, 1, ts.run("parse", "--format", "xml", "a.proto"))
	assert.Contains(t, ts.stderr.String(), `invalid format "xml"`)

	ts = newTestState(t, nil)
	assert.Equal(t, 1, ts.run("parse", "--resolve", "lenient", "a.proto"))
	assert.Contains(t, ts.stderr.String(), "lenient")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PROTOSCHEMA_FORMAT", "json")
	t.Setenv("PROTOSCHEMA_RESOLVE_MODE", "weak")
	files := map[string]string{
		"u.proto": `syntax = "proto3"; message U { Unknown u = 1; }`,
	}

	ts := newTestState(t, files)
	require.Equal(t, 0, ts.run("parse", "u.proto"), ts.stderr.String())
	var rec fileRecord
	require.NoError(t, json.Unmarshal(ts.stdout.Bytes(), &rec))
	assert.Equal(t, "Unknown", rec.Root.Nested[0].Fields[0].Type.Value)

	// flags win over the environment
	ts = newTestState(t, files)
	assert.Equal(t, 1, ts.run("parse", "--resolve", "strict", "u.proto"))
	assert.Contains(t, ts.stderr.String(), `invalid type "Unknown"`)
}

func TestConfigApply(t *testing.T) {
	t.Parallel()
	var flagConf Config
	flags := configFlagSet(&flagConf)
	require.NoError(t, flags.Parse([]string{"--format", "json", "-I", "a", "-I", "b", "-r", "none"}))

	conf := Config{Format: "yaml", LogLevel: "info", CamelCase: true}.apply(flags, flagConf)
	assert.Equal(t, Config{
		Format:      "json",
		LogLevel:    "info",
		CamelCase:   true,
		ImportPaths: []string{"a", "b"},
		ResolveMode: schema.ResolveNone,
	}, conf)
	assert.NoError(t, conf.Validate())
	conf.LogLevel = "loud"
	assert.Error(t, conf.Validate())
}
