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
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/bufbuild/protoschema/parser"
	"github.com/bufbuild/protoschema/schema"
)

const envPrefix = "protoschema"

// Config holds the settings shared by all commands. Values are read from
// PROTOSCHEMA_* environment variables; flags given on the command line take
// precedence.
type Config struct {
	ResolveMode    schema.ResolveMode `envconfig:"resolve_mode"`
	StrictComments bool               `envconfig:"strict_comments"`
	CamelCase      bool               `envconfig:"camel_case"`
	Format         string             `envconfig:"format" default:"yaml"`
	ImportPaths    []string           `envconfig:"import_paths"`
	FollowImports  bool               `envconfig:"follow_imports"`
	LogLevel       string             `envconfig:"log_level" default:"warning"`
	Parallelism    int                `envconfig:"parallelism"`
	NoColor        bool               `envconfig:"no_color"`
}

// ParserOptions returns the parser options selected by the config.
func (c Config) ParserOptions() parser.Options {
	return parser.Options{
		CamelCase:      c.CamelCase,
		StrictComments: c.StrictComments,
		ResolveMode:    c.ResolveMode,
	}
}

// Validate checks the values that are not checked while decoding.
func (c Config) Validate() error {
	switch c.Format {
	case formatYAML, formatJSON, formatDescriptor, formatText:
	default:
		return fmt.Errorf("invalid format %q: must be one of %s, %s, %s, or %s", c.Format, formatYAML, formatJSON, formatDescriptor, formatText)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("invalid parallelism %d: must not be negative", c.Parallelism)
	}
	return nil
}

// readEnvConfig reads configuration variables from the environment.
func readEnvConfig() (conf Config, err error) {
	err = envconfig.Process(envPrefix, &conf)
	return conf, err
}

// configFlagSet returns the flags that override the environment, bound to
// conf.
func configFlagSet(conf *Config) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.VarP(&conf.ResolveMode, "resolve", "r", "type resolution mode: strict, weak, or none")
	flags.BoolVar(&conf.StrictComments, "strict-comments", false, "only attach /** and /// doc comments")
	flags.BoolVar(&conf.CamelCase, "camel-case", false, "convert field and oneof names to camelCase")
	flags.StringVarP(&conf.Format, "format", "f", formatYAML, "output `format`: yaml, json, descriptor, or text")
	flags.StringSliceVarP(&conf.ImportPaths, "import-path", "I", nil, "`dir`ectory to search for files; may be repeated")
	flags.BoolVar(&conf.FollowImports, "follow-imports", false, "also parse the files imported by each input")
	flags.StringVar(&conf.LogLevel, "log-level", "warning", "log `level`: debug, info, warning, or error")
	flags.IntVarP(&conf.Parallelism, "parallelism", "j", 0, "maximum number of files parsed at once; 0 uses all CPUs")
	flags.BoolVar(&conf.NoColor, "no-color", false, "disable colored output")
	return flags
}

// apply copies the values of the flags that were set on the command line
// from flagConf into c.
func (c Config) apply(flags *pflag.FlagSet, flagConf Config) Config {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "resolve":
			c.ResolveMode = flagConf.ResolveMode
		case "strict-comments":
			c.StrictComments = flagConf.StrictComments
		case "camel-case":
			c.CamelCase = flagConf.CamelCase
		case "format":
			c.Format = flagConf.Format
		case "import-path":
			c.ImportPaths = flagConf.ImportPaths
		case "follow-imports":
			c.FollowImports = flagConf.FollowImports
		case "log-level":
			c.LogLevel = flagConf.LogLevel
		case "parallelism":
			c.Parallelism = flagConf.Parallelism
		case "no-color":
			c.NoColor = flagConf.NoColor
		}
	})
	return c
}
