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
	"context"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bufbuild/protoschema/reporter"
)

// globalState holds what commands need from the process, so that tests can
// swap it out.
type globalState struct {
	ctx context.Context
	fs  afero.Fs

	stdout, stderr       io.Writer
	stdoutTTY, stderrTTY bool
	outMutex             *sync.Mutex

	logger *logrus.Logger
}

func newGlobalState(ctx context.Context) *globalState {
	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	stderrTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	stderr := colorable.NewColorableStderr()
	return &globalState{
		ctx:       ctx,
		fs:        afero.NewOsFs(),
		stdout:    colorable.NewColorableStdout(),
		stderr:    stderr,
		stdoutTTY: stdoutTTY,
		stderrTTY: stderrTTY,
		outMutex:  &sync.Mutex{},
		logger: &logrus.Logger{
			Out:       stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.WarnLevel,
		},
	}
}

// rootCommand keeps all fields needed by the root command and shared with
// its subcommands.
type rootCommand struct {
	gs       *globalState
	cmd      *cobra.Command
	conf     Config
	flagConf Config
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:               "protoschema",
		Short:             "parse Protocol Buffers schemas",
		Long:              "Parse .proto files into schema trees and print them as YAML, JSON, or descriptors.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	c.cmd.SetOut(gs.stdout)
	c.cmd.SetErr(gs.stderr)
	c.cmd.PersistentFlags().AddFlagSet(configFlagSet(&c.flagConf))
	c.cmd.AddCommand(
		getParseCmd(c),
		getSymbolsCmd(c),
	)
	return c
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	conf, err := readEnvConfig()
	if err != nil {
		return err
	}
	conf = conf.apply(cmd.Flags(), c.flagConf)
	if err := conf.Validate(); err != nil {
		return err
	}
	c.conf = conf

	level, _ := logrus.ParseLevel(conf.LogLevel)
	c.gs.logger.SetLevel(level)
	if conf.NoColor {
		c.gs.stdout = colorable.NewNonColorable(c.gs.stdout)
		c.gs.stderr = colorable.NewNonColorable(c.gs.stderr)
		c.gs.logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}
	c.gs.logger.WithField("config", conf).Debug("configured")
	return nil
}

// colorize reports whether output to the given stream may use colors.
func (c *rootCommand) colorize(tty bool) bool {
	return tty && !c.conf.NoColor
}

// newColor returns a color that is only applied when output to the given
// stream may use colors.
func (c *rootCommand) newColor(tty bool, attrs ...color.Attribute) *color.Color {
	col := color.New(attrs...)
	if c.colorize(tty) {
		col.EnableColor()
	} else {
		col.DisableColor()
	}
	return col
}

// printDiagnostic renders an error or warning to stderr. src is the content
// of the file the diagnostic points into, if available.
func (c *rootCommand) printDiagnostic(level reporter.Level, err error, src []byte) {
	r := reporter.Renderer{Colorize: c.colorize(c.gs.stderrTTY)}
	c.gs.outMutex.Lock()
	defer c.gs.outMutex.Unlock()
	_, _ = io.WriteString(c.gs.stderr, r.Render(level, err, src))
}

// execute runs the command line and returns the process exit code.
func execute(gs *globalState, args []string) int {
	c := newRootCommand(gs)
	c.cmd.SetArgs(args)
	if err := c.cmd.ExecuteContext(gs.ctx); err != nil {
		if !isReported(err) {
			c.printDiagnostic(reporter.LevelError, err, nil)
		}
		return 1
	}
	return 0
}
