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
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/walk"
)

func getSymbolsCmd(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols [flags] FILE...",
		Short: "List the declarations of files",
		Long: `List the fully-qualified names of the declarations of files: packages,
messages, enums, services, and extensions, one per line with its kind and
the position it is declared at.`,
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
			kindColor := c.newColor(c.gs.stdoutTTY, color.FgCyan)
			c.gs.outMutex.Lock()
			defer c.gs.outMutex.Unlock()
			tw := tabwriter.NewWriter(c.gs.stdout, 0, 4, 2, ' ', 0)
			for _, f := range files {
				err := walk.Symbols(f.Root, func(fullName string, n schema.Node) error {
					_, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.TrimPrefix(fullName, "."), kindColor.Sprint(symbolKind(n)), n.Pos())
					return err
				})
				if err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}

func symbolKind(n schema.Node) string {
	switch n.(type) {
	case *schema.Namespace:
		return "package"
	case *schema.Field:
		return "extension"
	}
	return strings.ToLower(strings.TrimSuffix(schema.KindOf(n), "Definition"))
}
