// Copyright 2024 The dataviews Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
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

	"github.com/spf13/cobra"

	"github.com/clane9/dataviews/pkg/log"
	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view"
	"github.com/clane9/dataviews/pkg/view/op"
	"github.com/clane9/dataviews/private/app/command"
)

func newCreate(pather command.Pather, a *app) *cobra.Command {
	var flags struct {
		reader     string
		readerArgs []string
		writer     string
		writerArgs []string
		readOnly   bool
		output     string
	}

	var cmd = &cobra.Command{
		Use:   "create <target>...",
		Short: "Create a view definition",
		Example: fmt.Sprintf(`  %[1]s create data.tsv
  %[1]s create a.csv b.csv --reader delim --reader-arg sep=, -o ab.view
  %[1]s create users.db --reader sqlite --reader-arg table=users --read-only
  %[1]s create notes.txt.view extra.txt --reader text`, pather.CommandPath()),
		Long: `'create' writes a view definition over the given targets.

Targets are file paths or URIs. A target ending in the view extension is
loaded as a nested view, whose materialized value becomes the input of the
reader.

By default the writer is the reader operation with the reader arguments.
Arguments are given as key=value; values are parsed as bool, integer or
float where possible, and double quoted values are unquoted with Go syntax.
A key given several times becomes a list.

The definition is written to the first target plus the view extension,
unless --output is given. The targets are neither read nor required to exist.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			readerName := flags.reader
			if readerName == "" {
				readerName = a.cfg.View.Reader
			}
			readerArgs, err := op.ParseArgs(flags.readerArgs)
			if err != nil {
				return serrors.Wrap("parsing reader arguments", err)
			}
			reader, err := op.DefaultRegistry.Bind(readerName, readerArgs)
			if err != nil {
				return err
			}

			var writer op.Writer
			if !flags.readOnly {
				writerName, writerArgs := readerName, readerArgs
				if flags.writer != "" {
					writerName = flags.writer
					writerArgs = nil
				}
				if len(flags.writerArgs) > 0 {
					if writerArgs, err = op.ParseArgs(flags.writerArgs); err != nil {
						return serrors.Wrap("parsing writer arguments", err)
					}
				}
				if writer, err = op.DefaultRegistry.Bind(writerName, writerArgs); err != nil {
					return err
				}
			}

			targets := make([]view.Target, 0, len(args))
			for _, arg := range args {
				if strings.HasSuffix(arg, a.cfg.View.Extension) {
					nested, err := a.load(arg)
					if err != nil {
						return err
					}
					targets = append(targets, view.Nested(nested))
					continue
				}
				targets = append(targets, view.Path(arg))
			}
			v, err := view.New(reader, writer, targets...)
			if err != nil {
				return err
			}

			output := flags.output
			if output == "" {
				output = args[0] + a.cfg.View.Extension
			}
			if err := v.Save(output); err != nil {
				return err
			}
			log.Info("Created view", "definition", output, "reader", readerName,
				"targets", len(targets))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}
	cmd.Flags().StringVar(&flags.reader, "reader", "",
		"Reader operation (default from config, delim if unset)")
	cmd.Flags().StringArrayVar(&flags.readerArgs, "reader-arg", nil,
		"Reader argument as key=value (repeatable)")
	cmd.Flags().StringVar(&flags.writer, "writer", "",
		"Writer operation (default the reader operation)")
	cmd.Flags().StringArrayVar(&flags.writerArgs, "writer-arg", nil,
		"Writer argument as key=value (repeatable, default the reader arguments)")
	cmd.Flags().BoolVar(&flags.readOnly, "read-only", false, "Create the view without writer")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Definition file")
	cmd.MarkFlagsMutuallyExclusive("read-only", "writer")
	cmd.MarkFlagsMutuallyExclusive("read-only", "writer-arg")
	return cmd
}
