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
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/clane9/dataviews/pkg/formats"
	"github.com/clane9/dataviews/pkg/log"
	"github.com/clane9/dataviews/private/app/command"
)

func newMaterialize(pather command.Pather, a *app) *cobra.Command {
	var flags struct {
		format string
	}

	var cmd = &cobra.Command{
		Use:     "materialize <definition>",
		Aliases: []string{"cat"},
		Short:   "Read the data of a view",
		Example: fmt.Sprintf(`  %[1]s materialize data.tsv.view
  %[1]s materialize users.db.view --format json`, pather.CommandPath()),
		Long: `'materialize' loads a view definition, reads its targets through the
reader of the view and prints the result.

In human format, tables are printed as aligned columns, key/value data as a
two column table, text and bytes verbatim, and everything else as yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			v, err := a.load(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			data, err := v.Materialize(ctx)
			if err != nil {
				return err
			}
			log.FromCtx(ctx).Debug("Materialized", "definition", args[0],
				"type", fmt.Sprintf("%T", data))
			if flags.format == "human" {
				return render(cmd.OutOrStdout(), data)
			}
			return encodeAs(cmd.OutOrStdout(), flags.format, data)
		},
	}
	cmd.Flags().StringVar(&flags.format, "format", "human",
		"Specify the output format (human|json|yaml|toml)")
	return cmd
}

// render writes data in human readable form.
func render(w io.Writer, data any) error {
	switch d := data.(type) {
	case *formats.Table:
		renderTable(w, d.Header, d.Rows)
		return nil
	case map[string]string:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, d[k]})
		}
		renderTable(w, []string{"KEY", "VALUE"}, rows)
		return nil
	case string:
		_, err := io.WriteString(w, d)
		return err
	case []byte:
		_, err := w.Write(d)
		return err
	default:
		return encodeAs(w, "yaml", data)
	}
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	if len(header) > 0 {
		table.SetHeader(header)
	}
	table.AppendBulk(rows)
	table.Render()
}
