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
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/private/app/command"
)

func newShow(pather command.Pather, a *app) *cobra.Command {
	var flags struct {
		format string
	}

	var cmd = &cobra.Command{
		Use:   "show <definition>",
		Short: "Show a view definition",
		Example: fmt.Sprintf(`  %[1]s show data.tsv.view
  %[1]s show data.tsv.view --format json`, pather.CommandPath()),
		Long: `'show' loads a view definition and prints it with the targets resolved to
absolute paths. The operations must be known to this binary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			v, err := a.load(args[0])
			if err != nil {
				return err
			}
			def, err := v.Definition()
			if err != nil {
				return err
			}
			return encodeAs(cmd.OutOrStdout(), flags.format, def)
		},
	}
	cmd.Flags().StringVar(&flags.format, "format", "toml",
		"Specify the output format (toml|json|yaml)")
	return cmd
}

// encodeAs writes v to w in one of the structured output formats.
func encodeAs(w io.Writer, format string, v any) error {
	switch format {
	case "toml":
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(v)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return serrors.New("output format not supported", "format", format)
	}
}
