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

package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clane9/dataviews/private/config"
)

// NewSample creates a command that prints a commented sample of cfg. The
// sample is valid TOML and holds the default values.
func NewSample(pather Pather, cfg config.Sampler) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sample",
		Short:   "Display sample configuration file",
		Example: fmt.Sprintf("  %[1]s sample > dataview.toml", pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			config.WriteSample(cmd.OutOrStdout(), nil, nil, cfg)
			return nil
		},
	}
	return cmd
}
