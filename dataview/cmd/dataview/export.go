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
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clane9/dataviews/pkg/log"
	"github.com/clane9/dataviews/private/app/command"
)

func newExport(pather command.Pather, a *app) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "export <definition> <destination>",
		Short: "Write the data of a view to another location",
		Example: fmt.Sprintf(`  %[1]s export data.tsv.view /backup/data.tsv`,
			pather.CommandPath()),
		Long: `'export' materializes a view and writes the result to the destination
through the writer of the view. The view must have a writer.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			v, err := a.load(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			if err := v.Solidify(ctx, args[1]); err != nil {
				return err
			}
			log.Info("Exported view", "definition", args[0], "destination", args[1])
			return nil
		},
	}
	return cmd
}

// commandContext returns the context of cmd, canceled on interrupt, with the
// global logger attached.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.CtxWith(ctx, log.New())
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
