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
	"io"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	dvconfig "github.com/clane9/dataviews/dataview/config"
	"github.com/clane9/dataviews/pkg/formats"
	"github.com/clane9/dataviews/pkg/log"
	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view"
	"github.com/clane9/dataviews/pkg/view/op"
	"github.com/clane9/dataviews/private/app/command"
	"github.com/clane9/dataviews/private/config"
)

// Configuration keys. Flags and environment variables are bound to these
// keys, so that flags take precedence over the environment, which takes
// precedence over the configuration file.
const (
	cfgConfigFile      = "config"
	cfgLogConsoleLevel = "log.console.level"
)

var registerFormats = sync.OnceValue(func() error {
	return formats.Register(op.DefaultRegistry)
})

// app holds the state shared by all subcommands of one invocation.
type app struct {
	root    *cobra.Command
	config  *viper.Viper
	cfg     dvconfig.Config
	promReg *prometheus.Registry
	metrics *view.Metrics
	tracer  io.Closer
}

func newApp() *app {
	a := &app{config: viper.New()}
	a.root = a.newRootCommand()
	return a
}

// execute runs the command line and then releases the resources of the run,
// whether the command succeeded or not.
func (a *app) execute() error {
	err := a.root.Execute()
	if tErr := a.teardown(); tErr != nil && err == nil {
		err = tErr
	}
	return err
}

func (a *app) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataview",
		Short: "Create and materialize data views",
		Long: `dataview manages view definitions.

A view definition is a small file that describes how to read data from one or
more targets, and how to write it back. It never contains the data itself.
Materializing the definition reads the targets afresh.`,
		Example: `  dataview create data.tsv --reader delim --reader-arg 'sep="\t"'
  dataview materialize data.tsv.view
  dataview export data.tsv.view copy.tsv`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	a.bindFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newCreate(cmd, a),
		newShow(cmd, a),
		newMaterialize(cmd, a),
		newExport(cmd, a),
		command.NewSample(cmd, &a.cfg),
		command.NewCompletion(cmd),
		command.NewGendocs(cmd),
	)
	return cmd
}

// bindFlags registers the global flags and binds them, together with their
// environment variables, to the configuration keys.
func (a *app) bindFlags(fs *pflag.FlagSet) {
	fs.String(cfgConfigFile, "", "Configuration file (env DATAVIEW_CONFIG)")
	fs.String("log.level", "",
		"Console logging level (debug|info|error) (env DATAVIEW_LOG_LEVEL)")

	a.config.SetDefault(cfgLogConsoleLevel, log.DefaultConsoleLevel)
	// Binding errors only occur for empty keys.
	_ = a.config.BindPFlag(cfgConfigFile, fs.Lookup(cfgConfigFile))
	_ = a.config.BindPFlag(cfgLogConsoleLevel, fs.Lookup("log.level"))
	_ = a.config.BindEnv(cfgConfigFile, "DATAVIEW_CONFIG")
	_ = a.config.BindEnv(cfgLogConsoleLevel, "DATAVIEW_LOG_LEVEL")
}

// setup loads the configuration and initializes logging, metrics and
// tracing.
func (a *app) setup() error {
	if err := registerFormats(); err != nil {
		return serrors.Wrap("registering formats", err)
	}
	if file := a.config.GetString(cfgConfigFile); file != "" {
		a.config.SetConfigType("toml")
		a.config.SetConfigFile(file)
		if err := a.config.ReadInConfig(); err != nil {
			return serrors.Wrap("loading config from file", err, "file", file)
		}
		if err := config.LoadFile(file, &a.cfg); err != nil {
			return err
		}
	}
	a.cfg.Logging.Console.Level = a.config.GetString(cfgLogConsoleLevel)
	a.cfg.InitDefaults()
	if err := a.cfg.Validate(); err != nil {
		return serrors.Wrap("validating config", err)
	}
	if err := log.Setup(a.cfg.Logging); err != nil {
		return serrors.Wrap("initializing logging", err)
	}
	a.promReg = prometheus.NewRegistry()
	a.metrics = view.NewMetrics(a.promReg)

	tracer, closer, err := a.cfg.Tracing.NewTracer("dataview")
	if err != nil {
		return err
	}
	opentracing.SetGlobalTracer(tracer)
	a.tracer = closer
	return nil
}

// teardown flushes the traces and writes the metrics of the run, if
// configured. It is a no-op if setup did not run.
func (a *app) teardown() error {
	defer log.Flush()
	var errs serrors.List
	if a.tracer != nil {
		if err := a.tracer.Close(); err != nil {
			errs = append(errs, serrors.Wrap("closing tracer", err))
		}
		opentracing.SetGlobalTracer(opentracing.NoopTracer{})
		a.tracer = nil
	}
	if file := a.cfg.Metrics.Textfile; file != "" && a.promReg != nil {
		if err := prometheus.WriteToTextfile(file, a.promReg); err != nil {
			errs = append(errs, serrors.Wrap("writing metrics", err, "file", file))
		} else {
			log.Debug("Wrote metrics", "file", file)
		}
	}
	return errs.ToError()
}

// load reads a view definition with the runtime options of the app.
func (a *app) load(path string) (*view.View, error) {
	return view.FromPath(path, view.WithMetrics(a.metrics))
}
