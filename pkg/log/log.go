// Copyright 2020 Anapaya Systems
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

// Package log is a thin structured logging layer over zap. Log calls take a
// message followed by alternating key/value pairs:
//
//	log.Info("Saved view", "path", p, "targets", n)
//
// Until Setup is called, the root logger discards everything.
package log

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the log level.
type Level zapcore.Level

// The supported levels.
const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

var (
	rootMtx sync.RWMutex
	zapRoot = zap.NewNop()
)

// Setup configures the root logger according to cfg. It can be called
// multiple times; the last call wins.
func Setup(cfg Config) error {
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, err := parseLevel(cfg.Console.Level)
	if err != nil {
		return err
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.Console.Format == "json" {
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	opts := []zap.Option{zap.AddCallerSkip(1)}
	if !cfg.Console.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(lvl))

	rootMtx.Lock()
	defer rootMtx.Unlock()
	zapRoot = zap.New(core, opts...)
	return nil
}

// UseZap installs z as root logger. It is meant for embedding the package
// into programs that already configure zap themselves.
func UseZap(z *zap.Logger) {
	rootMtx.Lock()
	defer rootMtx.Unlock()
	zapRoot = z.WithOptions(zap.AddCallerSkip(1))
}

func parseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// Flush writes the buffered log entries.
func Flush() {
	rootMtx.RLock()
	defer rootMtx.RUnlock()
	_ = zapRoot.Sync()
}

// HandlePanic catches panics, logs them and exits the program. It has to be
// deferred at the top of every goroutine.
func HandlePanic() {
	if msg := recover(); msg != nil {
		Root().Error("Panic", "msg", msg, "stack", string(debug.Stack()))
		Flush()
		os.Exit(255)
	}
}

type logger struct {
	logger *zap.Logger
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return Root().New(ctx...)
}

// Root returns the root logger. It's a logger without any context.
func Root() Logger {
	rootMtx.RLock()
	defer rootMtx.RUnlock()
	return &logger{logger: zapRoot}
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

// WithOptions returns a copy of the logger with the zap options applied.
func (l *logger) WithOptions(opts ...zap.Option) Logger {
	return &logger{logger: l.logger.WithOptions(opts...)}
}

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...any) {
	Root().(*logger).withSkip().Debug(msg, ctx...)
}

// Info logs at info level on the root logger.
func Info(msg string, ctx ...any) {
	Root().(*logger).withSkip().Info(msg, ctx...)
}

// Error logs at error level on the root logger.
func Error(msg string, ctx ...any) {
	Root().(*logger).withSkip().Error(msg, ctx...)
}

func (l *logger) withSkip() *logger {
	return &logger{logger: l.logger.WithOptions(zap.AddCallerSkip(1))}
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprint(ctx[i])
		}
		fields = append(fields, zap.Any(key, ctx[i+1]))
	}
	return fields
}
