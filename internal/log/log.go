// SPDX-License-Identifier: Unlicense OR MIT

// Package log holds the structured logger shared by the render thread,
// the context arbiter and the native bindings.
package log

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Value

func init() {
	logger.Store(defaultLogger())
}

// Set replaces the logger. A nil logger silences logging.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// L returns the current logger.
func L() *zap.Logger {
	return logger.Load().(*zap.Logger)
}

// Named returns a logger named name that writes through the core of the
// logger set by Set at the time of each entry.
func Named(name string) *zap.Logger {
	return zap.New(current{}).Named(name)
}

// current is a zapcore.Core delegating to the core of L.
type current struct {
	fields []zapcore.Field
}

func (c current) core() zapcore.Core {
	core := L().Core()
	if len(c.fields) > 0 {
		core = core.With(c.fields)
	}
	return core
}

func (c current) Enabled(l zapcore.Level) bool {
	return L().Core().Enabled(l)
}

func (c current) With(fields []zapcore.Field) zapcore.Core {
	return current{fields: append(c.fields[:len(c.fields):len(c.fields)], fields...)}
}

func (c current) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.core().Check(e, ce)
}

func (c current) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.core().Write(e, fields)
}

func (c current) Sync() error {
	return L().Core().Sync()
}
