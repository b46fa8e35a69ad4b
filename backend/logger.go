package backend

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

// loggerHooks receive every logger passed to SetLogger.
var (
	hooksMu     sync.Mutex
	loggerHooks []func(*slog.Logger)
)

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// slogger returns the current package logger.
func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger updates the logger of this package and of every registered
// backend package. Called from webgl.SetLogger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)

	hooksMu.Lock()
	hooks := slices.Clone(loggerHooks)
	hooksMu.Unlock()
	for _, hook := range hooks {
		hook(l)
	}
}

// OnSetLogger registers fn to receive the logger on every SetLogger call.
// Backend packages call it from init() to share the webgl logger.
// fn is invoked immediately with the current logger.
func OnSetLogger(fn func(*slog.Logger)) {
	hooksMu.Lock()
	loggerHooks = append(loggerHooks, fn)
	hooksMu.Unlock()
	fn(slogger())
}
