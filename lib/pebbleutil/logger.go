package pebbleutil

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// Logger sends pebble logs to a slog.Logger.
// Pebble messages are logged at Info and Error, its trace events at Debug.
type Logger struct {
	l *slog.Logger
}

// NewLogger returns a pebble logger writing to l.
func NewLogger(l *slog.Logger) Logger {
	return Logger{l: l.With(slog.String("component", "pebble"))}
}

func format(f string, args []interface{}) string {
	return strings.TrimSuffix(fmt.Sprintf(f, args...), "\n")
}

// Infof implements LoggerAndTracer.
func (l Logger) Infof(f string, args ...interface{}) {
	l.l.Info(format(f, args))
}

// Errorf implements LoggerAndTracer.
func (l Logger) Errorf(f string, args ...interface{}) {
	l.l.Error(format(f, args))
}

// Fatalf implements LoggerAndTracer. It panics instead of exiting.
func (l Logger) Fatalf(f string, args ...interface{}) {
	msg := format(f, args)
	l.l.Error(msg, slog.Bool("fatal", true))
	panic(errors.Newf("pebble: %s", msg))
}

// Eventf implements LoggerAndTracer.
func (l Logger) Eventf(ctx context.Context, f string, args ...interface{}) {
	l.l.DebugContext(ctx, format(f, args))
}

// IsTracingEnabled implements LoggerAndTracer.
func (l Logger) IsTracingEnabled(ctx context.Context) bool {
	return l.l.Enabled(ctx, slog.LevelDebug)
}
