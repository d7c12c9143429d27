// Package log defines the narrow, leveled logging contract the repeater's
// core depends on, plus a zap-backed implementation. The core never imports
// zap directly; it only ever sees the Logger interface, so it can be tested
// with a recording fake without pulling in a logging framework.
package log

import "go.uber.org/zap"

// Logger is a small structured, leveled logging interface. Each method
// takes a message and an even-length list of key/value pairs, mirroring
// the convention used throughout the example corpus's own logging
// abstractions.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// zapLogger adapts *zap.Logger to Logger.
type zapLogger struct {
	l *zap.Logger
}

// New builds a Logger backed by a production zap configuration.
func New() Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{l: l}
}

// NewDevelopment builds a Logger backed by zap's human-readable
// development configuration (console encoding, debug level); used by the
// CLI's -v flag.
func NewDevelopment() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{l: l}
}

// Nop returns a Logger that discards everything, for tests.
func Nop() Logger { return &zapLogger{l: zap.NewNop()} }

func (z *zapLogger) Debug(msg string, keyvals ...any) { z.l.Sugar().Debugw(msg, keyvals...) }
func (z *zapLogger) Info(msg string, keyvals ...any)  { z.l.Sugar().Infow(msg, keyvals...) }
func (z *zapLogger) Warn(msg string, keyvals ...any)  { z.l.Sugar().Warnw(msg, keyvals...) }
func (z *zapLogger) Error(msg string, keyvals ...any) { z.l.Sugar().Errorw(msg, keyvals...) }

// Sync flushes any buffered log entries. Call before process exit.
func Sync(logger Logger) {
	if z, ok := logger.(*zapLogger); ok {
		_ = z.l.Sync()
	}
}
