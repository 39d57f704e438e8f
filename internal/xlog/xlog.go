// Package xlog provides the tokenizer's structured logger: debug dumps
// (spec §7, "prints a debug dump of the partial state if debugwarnings is
// on") and progress lines are written through it, while diagnostics proper
// go through internal/report instead.
package xlog

import "go.uber.org/zap"

// Logger wraps a zap.SugaredLogger with the handful of call sites the
// driver and simplifier passes actually need.
type Logger struct {
	z *zap.SugaredLogger
}

// New builds a Logger. When verbose is true it uses zap's human-readable
// development encoder config; otherwise it uses the production JSON
// encoder, suitable for piping into log aggregation the way a CI run
// would.
func New(verbose bool) *Logger {
	var z *zap.Logger
	var err error
	if verbose {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z.Sugar()}
}

// Nop returns a Logger that discards everything, for tests and library
// callers who never configured one.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

// Debugf logs a debug-level message, used for the "debugwarnings" dumps of
// spec §7 (e.g. a skipped, unsupported typedef form).
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil {
		return
	}
	l.z.Debugf(format, args...)
}

// Progress logs a progress callback invocation (spec §5, reportProgress),
// at Info level with structured fields so a log aggregator can chart it.
func (l *Logger) Progress(file, stage string, value int) {
	if l == nil {
		return
	}
	l.z.Infow("progress", "file", file, "stage", stage, "percent", value)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() {
	if l == nil {
		return
	}
	_ = l.z.Sync()
}
