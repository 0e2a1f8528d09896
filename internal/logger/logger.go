// Package logger provides leveled logging for ewsctl.
//
// Components receive a *Logger at construction. The package-level helpers
// (SetVerbose, Debug, Info, Warn, Error) operate on a default instance used
// by the CLI before any component exists.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger writes leveled, optionally structured log lines.
type Logger struct {
	entry *logrus.Entry
}

// Options configures a new Logger.
type Options struct {
	// Out is the destination, stderr when nil.
	Out io.Writer
	// Verbose enables debug output.
	Verbose bool
	// JSON switches to the JSON formatter.
	JSON bool
}

// New creates a Logger.
func New(opts Options) *Logger {
	base := logrus.New()
	if opts.Out != nil {
		base.SetOutput(opts.Out)
	} else {
		base.SetOutput(os.Stderr)
	}
	if opts.JSON {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	if opts.Verbose {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.InfoLevel)
	}
	return &Logger{entry: logrus.NewEntry(base)}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.PanicLevel)
	return &Logger{entry: logrus.NewEntry(base)}
}

// With returns a child Logger carrying the given fields.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// SetVerbose toggles debug output.
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.entry.Logger.SetLevel(logrus.DebugLevel)
		return
	}
	l.entry.Logger.SetLevel(logrus.InfoLevel)
}

// IsVerbose reports whether debug output is enabled.
func (l *Logger) IsVerbose() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

// Warn logs at warning level.
func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(Options{})
)

// Default returns the process-wide logger used by the CLI.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// SetVerbose toggles debug output on the default logger.
func SetVerbose(verbose bool) {
	Default().SetVerbose(verbose)
}

// Debug logs at debug level on the default logger.
func Debug(format string, args ...any) {
	Default().Debug(format, args...)
}

// Info logs at info level on the default logger.
func Info(format string, args ...any) {
	Default().Info(format, args...)
}

// Warn logs at warning level on the default logger.
func Warn(format string, args ...any) {
	Default().Warn(format, args...)
}

// Error logs at error level on the default logger.
func Error(format string, args ...any) {
	Default().Error(format, args...)
}
