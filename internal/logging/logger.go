// Package logging provides the structured logger used by the command line
// tool.
package logging

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Level is a log level name.
type Level string

// Supported levels
const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func (l Level) charm() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Config controls where and how much is logged.
type Config struct {
	Level      Level
	Output     io.Writer
	Timestamps bool
	TimeFormat string
	Prefix     string
}

// DefaultConfig logs info and above to stderr without timestamps.
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

type logger struct {
	charm *charmlog.Logger
}

// New returns a Logger backed by charmbracelet/log.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		Level:           cfg.Level.charm(),
		ReportTimestamp: cfg.Timestamps,
		TimeFormat:      cfg.TimeFormat,
		Prefix:          cfg.Prefix,
	})
	return &logger{charm: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return New(&Config{Level: ErrorLevel, Output: io.Discard})
}

func (l *logger) Debug(msg string, keyvals ...any) { l.charm.Debug(msg, keyvals...) }
func (l *logger) Info(msg string, keyvals ...any)  { l.charm.Info(msg, keyvals...) }
func (l *logger) Warn(msg string, keyvals ...any)  { l.charm.Warn(msg, keyvals...) }
func (l *logger) Error(msg string, keyvals ...any) { l.charm.Error(msg, keyvals...) }
