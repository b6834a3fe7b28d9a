// Package logging configures the zerolog logger used across holidate.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger with holidate-specific configuration
type Logger struct {
	*zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string
	Format string // "json" or "console"
	Out    io.Writer
}

// New creates a new configured logger. Output defaults to stderr because
// stdout carries query results.
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var output io.Writer = out
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: &logger}
}

// Nop returns a logger that discards everything; used by tests.
func Nop() *Logger {
	logger := zerolog.Nop()
	return &Logger{Logger: &logger}
}

// WithComponent returns a new logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	logger := l.Logger.With().Str("component", component).Logger()
	return &Logger{Logger: &logger}
}

// WithKey returns a new logger carrying a cache key
func (l *Logger) WithKey(country string, year int) *Logger {
	logger := l.Logger.With().
		Str("country", country).
		Int("year", year).
		Logger()
	return &Logger{Logger: &logger}
}

// Init initializes the global logger
func Init(cfg Config) *Logger {
	logger := New(cfg)
	log.Logger = *logger.Logger
	return logger
}
