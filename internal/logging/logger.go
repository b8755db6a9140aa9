// Package logging provides a configured slog logger for typesig.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	// FormatText writes key=value lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. The empty string selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text or json)", s)
	}
}

// Options configures the default slog logger used by typesig.
type Options struct {
	// Verbose toggles debug level logging when true.
	Verbose bool
	// Format selects text or JSON output; defaults to text.
	Format Format
	// Writer directs log output; defaults to os.Stderr when nil.
	Writer io.Writer
}

// New constructs a slog.Logger with typesig defaults.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}
	return slog.New(handler)
}

// Logger is a generic logging interface that abstracts slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// SlogAdapter adapts *slog.Logger to the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) {
	s.logger.Debug(msg, args...)
}

// Info logs an info message.
func (s *SlogAdapter) Info(msg string, args ...any) {
	s.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) {
	s.logger.Warn(msg, args...)
}

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) {
	s.logger.Error(msg, args...)
}

// With returns a new Logger with the given attributes.
func (s *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(args...)}
}

var _ Logger = (*SlogAdapter)(nil)

// NopLogger is a logger that discards all output.
type NopLogger struct{}

// NewNopLogger creates a new NopLogger.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug is a no-op.
func (n *NopLogger) Debug(_ string, _ ...any) {}

// Info is a no-op.
func (n *NopLogger) Info(_ string, _ ...any) {}

// Warn is a no-op.
func (n *NopLogger) Warn(_ string, _ ...any) {}

// Error is a no-op.
func (n *NopLogger) Error(_ string, _ ...any) {}

// With returns the same NopLogger.
func (n *NopLogger) With(_ ...any) Logger {
	return n
}

var _ Logger = (*NopLogger)(nil)
