// Package logger configures structured logging for the leaderboard service.
// It wraps log/slog with level parsing, format selection, and common field
// constructors so log keys stay consistent across packages.
// No external dependencies - uses only standard library.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatJSON emits one JSON object per line. Default in production.
	FormatJSON Format = "json"

	// FormatText emits key=value pairs. Easier on the eyes in development.
	FormatText Format = "text"
)

// Options configures the logger.
type Options struct {
	// Output is the destination writer (default: os.Stdout).
	Output io.Writer

	// Level is the minimum level to emit (default: info).
	Level slog.Level

	// Format selects JSON or text encoding (default: json).
	Format Format

	// AddSource includes the file:line of the log call.
	AddSource bool
}

// DefaultOptions returns sensible defaults for the logger.
func DefaultOptions() Options {
	return Options{
		Output: os.Stdout,
		Level:  slog.LevelInfo,
		Format: FormatJSON,
	}
}

// New creates a configured *slog.Logger.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	switch opts.Format {
	case FormatText:
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	default:
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	}

	return slog.New(handler)
}

// Default creates a logger with default options.
func Default() *slog.Logger {
	return New(DefaultOptions())
}

// Discard creates a logger that drops everything. For tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a string into a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat parses a string into a Format, defaulting to JSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}

// Err creates an error field; nil-safe.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// Field constructors shared across the service so keys stay uniform.
func UserID(id int64) slog.Attr          { return slog.Int64("user_id", id) }
func ServerID(id int64) slog.Attr        { return slog.Int64("server_id", id) }
func Handle(h string) slog.Attr          { return slog.String("handle", h) }
func Period(kind string) slog.Attr       { return slog.String("period", kind) }
func Boundary(t time.Time) slog.Attr     { return slog.Time("boundary", t) }
func Component(name string) slog.Attr    { return slog.String("component", name) }
func Operation(name string) slog.Attr    { return slog.String("operation", name) }
func Latency(d time.Duration) slog.Attr  { return slog.String("latency", d.String()) }
func RequestID(id string) slog.Attr      { return slog.String("request_id", id) }
