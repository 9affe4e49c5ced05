package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/finger/internal/infrastructure/config"
)

// PrefixKey is the attribute that tags a record with a source prefix.
const PrefixKey = "prefix"

// Logger wraps slog.Logger with finger-specific functionality.
//
// It provides structured logging with default fields and level-based filtering.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a standalone Logger writing to stdout or stderr.
//
// It configures:
//   - Output format (JSON or text)
//   - Log level filtering
//   - Default fields (service name, version)
//
// Use NewService when the log needs to reach a file or the terminal UI.
func New(cfg config.LoggingConfig, version string) *Logger {
	// Determine output writer
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	handler := newFormatHandler(output, cfg.Format, parseLevel(cfg.Level), false)

	return &Logger{
		Logger: slog.New(withDefaults(handler, version)),
	}
}

// newFormatHandler builds the console or file handler for format. Console
// formatting is used for "auto" when the writer is a terminal.
func newFormatHandler(w io.Writer, format string, level slog.Level, tty bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(format) {
	case "text":
		return slog.NewTextHandler(w, opts)
	case "auto":
		if tty {
			return newConsoleHandler(w, level)
		}
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

func withDefaults(h slog.Handler, version string) slog.Handler {
	return h.WithAttrs([]slog.Attr{
		slog.String("service", "finger"),
		slog.String("version", version),
	})
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	mqttLogger := logger.With("component", "mqtt")
//	mqttLogger.Info("connected") // Includes component=mqtt
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default creates a default logger for use before configuration is loaded.
//
// This logger outputs to stderr in text format at info level.
// It should only be used during early startup before config is available.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}, "dev")
}
