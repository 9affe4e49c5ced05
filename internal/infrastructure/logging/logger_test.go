package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/finger/internal/infrastructure/config"
)

func TestNew_JSONFormat(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}

	logger := New(cfg, "1.0.0")

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNew_TextFormat(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "debug",
		Format: "text",
		Output: "stderr",
	}

	logger := New(cfg, "1.0.0")

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if !logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug level not enabled")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{name: "debug level", input: "debug", expected: slog.LevelDebug},
		{name: "info level", input: "info", expected: slog.LevelInfo},
		{name: "warn level", input: "warn", expected: slog.LevelWarn},
		{name: "warning level", input: "warning", expected: slog.LevelWarn},
		{name: "error level", input: "error", expected: slog.LevelError},
		{name: "unknown defaults to info", input: "unknown", expected: slog.LevelInfo},
		{name: "empty defaults to info", input: "", expected: slog.LevelInfo},
		{name: "case insensitive", input: "DEBUG", expected: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	logger := Default()
	childLogger := logger.With("component", "mqtt")

	if childLogger == nil {
		t.Fatal("expected non-nil child logger")
	}

	if childLogger == logger {
		t.Error("expected child logger to be different from parent")
	}
}

func TestLogger_OutputContainsDefaultFields(t *testing.T) {
	var buf bytes.Buffer

	handler := withDefaults(newFormatHandler(&buf, "json", slog.LevelInfo, false), "test")
	logger := &Logger{Logger: slog.New(handler)}
	logger.Info("test message", "key", "value")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if logEntry["service"] != "finger" {
		t.Errorf("expected service='finger', got %v", logEntry["service"])
	}
	if logEntry["version"] != "test" {
		t.Errorf("expected version='test', got %v", logEntry["version"])
	}
	if logEntry["msg"] != "test message" {
		t.Errorf("expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("expected key='value', got %v", logEntry["key"])
	}
}

func TestNewFormatHandler_Auto(t *testing.T) {
	var buf bytes.Buffer

	if _, ok := newFormatHandler(&buf, "auto", slog.LevelInfo, true).(*consoleHandler); !ok {
		t.Error("auto on a terminal should use the console handler")
	}
	if _, ok := newFormatHandler(&buf, "auto", slog.LevelInfo, false).(*slog.JSONHandler); !ok {
		t.Error("auto off a terminal should use JSON")
	}
	if _, ok := newFormatHandler(&buf, "text", slog.LevelInfo, true).(*slog.TextHandler); !ok {
		t.Error("text should use the slog text handler")
	}
}

func TestConsoleHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelInfo)
	logger := slog.New(withDefaults(h, "test")).With(PrefixKey, "wow")

	logger.Info("pulled boss", "target", 3)
	logger.Debug("hidden")
	logger.WithGroup("tick").Warn("slow", "ms", 900)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q, want 2", lines)
	}
	if !strings.Contains(lines[0], "[wow]") || !strings.HasSuffix(lines[0], "pulled boss target=3") {
		t.Errorf("line = %q", lines[0])
	}
	if strings.Contains(lines[0], "service=") {
		t.Errorf("default fields leaked into console line: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "slow tick.ms=900") {
		t.Errorf("grouped line = %q", lines[1])
	}
}
