package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/nerrad567/finger/internal/infrastructure/config"
)

// DefaultSinkSize is the record buffer used when Options.SinkSize is zero.
const DefaultSinkSize = 1024

// Options adjusts how a Service is built.
type Options struct {
	// Console replaces the stdout/stderr writer. Used by tests.
	Console io.Writer

	// Sink enables record delivery through Records.
	Sink bool

	// SinkSize bounds the record buffer.
	SinkSize int
}

// Service owns the process-wide log pipeline: the console or file handler,
// the optional display sink and the prefix color table.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Service struct {
	root *Logger
	sink *sink
	file *os.File

	mu     sync.RWMutex
	colors map[string]Color
}

// NewService builds the log pipeline described by cfg.
//
// Output "file" truncates cfg.File.Path so every run starts with an empty
// log. Output "none" disables the console/file handler, leaving only the
// sink.
func NewService(cfg config.LoggingConfig, version string, opts Options) (*Service, error) {
	s := &Service{colors: make(map[string]Color)}
	level := parseLevel(cfg.Level)

	var handlers fanoutHandler

	w, tty, err := s.openOutput(cfg, opts.Console)
	if err != nil {
		return nil, err
	}
	if w != nil {
		h := newFormatHandler(w, cfg.Format, level, tty)
		if ch, ok := h.(*consoleHandler); ok {
			ch.colors = s.PrefixColor
		}
		handlers = append(handlers, h)
	}

	if opts.Sink {
		s.sink = newSink(opts.SinkSize)
		handlers = append(handlers, &sinkHandler{sink: s.sink, colors: s.PrefixColor})
	}

	s.root = &Logger{Logger: slog.New(withDefaults(handlers, version))}
	return s, nil
}

func (s *Service) openOutput(cfg config.LoggingConfig, console io.Writer) (io.Writer, bool, error) {
	switch strings.ToLower(cfg.Output) {
	case "none":
		return nil, false, nil
	case "file":
		if dir := filepath.Dir(cfg.File.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, false, fmt.Errorf("creating log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.File.Path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, false, fmt.Errorf("opening log file: %w", err)
		}
		s.file = f
		return f, false, nil
	}

	if console != nil {
		return console, false, nil
	}
	out := os.Stdout
	if strings.ToLower(cfg.Output) == "stderr" {
		out = os.Stderr
	}
	return out, term.IsTerminal(int(out.Fd())), nil
}

// Logger returns the root logger.
func (s *Service) Logger() *Logger {
	return s.root
}

// Prefixed returns a logger whose records carry prefix.
func (s *Service) Prefixed(prefix string) *Logger {
	return s.root.With(PrefixKey, prefix)
}

// RegisterPrefix sets the display color for prefix.
func (s *Service) RegisterPrefix(prefix string, c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors[prefix] = c
}

// PrefixColor returns the registered color of prefix, or ColorDefault.
func (s *Service) PrefixColor(prefix string) Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.colors[prefix]
}

// Records returns the display sink, or nil when the sink is disabled.
func (s *Service) Records() <-chan Record {
	if s.sink == nil {
		return nil
	}
	return s.sink.ch
}

// Dropped reports how many records the sink discarded because its buffer
// was full.
func (s *Service) Dropped() uint64 {
	if s.sink == nil {
		return 0
	}
	return s.sink.dropped.Load()
}

// Close releases the log file, if any.
func (s *Service) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
