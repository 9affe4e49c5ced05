package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Record is a log line prepared for display.
type Record struct {
	Level   slog.Level
	Prefix  string
	Color   Color
	Time    time.Time
	Message string
}

// sink delivers records to a single subscriber through a bounded channel.
// Records are dropped when the subscriber falls behind.
type sink struct {
	ch      chan Record
	dropped atomic.Uint64
}

func newSink(size int) *sink {
	if size <= 0 {
		size = DefaultSinkSize
	}
	return &sink{ch: make(chan Record, size)}
}

func (s *sink) deliver(r Record) {
	select {
	case s.ch <- r:
	default:
		s.dropped.Add(1)
	}
}

// sinkHandler converts slog records for the sink. Only INFO and above are
// forwarded.
type sinkHandler struct {
	sink   *sink
	colors func(prefix string) Color
	attrs  []slog.Attr
	group  string
}

func (h *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (h *sinkHandler) Handle(_ context.Context, r slog.Record) error {
	prefix, rest := splitAttrs(h.attrs, h.group, r)
	h.sink.deliver(Record{
		Level:   r.Level,
		Prefix:  prefix,
		Color:   h.colors(prefix),
		Time:    r.Time,
		Message: strings.TrimSpace(r.Message + rest),
	})
	return nil
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), qualify(h.group, attrs)...)
	return &c
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = joinKey(h.group, name)
	return &c
}

// fanoutHandler passes each record to every enabled child.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
