package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// consoleHandler writes one human readable line per record:
//
//	15:04:05 INFO  [wow] pulled boss target=3
//
// The prefix attribute is rendered in its registered color.
type consoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Level
	colors func(prefix string) Color
	attrs  []slog.Attr
	group  string
}

func newConsoleHandler(w io.Writer, level slog.Level) *consoleHandler {
	return &consoleHandler{
		mu:     &sync.Mutex{},
		w:      w,
		level:  level,
		colors: func(string) Color { return ColorDefault },
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	prefix, rest := splitAttrs(h.attrs, h.group, r)

	var b strings.Builder
	b.WriteString(r.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelLabel(r.Level))
	b.WriteByte(' ')
	if prefix != "" {
		b.WriteString(h.colors(prefix).paint("[" + prefix + "]"))
		b.WriteByte(' ')
	}
	b.WriteString(r.Message)
	b.WriteString(rest)
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), qualify(h.group, attrs)...)
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = joinKey(h.group, name)
	return &c
}

func levelLabel(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return color.RedString("ERROR")
	case l >= slog.LevelWarn:
		return color.YellowString("WARN ")
	case l >= slog.LevelInfo:
		return "INFO "
	default:
		return color.HiBlackString("DEBUG")
	}
}

// splitAttrs pulls the prefix out of bound and record attributes and
// formats the remainder as " key=value" pairs. The service and version
// defaults are omitted.
func splitAttrs(bound []slog.Attr, group string, r slog.Record) (string, string) {
	var (
		prefix string
		b      strings.Builder
	)
	add := func(a slog.Attr) {
		a.Value = a.Value.Resolve()
		switch a.Key {
		case PrefixKey:
			prefix = a.Value.String()
			return
		case "service", "version":
			return
		}
		if a.Value.Kind() == slog.KindGroup {
			for _, g := range a.Value.Group() {
				fmt.Fprintf(&b, " %s=%s", joinKey(a.Key, g.Key), g.Value.String())
			}
			return
		}
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value.String())
	}

	for _, a := range bound {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if group != "" && a.Key != PrefixKey {
			a.Key = joinKey(group, a.Key)
		}
		add(a)
		return true
	})
	return prefix, b.String()
}

func qualify(group string, attrs []slog.Attr) []slog.Attr {
	if group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		if a.Key != PrefixKey {
			a.Key = joinKey(group, a.Key)
		}
		out[i] = a
	}
	return out
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
