package platform

import (
	"fmt"
	"strings"
)

// Stub is a Platform with fixed fake windows. Every call is logged with the
// "stub" prefix; no real input is produced.
type Stub struct {
	logger Logger
}

// NewStub creates a stub platform.
func NewStub(logger Logger) *Stub {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Stub{logger: logger}
}

// Instances returns two windows for World of Warcraft patterns, one for
// zombie patterns and one generic window otherwise.
func (s *Stub) Instances(pattern string) []WindowInfo {
	s.logger.Info(fmt.Sprintf("get_instances(%q)", pattern))

	pat := strings.ToLower(pattern)
	switch {
	case strings.Contains(pat, "warcraft") || strings.Contains(pat, "wow"):
		return []WindowInfo{
			{ID: 10001, Title: "World of Warcraft"},
			{ID: 10002, Title: "World of Warcraft"},
		}
	case strings.Contains(pat, "僵尸") || strings.Contains(pat, "zombie"):
		return []WindowInfo{{ID: 20001, Title: "向僵尸开炮"}}
	default:
		return []WindowInfo{{ID: 30001, Title: fmt.Sprintf("Window<%s>", pattern)}}
	}
}

// CreateWindow returns a 1920x1080 fake window.
func (s *Stub) CreateWindow(pattern string, id WindowID) Window {
	s.logger.Info(fmt.Sprintf("create_window(%q, %d)", pattern, id))
	return &stubWindow{
		id:     id,
		title:  fmt.Sprintf("Stub-%d", id),
		region: NewRegion(0, 0, 1920, 1080),
		logger: s.logger,
	}
}

type stubWindow struct {
	id     WindowID
	title  string
	region Region
	logger Logger
}

func (w *stubWindow) ID() WindowID           { return w.id }
func (w *stubWindow) Title() string          { return w.title }
func (w *stubWindow) Region() (Region, bool) { return w.region, true }

func (w *stubWindow) Update() {
	w.logger.Info(fmt.Sprintf("win(%d).update()", w.id))
}

func (w *stubWindow) Activate() {
	w.logger.Info(fmt.Sprintf("win(%d).activate()", w.id))
}

func (w *stubWindow) ClickRelative(xRatio, yRatio float64) {
	w.logger.Info(fmt.Sprintf("win(%d).click_relative(%.2f, %.2f)", w.id, xRatio, yRatio))
}

func (w *stubWindow) Tap(key string) {
	w.logger.Info(fmt.Sprintf("win(%d).tap(%q)", w.id, key))
}

func (w *stubWindow) TypeText(text string) {
	w.logger.Info(fmt.Sprintf("win(%d).type_text(%q)", w.id, text))
}

func (w *stubWindow) Capture(rect *CaptureRect) (*Capture, bool) {
	if rect != nil {
		w.logger.Info(fmt.Sprintf("win(%d).capture(%+v)", w.id, *rect))
	} else {
		w.logger.Info(fmt.Sprintf("win(%d).capture(nil)", w.id))
	}
	return nil, false
}
