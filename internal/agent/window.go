package agent

import (
	"sync/atomic"

	"github.com/nerrad567/finger/internal/hint"
	"github.com/nerrad567/finger/internal/platform"
)

// GatedWindow exposes a platform.Window to a script. Every operation is
// dropped with a warning unless the window is active.
type GatedWindow struct {
	win        platform.Window
	instanceID string
	active     atomic.Bool
	logger     Logger
}

// NewGatedWindow wraps win for the agent instanceID. The window starts
// inactive.
func NewGatedWindow(win platform.Window, instanceID string, logger Logger) *GatedWindow {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &GatedWindow{win: win, instanceID: instanceID, logger: logger}
}

// SetActive sets the gate.
func (g *GatedWindow) SetActive(active bool) { g.active.Store(active) }

func (g *GatedWindow) allow(op string) bool {
	if g.active.Load() {
		return true
	}
	g.logger.Warn("window operation dropped while inactive", "instance", g.instanceID, "op", op)
	return false
}

func (g *GatedWindow) Activate() {
	if g.allow("activate") {
		g.win.Activate()
	}
}

func (g *GatedWindow) Click(xRatio, yRatio float64) {
	if g.allow("click") {
		g.win.ClickRelative(xRatio, yRatio)
	}
}

func (g *GatedWindow) Tap(key string) {
	if g.allow("tap") {
		g.win.Tap(key)
	}
}

func (g *GatedWindow) Type(text string) {
	if g.allow("type") {
		g.win.TypeText(text)
	}
}

// DecodeHint captures the hint region of the window and decodes it.
func (g *GatedWindow) DecodeHint() (string, bool) {
	if !g.allow("decodev2") {
		return "", false
	}
	rect := hint.Rect
	c, ok := g.win.Capture(&rect)
	if !ok {
		return "", false
	}
	return hint.Decode(c)
}
