package platform

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/finger/internal/clock"
)

// Input pacing for the native backend.
const (
	clickSettle = 15 * time.Millisecond
	tapSettle   = 50 * time.Millisecond
	typeDelayMS = 50
	execTimeout = 5 * time.Second
)

// runner executes a command and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Xdotool drives X11 windows through the xdotool executable and captures
// pixels with ImageMagick's import.
type Xdotool struct {
	xdotool string
	imp     string
	run     runner
	clock   clock.Clock
	logger  Logger
}

func newXdotool(xdotool, imp string, run runner, clk clock.Clock, logger Logger) *Xdotool {
	return &Xdotool{xdotool: xdotool, imp: imp, run: run, clock: clk, logger: logger}
}

func (x *Xdotool) exec(name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
	defer cancel()
	return x.run(ctx, name, args...)
}

// Instances lists visible windows whose name matches pattern. xdotool
// matches names as case-insensitive regular expressions.
func (x *Xdotool) Instances(pattern string) []WindowInfo {
	out, err := x.exec(x.xdotool, "search", "--onlyvisible", "--name", pattern)
	if err != nil {
		// xdotool exits 1 when nothing matches.
		x.logger.Debug("window search returned nothing", "pattern", pattern, "error", err)
		return nil
	}

	var windows []WindowInfo
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			x.logger.Warn("unparseable window id", "value", line)
			continue
		}
		title := ""
		if name, err := x.exec(x.xdotool, "getwindowname", line); err == nil {
			title = strings.TrimSpace(string(name))
		}
		windows = append(windows, WindowInfo{ID: WindowID(id), Title: title})
	}
	return windows
}

// CreateWindow returns a handle for id and loads its geometry.
func (x *Xdotool) CreateWindow(pattern string, id WindowID) Window {
	w := &xdotoolWindow{x: x, id: id, idArg: strconv.FormatUint(uint64(id), 10)}
	if out, err := x.exec(x.xdotool, "getwindowname", w.idArg); err == nil {
		w.title = strings.TrimSpace(string(out))
	}
	w.Update()
	x.logger.Debug("window handle created", "pattern", pattern, "window_id", uint64(id), "title", w.title)
	return w
}

type xdotoolWindow struct {
	x      *Xdotool
	id     WindowID
	idArg  string
	title  string
	region Region
	known  bool
}

func (w *xdotoolWindow) ID() WindowID  { return w.id }
func (w *xdotoolWindow) Title() string { return w.title }

func (w *xdotoolWindow) Region() (Region, bool) { return w.region, w.known }

func (w *xdotoolWindow) Update() {
	out, err := w.x.exec(w.x.xdotool, "getwindowgeometry", "--shell", w.idArg)
	if err != nil {
		w.x.logger.Warn("window geometry unavailable", "window_id", uint64(w.id), "error", err)
		return
	}
	region, ok := parseGeometry(out)
	if !ok {
		w.x.logger.Warn("unparseable window geometry", "window_id", uint64(w.id))
		return
	}
	w.region = region
	w.known = true
}

// parseGeometry reads the KEY=VALUE output of `getwindowgeometry --shell`.
func parseGeometry(out []byte) (Region, bool) {
	vals := map[string]int{}
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		vals[key] = n
	}
	for _, k := range []string{"X", "Y", "WIDTH", "HEIGHT"} {
		if _, ok := vals[k]; !ok {
			return Region{}, false
		}
	}
	return NewRegion(vals["X"], vals["Y"], vals["WIDTH"], vals["HEIGHT"]), true
}

func (w *xdotoolWindow) Activate() {
	if _, err := w.x.exec(w.x.xdotool, "windowactivate", "--sync", w.idArg); err != nil {
		w.x.logger.Warn("window activate failed", "window_id", uint64(w.id), "error", err)
	}
}

func (w *xdotoolWindow) ClickRelative(xRatio, yRatio float64) {
	w.Update()
	if !w.known {
		return
	}
	px := w.region.Left + int(float64(w.region.Width)*xRatio)
	py := w.region.Top + int(float64(w.region.Height)*yRatio)

	if _, err := w.x.exec(w.x.xdotool, "mousemove", "--sync", strconv.Itoa(px), strconv.Itoa(py)); err != nil {
		w.x.logger.Warn("mouse move failed", "window_id", uint64(w.id), "error", err)
		return
	}
	w.x.clock.Sleep(clickSettle)
	if _, err := w.x.exec(w.x.xdotool, "click", "1"); err != nil {
		w.x.logger.Warn("click failed", "window_id", uint64(w.id), "error", err)
		return
	}
	w.x.clock.Sleep(clickSettle)
}

func (w *xdotoolWindow) Tap(key string) {
	combo, ok := KeyCombo(key)
	if !ok {
		w.x.logger.Warn("unknown key spec", "key", key)
		return
	}
	if _, err := w.x.exec(w.x.xdotool, "key", "--window", w.idArg, combo); err != nil {
		w.x.logger.Warn("key tap failed", "window_id", uint64(w.id), "key", key, "error", err)
		return
	}
	w.x.clock.Sleep(tapSettle)
}

func (w *xdotoolWindow) TypeText(text string) {
	if text == "" {
		return
	}
	args := []string{"type", "--window", w.idArg, "--delay", strconv.Itoa(typeDelayMS), "--", text}
	if _, err := w.x.exec(w.x.xdotool, args...); err != nil {
		w.x.logger.Warn("type text failed", "window_id", uint64(w.id), "error", err)
	}
}

func (w *xdotoolWindow) Capture(rect *CaptureRect) (*Capture, bool) {
	var r CaptureRect
	if rect != nil {
		r = *rect
	} else {
		w.Update()
		if !w.known {
			return nil, false
		}
		r = CaptureRect{Width: w.region.Width, Height: w.region.Height}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return nil, false
	}

	crop := fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.Left, r.Top)
	out, err := w.x.exec(w.x.imp, "-window", w.idArg, "-crop", crop, "+repage", "-depth", "8", "rgba:-")
	if err != nil {
		w.x.logger.Warn("capture failed", "window_id", uint64(w.id), "error", err)
		return nil, false
	}
	return rgbaToCapture(out, r.Width, r.Height)
}

// rgbaToCapture converts tightly packed RGBA into a BGRA Capture.
func rgbaToCapture(rgba []byte, width, height int) (*Capture, bool) {
	want := width * height * 4
	if len(rgba) < want {
		return nil, false
	}
	data := make([]byte, want)
	for i := 0; i < want; i += 4 {
		data[i] = rgba[i+2]
		data[i+1] = rgba[i+1]
		data[i+2] = rgba[i]
		data[i+3] = rgba[i+3]
	}
	return &Capture{Data: data, Width: width, Height: height, BytesPerRow: width * 4}, true
}

var keyNames = map[string]string{
	"enter":     "Return",
	"return":    "Return",
	"esc":       "Escape",
	"escape":    "Escape",
	"tab":       "Tab",
	"space":     "space",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"del":       "Delete",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
	"pageup":    "Prior",
	"pagedown":  "Next",
}

var modifierNames = map[string]string{
	"cmd":     "super",
	"command": "super",
	"super":   "super",
	"win":     "super",
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
}

// KeyCombo translates a key spec such as "cmd+a", "enter" or "F5" into an
// xdotool key combination. Single uppercase letters are sent shifted.
func KeyCombo(spec string) (string, bool) {
	parts := strings.Split(spec, "+")
	if spec == "+" {
		parts = []string{"+"}
	}
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return "", false
	}

	var combo []string
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modifierNames[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return "", false
		}
		combo = append(combo, mod)
	}

	key := parts[len(parts)-1]
	switch {
	case keyNames[strings.ToLower(key)] != "":
		combo = append(combo, keyNames[strings.ToLower(key)])
	case len(key) == 1 && key[0] >= 'A' && key[0] <= 'Z':
		combo = append(combo, "shift", strings.ToLower(key))
	case len(key) == 1:
		combo = append(combo, charKeysym(key[0]))
	case len(key) >= 2 && (key[0] == 'f' || key[0] == 'F'):
		n, err := strconv.Atoi(key[1:])
		if err != nil || n < 1 || n > 24 {
			return "", false
		}
		combo = append(combo, "F"+strconv.Itoa(n))
	default:
		return "", false
	}
	return strings.Join(combo, "+"), true
}

var punctuation = map[byte]string{
	' ': "space", '+': "plus", '-': "minus", '=': "equal", ',': "comma",
	'.': "period", '/': "slash", ';': "semicolon", '\'': "apostrophe",
	'[': "bracketleft", ']': "bracketright", '\\': "backslash", '`': "grave",
}

func charKeysym(c byte) string {
	if name, ok := punctuation[c]; ok {
		return name
	}
	return string(c)
}
