package platform

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/nerrad567/finger/internal/clock"
)

// WindowID identifies an OS window (an X11 window id, CGWindowID or HWND).
type WindowID uint64

// WindowInfo is one enumerated window.
type WindowInfo struct {
	ID    WindowID
	Title string
}

// Region is the screen-coordinate bounding box of a window.
type Region struct {
	Left, Top, Right, Bottom int
	Width, Height            int
	CenterX, CenterY         int
}

// NewRegion builds a Region from an origin and size.
func NewRegion(left, top, width, height int) Region {
	return Region{
		Left:    left,
		Top:     top,
		Right:   left + width,
		Bottom:  top + height,
		Width:   width,
		Height:  height,
		CenterX: left + width/2,
		CenterY: top + height/2,
	}
}

// CaptureRect is a sub-rectangle relative to the window origin.
type CaptureRect struct {
	Left, Top, Width, Height int
}

// Capture holds raw pixels in BGRA byte order, row-major. BytesPerRow may
// exceed Width*4.
type Capture struct {
	Data        []byte
	Width       int
	Height      int
	BytesPerRow int
}

// Window is a handle to one OS window. A Window is owned by exactly one agent
// and is not safe for concurrent use.
type Window interface {
	ID() WindowID
	Title() string

	// Region returns the last known window bounds.
	Region() (Region, bool)

	// Update refreshes cached geometry from the window system.
	Update()

	// Activate brings the window to the foreground.
	Activate()

	// ClickRelative clicks at a point given as ratios of the window size.
	ClickRelative(xRatio, yRatio float64)

	// Tap presses a key spec such as "enter", "a" or "ctrl+shift+k".
	Tap(key string)

	// TypeText types text into the window.
	TypeText(text string)

	// Capture grabs pixels of rect (or the whole window when rect is nil).
	Capture(rect *CaptureRect) (*Capture, bool)
}

// Platform enumerates windows and creates handles.
type Platform interface {
	// Instances returns the windows whose title matches pattern.
	Instances(pattern string) []WindowInfo

	// CreateWindow creates a handle for a window previously returned by
	// Instances.
	CreateWindow(pattern string, id WindowID) Window
}

// Logger defines the logging interface used by platform implementations.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Kind selects a Platform variant.
type Kind string

const (
	KindStub    Kind = "stub"
	KindXdotool Kind = "xdotool"
)

// Options configures New.
type Options struct {
	Kind Kind

	// XdotoolBinary and ImportBinary name the executables used by the
	// xdotool variant. Defaults: "xdotool" and "import".
	XdotoolBinary string
	ImportBinary  string

	Logger Logger
	Clock  clock.Clock
}

// New creates the Platform selected by opts.Kind.
func New(opts Options) (Platform, error) {
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	switch Kind(strings.ToLower(string(opts.Kind))) {
	case KindStub:
		return NewStub(opts.Logger), nil
	case KindXdotool, "":
		xdotool := opts.XdotoolBinary
		if xdotool == "" {
			xdotool = "xdotool"
		}
		importBin := opts.ImportBinary
		if importBin == "" {
			importBin = "import"
		}
		if _, err := exec.LookPath(xdotool); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBinaryNotFound, xdotool)
		}
		return newXdotool(xdotool, importBin, execRunner, opts.Clock, opts.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}
