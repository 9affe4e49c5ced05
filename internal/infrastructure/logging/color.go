package logging

import "github.com/fatih/color"

// Color is the display color of a log prefix.
type Color int

const (
	ColorDefault Color = iota
	ColorGray
	ColorBlue
)

func (c Color) String() string {
	switch c {
	case ColorGray:
		return "gray"
	case ColorBlue:
		return "blue"
	default:
		return "default"
	}
}

// paint renders s in c for terminal output.
func (c Color) paint(s string) string {
	switch c {
	case ColorGray:
		return color.New(color.FgHiBlack).Sprint(s)
	case ColorBlue:
		return color.New(color.FgBlue).Sprint(s)
	default:
		return s
	}
}
