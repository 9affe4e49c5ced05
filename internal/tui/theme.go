package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/infrastructure/logging"
)

// Theme holds the styles used by the view.
type Theme struct {
	Running  lipgloss.Color
	Stopping lipgloss.Color
	Stopped  lipgloss.Color

	Key         lipgloss.Style
	Name        lipgloss.Style
	Description lipgloss.Style
	WindowTitle lipgloss.Style
	WindowID    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	ListBorder  lipgloss.Style

	LogBorder lipgloss.Style
	Timestamp lipgloss.Style
	Warn      lipgloss.Style
	Fail      lipgloss.Style

	DialogBorder lipgloss.Style
	YesActive    lipgloss.Style
	NoActive     lipgloss.Style
	Inactive     lipgloss.Style
}

// DefaultTheme uses the 16 ANSI colors so it renders on any terminal.
var DefaultTheme = Theme{
	Running:  lipgloss.Color("2"),
	Stopping: lipgloss.Color("3"),
	Stopped:  lipgloss.Color("1"),

	Key:         lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	Name:        lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	Description: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	WindowTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	WindowID:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	ListBorder: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, true, true).
		BorderForeground(lipgloss.Color("6")),

	LogBorder: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("3")),
	Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Warn:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	Fail:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

	DialogBorder: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("3")).
		Padding(1, 2),
	YesActive: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")).Bold(true),
	NoActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("1")).Bold(true),
	Inactive:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

func (t Theme) stateColor(s bot.RunState) lipgloss.Color {
	switch s {
	case bot.Running:
		return t.Running
	case bot.Stopping:
		return t.Stopping
	default:
		return t.Stopped
	}
}

func (t Theme) banner(s bot.RunState) string {
	switch s {
	case bot.Running:
		return "RUNNING (press s to stop)"
	case bot.Stopping:
		return "STOPPING..."
	default:
		return "STOPPED (press s to start)"
	}
}

func prefixStyle(c logging.Color) lipgloss.Style {
	switch c {
	case logging.ColorGray:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	case logging.ColorBlue:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	}
}
