package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/infrastructure/logging"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	// listShare is the percentage of the width given to the bot list when
	// the log pane is visible.
	listShare = 60
)

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m Model) listWidth() int {
	w, _ := m.size()
	if !m.logVisible {
		return w
	}
	return w * listShare / 100
}

// logHeight is the number of log lines that fit in the log pane.
func (m Model) logHeight() int {
	_, h := m.size()
	return max(0, h-2)
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	w, h := m.size()
	if m.confirm != nil {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.renderConfirm())
	}

	left := m.renderList(m.listWidth(), h)
	if !m.logVisible {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderLogs(w-m.listWidth(), h))
}

func (m Model) renderList(width, height int) string {
	state := m.state.Get()
	t := m.theme

	banner := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(t.stateColor(state)).
		Render(t.banner(state))

	inner := max(1, width-2)
	lines := []string{
		" " + t.Key.Render("j") + "/" + t.Key.Render("k") + " move, " +
			t.Key.Render("space") + " enable, " +
			t.Key.Render("r") + " restart, " +
			t.Key.Render("l") + " logs, " +
			t.Key.Render("q") + " quit",
		"",
	}

	marker := lipgloss.NewStyle().Foreground(t.stateColor(state))
	selectedLine := 0
	for i, e := range m.registry.Snapshot() {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
			selectedLine = len(lines)
		}
		box := "[ ]"
		if e.Enabled {
			box = "[●]"
		}
		line := cursor + marker.Render(box) + " " + t.Name.Render(e.Name)
		if e.Description != "" {
			line += t.Description.Render("  " + e.Description)
		}
		lines = append(lines, line)

		if !e.Enabled {
			continue
		}
		for _, inst := range e.Instances {
			lines = append(lines, m.renderInstance(inst))
		}
	}

	// Scroll so the selected entry stays on screen.
	rows := max(1, height-2)
	if len(lines) > rows {
		start := min(max(0, selectedLine-rows+1), len(lines)-rows)
		lines = lines[start : start+rows]
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, inner, "…")
	}

	list := t.ListBorder.
		Width(inner).
		Height(rows).
		Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, banner, list)
}

func (m Model) renderInstance(inst bot.Instance) string {
	t := m.theme
	line := t.WindowTitle.Render("    "+inst.WindowTitle+" ") +
		t.WindowID.Render(fmt.Sprintf("#%d", inst.WindowID))
	switch {
	case inst.Error != nil:
		line += t.Error.Render(" err: " + *inst.Error)
	case inst.Status != "":
		line += t.Status.Render(" " + inst.Status)
	}
	return line
}

func (m Model) renderLogs(width, height int) string {
	inner := max(1, width-2)
	rows := m.logHeight()

	total := len(m.logs)
	scroll := min(m.logScroll, max(0, total-rows))
	end := total - scroll
	start := max(0, end-rows)

	lines := make([]string, 0, end-start)
	for _, r := range m.logs[start:end] {
		lines = append(lines, ansi.Truncate(m.renderRecord(r), inner, "…"))
	}

	title := " Logs "
	if scroll > 0 {
		title = fmt.Sprintf(" Logs (+%d) ", scroll)
	}
	box := m.theme.LogBorder.
		Width(inner).
		Height(max(1, height-2)).
		Render(strings.Join(lines, "\n"))
	return replaceTopBorder(box, title)
}

// replaceTopBorder writes title into the first line of a bordered block.
func replaceTopBorder(box, title string) string {
	first, rest, ok := strings.Cut(box, "\n")
	if !ok || ansi.StringWidth(first) < ansi.StringWidth(title)+2 {
		return box
	}
	head := ansi.Truncate(first, 1, "")
	tail := ansi.TruncateLeft(first, 1+ansi.StringWidth(title), "")
	return head + title + tail + "\n" + rest
}

func (m Model) renderRecord(r logging.Record) string {
	t := m.theme
	color := prefixStyle(r.Color)

	var b strings.Builder
	b.WriteString(t.Timestamp.Render(r.Time.Format("15:04:05")))
	b.WriteByte(' ')
	switch {
	case r.Level >= slog.LevelError:
		b.WriteString(t.Fail.Render("error "))
	case r.Level >= slog.LevelWarn:
		b.WriteString(t.Warn.Render("warn "))
	}
	if r.Prefix != "" {
		b.WriteString(color.Bold(true).Render(r.Prefix))
		b.WriteByte(' ')
	}
	b.WriteString(color.Render(r.Message))
	return b.String()
}

func (m Model) renderConfirm() string {
	t := m.theme
	yes, no := t.Inactive, t.NoActive
	if m.confirm.yes {
		yes, no = t.YesActive, t.Inactive
	}
	buttons := yes.Render("  [Yes]  ") + "   " + no.Render("  [No]  ")
	body := lipgloss.JoinVertical(lipgloss.Center, m.confirm.message, "", buttons)
	return t.DialogBorder.Render(body)
}
