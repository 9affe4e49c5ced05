package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/infrastructure/logging"
	"github.com/nerrad567/finger/internal/platform"
)

type fakeHotkey struct {
	calls int
	fire  bool
}

func (f *fakeHotkey) Consume(state *bot.StateCell, cmds chan<- bot.Command) bool {
	f.calls++
	if f.fire && state.Get() == bot.Running {
		f.fire = false
		cmds <- bot.StartStop()
		return true
	}
	return false
}

type harness struct {
	reg     *bot.Registry
	state   *bot.StateCell
	cmds    chan bot.Command
	records chan logging.Record
	hotkey  *fakeHotkey
	model   Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	reg := bot.NewRegistry([]bot.Entry{
		{Definition: bot.Definition{Name: "wow", Description: "fishing"}, Enabled: true},
		{Definition: bot.Definition{Name: "games/zombie", Description: "shooter"}},
		{Definition: bot.Definition{Name: "idle"}},
	})
	reg.ApplyWindows([][]platform.WindowInfo{
		{{ID: 10001, Title: "World of Warcraft"}, {ID: 10002, Title: "World of Warcraft"}},
		{{ID: 20001, Title: "Zombie"}},
		nil,
	})
	h := &harness{
		reg:     reg,
		state:   &bot.StateCell{},
		cmds:    make(chan bot.Command, 8),
		records: make(chan logging.Record, 256),
		hotkey:  &fakeHotkey{},
	}
	h.model = New(Options{
		Registry: reg,
		State:    h.state,
		Commands: h.cmds,
		Records:  h.records,
		Hotkey:   h.hotkey,
	})
	h.update(t, tea.WindowSizeMsg{Width: 120, Height: 12})
	return h
}

func (h *harness) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	updated, cmd := h.model.Update(msg)
	m, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	h.model = m
	return cmd
}

func (h *harness) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "pgup":
			msg = tea.KeyMsg{Type: tea.KeyPgUp}
		case "pgdown":
			msg = tea.KeyMsg{Type: tea.KeyPgDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		h.update(t, msg)
	}
}

// drain returns every queued command.
func (h *harness) drain() []bot.Command {
	var out []bot.Command
	for {
		select {
		case c := <-h.cmds:
			out = append(out, c)
		default:
			return out
		}
	}
}

func equalCommands(a, b []bot.Command) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNavigation(t *testing.T) {
	h := newHarness(t)

	h.press(t, "k")
	if got := h.model.selected; got != 0 {
		t.Errorf("up at top: selected = %d, want 0", got)
	}
	h.press(t, "j", "down", "j", "j")
	if got := h.model.selected; got != 2 {
		t.Errorf("down past end: selected = %d, want 2", got)
	}
	h.press(t, "up")
	if got := h.model.selected; got != 1 {
		t.Errorf("selected = %d, want 1", got)
	}
	if cmds := h.drain(); len(cmds) != 0 {
		t.Errorf("navigation sent commands %v", cmds)
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name  string
		state bot.RunState
		keys  []string
		want  []bot.Command
	}{
		{name: "toggle selected", keys: []string{"j", " "}, want: []bot.Command{bot.Toggle(1)}},
		{name: "start", keys: []string{"s"}, want: []bot.Command{bot.StartStop()}},
		{name: "stop", state: bot.Running, keys: []string{"S"}, want: []bot.Command{bot.StartStop()}},
		{name: "ignored while stopping", state: bot.Stopping, keys: []string{"s"}},
		{name: "restart needs confirm", keys: []string{"r"}},
		{name: "restart defaults to no", keys: []string{"r", "enter"}},
		{name: "restart confirmed with enter", keys: []string{"j", "r", "tab", "enter"}, want: []bot.Command{bot.Restart(1)}},
		{name: "restart confirmed with y", keys: []string{"r", "y"}, want: []bot.Command{bot.Restart(0)}},
		{name: "restart switch twice", keys: []string{"r", "l", "h", "enter"}},
		{name: "restart cancelled", keys: []string{"r", "esc", "s"}, want: []bot.Command{bot.StartStop()}},
		{name: "restart refused with n", keys: []string{"r", "n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.state.Set(tt.state)
			h.press(t, tt.keys...)
			if got := h.drain(); !equalCommands(got, tt.want) {
				t.Errorf("commands = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirmDialog(t *testing.T) {
	h := newHarness(t)

	h.press(t, "r")
	if h.model.confirm == nil {
		t.Fatal("r did not open the dialog")
	}
	view := h.model.View()
	for _, want := range []string{"Restart wow?", "[Yes]", "[No]"} {
		if !strings.Contains(view, want) {
			t.Errorf("dialog view missing %q", want)
		}
	}

	// l switches buttons inside the dialog instead of hiding logs.
	h.press(t, "l")
	if !h.model.logVisible {
		t.Error("l inside the dialog toggled the log pane")
	}
	h.press(t, "q")
	if h.model.confirm != nil {
		t.Error("q did not dismiss the dialog")
	}
	if cmds := h.drain(); len(cmds) != 0 {
		t.Errorf("dismissed dialog sent %v", cmds)
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t)

	cmd := h.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if got := h.drain(); !equalCommands(got, []bot.Command{bot.Quit()}) {
		t.Errorf("commands = %v, want [quit]", got)
	}
	if h.model.View() != "" {
		t.Error("view after quit should be empty")
	}
}

func TestSend_FullQueue(t *testing.T) {
	cmds := make(chan bot.Command)
	m := New(Options{Registry: bot.NewRegistry(nil), State: &bot.StateCell{}, Commands: cmds})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("full queue should defer the send")
	}
	done := make(chan struct{})
	go func() {
		cmd()
		close(done)
	}()
	if got := <-cmds; got != bot.StartStop() {
		t.Errorf("deferred command = %v", got)
	}
	<-done
}

func TestToggle_EmptyRegistry(t *testing.T) {
	cmds := make(chan bot.Command, 1)
	m := New(Options{Registry: bot.NewRegistry(nil), State: &bot.StateCell{}, Commands: cmds})

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if len(cmds) != 0 {
		t.Errorf("empty registry queued %d commands", len(cmds))
	}
}

func TestRefresh(t *testing.T) {
	h := newHarness(t)
	h.state.Set(bot.Running)
	h.hotkey.fire = true
	h.records <- logging.Record{Level: slog.LevelInfo, Message: "hello"}

	cmd := h.update(t, refreshMsg(time.Now()))
	if cmd == nil {
		t.Error("refresh did not reschedule itself")
	}
	if h.hotkey.calls != 1 {
		t.Errorf("hotkey polled %d times, want 1", h.hotkey.calls)
	}
	if got := h.drain(); !equalCommands(got, []bot.Command{bot.StartStop()}) {
		t.Errorf("commands = %v, want [start_stop]", got)
	}
	if !strings.Contains(h.model.View(), "hello") {
		t.Error("drained record not shown")
	}
}

func TestView(t *testing.T) {
	h := newHarness(t)
	errMsg := "attempt to index nil"
	if err := h.reg.UpdateInstance("wow-10001", "fishing", nil); err != nil {
		t.Fatal(err)
	}
	if err := h.reg.SetInstanceError("wow-10002", &errMsg); err != nil {
		t.Fatal(err)
	}
	h.state.Set(bot.Running)
	h.records <- logging.Record{Level: slog.LevelWarn, Prefix: "wow", Color: logging.ColorBlue, Time: time.Now(), Message: "cast failed"}
	h.update(t, refreshMsg(time.Now()))

	view := h.model.View()
	for _, want := range []string{
		"RUNNING",
		"> [●] wow",
		"fishing",
		"World of Warcraft #10001 fishing",
		"#10002 err: attempt to index nil",
		"[ ] games/zombie",
		"Logs",
		"warn wow cast failed",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q\n%s", want, view)
		}
	}
	if strings.Contains(view, "#20001") {
		t.Error("disabled bot should not list its windows")
	}

	h.press(t, "l")
	if h.model.logVisible {
		t.Fatal("l did not hide the log pane")
	}
	if strings.Contains(h.model.View(), "cast failed") {
		t.Error("hidden log pane still rendered")
	}
}

func TestView_Banner(t *testing.T) {
	tests := []struct {
		state bot.RunState
		want  string
	}{
		{bot.Stopped, "STOPPED"},
		{bot.Running, "RUNNING"},
		{bot.Stopping, "STOPPING"},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := newHarness(t)
			h.state.Set(tt.state)
			if !strings.Contains(h.model.View(), tt.want) {
				t.Errorf("banner missing %q", tt.want)
			}
		})
	}
}

func TestLogScroll(t *testing.T) {
	h := newHarness(t)
	// Height 12 leaves 10 log rows.
	for i := range 30 {
		h.records <- logging.Record{Level: slog.LevelInfo, Message: fmt.Sprintf("line-%02d", i)}
	}
	h.update(t, refreshMsg(time.Now()))

	view := h.model.View()
	if !strings.Contains(view, "line-29") || strings.Contains(view, "line-19") {
		t.Fatalf("tail not shown:\n%s", view)
	}

	h.press(t, "pgup")
	view = h.model.View()
	if !strings.Contains(view, "line-19") || strings.Contains(view, "line-29") {
		t.Errorf("page up did not scroll:\n%s", view)
	}
	if !strings.Contains(view, "Logs (+10)") {
		t.Error("scroll offset not shown in title")
	}

	// New lines keep the scrolled view in place.
	h.records <- logging.Record{Level: slog.LevelInfo, Message: "line-30"}
	h.update(t, refreshMsg(time.Now()))
	if !strings.Contains(h.model.View(), "line-19") {
		t.Error("new record moved the scrolled view")
	}

	h.update(t, tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	if !strings.Contains(h.model.View(), "Logs (+8)") {
		t.Errorf("wheel down: want offset 8\n%s", h.model.View())
	}

	h.press(t, "pgup", "pgup", "pgup")
	view = h.model.View()
	if !strings.Contains(view, "line-00") || !strings.Contains(view, "Logs (+21)") {
		t.Errorf("scroll not clamped at the oldest line:\n%s", view)
	}

	h.press(t, "pgdown", "pgdown", "pgdown")
	h.update(t, tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	h.update(t, tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	if !strings.Contains(h.model.View(), "line-30") {
		t.Error("scroll back to the tail failed")
	}
}

func TestLogHistoryBounded(t *testing.T) {
	h := newHarness(t)
	for i := range maxLogLines + 10 {
		h.model.appendLog(logging.Record{Message: fmt.Sprint(i)})
	}
	if len(h.model.logs) != maxLogLines {
		t.Errorf("retained %d records, want %d", len(h.model.logs), maxLogLines)
	}
	if h.model.logs[0].Message != "10" {
		t.Errorf("oldest record = %q, want 10", h.model.logs[0].Message)
	}
}
