package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/infrastructure/logging"
)

const (
	// refreshInterval paces registry re-reads, log draining and hotkey polling.
	refreshInterval = 100 * time.Millisecond

	// maxLogLines bounds the retained log history.
	maxLogLines = 2000

	// wheelStep is the number of log lines scrolled per mouse wheel notch.
	wheelStep = 3
)

// refreshMsg drives the periodic refresh.
type refreshMsg time.Time

// Hotkey is polled on every refresh. *hotkey.Listener satisfies it.
type Hotkey interface {
	Consume(state *bot.StateCell, cmds chan<- bot.Command) bool
}

// Options wires a Model.
type Options struct {
	Registry *bot.Registry
	State    *bot.StateCell
	Commands chan<- bot.Command

	// Records is the log stream shown in the log pane. Optional.
	Records <-chan logging.Record

	// Hotkey is the global start/stop trigger. Optional.
	Hotkey Hotkey

	Theme *Theme
	Keys  *KeyMap
}

// Model is the bubbletea model of the control surface.
type Model struct {
	registry *bot.Registry
	state    *bot.StateCell
	commands chan<- bot.Command
	records  <-chan logging.Record
	hotkey   Hotkey
	theme    Theme
	keys     KeyMap

	width  int
	height int

	selected   int
	logVisible bool
	logs       []logging.Record
	// logScroll is the offset from the newest line; 0 follows the tail.
	logScroll int

	confirm  *confirmDialog
	quitting bool
}

// New creates the model. The log pane starts visible.
func New(opts Options) Model {
	m := Model{
		registry:   opts.Registry,
		state:      opts.State,
		commands:   opts.Commands,
		records:    opts.Records,
		hotkey:     opts.Hotkey,
		theme:      DefaultTheme,
		keys:       DefaultKeyMap,
		logVisible: true,
	}
	if opts.Theme != nil {
		m.theme = *opts.Theme
	}
	if opts.Keys != nil {
		m.keys = *opts.Keys
	}
	return m
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return refresh()
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Update handles input and refresh ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		m.drainLogs()
		if m.hotkey != nil {
			m.hotkey.Consume(m.state, m.commands)
		}
		m.clampSelection()
		return m, refresh()

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollLog(wheelStep)
		case tea.MouseButtonWheelDown:
			m.scrollLog(-wheelStep)
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Batch(m.send(bot.Quit()), tea.Quit)

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keys.Down):
		if m.selected+1 < m.registry.Len() {
			m.selected++
		}

	case key.Matches(msg, m.keys.Toggle):
		if m.registry.Len() > 0 {
			return m, m.send(bot.Toggle(m.selected))
		}

	case key.Matches(msg, m.keys.StartStop):
		if m.state.Get() != bot.Stopping {
			return m, m.send(bot.StartStop())
		}

	case key.Matches(msg, m.keys.Restart):
		if e, err := m.registry.Get(m.selected); err == nil {
			m.confirm = newConfirmDialog("Restart "+e.Name+"?", bot.Restart(m.selected))
		}

	case key.Matches(msg, m.keys.Logs):
		m.logVisible = !m.logVisible

	case key.Matches(msg, m.keys.PageUp):
		m.scrollLog(m.logPageSize())

	case key.Matches(msg, m.keys.PageDown):
		m.scrollLog(-m.logPageSize())
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Switch):
		m.confirm.yes = !m.confirm.yes
	case key.Matches(msg, m.keys.Yes):
		cmd := m.confirm.cmd
		m.confirm = nil
		return m, m.send(cmd)
	case key.Matches(msg, m.keys.No), key.Matches(msg, m.keys.Dismiss):
		m.confirm = nil
	case key.Matches(msg, m.keys.Accept):
		d := m.confirm
		m.confirm = nil
		if d.yes {
			return m, m.send(d.cmd)
		}
	}
	return m, nil
}

// send queues cmd without blocking the event loop. When the queue is full
// the send is retried from a command goroutine.
func (m Model) send(cmd bot.Command) tea.Cmd {
	select {
	case m.commands <- cmd:
		return nil
	default:
		ch := m.commands
		return func() tea.Msg {
			ch <- cmd
			return nil
		}
	}
}

func (m *Model) drainLogs() {
	if m.records == nil {
		return
	}
	for {
		select {
		case r, ok := <-m.records:
			if !ok {
				m.records = nil
				return
			}
			m.appendLog(r)
		default:
			return
		}
	}
}

func (m *Model) appendLog(r logging.Record) {
	m.logs = append(m.logs, r)
	if over := len(m.logs) - maxLogLines; over > 0 {
		m.logs = append(m.logs[:0], m.logs[over:]...)
	}
	// Keep the viewed lines in place while scrolled back.
	if m.logScroll > 0 {
		m.logScroll++
	}
	m.logScroll = min(m.logScroll, m.maxLogScroll())
}

func (m *Model) scrollLog(delta int) {
	m.logScroll = max(0, min(m.logScroll+delta, m.maxLogScroll()))
}

func (m Model) logPageSize() int {
	return max(1, m.logHeight())
}

func (m Model) maxLogScroll() int {
	return max(0, len(m.logs)-m.logHeight())
}

func (m *Model) clampSelection() {
	if n := m.registry.Len(); m.selected >= n {
		m.selected = max(0, n-1)
	}
}

// Selected returns the highlighted entry index.
type confirmDialog struct {
	message string
	cmd     bot.Command
	// yes is the highlighted button; the dialog opens on No.
	yes bool
}

func newConfirmDialog(message string, cmd bot.Command) *confirmDialog {
	return &confirmDialog{message: message, cmd: cmd}
}
