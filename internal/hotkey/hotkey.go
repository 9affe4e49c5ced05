package hotkey

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/nerrad567/finger/internal/bot"
)

// Logger defines the logging interface used by the listener.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Listener latches the trigger signal into a flag.
type Listener struct {
	sig    os.Signal
	fired  atomic.Bool
	wake   chan struct{}
	logger Logger
}

// New resolves signalName and returns a Listener. Call Run to start
// receiving the signal.
func New(signalName string, logger Logger) (*Listener, error) {
	sig, err := lookupSignal(signalName)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Listener{
		sig:    sig,
		wake:   make(chan struct{}, 1),
		logger: logger,
	}, nil
}

// Run delivers the signal into the flag until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, l.sig)
	defer signal.Stop(ch)

	l.logger.Info("global hotkey armed", "signal", l.sig.String())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			l.Trigger()
		}
	}
}

// Trigger raises the flag as if the signal had arrived.
func (l *Listener) Trigger() {
	l.fired.Store(true)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Take reports whether the trigger fired since the last call and clears it.
func (l *Listener) Take() bool {
	return l.fired.Swap(false)
}

// Wake is signalled after every Trigger. Consumers still call Take.
func (l *Listener) Wake() <-chan struct{} { return l.wake }

// Consume clears the flag and, when it was set and the orchestrator is
// Running, queues StartStop without blocking. It reports whether a
// command was sent.
func (l *Listener) Consume(state *bot.StateCell, cmds chan<- bot.Command) bool {
	if !l.Take() {
		return false
	}
	if state.Get() != bot.Running {
		l.logger.Debug("hotkey ignored", "state", state.Get().String())
		return false
	}
	select {
	case cmds <- bot.StartStop():
		l.logger.Info("hotkey: stopping")
		return true
	default:
		l.logger.Warn("hotkey: command queue full")
		return false
	}
}

// Forward consumes triggers until ctx is cancelled. Used when no terminal
// UI polls the flag.
func (l *Listener) Forward(ctx context.Context, state *bot.StateCell, cmds chan<- bot.Command) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
			l.Consume(state, cmds)
		}
	}
}
