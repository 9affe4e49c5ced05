// Package agent defines the contract between the orchestrator and the
// scripted agents it drives, plus the capability set those scripts are
// given.
//
// An Agent is bound to exactly one window and used only from the
// orchestrator goroutine. Window-affecting calls made by a script are routed
// through a GatedWindow and honoured only while the orchestrator has marked
// the agent active around a tick.
package agent

import (
	"time"

	"github.com/nerrad567/finger/internal/platform"
)

// Metadata is read from a script without starting it.
type Metadata struct {
	WindowPattern string
	Description   string
}

// Runtime loads and instantiates agent scripts.
type Runtime interface {
	// LoadMetadata reads the window pattern and description of the script at
	// path and checks that it has a tick entry point.
	LoadMetadata(path string) (Metadata, error)

	// Instantiate starts a fresh agent for instanceID bound to win.
	Instantiate(path, instanceID string, win platform.Window) (Agent, error)
}

// Agent is one running script bound to one window.
type Agent interface {
	// Tick runs one unit of work. ok is false when the script did not ask
	// for a specific cooldown.
	Tick() (cooldown time.Duration, ok bool, err error)

	// Status returns a short human-readable status line.
	Status() (string, error)

	// Reset returns the script to its initial state.
	Reset() error

	// Stop releases the agent. The agent must not be used afterwards.
	Stop() error

	// Activate brings the agent's window to the foreground.
	Activate()

	// SetActive authorises or revokes window-affecting calls.
	SetActive(active bool)
}

// Logger defines the logging interface used by agents.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoopLogger discards everything.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...any) {}
func (NoopLogger) Info(string, ...any)  {}
func (NoopLogger) Warn(string, ...any)  {}
func (NoopLogger) Error(string, ...any) {}
