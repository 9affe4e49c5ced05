package orchestrator

import (
	"time"

	"github.com/nerrad567/finger/internal/bot"
)

// TickResult describes one completed tick.
type TickResult struct {
	Bot        string
	InstanceID string
	Started    time.Time
	Duration   time.Duration
	Cooldown   time.Duration
	Status     string
	Err        error
}

// Observer receives orchestrator events on the orchestrator goroutine.
// Implementations must not block.
type Observer interface {
	RunStateChanged(state bot.RunState)
	TickCompleted(result TickResult)

	// RegistryChanged follows a toggle or rescan, in any run state.
	RegistryChanged()
}

// Observers fans events out to several observers in order.
type Observers []Observer

func (obs Observers) RunStateChanged(state bot.RunState) {
	for _, o := range obs {
		o.RunStateChanged(state)
	}
}

func (obs Observers) TickCompleted(result TickResult) {
	for _, o := range obs {
		o.TickCompleted(result)
	}
}

func (obs Observers) RegistryChanged() {
	for _, o := range obs {
		o.RegistryChanged()
	}
}

type noopObserver struct{}

func (noopObserver) RunStateChanged(bot.RunState) {}
func (noopObserver) TickCompleted(TickResult)     {}
func (noopObserver) RegistryChanged()             {}
