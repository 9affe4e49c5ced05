package bot

import "sync"

// RunState is the global orchestrator state.
type RunState int

const (
	Stopped RunState = iota
	Running
	Stopping
)

func (s RunState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// StateCell holds the RunState behind a mutex.
type StateCell struct {
	mu    sync.RWMutex
	state RunState
}

// Get returns the current state.
func (c *StateCell) Get() RunState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Set replaces the state and returns the previous one.
func (c *StateCell) Set(s RunState) RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.state
	c.state = s
	return prev
}
