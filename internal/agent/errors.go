package agent

import "errors"

// Domain errors for agent runtimes.
var (
	// ErrInvalidScript is returned when a script does not evaluate to a table.
	ErrInvalidScript = errors.New("agent: script must return a table")

	// ErrMissingField is returned when required metadata is absent.
	ErrMissingField = errors.New("agent: required field missing")

	// ErrMissingTick is returned when a script has no tick function.
	ErrMissingTick = errors.New("agent: tick function missing")

	// ErrBadReturn is returned when a script function returns an unusable value.
	ErrBadReturn = errors.New("agent: unexpected return value")

	// ErrStopped is returned by calls on an agent after Stop.
	ErrStopped = errors.New("agent: stopped")
)
