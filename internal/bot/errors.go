package bot

import "errors"

// Domain errors for the bot package.
var (
	// ErrIndexOutOfRange is returned when an entry index does not exist.
	ErrIndexOutOfRange = errors.New("bot: entry index out of range")

	// ErrInstanceNotFound is returned when an instance ID does not exist.
	ErrInstanceNotFound = errors.New("bot: instance not found")
)
