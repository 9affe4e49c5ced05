package remote

import "errors"

var (
	// ErrUnknownCommand is returned for a command topic with an unknown kind.
	ErrUnknownCommand = errors.New("remote: unknown command")

	// ErrBadPayload is returned when a command payload cannot be decoded.
	ErrBadPayload = errors.New("remote: bad command payload")

	// ErrUnknownBot is returned when a payload names a bot that does not exist.
	ErrUnknownBot = errors.New("remote: unknown bot")

	// ErrCommandDropped is returned when the orchestrator did not accept a
	// command in time.
	ErrCommandDropped = errors.New("remote: command dropped")
)
