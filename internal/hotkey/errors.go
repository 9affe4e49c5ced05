package hotkey

import "errors"

var (
	// ErrUnknownSignal is returned when the configured signal name cannot be resolved.
	ErrUnknownSignal = errors.New("hotkey: unknown signal")

	// ErrUnsupported is returned on platforms without POSIX signals.
	ErrUnsupported = errors.New("hotkey: signals not supported on this platform")
)
