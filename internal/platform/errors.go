package platform

import "errors"

// Domain errors for the platform package.
var (
	// ErrUnknownKind is returned by New for an unrecognised platform kind.
	ErrUnknownKind = errors.New("platform: unknown kind")

	// ErrBinaryNotFound is returned by New when a required executable is missing.
	ErrBinaryNotFound = errors.New("platform: required executable not found")
)
