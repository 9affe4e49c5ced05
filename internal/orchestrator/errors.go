package orchestrator

import "errors"

// ErrMissingDependency is returned by New when a required option is nil.
var ErrMissingDependency = errors.New("orchestrator: missing dependency")
