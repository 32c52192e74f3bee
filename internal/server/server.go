package server

import (
	"context"
	"errors"
)

// ErrStopped is returned by Start when the server terminated because Stop
// was called, as opposed to failing on its own. The lifecycle controller
// treats it as a clean exit.
var ErrStopped = errors.New("server stopped")

// Server is the lifecycle surface of the engine. One Server instance
// serves exactly one process invocation.
type Server interface {
	// Start begins serving and blocks until the server stops or fails.
	// After Stop has been called, Start returns ErrStopped.
	Start() error

	// Stop asks the server to shut down gracefully, waiting for in-flight
	// work within the engine's configured shutdown deadline (bounded
	// additionally by ctx). Stop is called exactly once per invocation.
	Stop(ctx context.Context) error
}

// Factory constructs an engine from an assembled configuration map (see
// the conf package for the key set). Construction may fail when
// configuration values violate the engine's own preconditions; such
// failures propagate to the caller unchanged.
type Factory func(config map[string]any) (Server, error)
