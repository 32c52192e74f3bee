// Package httpserver — options.go maps the assembled configuration onto
// typed engine options.
package httpserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmr-tortoise/gantry/internal/conf"
	"github.com/mmr-tortoise/gantry/internal/locator"
	"github.com/mmr-tortoise/gantry/internal/model"
)

// options is the typed form of the configuration map. Zero values mean
// the option was not supplied; the engine then applies its own behavior
// (no timeouts, unbounded concurrency).
type options struct {
	app        locator.Application
	bind       model.BindTarget
	serverName string

	// threads is the preferred concurrency; maxThreads is the hard
	// ceiling. The effective listener cap is maxThreads when set,
	// otherwise threads.
	threads    int
	maxThreads int

	// timeout applies to reading and writing each accepted connection.
	timeout time.Duration

	// shutdownTimeout bounds the graceful-stop wait.
	shutdownTimeout time.Duration

	// requestQueueSize is accepted for compatibility; the OS owns the
	// listen backlog, so it is advisory only.
	requestQueueSize int

	// acceptedQueueSize caps requests admitted past the listener;
	// acceptedQueueTimeout bounds the wait for an admission slot.
	acceptedQueueSize    int
	acceptedQueueTimeout time.Duration
}

// parseOptions converts a configuration map into options. An unexpected
// key or a value of the wrong type is a programmer error in the assembly
// layer and fails construction.
func parseOptions(config map[string]any) (options, error) {
	var o options
	haveApp := false
	haveBind := false

	for key, value := range config {
		switch key {
		case conf.KeyApp:
			app, ok := value.(locator.Application)
			if !ok {
				return o, fmt.Errorf("option %q: expected an application, got %T", key, value)
			}
			o.app = app
			haveApp = true

		case conf.KeyBind:
			bind, ok := value.(model.BindTarget)
			if !ok {
				return o, fmt.Errorf("option %q: expected a bind target, got %T", key, value)
			}
			o.bind = bind
			haveBind = true

		case conf.KeyServerName:
			s, ok := value.(string)
			if !ok {
				return o, fmt.Errorf("option %q: expected a string, got %T", key, value)
			}
			o.serverName = s

		case conf.KeyThreads:
			n, err := intOption(key, value)
			if err != nil {
				return o, err
			}
			o.threads = n

		case conf.KeyMaxThreads:
			n, err := intOption(key, value)
			if err != nil {
				return o, err
			}
			o.maxThreads = n

		case conf.KeyTimeout:
			d, err := secondsOption(key, value)
			if err != nil {
				return o, err
			}
			o.timeout = d

		case conf.KeyShutdownTimeout:
			d, err := secondsOption(key, value)
			if err != nil {
				return o, err
			}
			o.shutdownTimeout = d

		case conf.KeyRequestQueueSize:
			n, err := intOption(key, value)
			if err != nil {
				return o, err
			}
			o.requestQueueSize = n

		case conf.KeyAcceptedQueueSize:
			n, err := intOption(key, value)
			if err != nil {
				return o, err
			}
			o.acceptedQueueSize = n

		case conf.KeyAcceptedQueueTimeout:
			d, err := secondsOption(key, value)
			if err != nil {
				return o, err
			}
			o.acceptedQueueTimeout = d

		default:
			return o, fmt.Errorf("unexpected option %q", key)
		}
	}

	if !haveApp || o.app == nil {
		return o, errors.New("configuration is missing the application")
	}
	if !haveBind {
		return o, errors.New("configuration is missing the bind target")
	}
	return o, nil
}

// concurrencyCap returns the effective limit on concurrently served
// connections; 0 means unbounded.
func (o options) concurrencyCap() int {
	if o.maxThreads > 0 {
		return o.maxThreads
	}
	return o.threads
}

// intOption coerces an integer-valued option.
func intOption(key string, value any) (int, error) {
	n, ok := value.(int)
	if !ok {
		return 0, fmt.Errorf("option %q: expected an integer, got %T", key, value)
	}
	return n, nil
}

// secondsOption coerces an integer-of-seconds option to a Duration.
func secondsOption(key string, value any) (time.Duration, error) {
	n, err := intOption(key, value)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
