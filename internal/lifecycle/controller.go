package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/gantry/internal/server"
)

// Controller owns one server invocation: it constructs the engine from an
// assembled configuration and drives Start/Stop around it.
type Controller struct {
	factory server.Factory
	config  map[string]any
	log     *zap.SugaredLogger
}

// NewController creates a Controller for one invocation.
func NewController(factory server.Factory, config map[string]any, log *zap.SugaredLogger) *Controller {
	return &Controller{
		factory: factory,
		config:  config,
		log:     log,
	}
}

// Run constructs the engine and serves until ctx is cancelled or Start
// fails on its own.
//
// Cancellation of ctx is the interrupt channel: it is treated as a normal
// termination request, not an error, and Run returns nil after the engine
// has stopped. Any other Start failure is returned — after Stop has run.
// Stop executes in a deferred block so that it runs exactly once on every
// path out of Run, including an actively propagating panic. Construction
// failures propagate unchanged; there is no engine to stop at that point.
func (c *Controller) Run(ctx context.Context) (err error) {
	srv, cerr := c.factory(c.config)
	if cerr != nil {
		return fmt.Errorf("constructing server: %w", cerr)
	}

	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() {
			if serr := srv.Stop(context.Background()); serr != nil {
				c.log.Errorw("stop failed", "error", serr)
				if err == nil {
					err = serr
				}
			}
		})
	}
	defer stop()

	started := make(chan error, 1)
	go func() {
		started <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		c.log.Infow("interrupt received, shutting down")
		stop()
		// Wait for Start to unwind so the engine is fully torn down
		// before Run returns. ErrStopped here is the expected clean exit.
		if serr := <-started; serr != nil && !errors.Is(serr, server.ErrStopped) {
			return serr
		}
		// err may carry a Stop failure from the inline stop above.
		return err

	case serr := <-started:
		if serr != nil && !errors.Is(serr, server.ErrStopped) {
			return serr
		}
		return nil
	}
}
