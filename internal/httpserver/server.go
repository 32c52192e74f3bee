package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/mmr-tortoise/gantry/internal/server"
)

// HTTPServer serves a resolved application over HTTP. It implements the
// server.Server lifecycle contract: a blocking Start and a graceful Stop.
type HTTPServer struct {
	opts options
	log  *zap.SugaredLogger
	srv  *http.Server

	mu   sync.Mutex
	addr net.Addr
}

// Factory adapts New to the server.Factory contract, closing over the
// logger.
func Factory(log *zap.SugaredLogger) server.Factory {
	return func(config map[string]any) (server.Server, error) {
		return New(config, log)
	}
}

// New constructs an HTTPServer from an assembled configuration map.
// Construction validates the option set and builds the handler chain; no
// socket is bound until Start.
func New(config map[string]any, log *zap.SugaredLogger) (*HTTPServer, error) {
	opts, err := parseOptions(config)
	if err != nil {
		return nil, err
	}

	if opts.requestQueueSize > 0 {
		log.Debugw("request_queue_size is advisory; the OS owns the listen backlog",
			"request_queue_size", opts.requestQueueSize)
	}

	router := mux.NewRouter()
	if opts.serverName != "" {
		router.Use(serverNameMiddleware(opts.serverName))
	}
	if opts.acceptedQueueSize > 0 {
		router.Use(admissionMiddleware(opts.acceptedQueueSize, opts.acceptedQueueTimeout))
	}
	router.PathPrefix("/").Handler(opts.app)

	s := &HTTPServer{opts: opts, log: log}
	s.srv = &http.Server{
		Handler:      router,
		ReadTimeout:  opts.timeout,
		WriteTimeout: opts.timeout,
		ErrorLog:     zap.NewStdLog(log.Desugar().Named("http")),
	}
	return s, nil
}

// Start binds the configured target and blocks serving it until the
// server stops or fails. A termination caused by Stop is reported as
// server.ErrStopped.
func (s *HTTPServer) Start() error {
	listener, err := s.listen()
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.opts.bind, err)
	}
	if cap := s.opts.concurrencyCap(); cap > 0 {
		listener = netutil.LimitListener(listener, cap)
	}

	s.mu.Lock()
	s.addr = listener.Addr()
	s.mu.Unlock()

	s.log.Infow("serving",
		"bind", s.opts.bind.String(),
		"network", s.opts.bind.Kind.String(),
	)

	err = s.srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return server.ErrStopped
	}
	return err
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// up to the configured shutdown timeout (and ctx). If the deadline
// expires, remaining connections are closed forcibly and the deadline
// error is returned.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.opts.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.shutdownTimeout)
		defer cancel()
	}

	s.log.Infow("stopping", "bind", s.opts.bind.String())
	if err := s.srv.Shutdown(ctx); err != nil {
		_ = s.srv.Close()
		return fmt.Errorf("graceful stop: %w", err)
	}
	s.log.Infow("stopped")
	return nil
}

// Addr returns the bound listener address, or nil before Start has bound
// it. With an ephemeral port this is where the OS-assigned port shows up.
func (s *HTTPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// listen opens the listener for the configured bind target variant. A
// unix listener unlinks its socket file when the server closes it.
func (s *HTTPServer) listen() (net.Listener, error) {
	if s.opts.bind.IsSocket() {
		return net.Listen("unix", s.opts.bind.SocketPath)
	}
	return net.Listen("tcp", fmt.Sprintf("%s:%d", s.opts.bind.Host, s.opts.bind.Port))
}
