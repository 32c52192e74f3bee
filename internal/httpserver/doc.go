// Package httpserver is the default server engine behind the
// internal/server contract.
//
// It consumes the configuration map assembled by the conf package and
// serves the resolved application over net/http: a gorilla/mux router
// mounts the application at the root, the bind target selects a TCP or
// unix listener, and the worker-pool options of the CLI map onto listener
// and admission limits (netutil.LimitListener for the thread caps, a
// semaphore middleware for the accepted-request queue). HTTP parsing and
// connection handling themselves belong to net/http.
package httpserver
