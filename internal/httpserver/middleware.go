package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// serverNameMiddleware advertises the configured server identity via the
// Server response header.
func serverNameMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Server", name)
			next.ServeHTTP(w, r)
		})
	}
}

// admissionMiddleware bounds the number of requests being served at once
// with a semaphore of the given size. A request that cannot acquire a
// slot within the timeout is rejected with 503; with no timeout it waits
// as long as the client does.
func admissionMiddleware(size int, timeout time.Duration) mux.MiddlewareFunc {
	slots := make(chan struct{}, size)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout > 0 {
				timer := time.NewTimer(timeout)
				defer timer.Stop()

				select {
				case slots <- struct{}{}:
				case <-timer.C:
					http.Error(w, "request queue full", http.StatusServiceUnavailable)
					return
				case <-r.Context().Done():
					return
				}
			} else {
				select {
				case slots <- struct{}{}:
				case <-r.Context().Done():
					return
				}
			}
			defer func() { <-slots }()

			next.ServeHTTP(w, r)
		})
	}
}
