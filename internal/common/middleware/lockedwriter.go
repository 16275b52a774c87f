// Package middleware holds the chi middleware shared by the server: request
// logging with request ids, panic recovery and request timeouts.
package middleware

import (
	"net/http"
	"sync"

	"github.com/hourbook/hourbook/internal/common/httpx"
)

// lockedWriter serializes the handler goroutine against the timeout path.
// After a timeout has been claimed, handler writes are discarded.
type lockedWriter struct {
	mu       sync.Mutex
	rw       *httpx.ResponseWriter
	timedOut bool
}

// Header implements http.ResponseWriter.Header.
func (l *lockedWriter) Header() http.Header {
	return l.rw.Header()
}

// WriteHeader is dropped once the timeout response has been claimed.
func (l *lockedWriter) WriteHeader(code int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timedOut {
		return
	}
	l.rw.WriteHeader(code)
}

// Write is dropped once the timeout response has been claimed.
func (l *lockedWriter) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	return l.rw.Write(b)
}

// claimTimeout reports whether the timeout response may still be written.
func (l *lockedWriter) claimTimeout() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rw.Written() {
		return false
	}
	l.timedOut = true
	return true
}
