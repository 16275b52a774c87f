// Package middleware holds the chi middleware shared by the server: request
// logging with request ids, panic recovery and request timeouts.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/rs/zerolog/log"
)

// PanicHandler turns a handler panic into a 500 unless a response has already
// been started.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := httpx.NewResponseWriter(w)
		defer func() {
			if p := recover(); p != nil {
				log.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprintf("%v", p)).
					Str("stack_trace", string(debug.Stack())).
					Msg("panic occurred")
				if !rw.Written() {
					httpx.ErrApplicationError().Send(rw)
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
