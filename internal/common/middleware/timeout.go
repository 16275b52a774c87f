// Package middleware holds the chi middleware shared by the server: request
// logging with request ids, panic recovery and request timeouts.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/rs/zerolog/log"
)

// SetTimeout bounds request handling. The deadline is also placed on the
// request context so database calls stop with it.
func SetTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := &lockedWriter{rw: httpx.NewResponseWriter(w)}
			done := make(chan struct{})
			go func() {
				defer func() {
					if p := recover(); p != nil {
						log.Ctx(ctx).Error().Msgf("panic in handler: %v", p)
					}
					close(done)
				}()
				next.ServeHTTP(rw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if rw.claimTimeout() {
					httpx.ErrRequestTimeout().Send(w)
				}
				log.Ctx(ctx).Error().Dur("timeout", timeout).Msg("request timed out")
				// the handler observes ctx and must return before w is released
				<-done
			}
		})
	}
}
