// Package middleware holds the chi middleware shared by the server: request
// logging with request ids, panic recovery and request timeouts.
package middleware

import (
	"net/http"
	"time"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/internal/common/logtrace"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader echoes the request id back to the client.
const RequestIDHeader = "X-Hourbook-Request-ID"

// RequestLogger attaches a request id and a request-scoped zerolog logger to
// the context and logs the request on entry and exit.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := newRequestId()

		ctx := logtrace.WithRequestId(r.Context(), requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)
		w.Header().Set(RequestIDHeader, requestID)

		log.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_ip", r.RemoteAddr).
			Msg("incoming request")

		rw := httpx.NewResponseWriter(w)
		defer func() {
			log.Ctx(ctx).Info().
				Int("status", rw.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// newRequestId returns a time-ordered UUID string.
func newRequestId() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "req-" + time.Now().UTC().Format("20060102150405.000000000")
	}
	return id.String()
}
