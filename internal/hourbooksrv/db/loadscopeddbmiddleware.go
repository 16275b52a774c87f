package db

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/httpx"
)

// LoadScopedDBMiddleware attaches a scoped connection to the request context
// and returns it to the pool once the request is served.
func LoadScopedDBMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := ConnCtx(r.Context())
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("unable to get db connection")
			httpx.ErrServiceUnavailable("unable to service request at this time").Send(w)
			return
		}
		defer func() {
			if dbConn := DB(ctx); dbConn != nil {
				dbConn.Close(context.Background()) // request context may already be canceled
			}
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
