package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
)

// Middleware validates the bearer token and stores the actor in the request
// context.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			log.Ctx(ctx).Warn().Msg("missing or invalid authorization header")
			httpx.ErrUnAuthorized("missing or invalid authorization header").Send(w)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := s.ValidateToken(ctx, token)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("token validation failed")
			httpx.ErrUnAuthorized("invalid authorization. login required").Send(w)
			return
		}

		actor := claims.Actor()
		logger := log.Ctx(ctx).With().Str("actor", actor.Code).Logger()
		ctx = logger.WithContext(ctx)
		ctx = hbcommon.WithActor(ctx, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects actors without administrator privilege.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := hbcommon.GetActor(r.Context())
		if actor == nil || !actor.IsAdmin {
			httpx.SendError(w, ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
