// Package server assembles the hourbook HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/internal/common/logtrace"
	commonmiddleware "github.com/hourbook/hourbook/internal/common/middleware"
	"github.com/hourbook/hourbook/internal/hourbooksrv/auth"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
	"github.com/hourbook/hourbook/internal/hourbooksrv/ledger"
	"github.com/hourbook/hourbook/internal/hourbooksrv/settings"
	"github.com/hourbook/hourbook/internal/hourbooksrv/timesessions"
	"github.com/hourbook/hourbook/pkg/api"
)

type Options struct {
	Ledger   *ledger.Ledger
	Auth     *auth.Service
	Settings *settings.Store

	// ConnMiddleware attaches per-request storage to the context. Servers
	// backed by in-memory stores leave it nil.
	ConnMiddleware func(http.Handler) http.Handler
	// Ready reports whether the backing store can serve requests.
	Ready func(ctx context.Context) error

	HandleCORS         bool
	AllowedOrigins     []string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

type HourbookServer struct {
	Router *chi.Mux
	opts   Options
	api    *semver.Constraints
}

func CreateNewServer(opts Options) (*HourbookServer, error) {
	if opts.Ledger == nil || opts.Auth == nil || opts.Settings == nil {
		return nil, fmt.Errorf("ledger, auth and settings are required")
	}
	c, err := semver.NewConstraint("^" + hbcommon.ApiVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid api version %q: %w", hbcommon.ApiVersion, err)
	}
	return &HourbookServer{
		Router: chi.NewRouter(),
		opts:   opts,
		api:    c,
	}, nil
}

func (s *HourbookServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if s.opts.RequestTimeout > 0 {
		s.Router.Use(commonmiddleware.SetTimeout(s.opts.RequestTimeout))
	}
	if s.opts.MaxRequestBodySize > 0 {
		s.Router.Use(s.limitBody)
	}
	if s.opts.HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", api.ApiVersionHeader},
			MaxAge:         300,
		}))
	}
	s.mountResourceHandlers(s.Router)

	if logtrace.IsTraceEnabled() {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			log.Trace().Str("method", method).Str("route", route).Msg("route")
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			log.Error().Err(err).Msg("unable to walk routes")
		}
	}
}

func (s *HourbookServer) mountResourceHandlers(r chi.Router) {
	r.Get("/version", s.getVersion)
	r.Get("/ready", s.getReadiness)

	ts := timesessions.New(s.opts.Ledger, s.opts.Settings)
	r.Group(func(r chi.Router) {
		if s.opts.ConnMiddleware != nil {
			r.Use(s.opts.ConnMiddleware)
		}
		r.Use(s.checkApiVersion)
		r.Method(http.MethodPost, "/auth/login", httpx.WrapHttpRsp(s.opts.Auth.Login))

		r.Group(func(r chi.Router) {
			r.Use(s.opts.Auth.Middleware)
			r.Mount("/time-sessions", ts.Router())
			r.Method(http.MethodGet, "/hours-summary", ts.SummaryHandler())
			r.Mount("/settings", s.opts.Settings.Router())
		})
	})
}

func (s *HourbookServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, &api.VersionRsp{
		ServerVersion: "Hourbook Server: " + hbcommon.ServerVersion,
		ApiVersion:    hbcommon.ApiVersion,
	})
}

func (s *HourbookServer) getReadiness(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		if err := s.opts.Ready(r.Context()); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("readiness check failed")
			httpx.SendJsonRsp(r.Context(), w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  "database connection failed",
			})
			return
		}
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, map[string]string{"status": "ready"})
}

// checkApiVersion rejects clients built against an incompatible API. Clients
// that do not send a version are served.
func (s *HourbookServer) checkApiVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v := r.Header.Get(api.ApiVersionHeader); v != "" {
			cv, err := semver.NewVersion(v)
			if err != nil || !s.api.Check(cv) {
				log.Ctx(r.Context()).Warn().Str("client_api_version", v).Msg("incompatible client")
				httpx.ErrInvalidRequest(fmt.Sprintf("client api version %s is not compatible with server api version %s", v, hbcommon.ApiVersion)).Send(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HourbookServer) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxRequestBodySize)
		}
		next.ServeHTTP(w, r)
	})
}
