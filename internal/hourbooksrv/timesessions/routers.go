// Package timesessions serves the session ledger over HTTP.
package timesessions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/internal/hourbooksrv/auth"
	"github.com/hourbook/hourbook/internal/hourbooksrv/ledger"
	"github.com/hourbook/hourbook/internal/hourbooksrv/settings"
)

type Handlers struct {
	ledger   *ledger.Ledger
	settings *settings.Store
}

func New(l *ledger.Ledger, s *settings.Store) *Handlers {
	return &Handlers{ledger: l, settings: s}
}

type handlerParam struct {
	Method  string
	Path    string
	Handler func(h *Handlers) httpx.RequestHandler
	// AdminOnly routes reject members without administrator privilege.
	AdminOnly bool
	// KioskAllowed routes stay available while the console is kiosk locked.
	KioskAllowed bool
}

var sessionHandlers = []handlerParam{
	{
		Method:       http.MethodPost,
		Path:         "/",
		Handler:      func(h *Handlers) httpx.RequestHandler { return h.signIn },
		AdminOnly:    true,
		KioskAllowed: true,
	},
	{
		Method:       http.MethodGet,
		Path:         "/open",
		Handler:      func(h *Handlers) httpx.RequestHandler { return h.listOpen },
		AdminOnly:    true,
		KioskAllowed: true,
	},
	{
		Method:       http.MethodPost,
		Path:         "/{sessionID}/sign-out",
		Handler:      func(h *Handlers) httpx.RequestHandler { return h.signOut },
		AdminOnly:    true,
		KioskAllowed: true,
	},
	{
		Method:    http.MethodPost,
		Path:      "/manual",
		Handler:   func(h *Handlers) httpx.RequestHandler { return h.manualAdd },
		AdminOnly: true,
	},
	{
		Method:    http.MethodPut,
		Path:      "/{sessionID}/hours",
		Handler:   func(h *Handlers) httpx.RequestHandler { return h.adjustHours },
		AdminOnly: true,
	},
	{
		Method:    http.MethodDelete,
		Path:      "/{sessionID}",
		Handler:   func(h *Handlers) httpx.RequestHandler { return h.deleteSession },
		AdminOnly: true,
	},
	{
		Method:    http.MethodGet,
		Path:      "/",
		Handler:   func(h *Handlers) httpx.RequestHandler { return h.listForMember },
		AdminOnly: true,
	},
}

// Router serves /time-sessions. It expects an authenticated actor in the
// request context.
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()
	for _, p := range sessionHandlers {
		var handler http.Handler = httpx.WrapHttpRsp(p.Handler(h))
		if !p.KioskAllowed {
			handler = h.settings.KioskGuard(handler)
		}
		if p.AdminOnly {
			handler = auth.RequireAdmin(handler)
		}
		r.Method(p.Method, p.Path, handler)
	}
	return r
}

// SummaryHandler serves /hours-summary to any authenticated member.
func (h *Handlers) SummaryHandler() http.Handler {
	return httpx.WrapHttpRsp(h.hoursSummary)
}
