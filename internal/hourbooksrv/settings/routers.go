package settings

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hourbook/hourbook/internal/common/httpx"
)

// Router serves /settings. The caller mounts it behind authentication.
// Revealing member codes checks for the root administrator in SetShowIDs.
func (s *Store) Router() chi.Router {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/", httpx.WrapHttpRsp(s.getSettings))
	r.Method(http.MethodPut, "/id-visibility", httpx.WrapHttpRsp(s.putIDVisibility))
	r.Method(http.MethodPost, "/kiosk/lock", httpx.WrapHttpRsp(s.lockKiosk))
	r.Method(http.MethodPost, "/kiosk/unlock", httpx.WrapHttpRsp(s.unlockKiosk))
	return r
}
