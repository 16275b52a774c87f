package settings

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
	"github.com/hourbook/hourbook/internal/hourbooksrv/reqvalidator"
	"github.com/hourbook/hourbook/pkg/api"
)

func toAPI(s Settings) *api.Settings {
	return &api.Settings{ShowIDs: s.ShowIDs, KioskLocked: s.KioskLocked}
}

func ok(s Settings) *httpx.Response {
	return &httpx.Response{StatusCode: http.StatusOK, Response: toAPI(s)}
}

func (s *Store) getSettings(r *http.Request) (*httpx.Response, error) {
	return ok(s.Get(hbcommon.GetActor(r.Context()))), nil
}

func (s *Store) putIDVisibility(r *http.Request) (*httpx.Response, error) {
	var req api.IDVisibilityReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := reqvalidator.Check(&req); err != nil {
		return nil, err
	}
	st, err := s.SetShowIDs(hbcommon.GetActor(r.Context()), *req.Show)
	if err != nil {
		return nil, err
	}
	log.Ctx(r.Context()).Info().Bool("show_ids", st.ShowIDs).Msg("id visibility changed")
	return ok(st), nil
}

func (s *Store) lockKiosk(r *http.Request) (*httpx.Response, error) {
	st, err := s.Lock(hbcommon.GetActor(r.Context()))
	if err != nil {
		return nil, err
	}
	log.Ctx(r.Context()).Info().Msg("kiosk locked")
	return ok(st), nil
}

func (s *Store) unlockKiosk(r *http.Request) (*httpx.Response, error) {
	var req api.KioskUnlockReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := reqvalidator.Check(&req); err != nil {
		return nil, err
	}
	st, err := s.Unlock(hbcommon.GetActor(r.Context()), req.ExitCode)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("kiosk unlock rejected")
		return nil, err
	}
	log.Ctx(r.Context()).Info().Msg("kiosk unlocked")
	return ok(st), nil
}

// KioskGuard rejects requests from a console locked in kiosk mode.
func (s *Store) KioskGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.IsKioskLocked(hbcommon.GetActor(r.Context())) {
			httpx.SendError(w, ErrKioskLocked)
			return
		}
		next.ServeHTTP(w, r)
	})
}
