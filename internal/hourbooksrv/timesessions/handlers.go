package timesessions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
	"github.com/hourbook/hourbook/internal/hourbooksrv/reqvalidator"
	"github.com/hourbook/hourbook/pkg/api"
)

func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		return uuid.UUID{}, httpx.ErrInvalidRequest("invalid session id")
	}
	return id, nil
}

func (h *Handlers) signIn(r *http.Request) (*httpx.Response, error) {
	var req api.SignInReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := reqvalidator.Check(&req); err != nil {
		return nil, err
	}
	s, err := h.ledger.SignIn(r.Context(), hbcommon.GetActor(r.Context()), req.MemberCode)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/time-sessions/" + s.ID.String(),
		Response:   toAPISession(s),
	}, nil
}

func (h *Handlers) signOut(r *http.Request) (*httpx.Response, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	s, aerr := h.ledger.SignOut(r.Context(), hbcommon.GetActor(r.Context()), id)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: toAPISession(s)}, nil
}

func (h *Handlers) manualAdd(r *http.Request) (*httpx.Response, error) {
	var req api.ManualAddReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := reqvalidator.Check(&req); err != nil {
		return nil, err
	}
	s, err := h.ledger.ManualAdd(r.Context(), hbcommon.GetActor(r.Context()), req.MemberCode, *req.Hours, req.Notes)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/time-sessions/" + s.ID.String(),
		Response:   toAPISession(s),
	}, nil
}

func (h *Handlers) adjustHours(r *http.Request) (*httpx.Response, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	var req api.AdjustHoursReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := reqvalidator.Check(&req); err != nil {
		return nil, err
	}
	s, aerr := h.ledger.AdjustHours(r.Context(), hbcommon.GetActor(r.Context()), id, *req.Hours, req.Notes)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: toAPISession(s)}, nil
}

func (h *Handlers) deleteSession(r *http.Request) (*httpx.Response, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	if aerr := h.ledger.DeleteSession(r.Context(), hbcommon.GetActor(r.Context()), id); aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}

func (h *Handlers) listOpen(r *http.Request) (*httpx.Response, error) {
	sessions, err := h.ledger.ListOpenSessions(r.Context(), hbcommon.GetActor(r.Context()))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: toAPISessionList(sessions)}, nil
}

func (h *Handlers) listForMember(r *http.Request) (*httpx.Response, error) {
	code := r.URL.Query().Get("member")
	if code == "" {
		return nil, httpx.ErrInvalidRequest("member query parameter is required")
	}
	sessions, err := h.ledger.ListSessionsForUser(r.Context(), hbcommon.GetActor(r.Context()), code)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: toAPISessionList(sessions)}, nil
}

func (h *Handlers) hoursSummary(r *http.Request) (*httpx.Response, error) {
	actor := hbcommon.GetActor(r.Context())
	rows, err := h.ledger.GetUserHoursSummary(r.Context(), actor)
	if err != nil {
		return nil, err
	}
	show := h.settings.Get(actor).ShowIDs
	return &httpx.Response{StatusCode: http.StatusOK, Response: toAPISummary(rows, show)}, nil
}
