package auth

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/internal/hourbooksrv/reqvalidator"
	"github.com/hourbook/hourbook/pkg/api"
)

// Login exchanges a member code for an identity token.
func (s *Service) Login(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	var req api.LoginReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := reqvalidator.Check(&req); err != nil {
		return nil, err
	}

	m, err := s.Authenticate(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	token, expiry, err := s.CreateIdentityToken(ctx, m)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("member_code", m.Code).Bool("admin", m.IsAdmin).Msg("member logged in")

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.LoginRsp{
			Token:     token,
			ExpiresAt: expiry,
			Member: api.Member{
				Code:    m.Code,
				Name:    m.Name,
				Role:    m.Role,
				IsAdmin: m.IsAdmin,
				IsRoot:  s.IsRoot(m.Code),
			},
		},
	}, nil
}
