package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/config"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
)

// Audience is the aud claim of every identity token.
const Audience = "hourbooksrv"

// Claims are the identity token claims the server relies on. Timing, issuer
// and audience are checked by the JWT parser before decoding.
type Claims struct {
	Subject   string  `mapstructure:"sub"`
	Name      string  `mapstructure:"name"`
	Role      string  `mapstructure:"role"`
	Admin     bool    `mapstructure:"adm"`
	ID        string  `mapstructure:"jti"`
	Version   string  `mapstructure:"ver"`
	ExpiresAt float64 `mapstructure:"exp"`
}

func (c *Claims) Expiry() time.Time {
	return time.Unix(int64(c.ExpiresAt), 0)
}

// Actor converts the claims into the request actor.
func (c *Claims) Actor() *hbcommon.Actor {
	return &hbcommon.Actor{
		Code:    c.Subject,
		Name:    c.Name,
		Role:    c.Role,
		IsAdmin: c.Admin,
		TokenID: c.ID,
	}
}

// CreateIdentityToken issues a signed token for m.
func (s *Service) CreateIdentityToken(ctx context.Context, m *models.Member) (string, time.Time, apperrors.Error) {
	now := s.now()
	expiry := now.Add(s.validity)
	claims := jwt.MapClaims{
		"sub":  m.Code,
		"name": m.Name,
		"role": m.Role,
		"adm":  m.IsAdmin,
		"jti":  uuid.New().String(),
		"iss":  s.issuer,
		"aud":  []string{Audience},
		"iat":  jwt.NewNumericDate(now),
		"nbf":  jwt.NewNumericDate(now.Add(-s.skew)),
		"exp":  jwt.NewNumericDate(expiry),
		"ver":  string(hbcommon.TokenVersionV0_1),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to sign token")
		return "", time.Time{}, ErrTokenGeneration.Err(err)
	}
	return signed, time.Unix(expiry.Unix(), 0), nil
}

// ValidateToken verifies the signature and standard claims of token and
// decodes the rest into Claims.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Claims, apperrors.Error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(Audience),
		jwt.WithLeeway(s.skew),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("token rejected")
		return nil, ErrInvalidToken.Err(err)
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken.Msg("unexpected claims type")
	}

	var claims Claims
	if err := mapstructure.Decode(map[string]any(mc), &claims); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("unable to decode claims")
		return nil, ErrInvalidToken.Msg("malformed claims")
	}
	if claims.Version != string(hbcommon.TokenVersionV0_1) {
		return nil, ErrInvalidToken.Msg(fmt.Sprintf("invalid token version: got %s, expected %s", claims.Version, hbcommon.TokenVersionV0_1))
	}
	if !config.IsValidMemberCode(claims.Subject) {
		return nil, ErrInvalidToken.Msg("invalid subject")
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken.Msg("missing jti claim")
	}
	return &claims, nil
}
