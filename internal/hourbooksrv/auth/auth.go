// Package auth is the identity provider of the hourbook server: members log
// in with their 5-digit code and receive a signed identity token, and the
// middleware turns that token back into the request actor.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/hourbooksrv/config"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
)

const (
	DefaultRole     = "Team Member"
	RootMemberName  = "Root Administrator"
	RootMemberRole  = "Administrator"
	enrolledNameFmt = "User %s"
)

// MemberStore is the member registry consulted at login.
type MemberStore interface {
	GetMember(ctx context.Context, code string) (*models.Member, apperrors.Error)
	CreateMember(ctx context.Context, m *models.Member) apperrors.Error
	UpsertMember(ctx context.Context, m *models.Member) apperrors.Error
}

type Service struct {
	members    MemberStore
	secret     []byte
	issuer     string
	validity   time.Duration
	skew       time.Duration
	autoEnroll bool
	rootCode   string
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the identity provider from the auth configuration.
func NewService(members MemberStore, c *config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		members:    members,
		secret:     []byte(c.SigningSecret),
		issuer:     c.Issuer,
		validity:   c.GetTokenValidityOrDefault(),
		skew:       c.GetClockSkewOrDefault(),
		autoEnroll: c.AutoEnroll,
		rootCode:   c.RootMemberCode,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsRoot reports whether code names the root administrator.
func (s *Service) IsRoot(code string) bool {
	return code != "" && code == s.rootCode
}

// Authenticate resolves the member behind code, enrolling unknown codes when
// auto-enrolment is on.
func (s *Service) Authenticate(ctx context.Context, code string) (*models.Member, apperrors.Error) {
	if !config.IsValidMemberCode(code) {
		return nil, ErrUnknownMember
	}
	m, err := s.members.GetMember(ctx, code)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, dberror.ErrNotFound) {
		log.Ctx(ctx).Error().Err(err).Msg("failed to look up member")
		return nil, ErrAuth.Err(err)
	}
	if !s.autoEnroll {
		return nil, ErrUnknownMember
	}

	m = &models.Member{
		Code: code,
		Name: fmt.Sprintf(enrolledNameFmt, code),
		Role: DefaultRole,
	}
	if err := s.members.CreateMember(ctx, m); err != nil {
		// lost a race with a concurrent first login
		if errors.Is(err, dberror.ErrAlreadyExists) {
			return s.members.GetMember(ctx, code)
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to enrol member")
		return nil, ErrAuth.Err(err)
	}
	log.Ctx(ctx).Info().Str("member_code", code).Msg("member enrolled")
	return m, nil
}

// SeedRoot makes sure the root administrator exists and is an admin.
func (s *Service) SeedRoot(ctx context.Context) error {
	m, err := s.members.GetMember(ctx, s.rootCode)
	switch {
	case err == nil && m.IsAdmin:
		return nil
	case err == nil:
		m.IsAdmin = true
	case errors.Is(err, dberror.ErrNotFound):
		m = &models.Member{Code: s.rootCode, Name: RootMemberName, Role: RootMemberRole, IsAdmin: true}
	default:
		return err
	}
	if err := s.members.UpsertMember(ctx, m); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("member_code", s.rootCode).Msg("root administrator seeded")
	return nil
}
