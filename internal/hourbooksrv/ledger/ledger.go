// Package ledger implements the session ledger: sign-in and sign-out of
// members, the session cap and flag policy, administrative corrections and
// the per-member hours summary.
//
// Every operation runs on behalf of an actor. The actor is stored in the
// context handed to the Store so the persistence layer can establish the
// security context before each statement. The ledger checks privileges
// itself as well; a store that enforces row-level security rejects the same
// calls independently.
package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/auditlog"
	"github.com/hourbook/hourbook/internal/hourbooksrv/config"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
)

// Store is the persistence surface the ledger needs. Errors are from the
// dberror taxonomy.
type Store interface {
	CreateTimeSession(ctx context.Context, s *models.TimeSession) apperrors.Error
	GetTimeSession(ctx context.Context, id uuid.UUID) (*models.TimeSession, apperrors.Error)
	GetOpenTimeSession(ctx context.Context, memberCode string) (*models.TimeSession, apperrors.Error)
	CloseTimeSession(ctx context.Context, id uuid.UUID, checkOut time.Time, totalHours float64, flagged bool) (*models.TimeSession, apperrors.Error)
	UpdateTimeSessionHours(ctx context.Context, id uuid.UUID, totalHours float64, notes string) (*models.TimeSession, apperrors.Error)
	DeleteTimeSession(ctx context.Context, id uuid.UUID) apperrors.Error
	ListOpenTimeSessions(ctx context.Context) ([]*models.TimeSession, apperrors.Error)
	ListClosedTimeSessions(ctx context.Context, memberCode string) ([]*models.TimeSession, apperrors.Error)
	ListUserHoursSummary(ctx context.Context) ([]*models.UserHoursSummary, apperrors.Error)
}

type Ledger struct {
	store    Store
	now      func() time.Time
	capHours float64
	audit    auditlog.Sink
}

type Option func(*Ledger)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithSessionCap sets the cap in hours.
func WithSessionCap(hours float64) Option {
	return func(l *Ledger) { l.capHours = hours }
}

func WithAuditSink(s auditlog.Sink) Option {
	return func(l *Ledger) { l.audit = s }
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		now:      time.Now,
		capHours: DefaultSessionCap,
		audit:    auditlog.Nop{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SessionCap returns the configured cap in hours.
func (l *Ledger) SessionCap() float64 {
	return l.capHours
}

func (l *Ledger) clock() time.Time {
	return l.now().UTC()
}

// authorize checks the actor and binds it to ctx.
func authorize(ctx context.Context, actor *hbcommon.Actor, admin bool) (context.Context, apperrors.Error) {
	if actor == nil || actor.Code == "" {
		return ctx, ErrAuthorization.Msg("authentication required")
	}
	if admin && !actor.IsAdmin {
		return ctx, ErrAdminRequired
	}
	return hbcommon.WithActor(ctx, actor), nil
}

func validMemberCode(code string) apperrors.Error {
	if !config.IsValidMemberCode(code) {
		return ErrInvalidCode
	}
	return nil
}

// record writes an audit event. A failed write is logged and otherwise
// ignored since the mutation has already been committed.
func (l *Ledger) record(ctx context.Context, e auditlog.Event) {
	e.Time = l.clock()
	e.ActorCode = hbcommon.GetActorCode(ctx)
	if err := l.audit.Record(ctx, e); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("action", string(e.Action)).Str("session_id", e.SessionID).Msg("failed to write audit event")
	}
}

func logStoreError(ctx context.Context, op string, err apperrors.Error) {
	log.Ctx(ctx).Error().Err(err).Str("op", op).Msg("store call failed")
}
