package db

import (
	"context"
	"time"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
)

// ContextStore resolves the database from the request context on every call.
// Handlers built at startup hold a ContextStore while each request brings its
// own scoped connection through LoadScopedDBMiddleware.
type ContextStore struct{}

var errNoConn = dberror.ErrDatabase.Msg("no database connection in context")

func (ContextStore) db(ctx context.Context) (Database, apperrors.Error) {
	d := DB(ctx)
	if d == nil {
		return nil, errNoConn
	}
	return d, nil
}

func (s ContextStore) CreateTimeSession(ctx context.Context, ts *models.TimeSession) apperrors.Error {
	d, err := s.db(ctx)
	if err != nil {
		return err
	}
	return d.CreateTimeSession(ctx, ts)
}

func (s ContextStore) GetTimeSession(ctx context.Context, id uuid.UUID) (*models.TimeSession, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.GetTimeSession(ctx, id)
}

func (s ContextStore) GetOpenTimeSession(ctx context.Context, memberCode string) (*models.TimeSession, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.GetOpenTimeSession(ctx, memberCode)
}

func (s ContextStore) CloseTimeSession(ctx context.Context, id uuid.UUID, checkOut time.Time, totalHours float64, flagged bool) (*models.TimeSession, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.CloseTimeSession(ctx, id, checkOut, totalHours, flagged)
}

func (s ContextStore) UpdateTimeSessionHours(ctx context.Context, id uuid.UUID, totalHours float64, notes string) (*models.TimeSession, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.UpdateTimeSessionHours(ctx, id, totalHours, notes)
}

func (s ContextStore) DeleteTimeSession(ctx context.Context, id uuid.UUID) apperrors.Error {
	d, err := s.db(ctx)
	if err != nil {
		return err
	}
	return d.DeleteTimeSession(ctx, id)
}

func (s ContextStore) ListOpenTimeSessions(ctx context.Context) ([]*models.TimeSession, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.ListOpenTimeSessions(ctx)
}

func (s ContextStore) ListClosedTimeSessions(ctx context.Context, memberCode string) ([]*models.TimeSession, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.ListClosedTimeSessions(ctx, memberCode)
}

func (s ContextStore) ListUserHoursSummary(ctx context.Context) ([]*models.UserHoursSummary, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.ListUserHoursSummary(ctx)
}

func (s ContextStore) GetMember(ctx context.Context, code string) (*models.Member, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.GetMember(ctx, code)
}

func (s ContextStore) CreateMember(ctx context.Context, m *models.Member) apperrors.Error {
	d, err := s.db(ctx)
	if err != nil {
		return err
	}
	return d.CreateMember(ctx, m)
}

func (s ContextStore) UpsertMember(ctx context.Context, m *models.Member) apperrors.Error {
	d, err := s.db(ctx)
	if err != nil {
		return err
	}
	return d.UpsertMember(ctx, m)
}

func (s ContextStore) ListMembers(ctx context.Context) ([]*models.Member, apperrors.Error) {
	d, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return d.ListMembers(ctx)
}
