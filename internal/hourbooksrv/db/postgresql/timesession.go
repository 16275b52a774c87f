package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
)

// CreateTimeSession inserts s. A second open session for the same member
// violates the partial unique index and returns dberror.ErrAlreadyExists.
func (tm *timeSessionManager) CreateTimeSession(ctx context.Context, s *models.TimeSession) apperrors.Error {
	if s == nil || s.MemberCode == "" {
		return dberror.ErrInvalidInput.Msg("time session requires a member code")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	var hours any
	if s.TotalHours != nil {
		n, err := numeric(*s.TotalHours)
		if err != nil {
			return err
		}
		hours = n
	}
	var checkOut any
	if s.CheckOutTime != nil {
		checkOut = utc(*s.CheckOutTime)
	}

	if err := tm.scoped(ctx); err != nil {
		return err
	}
	query := `
		INSERT INTO time_sessions (id, member_code, check_in_time, check_out_time,
			total_hours, is_flagged, admin_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + timeSessionColumns

	created, err := scanTimeSession(tm.conn().QueryRowContext(ctx, query,
		s.ID,
		s.MemberCode,
		utc(s.CheckInTime),
		checkOut,
		hours,
		s.IsFlagged,
		nullableText(s.AdminNotes),
	))
	if err != nil {
		if !errors.Is(err, dberror.ErrAlreadyExists) {
			log.Ctx(ctx).Error().Err(err).Str("member_code", s.MemberCode).Msg("failed to insert time session")
		}
		return err
	}
	*s = *created
	return nil
}

// GetTimeSession returns the session with the given id.
func (tm *timeSessionManager) GetTimeSession(ctx context.Context, id uuid.UUID) (*models.TimeSession, apperrors.Error) {
	if err := tm.scoped(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + timeSessionColumns + ` FROM time_sessions WHERE id = $1`
	return scanTimeSession(tm.conn().QueryRowContext(ctx, query, id))
}

// GetOpenTimeSession returns the open session of memberCode or
// dberror.ErrNotFound when the member is not signed in.
func (tm *timeSessionManager) GetOpenTimeSession(ctx context.Context, memberCode string) (*models.TimeSession, apperrors.Error) {
	if err := tm.scoped(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + timeSessionColumns + `
		FROM time_sessions
		WHERE member_code = $1 AND check_out_time IS NULL`
	return scanTimeSession(tm.conn().QueryRowContext(ctx, query, memberCode))
}

// CloseTimeSession records the check-out of an open session. The update is
// conditional on the session still being open, so closing a closed or
// missing session returns dberror.ErrNotFound.
func (tm *timeSessionManager) CloseTimeSession(ctx context.Context, id uuid.UUID, checkOut time.Time, totalHours float64, flagged bool) (*models.TimeSession, apperrors.Error) {
	hours, err := numeric(totalHours)
	if err != nil {
		return nil, err
	}
	if err := tm.scoped(ctx); err != nil {
		return nil, err
	}
	query := `
		UPDATE time_sessions
		SET check_out_time = $2, total_hours = $3, is_flagged = $4, updated_at = NOW()
		WHERE id = $1 AND check_out_time IS NULL
		RETURNING ` + timeSessionColumns

	s, err := scanTimeSession(tm.conn().QueryRowContext(ctx, query, id, utc(checkOut), hours, flagged))
	if err != nil {
		if !errors.Is(err, dberror.ErrNotFound) {
			log.Ctx(ctx).Error().Err(err).Str("session_id", id.String()).Msg("failed to close time session")
		}
		return nil, err
	}
	return s, nil
}

// UpdateTimeSessionHours overwrites total_hours and admin_notes only.
func (tm *timeSessionManager) UpdateTimeSessionHours(ctx context.Context, id uuid.UUID, totalHours float64, notes string) (*models.TimeSession, apperrors.Error) {
	hours, err := numeric(totalHours)
	if err != nil {
		return nil, err
	}
	if err := tm.scoped(ctx); err != nil {
		return nil, err
	}
	query := `
		UPDATE time_sessions
		SET total_hours = $2, admin_notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + timeSessionColumns

	s, err := scanTimeSession(tm.conn().QueryRowContext(ctx, query, id, hours, nullableText(notes)))
	if err != nil {
		if !errors.Is(err, dberror.ErrNotFound) {
			log.Ctx(ctx).Error().Err(err).Str("session_id", id.String()).Msg("failed to update hours")
		}
		return nil, err
	}
	return s, nil
}

// DeleteTimeSession removes the session permanently.
func (tm *timeSessionManager) DeleteTimeSession(ctx context.Context, id uuid.UUID) apperrors.Error {
	if err := tm.scoped(ctx); err != nil {
		return err
	}
	result, err := tm.conn().ExecContext(ctx, `DELETE FROM time_sessions WHERE id = $1`, id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("session_id", id.String()).Msg("failed to delete time session")
		return mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	// RLS hides rows from non-admins, so a denied delete also lands here.
	if n == 0 {
		return dberror.ErrNotFound
	}
	return nil
}

// ListOpenTimeSessions returns every open session with the member's name,
// most recent check-in first.
func (tm *timeSessionManager) ListOpenTimeSessions(ctx context.Context) ([]*models.TimeSession, apperrors.Error) {
	return tm.list(ctx, scanOpenTimeSession, `
		SELECT `+openSessionColumns+`
		FROM time_sessions ts
		LEFT JOIN members m ON m.code = ts.member_code
		WHERE ts.check_out_time IS NULL
		ORDER BY ts.check_in_time DESC`)
}

// ListClosedTimeSessions returns the closed sessions of memberCode, newest
// first by creation time. An unknown member is ErrMemberNotFound.
func (tm *timeSessionManager) ListClosedTimeSessions(ctx context.Context, memberCode string) ([]*models.TimeSession, apperrors.Error) {
	if err := tm.scoped(ctx); err != nil {
		return nil, err
	}
	var exists bool
	err := tm.conn().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM members WHERE code = $1)`, memberCode).Scan(&exists)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("member_code", memberCode).Msg("failed to look up member")
		return nil, mapError(err)
	}
	if !exists {
		return nil, dberror.ErrMemberNotFound
	}
	return tm.list(ctx, scanTimeSession, `
		SELECT `+timeSessionColumns+`
		FROM time_sessions
		WHERE member_code = $1 AND check_out_time IS NOT NULL
		ORDER BY created_at DESC, id DESC`, memberCode)
}

func (tm *timeSessionManager) list(ctx context.Context, scan func(rowScanner) (*models.TimeSession, apperrors.Error), query string, args ...any) ([]*models.TimeSession, apperrors.Error) {
	if err := tm.scoped(ctx); err != nil {
		return nil, err
	}
	rows, err := tm.conn().QueryContext(ctx, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list time sessions")
		return nil, mapError(err)
	}
	defer rows.Close()

	sessions := []*models.TimeSession{}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return sessions, nil
}
