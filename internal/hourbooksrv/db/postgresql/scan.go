package postgresql

import (
	"time"

	"github.com/jackc/pgtype"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
)

const timeSessionColumns = `id, member_code, check_in_time, check_out_time, total_hours,
	is_flagged, admin_notes, created_at, updated_at`

const openSessionColumns = `ts.id, ts.member_code, ts.check_in_time, ts.check_out_time,
	ts.total_hours, ts.is_flagged, ts.admin_notes, ts.created_at, ts.updated_at,
	COALESCE(m.name, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

// timeSessionRow holds the nullable columns of a time_sessions row until they
// are converted into a models.TimeSession.
type timeSessionRow struct {
	s          models.TimeSession
	checkOut   pgtype.Timestamptz
	totalHours pgtype.Numeric
	notes      pgtype.Text
}

func (r *timeSessionRow) dest() []any {
	return []any{
		&r.s.ID,
		&r.s.MemberCode,
		&r.s.CheckInTime,
		&r.checkOut,
		&r.totalHours,
		&r.s.IsFlagged,
		&r.notes,
		&r.s.CreatedAt,
		&r.s.UpdatedAt,
	}
}

func (r *timeSessionRow) decode() (*models.TimeSession, apperrors.Error) {
	s := r.s
	switch r.checkOut.Status {
	case pgtype.Present:
		t := r.checkOut.Time
		s.CheckOutTime = &t
	case pgtype.Null:
	default:
		return nil, dberror.ErrDecode.Msg("check_out_time is undefined")
	}
	switch r.totalHours.Status {
	case pgtype.Present:
		var h float64
		if err := r.totalHours.AssignTo(&h); err != nil {
			return nil, dberror.ErrDecode.Err(err)
		}
		s.TotalHours = &h
	case pgtype.Null:
	default:
		return nil, dberror.ErrDecode.Msg("total_hours is undefined")
	}
	if r.notes.Status == pgtype.Present {
		s.AdminNotes = r.notes.String
	}
	if s.MemberCode == "" {
		return nil, dberror.ErrDecode.Msg("member_code is empty")
	}
	return &s, nil
}

func scanTimeSession(row rowScanner) (*models.TimeSession, apperrors.Error) {
	var r timeSessionRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, mapError(err)
	}
	return r.decode()
}

// scanOpenTimeSession scans a row of openSessionColumns.
func scanOpenTimeSession(row rowScanner) (*models.TimeSession, apperrors.Error) {
	var r timeSessionRow
	if err := row.Scan(append(r.dest(), &r.s.MemberName)...); err != nil {
		return nil, mapError(err)
	}
	return r.decode()
}

func scanUserHoursSummary(row rowScanner) (*models.UserHoursSummary, apperrors.Error) {
	var (
		s            models.UserHoursSummary
		total        pgtype.Numeric
		flagged      int64
		lastActivity pgtype.Timestamptz
	)
	if err := row.Scan(&s.MemberCode, &s.Name, &s.Role, &total, &flagged, &lastActivity); err != nil {
		return nil, mapError(err)
	}
	if total.Status == pgtype.Present {
		if err := total.AssignTo(&s.TotalHours); err != nil {
			return nil, dberror.ErrDecode.Err(err)
		}
	}
	s.FlaggedSessions = int(flagged)
	if lastActivity.Status == pgtype.Present {
		t := lastActivity.Time
		s.LastActivity = &t
	}
	return &s, nil
}

// numeric converts hours into the NUMERIC(7,2) parameter type.
func numeric(hours float64) (pgtype.Numeric, apperrors.Error) {
	var n pgtype.Numeric
	if err := n.Set(hours); err != nil {
		return n, dberror.ErrInvalidInput.Err(err)
	}
	return n, nil
}

func nullableText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: s, Status: pgtype.Present}
}

func utc(t time.Time) time.Time {
	return t.UTC()
}
