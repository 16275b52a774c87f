package ledger

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/auditlog"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
)

// SignIn opens a session for memberCode. The open-session check runs right
// before the insert; a store with a uniqueness constraint closes the
// remaining race and its conflict is reported as ErrAlreadyOpen too.
func (l *Ledger) SignIn(ctx context.Context, actor *hbcommon.Actor, memberCode string) (*models.TimeSession, apperrors.Error) {
	ctx, err := authorize(ctx, actor, true)
	if err != nil {
		return nil, err
	}
	if err := validMemberCode(memberCode); err != nil {
		return nil, err
	}

	open, err := l.store.GetOpenTimeSession(ctx, memberCode)
	if err == nil && open != nil {
		return nil, ErrAlreadyOpen
	}
	if err != nil && !errors.Is(err, dberror.ErrNotFound) {
		return nil, l.fail(ctx, "sign_in", err, ErrMemberNotFound)
	}

	s := &models.TimeSession{
		ID:          uuid.New(),
		MemberCode:  memberCode,
		CheckInTime: l.clock(),
	}
	if err := l.store.CreateTimeSession(ctx, s); err != nil {
		return nil, l.fail(ctx, "sign_in", err, ErrMemberNotFound)
	}
	log.Ctx(ctx).Info().Str("member_code", memberCode).Str("session_id", s.ID.String()).Msg("member signed in")
	l.record(ctx, auditlog.Event{
		Action:     auditlog.ActionSignIn,
		SessionID:  s.ID.String(),
		MemberCode: memberCode,
	})
	return s, nil
}

// SignOut closes an open session, crediting at most the session cap and
// flagging sessions that ran longer.
func (l *Ledger) SignOut(ctx context.Context, actor *hbcommon.Actor, sessionID uuid.UUID) (*models.TimeSession, apperrors.Error) {
	ctx, err := authorize(ctx, actor, true)
	if err != nil {
		return nil, err
	}

	s, err := l.store.GetTimeSession(ctx, sessionID)
	if err != nil {
		return nil, l.fail(ctx, "sign_out", err, ErrSessionNotFound)
	}
	if !s.IsOpen() {
		return nil, ErrSessionNotFound
	}

	// A clock that stepped back must not produce a check-out before the
	// check-in; the row would violate the time_sessions check constraint.
	out := l.clock()
	if out.Before(s.CheckInTime) {
		out = s.CheckInTime
	}
	raw := RoundHours(out.Sub(s.CheckInTime))
	total, flagged := ApplyCap(raw, l.capHours)

	closed, err := l.store.CloseTimeSession(ctx, sessionID, out, total, flagged)
	if err != nil {
		return nil, l.fail(ctx, "sign_out", err, ErrSessionNotFound)
	}
	ev := log.Ctx(ctx).Info()
	if flagged {
		ev = log.Ctx(ctx).Warn().Float64("raw_hours", raw)
	}
	ev.Str("member_code", closed.MemberCode).Str("session_id", sessionID.String()).
		Float64("total_hours", total).Bool("flagged", flagged).Msg("member signed out")
	l.record(ctx, auditlog.Event{
		Action:     auditlog.ActionSignOut,
		SessionID:  sessionID.String(),
		MemberCode: closed.MemberCode,
		NewHours:   &total,
		Flagged:    flagged,
	})
	return closed, nil
}

// ManualAdd records hours worked outside the sign-in flow as a closed session.
// The cap does not apply to manual entries.
func (l *Ledger) ManualAdd(ctx context.Context, actor *hbcommon.Actor, memberCode string, hours float64, notes string) (*models.TimeSession, apperrors.Error) {
	ctx, err := authorize(ctx, actor, true)
	if err != nil {
		return nil, err
	}
	if err := validMemberCode(memberCode); err != nil {
		return nil, err
	}
	if !validHours(hours) {
		return nil, ErrInvalidHours
	}
	if notes == "" {
		notes = DefaultManualNote
	}

	now := l.clock()
	h := hours
	s := &models.TimeSession{
		ID:           uuid.New(),
		MemberCode:   memberCode,
		CheckInTime:  now,
		CheckOutTime: &now,
		TotalHours:   &h,
		AdminNotes:   notes,
	}
	if err := l.store.CreateTimeSession(ctx, s); err != nil {
		return nil, l.fail(ctx, "manual_add", err, ErrMemberNotFound)
	}
	log.Ctx(ctx).Info().Str("member_code", memberCode).Float64("hours", hours).Msg("hours added manually")
	l.record(ctx, auditlog.Event{
		Action:     auditlog.ActionManualAdd,
		SessionID:  s.ID.String(),
		MemberCode: memberCode,
		NewHours:   &h,
		Notes:      notes,
	})
	return s, nil
}

// AdjustHours overwrites the credited hours and the notes of a session, open
// or closed. Timestamps and the flag are left alone.
func (l *Ledger) AdjustHours(ctx context.Context, actor *hbcommon.Actor, sessionID uuid.UUID, newHours float64, notes string) (*models.TimeSession, apperrors.Error) {
	ctx, err := authorize(ctx, actor, true)
	if err != nil {
		return nil, err
	}
	if !validHours(newHours) {
		return nil, ErrInvalidHours
	}

	s, err := l.store.GetTimeSession(ctx, sessionID)
	if err != nil {
		return nil, l.fail(ctx, "adjust_hours", err, ErrSessionNotFound)
	}
	prev := s.Hours()
	if notes == "" {
		notes = adjustNote(prev, newHours, actor.Code)
	}

	updated, err := l.store.UpdateTimeSessionHours(ctx, sessionID, newHours, notes)
	if err != nil {
		return nil, l.fail(ctx, "adjust_hours", err, ErrSessionNotFound)
	}
	log.Ctx(ctx).Info().Str("session_id", sessionID.String()).Float64("old_hours", prev).Float64("new_hours", newHours).Msg("hours adjusted")
	l.record(ctx, auditlog.Event{
		Action:     auditlog.ActionAdjust,
		SessionID:  sessionID.String(),
		MemberCode: updated.MemberCode,
		OldHours:   &prev,
		NewHours:   &newHours,
		Flagged:    updated.IsFlagged,
		Notes:      notes,
	})
	return updated, nil
}

// DeleteSession removes a session permanently. Confirming the deletion with
// the operator is up to the caller.
func (l *Ledger) DeleteSession(ctx context.Context, actor *hbcommon.Actor, sessionID uuid.UUID) apperrors.Error {
	ctx, err := authorize(ctx, actor, true)
	if err != nil {
		return err
	}

	// read first so the audit trail keeps what was removed
	s, err := l.store.GetTimeSession(ctx, sessionID)
	if err != nil {
		return l.fail(ctx, "delete", err, ErrSessionNotFound)
	}
	if err := l.store.DeleteTimeSession(ctx, sessionID); err != nil {
		return l.fail(ctx, "delete", err, ErrSessionNotFound)
	}
	log.Ctx(ctx).Info().Str("session_id", sessionID.String()).Str("member_code", s.MemberCode).Msg("session deleted")
	ev := auditlog.Event{
		Action:     auditlog.ActionDelete,
		SessionID:  sessionID.String(),
		MemberCode: s.MemberCode,
		Flagged:    s.IsFlagged,
		Notes:      s.AdminNotes,
	}
	if s.TotalHours != nil {
		h := *s.TotalHours
		ev.OldHours = &h
	}
	l.record(ctx, ev)
	return nil
}

// ListOpenSessions returns the sessions of members currently signed in, most
// recent sign-in first.
func (l *Ledger) ListOpenSessions(ctx context.Context, actor *hbcommon.Actor) ([]*models.TimeSession, apperrors.Error) {
	ctx, err := authorize(ctx, actor, true)
	if err != nil {
		return nil, err
	}
	sessions, err := l.store.ListOpenTimeSessions(ctx)
	if err != nil {
		return nil, l.fail(ctx, "list_open", err, ErrNotFound)
	}
	return sessions, nil
}

// ListSessionsForUser returns the closed sessions of memberCode, newest first.
func (l *Ledger) ListSessionsForUser(ctx context.Context, actor *hbcommon.Actor, memberCode string) ([]*models.TimeSession, apperrors.Error) {
	ctx, err := authorize(ctx, actor, true)
	if err != nil {
		return nil, err
	}
	if err := validMemberCode(memberCode); err != nil {
		return nil, err
	}
	sessions, err := l.store.ListClosedTimeSessions(ctx, memberCode)
	if err != nil {
		return nil, l.fail(ctx, "list_history", err, ErrMemberNotFound)
	}
	return sessions, nil
}

// GetUserHoursSummary returns the hours summary of every member. Any
// authenticated member may read it.
func (l *Ledger) GetUserHoursSummary(ctx context.Context, actor *hbcommon.Actor) ([]*models.UserHoursSummary, apperrors.Error) {
	ctx, err := authorize(ctx, actor, false)
	if err != nil {
		return nil, err
	}
	rows, err := l.store.ListUserHoursSummary(ctx)
	if err != nil {
		return nil, l.fail(ctx, "summary", err, ErrNotFound)
	}
	return rows, nil
}

// fail maps a store error and logs the ones that hide an internal failure.
func (l *Ledger) fail(ctx context.Context, op string, err apperrors.Error, notFound apperrors.Error) apperrors.Error {
	mapped := storeError(err, notFound)
	if errors.Is(mapped, ErrTransport) {
		logStoreError(ctx, op, err)
	}
	return mapped
}
