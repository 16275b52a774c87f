// Package ledgertest provides an in-memory store for tests of the ledger and
// the layers above it. It mirrors the Postgres surface: a security context is
// required for every time session call, writes need an admin member, at most
// one session per member may be open and sessions must reference a member.
package ledgertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
	"github.com/hourbook/hourbook/internal/hourbooksrv/ledger"
)

type MemStore struct {
	mu       sync.Mutex
	members  map[string]*models.Member
	sessions map[uuid.UUID]*models.TimeSession
	fail     apperrors.Error

	// AfterGetOpen runs after GetOpenTimeSession, outside the lock. Tests use
	// it to interleave a concurrent writer.
	AfterGetOpen func()
}

func NewMemStore(members ...*models.Member) *MemStore {
	m := &MemStore{
		members:  make(map[string]*models.Member),
		sessions: make(map[uuid.UUID]*models.TimeSession),
	}
	for _, mem := range members {
		cp := *mem
		m.members[mem.Code] = &cp
	}
	return m
}

// Fail makes every following call return err. Pass nil to recover.
func (m *MemStore) Fail(err apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Sessions returns copies of all stored sessions in creation order.
func (m *MemStore) Sessions() []*models.TimeSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.TimeSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return uuid.Compare(out[i].ID, out[j].ID) < 0 })
	return out
}

// check runs under the lock and emulates the row-level security policies.
func (m *MemStore) check(ctx context.Context, write bool) apperrors.Error {
	if m.fail != nil {
		return m.fail
	}
	code := hbcommon.GetActorCode(ctx)
	if code == "" {
		return dberror.ErrMissingSecurityContext
	}
	if write {
		if mem, ok := m.members[code]; !ok || !mem.IsAdmin {
			return dberror.ErrPermissionDenied
		}
	}
	return nil
}

func (m *MemStore) CreateTimeSession(ctx context.Context, s *models.TimeSession) apperrors.Error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, true); err != nil {
		return err
	}
	if _, ok := m.members[s.MemberCode]; !ok {
		return dberror.ErrMemberNotFound
	}
	if s.IsOpen() {
		for _, other := range m.sessions {
			if other.MemberCode == s.MemberCode && other.IsOpen() {
				return dberror.ErrAlreadyExists.Msg("open session exists")
			}
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemStore) GetTimeSession(ctx context.Context, id uuid.UUID) (*models.TimeSession, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, false); err != nil {
		return nil, err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, dberror.ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemStore) GetOpenTimeSession(ctx context.Context, memberCode string) (*models.TimeSession, apperrors.Error) {
	s, err := m.getOpen(ctx, memberCode)
	if m.AfterGetOpen != nil {
		m.AfterGetOpen()
	}
	return s, err
}

func (m *MemStore) getOpen(ctx context.Context, memberCode string) (*models.TimeSession, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, false); err != nil {
		return nil, err
	}
	for _, s := range m.sessions {
		if s.MemberCode == memberCode && s.IsOpen() {
			return s.Clone(), nil
		}
	}
	return nil, dberror.ErrNotFound
}

func (m *MemStore) CloseTimeSession(ctx context.Context, id uuid.UUID, checkOut time.Time, totalHours float64, flagged bool) (*models.TimeSession, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, true); err != nil {
		return nil, err
	}
	s, ok := m.sessions[id]
	if !ok || !s.IsOpen() {
		return nil, dberror.ErrNotFound
	}
	if checkOut.Before(s.CheckInTime) {
		return nil, dberror.ErrInvalidInput.Msg("check_out_time precedes check_in_time")
	}
	out, h := checkOut, totalHours
	s.CheckOutTime = &out
	s.TotalHours = &h
	s.IsFlagged = flagged
	s.UpdatedAt = time.Now().UTC()
	return s.Clone(), nil
}

func (m *MemStore) UpdateTimeSessionHours(ctx context.Context, id uuid.UUID, totalHours float64, notes string) (*models.TimeSession, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, true); err != nil {
		return nil, err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, dberror.ErrNotFound
	}
	h := totalHours
	s.TotalHours = &h
	s.AdminNotes = notes
	s.UpdatedAt = time.Now().UTC()
	return s.Clone(), nil
}

func (m *MemStore) DeleteTimeSession(ctx context.Context, id uuid.UUID) apperrors.Error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, true); err != nil {
		return err
	}
	if _, ok := m.sessions[id]; !ok {
		return dberror.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemStore) ListOpenTimeSessions(ctx context.Context) ([]*models.TimeSession, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, false); err != nil {
		return nil, err
	}
	out := []*models.TimeSession{}
	for _, s := range m.sessions {
		if s.IsOpen() {
			cp := s.Clone()
			if mem, ok := m.members[s.MemberCode]; ok {
				cp.MemberName = mem.Name
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out, nil
}

func (m *MemStore) ListClosedTimeSessions(ctx context.Context, memberCode string) ([]*models.TimeSession, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, false); err != nil {
		return nil, err
	}
	if _, ok := m.members[memberCode]; !ok {
		return nil, dberror.ErrMemberNotFound
	}
	out := []*models.TimeSession{}
	for _, s := range m.sessions {
		if s.MemberCode == memberCode && !s.IsOpen() {
			out = append(out, s.Clone())
		}
	}
	// ids are time ordered, so they break ties between equal creation times
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return uuid.Compare(out[i].ID, out[j].ID) > 0
	})
	return out, nil
}

func (m *MemStore) ListUserHoursSummary(ctx context.Context) ([]*models.UserHoursSummary, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, false); err != nil {
		return nil, err
	}
	members := make([]*models.Member, 0, len(m.members))
	for _, mem := range m.members {
		members = append(members, mem)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Code < members[j].Code })
	sessions := make([]*models.TimeSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return ledger.Summarize(members, sessions), nil
}

func (m *MemStore) GetMember(_ context.Context, code string) (*models.Member, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	mem, ok := m.members[code]
	if !ok {
		return nil, dberror.ErrNotFound
	}
	cp := *mem
	return &cp, nil
}

func (m *MemStore) CreateMember(_ context.Context, mem *models.Member) apperrors.Error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.members[mem.Code]; ok {
		return dberror.ErrAlreadyExists
	}
	mem.CreatedAt = time.Now().UTC()
	cp := *mem
	m.members[mem.Code] = &cp
	return nil
}

func (m *MemStore) UpsertMember(_ context.Context, mem *models.Member) apperrors.Error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if existing, ok := m.members[mem.Code]; ok {
		mem.CreatedAt = existing.CreatedAt
	} else {
		mem.CreatedAt = time.Now().UTC()
	}
	cp := *mem
	m.members[mem.Code] = &cp
	return nil
}

func (m *MemStore) ListMembers(_ context.Context) ([]*models.Member, apperrors.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]*models.Member, 0, len(m.members))
	for _, mem := range m.members {
		cp := *mem
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
