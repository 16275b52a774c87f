package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/config"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
)

const (
	testAdminCode  = "90001"
	testMemberCode = "90002"
)

var initOnce sync.Once

// newDb returns a context holding a connection to the test database acting as
// an admin. Tests skip unless HOURBOOK_TEST_CONFIG names a config file.
func newDb(t *testing.T) context.Context {
	t.Helper()
	if !config.TestInit() {
		t.Skip("HOURBOOK_TEST_CONFIG not set")
	}
	ctx := log.Logger.WithContext(context.Background())
	var initErr error
	initOnce.Do(func() {
		if initErr = Init(ctx); initErr == nil {
			initErr = Migrate(ctx)
		}
	})
	require.NoError(t, initErr)

	ctx, err := ConnCtx(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { DB(ctx).Close(context.Background()) })

	require.Nil(t, DB(ctx).UpsertMember(ctx, &models.Member{Code: testAdminCode, Name: "Test Admin", Role: "Mentor", IsAdmin: true}))
	require.Nil(t, DB(ctx).UpsertMember(ctx, &models.Member{Code: testMemberCode, Name: "Test Member", Role: "Team Member"}))
	return hbcommon.WithActor(ctx, &hbcommon.Actor{Code: testAdminCode, IsAdmin: true})
}

func asMember(ctx context.Context) context.Context {
	return hbcommon.WithActor(ctx, &hbcommon.Actor{Code: testMemberCode})
}

func cleanupSessions(t *testing.T, ctx context.Context) {
	t.Helper()
	open, err := DB(ctx).ListOpenTimeSessions(ctx)
	require.Nil(t, err)
	for _, s := range open {
		DB(ctx).DeleteTimeSession(ctx, s.ID)
	}
	closed, err := DB(ctx).ListClosedTimeSessions(ctx, testMemberCode)
	require.Nil(t, err)
	for _, s := range closed {
		DB(ctx).DeleteTimeSession(ctx, s.ID)
	}
}

func TestTimeSessionLifecycle(t *testing.T) {
	ctx := newDb(t)
	cleanupSessions(t, ctx)
	defer cleanupSessions(t, ctx)

	in := time.Now().UTC().Truncate(time.Second)
	s := &models.TimeSession{MemberCode: testMemberCode, CheckInTime: in}
	require.Nil(t, DB(ctx).CreateTimeSession(ctx, s))
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.True(t, s.IsOpen())

	open, err := DB(ctx).GetOpenTimeSession(ctx, testMemberCode)
	require.Nil(t, err)
	assert.Equal(t, s.ID, open.ID)

	listed, err := DB(ctx).ListOpenTimeSessions(ctx)
	require.Nil(t, err)
	var found bool
	for _, o := range listed {
		if o.ID == s.ID {
			found = true
			assert.Equal(t, "Test Member", o.MemberName)
		}
	}
	assert.True(t, found)

	_, err = DB(ctx).CloseTimeSession(ctx, s.ID, in.Add(-time.Minute), 0, false)
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)

	// second open session is rejected by the partial unique index
	err = DB(ctx).CreateTimeSession(ctx, &models.TimeSession{MemberCode: testMemberCode, CheckInTime: in})
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	out := in.Add(15*time.Minute + 30*time.Second)
	closed, err := DB(ctx).CloseTimeSession(ctx, s.ID, out, 0.26, false)
	require.Nil(t, err)
	require.NotNil(t, closed.CheckOutTime)
	assert.True(t, closed.CheckOutTime.Equal(out))
	assert.InDelta(t, 0.26, closed.Hours(), 1e-9)

	_, err = DB(ctx).CloseTimeSession(ctx, s.ID, out, 0.26, false)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	adjusted, err := DB(ctx).UpdateTimeSessionHours(ctx, s.ID, 1.5, "corrected")
	require.Nil(t, err)
	assert.InDelta(t, 1.5, adjusted.Hours(), 1e-9)
	assert.Equal(t, "corrected", adjusted.AdminNotes)
	assert.True(t, adjusted.CheckInTime.Equal(closed.CheckInTime))
	assert.True(t, adjusted.CheckOutTime.Equal(*closed.CheckOutTime))

	history, err := DB(ctx).ListClosedTimeSessions(ctx, testMemberCode)
	require.Nil(t, err)
	require.Len(t, history, 1)

	require.Nil(t, DB(ctx).DeleteTimeSession(ctx, s.ID))
	assert.ErrorIs(t, DB(ctx).DeleteTimeSession(ctx, s.ID), dberror.ErrNotFound)
	_, err = DB(ctx).GetTimeSession(ctx, s.ID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestHistoryOfUnknownMember(t *testing.T) {
	ctx := newDb(t)
	_, err := DB(ctx).ListClosedTimeSessions(ctx, "99998")
	assert.ErrorIs(t, err, dberror.ErrMemberNotFound)
}

func TestUnknownMember(t *testing.T) {
	ctx := newDb(t)
	err := DB(ctx).CreateTimeSession(ctx, &models.TimeSession{MemberCode: "99999", CheckInTime: time.Now()})
	assert.ErrorIs(t, err, dberror.ErrMemberNotFound)
}

func TestRowLevelSecurity(t *testing.T) {
	ctx := newDb(t)
	cleanupSessions(t, ctx)
	defer cleanupSessions(t, ctx)

	s := &models.TimeSession{MemberCode: testMemberCode, CheckInTime: time.Now()}
	require.Nil(t, DB(ctx).CreateTimeSession(ctx, s))

	mctx := asMember(ctx)
	err := DB(mctx).CreateTimeSession(mctx, &models.TimeSession{MemberCode: testAdminCode, CheckInTime: time.Now()})
	assert.ErrorIs(t, err, dberror.ErrPermissionDenied)

	// members may read but not close
	_, err = DB(mctx).GetTimeSession(mctx, s.ID)
	assert.Nil(t, err)
	_, err = DB(mctx).CloseTimeSession(mctx, s.ID, time.Now(), 1, false)
	assert.Error(t, err)

	noActor := hbcommon.WithActor(ctx, nil)
	_, err = DB(noActor).ListOpenTimeSessions(noActor)
	assert.ErrorIs(t, err, dberror.ErrMissingSecurityContext)
}

func TestUserHoursSummary(t *testing.T) {
	ctx := newDb(t)
	cleanupSessions(t, ctx)
	defer cleanupSessions(t, ctx)

	now := time.Now().UTC()
	h1, h2 := 5.0, 2.25
	require.Nil(t, DB(ctx).CreateTimeSession(ctx, &models.TimeSession{
		MemberCode: testMemberCode, CheckInTime: now.Add(-7 * time.Hour), CheckOutTime: ptr(now.Add(-1 * time.Hour)),
		TotalHours: &h1, IsFlagged: true,
	}))
	require.Nil(t, DB(ctx).CreateTimeSession(ctx, &models.TimeSession{
		MemberCode: testMemberCode, CheckInTime: now, CheckOutTime: ptr(now), TotalHours: &h2,
	}))

	rows, err := DB(ctx).ListUserHoursSummary(ctx)
	require.Nil(t, err)
	var found *models.UserHoursSummary
	for _, r := range rows {
		if r.MemberCode == testMemberCode {
			found = r
		}
	}
	require.NotNil(t, found)
	assert.InDelta(t, 7.25, found.TotalHours, 1e-9)
	assert.Equal(t, 1, found.FlaggedSessions)
	require.NotNil(t, found.LastActivity)
	assert.WithinDuration(t, now, *found.LastActivity, time.Second)
}

func ptr[T any](v T) *T {
	return &v
}
