package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
	"github.com/hourbook/hourbook/pkg/api"
)

const rootCode = "10101"

var (
	root  = &hbcommon.Actor{Code: rootCode, IsAdmin: true, TokenID: "tok-root"}
	admin = &hbcommon.Actor{Code: "20202", IsAdmin: true, TokenID: "tok-admin"}
	user  = &hbcommon.Actor{Code: "30303", TokenID: "tok-user"}
)

func newStore() *Store {
	return NewStore(time.Hour, func(code string) bool { return code == rootCode }, rootCode)
}

func TestDefaults(t *testing.T) {
	s := newStore()
	assert.Equal(t, Settings{}, s.Get(admin))
	assert.Equal(t, Settings{}, s.Get(nil))
	assert.False(t, s.IsKioskLocked(admin))
}

func TestShowIDsRequiresRoot(t *testing.T) {
	s := newStore()

	_, err := s.SetShowIDs(admin, true)
	assert.ErrorIs(t, err, ErrRootRequired)
	assert.Equal(t, http.StatusForbidden, err.StatusCode())

	st, err := s.SetShowIDs(root, true)
	require.NoError(t, err)
	assert.True(t, st.ShowIDs)
	assert.True(t, s.Get(root).ShowIDs)
	// settings are per login
	assert.False(t, s.Get(admin).ShowIDs)

	st, err = s.SetShowIDs(user, false)
	require.NoError(t, err)
	assert.False(t, st.ShowIDs)
}

func TestKioskLockAndUnlock(t *testing.T) {
	s := newStore()

	_, err := s.Lock(user)
	assert.ErrorIs(t, err, ErrAdminRequired)

	_, err = s.SetShowIDs(root, true)
	require.NoError(t, err)
	st, err := s.Lock(root)
	require.NoError(t, err)
	assert.True(t, st.KioskLocked)
	assert.False(t, st.ShowIDs)

	_, err = s.SetShowIDs(root, true)
	assert.ErrorIs(t, err, ErrKioskLocked)

	_, err = s.Unlock(root, "99999")
	assert.ErrorIs(t, err, ErrWrongExitCode)
	assert.True(t, s.IsKioskLocked(root))

	st, err = s.Unlock(root, rootCode)
	require.NoError(t, err)
	assert.False(t, st.KioskLocked)
}

func TestEntriesExpire(t *testing.T) {
	s := newStore()
	now := time.Date(2025, 3, 1, 16, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.Lock(admin)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	now = now.Add(2 * time.Hour)
	assert.False(t, s.IsKioskLocked(admin))
	_, err = s.Lock(root)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestNoLogin(t *testing.T) {
	s := newStore()
	_, err := s.Lock(&hbcommon.Actor{Code: "20202", IsAdmin: true})
	assert.ErrorIs(t, err, ErrNoLogin)
	assert.Equal(t, http.StatusUnauthorized, err.StatusCode())
}

func serve(t *testing.T, s *Store, actor *hbcommon.Actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(hbcommon.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	s := newStore()
	show := true

	rec := serve(t, s, admin, http.MethodPut, "/id-visibility", &api.IDVisibilityReq{Show: &show})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, s, root, http.MethodPut, "/id-visibility", &api.IDVisibilityReq{Show: &show})
	require.Equal(t, http.StatusOK, rec.Code)
	var st api.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.ShowIDs)

	rec = serve(t, s, root, http.MethodPut, "/id-visibility", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, s, admin, http.MethodPost, "/kiosk/lock", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, admin, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.KioskLocked)

	rec = serve(t, s, admin, http.MethodPost, "/kiosk/unlock", &api.KioskUnlockReq{ExitCode: "12345"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, s, admin, http.MethodPost, "/kiosk/unlock", &api.KioskUnlockReq{ExitCode: rootCode})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.KioskLocked)
}

func TestKioskGuard(t *testing.T) {
	s := newStore()
	h := s.KioskGuard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func() int {
		req := httptest.NewRequest(http.MethodDelete, "/x", nil)
		req = req.WithContext(hbcommon.WithActor(req.Context(), admin))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call())
	_, err := s.Lock(admin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call())
}
