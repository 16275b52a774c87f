package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourbook/hourbook/internal/common/apperrors"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorRsp {
	t.Helper()
	var rsp ErrorRsp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	return rsp
}

func TestWrapHttpRspSuccess(t *testing.T) {
	h := WrapHttpRsp(func(r *http.Request) (*Response, error) {
		return &Response{
			StatusCode: http.StatusCreated,
			Location:   "/time-sessions/abc",
			Response:   map[string]string{"id": "abc"},
		}, nil
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/time-sessions", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/time-sessions/abc", rec.Header().Get("Location"))
	assert.JSONEq(t, `{"id":"abc"}`, rec.Body.String())
}

func TestWrapHttpRspNoContent(t *testing.T) {
	h := WrapHttpRsp(func(r *http.Request) (*Response, error) {
		return &Response{StatusCode: http.StatusNoContent}, nil
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodDelete, "/time-sessions/abc", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWrapHttpRspErrors(t *testing.T) {
	errNotFound := apperrors.New("not found").SetStatusCode(http.StatusNotFound)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantNotice string
	}{
		{"app error", errNotFound.Msg("session not found"), http.StatusNotFound, "not found"},
		{"http error", ErrInvalidRequest("hours is required"), http.StatusBadRequest, "invalid input"},
		{"forbidden", ErrForbidden(), http.StatusForbidden, "access denied"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "an unexpected error occurred"},
		{"app error without status", apperrors.New("odd"), http.StatusInternalServerError, "an unexpected error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := WrapHttpRsp(func(r *http.Request) (*Response, error) {
				return nil, tt.err
			})
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			rsp := decodeError(t, rec)
			assert.Equal(t, Failure, rsp.Result)
			assert.Equal(t, tt.wantNotice, rsp.Notice)
		})
	}
}

func TestGetRequestData(t *testing.T) {
	type body struct {
		Hours float64 `json:"hours"`
	}

	var b body
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"hours": 2.5}`))
	require.NoError(t, GetRequestData(r, &b))
	assert.Equal(t, 2.5, b.Hours)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"hours": "many"}`))
	err := GetRequestData(r, &b)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, err.(*Error).StatusCode)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"minutes": 3}`))
	assert.Error(t, GetRequestData(r, &b))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	err = GetRequestData(r, &b)
	require.Error(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, err.(*Error).StatusCode)
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	assert.False(t, rw.Written())
	assert.Equal(t, http.StatusOK, rw.Status())

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	assert.True(t, rw.Written())
	assert.Equal(t, http.StatusCreated, rw.Status())
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	rw = NewResponseWriter(rec)
	_, err := rw.Write([]byte("ok"))
	require.NoError(t, err)
	assert.True(t, rw.Written())
	assert.Equal(t, http.StatusOK, rw.Status())
	rw.Flush()
	assert.True(t, rec.Flushed)
}
