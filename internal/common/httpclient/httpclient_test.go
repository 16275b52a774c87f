package httpclient

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourbook/hourbook/pkg/api"
)

type staticConfig struct {
	url    string
	token  string
	expiry time.Time
}

func (c staticConfig) GetServerURL() string      { return c.url }
func (c staticConfig) GetToken() string          { return c.token }
func (c staticConfig) GetTokenExpiry() time.Time { return c.expiry }

type seen struct {
	method, path, query, auth, version, body string
}

func recordingHandler(s *seen, status int, rsp string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*s = seen{
			method:  r.Method,
			path:    r.URL.Path,
			query:   r.URL.RawQuery,
			auth:    r.Header.Get("Authorization"),
			version: r.Header.Get(api.ApiVersionHeader),
			body:    string(b),
		}
		w.Header().Set("Location", "/time-sessions/abc")
		w.WriteHeader(status)
		w.Write([]byte(rsp))
	})
}

func TestRequestHeaders(t *testing.T) {
	var s seen
	cfg := staticConfig{url: "http://localhost:8190/", token: "tok", expiry: time.Now().Add(time.Hour)}
	c := NewHandlerClient(cfg, recordingHandler(&s, http.StatusCreated, `{"id":"abc"}`))

	body, loc, err := c.Post("/time-sessions", []byte(`{"member_code":"12345"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(body))
	assert.Equal(t, "/time-sessions/abc", loc)
	assert.Equal(t, seen{
		method:  http.MethodPost,
		path:    "/time-sessions",
		auth:    "Bearer tok",
		version: ClientApiVersion,
		body:    `{"member_code":"12345"}`,
	}, s)

	_, err = c.Get("time-sessions", map[string]string{"member": "12345"})
	require.NoError(t, err)
	assert.Equal(t, "/time-sessions", s.path)
	assert.Equal(t, "member=12345", s.query)
}

func TestExpiredTokenNotSent(t *testing.T) {
	var s seen
	cfg := staticConfig{url: "http://localhost:8190", token: "tok", expiry: time.Now().Add(-time.Minute)}
	c := NewHandlerClient(cfg, recordingHandler(&s, http.StatusOK, `{}`))
	_, err := c.Get("/hours-summary", nil)
	require.NoError(t, err)
	assert.Empty(t, s.auth)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		notice  string
	}{
		{"server error body", http.StatusConflict, `{"result":0,"error":"member is already signed in","notice":"conflict"}`, "member is already signed in", "conflict"},
		{"plain text", http.StatusForbidden, "forbidden\n", "forbidden", "access denied"},
		{"unknown endpoint", http.StatusNotFound, "", "server doesn't implement this endpoint", "not found"},
		{"empty 500", http.StatusInternalServerError, "", "Internal Server Error", "an unexpected error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s seen
			c := NewHandlerClient(staticConfig{url: "http://x"}, recordingHandler(&s, tt.status, tt.body))
			err := c.Delete("/time-sessions/abc")
			var he *HTTPError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, tt.status, he.StatusCode)
			assert.Equal(t, tt.message, he.Message)
			assert.Equal(t, tt.notice, he.Notice)
		})
	}
}

func TestNetworkClient(t *testing.T) {
	var s seen
	srv := httptest.NewServer(recordingHandler(&s, http.StatusOK, `{"status":"ready"}`))
	defer srv.Close()

	c := NewClient(staticConfig{url: srv.URL}, ClientOptions{Timeout: 5 * time.Second})
	body, err := c.Put("/settings/id-visibility", []byte(`{"show":false}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ready"}`, string(body))
	assert.Equal(t, http.MethodPut, s.method)
	assert.Empty(t, s.auth)
}
