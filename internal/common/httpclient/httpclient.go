package httpclient

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hourbook/hourbook/pkg/api"
)

// ClientApiVersion is the API version this client was built against.
const ClientApiVersion = "0.1.0"

// HTTPError is an error response from the server.
type HTTPError struct {
	StatusCode int
	Message    string
	// Notice is the short error category reported by the server.
	Notice string
}

func (e *HTTPError) Error() string {
	return e.Message
}

type HTTPClient struct {
	config Configurator
	do     func(*http.Request) (*http.Response, error)
	now    func() time.Time
}

type ClientOptions struct {
	DisableCertValidation bool
	Timeout               time.Duration
}

// NewClient returns a client that talks to the configured server over the
// network.
func NewClient(config Configurator, opts ...ClientOptions) *HTTPClient {
	var o ClientOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	httpClient := &http.Client{Timeout: o.Timeout}
	if o.DisableCertValidation {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &HTTPClient{config: config, do: httpClient.Do, now: time.Now}
}

// NewHandlerClient returns a client that serves every request with h
// in-process. Tests use it to drive the server router without a listener.
func NewHandlerClient(config Configurator, h http.Handler) *HTTPClient {
	do := func(req *http.Request) (*http.Response, error) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Result(), nil
	}
	return &HTTPClient{config: config, do: do, now: time.Now}
}

type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Body        []byte
}

func (c *HTTPClient) newRequest(opts RequestOptions) (*http.Request, error) {
	u, err := url.Parse(c.config.GetServerURL())
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %v", err)
	}
	u.Path = path.Join("/", u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var body io.Reader = http.NoBody
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequest(opts.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.ApiVersionHeader, ClientApiVersion)

	// an expired token is not sent; the server would only reject it
	if token := c.config.GetToken(); token != "" {
		expiry := c.config.GetTokenExpiry()
		if expiry.IsZero() || c.now().Before(expiry) {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// DoRequest sends the request once. Failed requests are never retried.
func (c *HTTPClient) DoRequest(opts RequestOptions) ([]byte, string, error) {
	req, err := c.newRequest(opts)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %v", err)
	}
	if resp.StatusCode >= 400 {
		return nil, "", responseError(resp.StatusCode, body)
	}
	return body, resp.Header.Get("Location"), nil
}

func responseError(status int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: status}
	if gjson.ValidBytes(body) {
		e.Message = gjson.GetBytes(body, "error").String()
		e.Notice = gjson.GetBytes(body, "notice").String()
	}
	if e.Message == "" {
		switch {
		case status == http.StatusNotFound:
			e.Message = "server doesn't implement this endpoint"
		default:
			e.Message = strings.TrimSpace(string(body))
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Notice == "" {
		e.Notice = noticeFor(status)
	}
	return e
}

// noticeFor mirrors the server's categories for responses that carry none,
// such as those produced by a proxy.
func noticeFor(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "invalid input"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "access denied"
	case http.StatusNotFound:
		return "not found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestTimeout:
		return "request timed out"
	}
	return "an unexpected error occurred"
}

func (c *HTTPClient) Get(path string, queryParams map[string]string) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{Method: http.MethodGet, Path: path, QueryParams: queryParams})
	return body, err
}

func (c *HTTPClient) Post(path string, data []byte) ([]byte, string, error) {
	return c.DoRequest(RequestOptions{Method: http.MethodPost, Path: path, Body: data})
}

func (c *HTTPClient) Put(path string, data []byte) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{Method: http.MethodPut, Path: path, Body: data})
	return body, err
}

func (c *HTTPClient) Delete(path string) error {
	_, _, err := c.DoRequest(RequestOptions{Method: http.MethodDelete, Path: path})
	return err
}
