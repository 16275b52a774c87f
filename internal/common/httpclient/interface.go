// Package httpclient is the client side of the hourbook HTTP API. It adds
// the bearer token and the API version header to every request and turns
// error bodies into *HTTPError values.
package httpclient

import "time"

// Configurator supplies the server address and the login token.
type Configurator interface {
	GetServerURL() string
	GetToken() string
	GetTokenExpiry() time.Time
}

// HTTPClientInterface is what commands use to talk to the server.
type HTTPClientInterface interface {
	// DoRequest returns the response body and the Location header.
	DoRequest(opts RequestOptions) ([]byte, string, error)

	Get(path string, queryParams map[string]string) ([]byte, error)
	Post(path string, data []byte) ([]byte, string, error)
	Put(path string, data []byte) ([]byte, error)
	Delete(path string) error
}

var _ HTTPClientInterface = &HTTPClient{}
