// Package httpx adapts handlers that return (*Response, error) to net/http and
// renders apperrors as JSON error bodies.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/hourbook/hourbook/internal/common/apperrors"
)

// Error is an HTTP error response.
type Error struct {
	Description string `json:"description"`
	StatusCode  int    `json:"http_status_code"`
}

// ErrorRsp is the wire shape of every error body.
type ErrorRsp struct {
	Result int    `json:"result"`
	Error  string `json:"error"`
	Notice string `json:"notice"`
}

// Failure is the result code of every error body.
const Failure int = 0

// Notice maps a status code onto the short category shown to operators.
func Notice(statusCode int) string {
	switch statusCode {
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

// Send writes the error as a JSON error body. A nil writer is ignored.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	body, err := json.Marshal(&ErrorRsp{
		Result: Failure,
		Error:  e.Description,
		Notice: Notice(e.StatusCode),
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	w.Write(body)
}

// Error returns the description.
func (e *Error) Error() string {
	return e.Description
}

// SendError writes err with its own status code, or 500 if it has none.
func SendError(w http.ResponseWriter, err apperrors.Error) {
	if err == nil {
		return
	}
	code := err.StatusCode()
	if code == 0 {
		code = http.StatusInternalServerError
	}
	(&Error{StatusCode: code, Description: err.ErrorAll()}).Send(w)
}

func firstOr(s []string, def string) string {
	if len(s) > 0 && s[0] != "" {
		return s[0]
	}
	return def
}

// Common errors

// ErrReqMethodNotSupported returns a 405 error.
func ErrReqMethodNotSupported() *Error {
	return &Error{Description: "request method not supported", StatusCode: http.StatusMethodNotAllowed}
}

// ErrUnableToParseReqData returns a 400 error for a malformed body.
func ErrUnableToParseReqData() *Error {
	return &Error{Description: "unable to parse request data", StatusCode: http.StatusBadRequest}
}

// ErrInvalidRequest returns a 400 error.
func ErrInvalidRequest(msg ...string) *Error {
	return &Error{Description: firstOr(msg, "invalid request data or empty request values"), StatusCode: http.StatusBadRequest}
}

// ErrApplicationError returns a 500 error. If no message is given a
// default one is used.
func ErrApplicationError(msg ...string) *Error {
	return &Error{Description: firstOr(msg, "unable to process request"), StatusCode: http.StatusInternalServerError}
}

// ErrUnAuthorized returns a 401 error.
func ErrUnAuthorized(msg ...string) *Error {
	return &Error{Description: firstOr(msg, "unable to authenticate request"), StatusCode: http.StatusUnauthorized}
}

// ErrForbidden returns a 403 error.
func ErrForbidden(msg ...string) *Error {
	return &Error{Description: firstOr(msg, "access denied"), StatusCode: http.StatusForbidden}
}

// ErrRequestTimeout returns a 408 error for a request that ran past its
// deadline.
func ErrRequestTimeout() *Error {
	return &Error{Description: "request timed out", StatusCode: http.StatusRequestTimeout}
}

// ErrServiceUnavailable returns a 503 error.
func ErrServiceUnavailable(msg ...string) *Error {
	return &Error{Description: firstOr(msg, "unable to service request at this time"), StatusCode: http.StatusServiceUnavailable}
}
