// Package httpx adapts handlers that return (*Response, error) to net/http and
// renders apperrors as JSON error bodies.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/rs/zerolog/log"
)

// GetRequestData decodes a JSON body for POST and PUT requests. Unknown
// fields are rejected.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil || r.Body == http.NoBody {
		log.Ctx(r.Context()).Debug().Msg("empty request body")
		return ErrUnableToParseReqData()
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("unable to decode request body")
		return ErrUnableToParseReqData()
	}
	return nil
}

// Response is what a RequestHandler returns on success. ContentType defaults
// to application/json; a nil Response with 204 writes no body.
type Response struct {
	StatusCode  int
	Location    string
	Response    any
	ContentType string
}

// RequestHandler handles a request and returns the response to render.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp renders the handler result. *Error and apperrors.Error values
// keep their status codes; anything else becomes a 500.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			sendAnyError(r, w, err)
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		if rsp.StatusCode == http.StatusNoContent {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		switch rsp.ContentType {
		case "", "application/json":
			var location []string
			if rsp.Location != "" {
				location = append(location, rsp.Location)
			}
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response, location...)
		case "text/plain":
			s, _ := rsp.Response.(string)
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(rsp.StatusCode)
			w.Write([]byte(s))
		default:
			ErrApplicationError("unsupported response type").Send(w)
		}
	}
}

// sendAnyError renders err with the most specific status it carries.
func sendAnyError(r *http.Request, w http.ResponseWriter, err error) {
	if httpErr, ok := err.(*Error); ok {
		httpErr.Send(w)
		return
	}
	if appErr, ok := apperrors.As(err); ok {
		SendError(w, appErr)
		return
	}
	log.Ctx(r.Context()).Error().Err(err).Msg("unclassified handler error")
	ErrApplicationError().Send(w)
}
