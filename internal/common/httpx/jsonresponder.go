// Package httpx adapts handlers that return (*Response, error) to net/http and
// renders apperrors as JSON error bodies.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hourbook/hourbook/internal/common/logtrace"
	"github.com/rs/zerolog/log"
)

// SendJsonRsp writes msg as JSON. Strings and byte slices that already hold
// valid JSON are written as is. Location is set only on 201 responses.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any, location ...string) {
	var body []byte
	switch v := msg.(type) {
	case []byte:
		if json.Valid(v) {
			body = v
		}
	case string:
		if json.Valid([]byte(v)) {
			body = []byte(v)
		}
	}
	if body == nil {
		var err error
		body, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("unable to marshal json")
			ErrApplicationError("request id: " + logtrace.RequestIdFromContext(ctx)).Send(w)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if statusCode == http.StatusCreated && len(location) > 0 {
		w.Header().Set("Location", location[0])
	}
	w.WriteHeader(statusCode)
	w.Write(body)
}
