package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/httplog"

	"voice-relay/internal/domain/entity"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type errorKind struct {
	target error
	status int
	kind   string
}

var errorKinds = []errorKind{
	{entity.ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{entity.ErrConfiguration, http.StatusInternalServerError, "configuration"},
	{entity.ErrInvalidJSON, http.StatusInternalServerError, "invalid_json"},
	{entity.ErrInvalidIntent, http.StatusBadGateway, "invalid_intent"},
	{entity.ErrMalformedResponse, http.StatusBadGateway, "malformed_response"},
	{entity.ErrTransport, http.StatusBadGateway, "transport"},
}

// classify maps an error to its HTTP status and a short kind label.
func classify(err error) (int, string) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.target) {
			continue
		}
		if k.target == entity.ErrTransport && errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, "timeout"
		}
		return k.status, k.kind
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	httplog.LogEntrySetField(r.Context(), "error_kind", kind)

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "status", status, "kind", kind, "error", err)
	} else {
		s.logger.Warn("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSON(w, status, errorResponse{Detail: err.Error()})
}
