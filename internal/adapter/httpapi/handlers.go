package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"voice-relay/internal/application/port/input"
	"voice-relay/internal/domain/entity"
)

type statusResponse struct {
	Status string `json:"status"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// handle decodes Req, runs one relay pipeline and encodes its reply.
func handle[Req, Resp any](s *Server, call func(context.Context, Req) (*input.Reply[Resp], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := s.decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		reply, err := call(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set(SpeechStatusHeader, string(reply.Speech))
		writeJSON(w, http.StatusOK, reply.Body)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := r.Body
	if s.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: body exceeds %d bytes", entity.ErrBadRequest, tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", entity.ErrBadRequest)
		default:
			return fmt.Errorf("%w: invalid JSON body: %v", entity.ErrBadRequest, err)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
