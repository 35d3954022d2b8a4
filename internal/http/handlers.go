package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports 503 once shutdown has begun so load balancers drain.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("shutting down"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// writeServiceError maps service errors to status codes. Store failures are
// logged with their cause and reported as a bare "Server Error".
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, kind core.Kind, op string, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		BadRequestError(verr.Message).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(kind.Label() + " not found").Write(w)
	case errors.Is(err, errMalformedBody):
		BadRequestError("Invalid request body").Write(w)
	default:
		logger := log.NewStructuredLogger(log.FromContext(r.Context()))
		logger.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op,
			log.NewFields().WithRecord(kind.String(), r.PathValue("id")))
		InternalServerError().Write(w)
	}
}
