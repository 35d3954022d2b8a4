package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/view"
)

// handleTransactions serves the combined, filtered and sorted table. Totals
// always cover every record regardless of the filter.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	sortCfg, filter, err := ParseTableQuery(r.URL.Query())
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	incomes, expenses, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	NewJSONResponse().Body(view.Build(incomes, expenses, sortCfg, filter)).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	recent, err := ParseRecent(r.URL.Query())
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	incomes, expenses, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	NewJSONResponse().Body(view.BuildDashboard(incomes, expenses, recent)).Write(w)
}

func (s *Server) writeViewError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		BadRequestError(verr.Message).Write(w)
		return
	}

	var serr *services.StoreError
	op := log.OpList
	if errors.As(err, &serr) {
		op = serr.Op
	}
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), "View snapshot failed", err, log.ComponentLedger, op, log.NewFields())
	InternalServerError().Write(w)
}
