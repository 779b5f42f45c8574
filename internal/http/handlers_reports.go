package http

import (
	"errors"
	"net/http"

	"bilancio/internal/services"
)

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	report, err := s.session.Reports.Get(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.session.Reports.Export(r.Context(), month); err != nil {
		if errors.Is(err, services.ErrExportNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
