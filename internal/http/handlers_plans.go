package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	plan, err := s.session.Plans.Get(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// handleSavePlan replaces the month's plan. The month comes from the path;
// any month in the body is ignored.
func (s *Server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var plan core.Plan
	if err := decodeJSON(w, r, &plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	plan.Month = month

	if err := s.session.Plans.Save(r.Context(), plan); err != nil {
		writeServiceError(w, r, err)
		return
	}
	saved, err := s.session.Plans.Get(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
