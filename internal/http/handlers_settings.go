package http

import (
	"net/http"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.session.Settings.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleUpdateSettings changes the cutoff day and returns the
// reconciliation counts for the rewrite it triggered.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CutoffDay int `json:"cutoffDay"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.session.Settings.UpdateCutoff(r.Context(), req.CutoffDay)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleApply materializes a month on demand. The default path queues the
// apply for the worker and returns 202; sync requests run in-process and
// return the counts.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
		Sync  bool   `json:"sync"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	month := core.CurrentMonth()
	if req.Month != "" {
		var err error
		month, err = core.ParseMonth(req.Month)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	if req.Sync {
		result, err := s.session.Applier.ApplySync(r.Context(), month)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if err := s.session.Applier.Apply(r.Context(), month, amqp.ReasonManual); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, struct {
		Month  core.Month `json:"month"`
		Queued bool       `json:"queued"`
	}{Month: month, Queued: true})
}
