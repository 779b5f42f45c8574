package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.session.Debts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var debt core.Debt
	if err := decodeJSON(w, r, &debt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.session.Debts.Create(r.Context(), debt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := s.session.Debts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	var debt core.Debt
	if err := decodeJSON(w, r, &debt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	debt.ID = r.PathValue("id")
	if err := s.session.Debts.Save(r.Context(), debt); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Debts.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordDebtPayment books the debt's monthly payment for the given
// month, current by default. Recording the same month twice returns the
// stored split with alreadyRecorded set instead of booking again.
func (s *Server) handleRecordDebtPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
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

	result, err := s.session.Debts.RecordPayment(r.Context(), r.PathValue("id"), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
