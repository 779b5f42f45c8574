package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := s.session.Funds.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, funds)
}

func (s *Server) handleCreateFund(w http.ResponseWriter, r *http.Request) {
	var fund core.Fund
	if err := decodeJSON(w, r, &fund); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.session.Funds.Create(r.Context(), fund)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetFund(w http.ResponseWriter, r *http.Request) {
	fund, err := s.session.Funds.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fund)
}

func (s *Server) handleUpdateFund(w http.ResponseWriter, r *http.Request) {
	var fund core.Fund
	if err := decodeJSON(w, r, &fund); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fund.ID = r.PathValue("id")
	if err := s.session.Funds.Save(r.Context(), fund); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fund)
}

func (s *Server) handleDeleteFund(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Funds.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleContribute books a contribution into the fund and returns the
// updated fund with the recomputed monthly pace.
func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Month  string          `json:"month"`
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

	result, err := s.session.Funds.Contribute(r.Context(), r.PathValue("id"), req.Amount, month, core.Today())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
