package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.session.Bills.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var bill core.Bill
	if err := decodeJSON(w, r, &bill); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.session.Bills.Create(r.Context(), bill)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.session.Bills.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var bill core.Bill
	if err := decodeJSON(w, r, &bill); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	bill.ID = r.PathValue("id")
	if err := s.session.Bills.Save(r.Context(), bill); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Bills.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetBillPaid toggles the paid flag of one bill for one month. The
// paid date is optional and defaults to today when marking paid.
func (s *Server) handleSetBillPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month    string `json:"month"`
		Paid     bool   `json:"paid"`
		PaidDate string `json:"paidDate"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	month, err := core.ParseMonth(req.Month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var paidDate core.Date
	if req.PaidDate != "" {
		paidDate, err = core.ParseDate(req.PaidDate)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	status, err := s.session.Bills.SetPaid(r.Context(), r.PathValue("id"), month, req.Paid, paidDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleBillStatuses returns the stored paid flags for the month. Bills
// never touched that month have no entry.
func (s *Server) handleBillStatuses(w http.ResponseWriter, r *http.Request) {
	month, err := monthQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	statuses, err := s.session.Bills.ListStatuses(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}
