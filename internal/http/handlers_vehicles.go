package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.session.Vehicles.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle core.Vehicle
	if err := decodeJSON(w, r, &vehicle); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.session.Vehicles.Create(r.Context(), vehicle)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.session.Vehicles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle core.Vehicle
	if err := decodeJSON(w, r, &vehicle); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	vehicle.ID = r.PathValue("id")
	if err := s.session.Vehicles.Save(r.Context(), vehicle); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Vehicles.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMaintenanceItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.session.Vehicles.ListItems(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSaveMaintenanceItem upserts one schedule entry. Vehicle and code
// come from the path, so the body only carries the intervals.
func (s *Server) handleSaveMaintenanceItem(w http.ResponseWriter, r *http.Request) {
	var item core.MaintenanceItem
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.VehicleID = r.PathValue("id")
	item.Code = r.PathValue("code")
	if err := s.session.Vehicles.SaveItem(r.Context(), item); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteMaintenanceItem(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Vehicles.DeleteItem(r.Context(), r.PathValue("id"), r.PathValue("code")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVehicleStatus ranks the vehicle's schedule by urgency as of
// ?date=, today by default.
func (s *Server) handleVehicleStatus(w http.ResponseWriter, r *http.Request) {
	today := core.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		var err error
		today, err = core.ParseDate(raw)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	statuses, err := s.session.Vehicles.ItemStatuses(r.Context(), r.PathValue("id"), today)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleListMaintenanceLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.session.Vehicles.ListLogs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleCreateMaintenanceLog(w http.ResponseWriter, r *http.Request) {
	var entry core.MaintenanceLog
	if err := decodeJSON(w, r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry.VehicleID = r.PathValue("id")
	created, err := s.session.Vehicles.LogFull(r.Context(), entry)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleQuickLog marks a schedule item done with minimal input. Date
// defaults to today and mileage to the vehicle's current reading.
func (s *Server) handleQuickLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemCode string `json:"itemCode"`
		Date     string `json:"date"`
		Mileage  int    `json:"mileage"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date := core.Today()
	if req.Date != "" {
		var err error
		date, err = core.ParseDate(req.Date)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	created, err := s.session.Vehicles.LogQuick(r.Context(), r.PathValue("id"), req.ItemCode, date, req.Mileage)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
