package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// VehicleService manages vehicles, their maintenance schedule items and
// the service log. Item statuses are derived on every read from the
// stored last-done values; nothing persists them.
type VehicleService struct {
	store store.Store
	paths store.Paths
}

func NewVehicleService(s store.Store, paths store.Paths) *VehicleService {
	return &VehicleService{store: s, paths: paths}
}

// Create stores the vehicle and seeds its default maintenance schedule.
// Seeded items have no last-done history, so they all report soon until
// their first log.
func (s *VehicleService) Create(ctx context.Context, vehicle core.Vehicle) (core.Vehicle, error) {
	if err := vehicle.Validate(); err != nil {
		return core.Vehicle{}, err
	}
	id, err := s.store.Add(ctx, s.paths.Vehicles(), vehicle.Doc())
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	vehicle.ID = id

	for _, item := range core.DefaultMaintenanceItems(id) {
		path := s.paths.MaintenanceItem(id, item.Code)
		if err := s.store.Set(ctx, path, item.Doc(), false); err != nil {
			return core.Vehicle{}, fmt.Errorf("seed maintenance item %s: %w", item.Code, err)
		}
	}

	slog.InfoContext(ctx, "Created vehicle", "vehicle_id", id, "name", vehicle.Name)
	return vehicle, nil
}

func (s *VehicleService) Get(ctx context.Context, id string) (core.Vehicle, error) {
	doc, err := s.store.Get(ctx, s.paths.Vehicle(id))
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("load vehicle %s: %w", id, err)
	}
	return core.VehicleFromDoc(doc.ID, doc.Data), nil
}

func (s *VehicleService) List(ctx context.Context) ([]core.Vehicle, error) {
	docs, err := s.store.ListAll(ctx, s.paths.Vehicles())
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	vehicles := make([]core.Vehicle, 0, len(docs))
	for _, doc := range docs {
		vehicles = append(vehicles, core.VehicleFromDoc(doc.ID, doc.Data))
	}
	return vehicles, nil
}

func (s *VehicleService) Save(ctx context.Context, vehicle core.Vehicle) error {
	if err := vehicle.Validate(); err != nil {
		return err
	}
	if vehicle.ID == "" {
		return errors.New("vehicle id is required")
	}
	if err := s.store.Set(ctx, s.paths.Vehicle(vehicle.ID), vehicle.Doc(), false); err != nil {
		return fmt.Errorf("save vehicle %s: %w", vehicle.ID, err)
	}
	return nil
}

func (s *VehicleService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.paths.Vehicle(id)); err != nil {
		return fmt.Errorf("delete vehicle %s: %w", id, err)
	}
	return nil
}

// SaveItem upserts a maintenance schedule item, keyed by vehicle and item
// code. A freshly added item carries no last-done history and therefore
// reports soon until its first log.
func (s *VehicleService) SaveItem(ctx context.Context, item core.MaintenanceItem) error {
	if item.VehicleID == "" || item.Code == "" {
		return errors.New("maintenance item needs vehicle id and code")
	}
	if _, err := s.store.Get(ctx, s.paths.Vehicle(item.VehicleID)); err != nil {
		return fmt.Errorf("load vehicle %s: %w", item.VehicleID, err)
	}
	path := s.paths.MaintenanceItem(item.VehicleID, item.Code)
	if err := s.store.Set(ctx, path, item.Doc(), true); err != nil {
		return fmt.Errorf("save maintenance item %s: %w", item.Code, err)
	}
	return nil
}

func (s *VehicleService) ListItems(ctx context.Context, vehicleID string) ([]core.MaintenanceItem, error) {
	docs, err := s.store.ListAll(ctx, s.paths.MaintenanceItems(vehicleID))
	if err != nil {
		return nil, fmt.Errorf("list maintenance items: %w", err)
	}
	items := make([]core.MaintenanceItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, core.MaintenanceItemFromDoc(vehicleID, doc.ID, doc.Data))
	}
	return items, nil
}

func (s *VehicleService) DeleteItem(ctx context.Context, vehicleID, code string) error {
	if err := s.store.Delete(ctx, s.paths.MaintenanceItem(vehicleID, code)); err != nil {
		return fmt.Errorf("delete maintenance item %s: %w", code, err)
	}
	return nil
}

// ItemStatuses derives the schedule position of every maintenance item
// against the vehicle's current mileage and today's date, worst first.
func (s *VehicleService) ItemStatuses(ctx context.Context, vehicleID string, today core.Date) ([]core.ItemStatus, error) {
	vehicle, err := s.Get(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	items, err := s.ListItems(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	statuses := make([]core.ItemStatus, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, core.DeriveItemStatus(item, vehicle.CurrentMileage, today))
	}
	core.RankItemStatuses(statuses)
	return statuses, nil
}

// LogFull records a complete service log entry. A maintenance log tied to
// an item resets that item's last-done values, and the vehicle's mileage
// moves up to the logged value but never down.
func (s *VehicleService) LogFull(ctx context.Context, entry core.MaintenanceLog) (core.MaintenanceLog, error) {
	if entry.VehicleID == "" {
		return core.MaintenanceLog{}, errors.New("vehicle id is required")
	}
	if err := entry.Date.Validate(); err != nil {
		return core.MaintenanceLog{}, fmt.Errorf("invalid log date: %w", err)
	}
	if entry.Mileage < 0 {
		return core.MaintenanceLog{}, core.ErrInvalidMileage
	}
	vehicle, err := s.Get(ctx, entry.VehicleID)
	if err != nil {
		return core.MaintenanceLog{}, err
	}
	if entry.LogType != core.LogAccessory {
		entry.LogType = core.LogMaintenance
	}

	id, err := s.store.Add(ctx, s.paths.MaintenanceLogs(), entry.Doc())
	if err != nil {
		return core.MaintenanceLog{}, fmt.Errorf("write maintenance log: %w", err)
	}
	entry.ID = id

	if entry.ItemCode != "" && entry.LogType == core.LogMaintenance {
		if err := s.markItemDone(ctx, entry.VehicleID, entry.ItemCode, entry.Date, entry.Mileage); err != nil {
			return core.MaintenanceLog{}, err
		}
	}
	if entry.Mileage > vehicle.CurrentMileage {
		fields := map[string]any{"currentMileage": entry.Mileage}
		if err := s.store.Update(ctx, s.paths.Vehicle(entry.VehicleID), fields); err != nil {
			return core.MaintenanceLog{}, fmt.Errorf("update vehicle mileage: %w", err)
		}
	}

	slog.InfoContext(ctx, "Recorded maintenance log",
		"vehicle_id", entry.VehicleID,
		"item", entry.ItemCode,
		"mileage", entry.Mileage,
	)
	return entry, nil
}

// LogQuick marks one schedule item done without a full log form. It never
// touches the vehicle's current mileage; a zero mileage defaults to the
// vehicle's stored value.
func (s *VehicleService) LogQuick(ctx context.Context, vehicleID, itemCode string, date core.Date, mileage int) (core.MaintenanceLog, error) {
	if itemCode == "" {
		return core.MaintenanceLog{}, errors.New("item code is required")
	}
	if err := date.Validate(); err != nil {
		return core.MaintenanceLog{}, fmt.Errorf("invalid log date: %w", err)
	}
	vehicle, err := s.Get(ctx, vehicleID)
	if err != nil {
		return core.MaintenanceLog{}, err
	}
	itemDoc, err := s.store.Get(ctx, s.paths.MaintenanceItem(vehicleID, itemCode))
	if err != nil {
		return core.MaintenanceLog{}, fmt.Errorf("load maintenance item %s: %w", itemCode, err)
	}
	item := core.MaintenanceItemFromDoc(vehicleID, itemCode, itemDoc.Data)

	if mileage <= 0 {
		mileage = vehicle.CurrentMileage
	}
	entry := core.MaintenanceLog{
		VehicleID:   vehicleID,
		Date:        date,
		Mileage:     mileage,
		ServiceType: item.Name,
		ItemCode:    itemCode,
		LogType:     core.LogMaintenance,
	}
	id, err := s.store.Add(ctx, s.paths.MaintenanceLogs(), entry.Doc())
	if err != nil {
		return core.MaintenanceLog{}, fmt.Errorf("write maintenance log: %w", err)
	}
	entry.ID = id

	if err := s.markItemDone(ctx, vehicleID, itemCode, date, mileage); err != nil {
		return core.MaintenanceLog{}, err
	}
	return entry, nil
}

// ListLogs returns the vehicle's log entries, newest first.
func (s *VehicleService) ListLogs(ctx context.Context, vehicleID string) ([]core.MaintenanceLog, error) {
	filters := []store.Filter{{Field: "vehicleId", Value: vehicleID}}
	docs, err := s.store.Query(ctx, s.paths.MaintenanceLogs(), filters, "date")
	if err != nil {
		return nil, fmt.Errorf("query maintenance logs: %w", err)
	}
	logs := make([]core.MaintenanceLog, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		logs = append(logs, core.MaintenanceLogFromDoc(docs[i].ID, docs[i].Data))
	}
	return logs, nil
}

func (s *VehicleService) markItemDone(ctx context.Context, vehicleID, itemCode string, date core.Date, mileage int) error {
	fields := map[string]any{
		"lastDoneDate":    date.String(),
		"lastDoneMileage": mileage,
	}
	if err := s.store.Update(ctx, s.paths.MaintenanceItem(vehicleID, itemCode), fields); err != nil {
		return fmt.Errorf("update maintenance item %s: %w", itemCode, err)
	}
	return nil
}
