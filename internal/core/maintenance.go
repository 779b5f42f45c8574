package core

import "sort"

// Maintenance statuses, ordered worst first for display ranking.
const (
	MaintenanceOverdue MaintenanceStatus = "overdue"
	MaintenanceSoon    MaintenanceStatus = "soon"
	MaintenanceOK      MaintenanceStatus = "ok"
)

// Thresholds for the soon window.
const (
	soonMileageWindowKm = 500
	soonDateWindowDays  = 14
)

type (
	MaintenanceStatus string

	// ItemStatus is the derived schedule position of one maintenance
	// item. It is recomputed on every read, never persisted; only the
	// last-done values are stored state. NextDueMileage is zero and
	// NextDueDate is zero when the respective rule does not apply.
	ItemStatus struct {
		Item           MaintenanceItem   `json:"item"`
		Status         MaintenanceStatus `json:"status"`
		NextDueMileage int               `json:"nextDueMileage,omitempty"`
		NextDueDate    Date              `json:"nextDueDate"`
	}
)

var statusRank = map[MaintenanceStatus]int{
	MaintenanceOverdue: 0,
	MaintenanceSoon:    1,
	MaintenanceOK:      2,
}

// DeriveItemStatus classifies one maintenance item against the vehicle's
// current mileage and today's date. An item with no last-done history at
// all reports soon, prompting a first log without falsely alarming.
func DeriveItemStatus(item MaintenanceItem, currentMileage int, today Date) ItemStatus {
	st := ItemStatus{Item: item}

	hasMileage := item.IntervalKm > 0 && item.LastDoneMileage > 0
	hasDate := item.IntervalMonths > 0 && !item.LastDoneDate.IsZero()
	if hasMileage {
		st.NextDueMileage = item.LastDoneMileage + item.IntervalKm
	}
	if hasDate {
		st.NextDueDate = item.LastDoneDate.AddMonths(item.IntervalMonths)
	}

	if item.LastDoneMileage == 0 && item.LastDoneDate.IsZero() {
		st.Status = MaintenanceSoon
		return st
	}

	overdue := (hasMileage && currentMileage >= st.NextDueMileage) ||
		(hasDate && !today.Before(st.NextDueDate.Time))
	if overdue {
		st.Status = MaintenanceOverdue
		return st
	}

	soon := (hasMileage && st.NextDueMileage-currentMileage <= soonMileageWindowKm) ||
		(hasDate && !st.NextDueDate.After(today.AddDays(soonDateWindowDays).Time))
	if soon {
		st.Status = MaintenanceSoon
		return st
	}

	st.Status = MaintenanceOK
	return st
}

// RankItemStatuses orders statuses for display: overdue first, then soon,
// then ok; ties break alphabetically by item name.
func RankItemStatuses(statuses []ItemStatus) {
	sort.Slice(statuses, func(i, j int) bool {
		a, b := statuses[i], statuses[j]
		if statusRank[a.Status] != statusRank[b.Status] {
			return statusRank[a.Status] < statusRank[b.Status]
		}
		return a.Item.Name < b.Item.Name
	})
}

// DefaultMaintenanceItems is the schedule every new vehicle starts with.
// Items carry no last-done history, so each reports soon until its first
// log.
func DefaultMaintenanceItems(vehicleID string) []MaintenanceItem {
	return []MaintenanceItem{
		{VehicleID: vehicleID, Code: "oil", Name: "Engine oil and filter", IntervalKm: 15000, IntervalMonths: 12},
		{VehicleID: vehicleID, Code: "filters", Name: "Air and cabin filters", IntervalKm: 30000, IntervalMonths: 24},
		{VehicleID: vehicleID, Code: "brakes", Name: "Brake pads and fluid", IntervalKm: 40000, IntervalMonths: 24},
		{VehicleID: vehicleID, Code: "tires", Name: "Tires", IntervalKm: 40000, IntervalMonths: 60},
		{VehicleID: vehicleID, Code: "inspection", Name: "Statutory inspection", IntervalMonths: 24},
	}
}
