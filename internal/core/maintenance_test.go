package core

import (
	"testing"
	"time"
)

func TestDeriveItemStatusMileage(t *testing.T) {
	item := MaintenanceItem{
		Code:            "oil",
		Name:            "Engine oil",
		IntervalKm:      10000,
		LastDoneMileage: 50000,
		LastDoneDate:    NewDate(2024, time.January, 10),
		IntervalMonths:  0,
	}
	today := NewDate(2024, time.March, 1)

	tests := []struct {
		name           string
		currentMileage int
		want           MaintenanceStatus
	}{
		{"well below due", 55000, MaintenanceOK},
		{"just outside soon window", 59499, MaintenanceOK},
		{"exactly at soon window", 59500, MaintenanceSoon},
		{"inside soon window", 59550, MaintenanceSoon},
		{"exactly at due mileage", 60000, MaintenanceOverdue},
		{"past due mileage", 61000, MaintenanceOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DeriveItemStatus(item, tt.currentMileage, today)
			if st.Status != tt.want {
				t.Errorf("DeriveItemStatus(mileage=%d) = %v, want %v", tt.currentMileage, st.Status, tt.want)
			}
			if st.NextDueMileage != 60000 {
				t.Errorf("NextDueMileage = %d, want 60000", st.NextDueMileage)
			}
		})
	}
}

func TestDeriveItemStatusDate(t *testing.T) {
	item := MaintenanceItem{
		Code:           "inspection",
		Name:           "Inspection",
		IntervalMonths: 24,
		LastDoneDate:   NewDate(2022, time.June, 15),
	}

	tests := []struct {
		name  string
		today Date
		want  MaintenanceStatus
	}{
		{"long before due", NewDate(2023, time.June, 1), MaintenanceOK},
		{"more than two weeks out", NewDate(2024, time.May, 30), MaintenanceOK},
		{"two weeks before due", NewDate(2024, time.June, 1), MaintenanceSoon},
		{"on due date", NewDate(2024, time.June, 15), MaintenanceOverdue},
		{"past due date", NewDate(2024, time.July, 1), MaintenanceOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DeriveItemStatus(item, 0, tt.today)
			if st.Status != tt.want {
				t.Errorf("DeriveItemStatus(today=%s) = %v, want %v", tt.today, st.Status, tt.want)
			}
			if st.NextDueDate.String() != "2024-06-15" {
				t.Errorf("NextDueDate = %s, want 2024-06-15", st.NextDueDate)
			}
		})
	}
}

func TestDeriveItemStatusNoHistory(t *testing.T) {
	item := MaintenanceItem{Code: "tires", Name: "Tires", IntervalKm: 50000, IntervalMonths: 60}
	st := DeriveItemStatus(item, 120000, NewDate(2024, time.March, 1))
	if st.Status != MaintenanceSoon {
		t.Errorf("no-history status = %v, want soon", st.Status)
	}
	if st.NextDueMileage != 0 || !st.NextDueDate.IsZero() {
		t.Errorf("no-history item must not derive due points: %+v", st)
	}
}

func TestDeriveItemStatusEitherRuleTriggersOverdue(t *testing.T) {
	item := MaintenanceItem{
		Code:            "oil",
		Name:            "Engine oil",
		IntervalKm:      10000,
		IntervalMonths:  12,
		LastDoneMileage: 50000,
		LastDoneDate:    NewDate(2023, time.January, 10),
	}
	// Mileage is fine but the date interval has lapsed.
	st := DeriveItemStatus(item, 51000, NewDate(2024, time.February, 1))
	if st.Status != MaintenanceOverdue {
		t.Errorf("status = %v, want overdue via date rule", st.Status)
	}
}

func TestRankItemStatuses(t *testing.T) {
	statuses := []ItemStatus{
		{Item: MaintenanceItem{Name: "Tires"}, Status: MaintenanceOK},
		{Item: MaintenanceItem{Name: "Brakes"}, Status: MaintenanceSoon},
		{Item: MaintenanceItem{Name: "Air filter"}, Status: MaintenanceOK},
		{Item: MaintenanceItem{Name: "Engine oil"}, Status: MaintenanceOverdue},
		{Item: MaintenanceItem{Name: "Cabin filter"}, Status: MaintenanceSoon},
	}

	RankItemStatuses(statuses)

	wantOrder := []string{"Engine oil", "Brakes", "Cabin filter", "Air filter", "Tires"}
	for i, want := range wantOrder {
		if statuses[i].Item.Name != want {
			t.Errorf("rank %d = %q, want %q", i, statuses[i].Item.Name, want)
		}
	}
}
