package core

import (
	"testing"
	"time"
)

func TestGeneratedTransactionIDs(t *testing.T) {
	date := NewDate(2024, time.March, 15)
	month := NewMonth(2024, time.March)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"recurring", RecurringTransactionID("r1", date), "rec-r1-2024-03-15"},
		{"bill", BillTransactionID("b1", date), "bill-b1-2024-03-15"},
		{"debt keyed by month", DebtTransactionID("d1", month), "debt-d1-2024-03"},
		{"fund keyed by month and date", FundTransactionID("f1", month, date), "fund-f1-2024-03-2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("id = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestGeneratedTransactionIDsAreStable(t *testing.T) {
	date := NewDate(2024, time.March, 15)
	if RecurringTransactionID("r1", date) != RecurringTransactionID("r1", date) {
		t.Error("same inputs must derive the same id")
	}
	if RecurringTransactionID("r1", date) == RecurringTransactionID("r2", date) {
		t.Error("different rules must derive different ids")
	}
}
