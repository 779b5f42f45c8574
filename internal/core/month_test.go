package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEffectiveMonth(t *testing.T) {
	tests := []struct {
		name      string
		date      Date
		cutoffDay int
		want      string
	}{
		{"day before cutoff stays", NewDate(2024, time.March, 24), 25, "2024-03"},
		{"day at cutoff rolls forward", NewDate(2024, time.March, 25), 25, "2024-04"},
		{"day after cutoff rolls forward", NewDate(2024, time.March, 28), 25, "2024-04"},
		{"first of month stays", NewDate(2024, time.March, 1), 25, "2024-03"},
		{"cutoff 1 rolls everything", NewDate(2024, time.March, 1), 1, "2024-04"},
		{"cutoff 1 rolls month end", NewDate(2024, time.March, 31), 1, "2024-04"},
		{"december rolls into next year", NewDate(2024, time.December, 27), 25, "2025-01"},
		{"cutoff clamped up from 0", NewDate(2024, time.March, 2), 0, "2024-04"},
		{"cutoff clamped down from 31", NewDate(2024, time.March, 28), 31, "2024-04"},
		{"day below clamped cutoff stays", NewDate(2024, time.March, 27), 31, "2024-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveMonth(tt.date, tt.cutoffDay)
			if got.String() != tt.want {
				t.Errorf("EffectiveMonth(%s, %d) = %s, want %s", tt.date, tt.cutoffDay, got, tt.want)
			}
		})
	}
}

func TestMonthAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		month string
		delta int
		want  string
	}{
		{"forward within year", "2024-03", 2, "2024-05"},
		{"forward across year", "2024-11", 3, "2025-02"},
		{"backward within year", "2024-03", -2, "2024-01"},
		{"backward across year", "2024-01", -1, "2023-12"},
		{"zero delta", "2024-03", 0, "2024-03"},
		{"many years", "2024-01", 25, "2026-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMonth(tt.month)
			if err != nil {
				t.Fatalf("ParseMonth(%q) error = %v", tt.month, err)
			}
			got := m.AddMonths(tt.delta)
			if got.String() != tt.want {
				t.Errorf("%s.AddMonths(%d) = %s, want %s", tt.month, tt.delta, got, tt.want)
			}
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-01", "2024-07", 6},
		{"2024-07", "2024-01", -6},
		{"2024-03", "2024-03", 0},
		{"2023-11", "2024-02", 3},
		{"2024-02", "2023-11", -3},
	}

	for _, tt := range tests {
		a, _ := ParseMonth(tt.a)
		b, _ := ParseMonth(tt.b)
		if got := MonthsBetween(a, b); got != tt.want {
			t.Errorf("MonthsBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMonthDateOn(t *testing.T) {
	tests := []struct {
		name  string
		month string
		day   int
		want  string
	}{
		{"regular day", "2024-03", 15, "2024-03-15"},
		{"day clamped to 28 in february", "2024-02", 31, "2024-02-28"},
		{"day clamped up from 0", "2024-03", 0, "2024-03-01"},
		{"day 28 kept", "2024-02", 28, "2024-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := ParseMonth(tt.month)
			if got := m.DateOn(tt.day); got.String() != tt.want {
				t.Errorf("%s.DateOn(%d) = %s, want %s", tt.month, tt.day, got, tt.want)
			}
		})
	}
}

func TestMonthInRange(t *testing.T) {
	parse := func(s string) Month {
		if s == "" {
			return Month{}
		}
		m, err := ParseMonth(s)
		if err != nil {
			t.Fatalf("ParseMonth(%q) error = %v", s, err)
		}
		return m
	}

	tests := []struct {
		name              string
		month, start, end string
		want              bool
	}{
		{"inside closed range", "2024-03", "2024-01", "2024-06", true},
		{"at start boundary", "2024-01", "2024-01", "2024-06", true},
		{"at end boundary", "2024-06", "2024-01", "2024-06", true},
		{"before start", "2023-12", "2024-01", "2024-06", false},
		{"after end", "2024-07", "2024-01", "2024-06", false},
		{"open-ended far future", "2030-01", "2024-01", "", true},
		{"open-ended before start", "2023-12", "2024-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parse(tt.month).InRange(parse(tt.start), parse(tt.end))
			if got != tt.want {
				t.Errorf("%s.InRange(%s, %s) = %v, want %v", tt.month, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestClampDay(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1}, {1, 1}, {15, 15}, {28, 28}, {29, 28}, {31, 28}, {-3, 1},
	}
	for _, tc := range cases {
		if got := ClampDay(tc.in); got != tc.want {
			t.Errorf("ClampDay(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseMonthErrors(t *testing.T) {
	for _, in := range []string{"", "2024", "2024-13", "03-2024", "2024-3", "garbage"} {
		if _, err := ParseMonth(in); err == nil {
			t.Errorf("ParseMonth(%q) expected error", in)
		}
	}
}

func TestParseDateErrors(t *testing.T) {
	for _, in := range []string{"", "2024-02-30", "2024-1-1", "25-03-2024", "garbage"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) expected error", in)
		}
	}
}

func TestMonthJSONRoundTrip(t *testing.T) {
	type doc struct {
		Month Month `json:"month"`
		Date  Date  `json:"date"`
	}

	in := doc{Month: NewMonth(2024, time.March), Date: NewDate(2024, time.March, 25)}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"month":"2024-03","date":"2024-03-25"}`
	if string(raw) != want {
		t.Fatalf("Marshal() = %s, want %s", raw, want)
	}

	var out doc
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Month.String() != "2024-03" || out.Date.String() != "2024-03-25" {
		t.Errorf("round trip = %s / %s, want 2024-03 / 2024-03-25", out.Month, out.Date)
	}

	var zero doc
	if err := json.Unmarshal([]byte(`{"month":"","date":""}`), &zero); err != nil {
		t.Fatalf("Unmarshal(zero) error = %v", err)
	}
	if !zero.Month.IsZero() || !zero.Date.IsZero() {
		t.Errorf("empty strings should decode to zero values")
	}
}
