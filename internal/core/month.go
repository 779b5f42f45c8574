// Package core holds the month-accounting domain: calendar and accounting
// month arithmetic, the entity model, plan-vs-actual aggregation, and the
// vehicle maintenance scheduler. Everything here is pure; persistence and
// transport live elsewhere.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Day-of-month bounds used everywhere a day is stored or compared. Clamping
// to 28 guarantees the day exists in February, so derived dates and the
// cutoff comparison are valid in every month.
const (
	MinDayOfMonth = 1
	MaxDayOfMonth = 28

	// DefaultCutoffDay applies when no settings document exists yet.
	DefaultCutoffDay = 25
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidMonth = errors.New("invalid month")
)

type (
	// Date is a calendar day without a time component, normalized to UTC.
	Date struct {
		time.Time
	}

	// Month identifies an accounting month. The wrapped time is always
	// 00:00 UTC on the first day of the month, so the zero value doubles
	// as "no month" for optional fields.
	Month struct {
		time.Time
	}
)

// ClampDay forces a day-of-month into [1,28].
func ClampDay(day int) int {
	if day < MinDayOfMonth {
		return MinDayOfMonth
	}
	if day > MaxDayOfMonth {
		return MaxDayOfMonth
	}
	return day
}

// NewDate creates a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths returns the date n calendar months later. Day overflow follows
// time.AddDate normalization (Jan 31 + 1 month lands in early March).
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, n, 0)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewMonth creates a Month for the given year and calendar month.
func NewMonth(year int, month time.Month) Month {
	return Month{Time: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// MonthOf returns the calendar month a date belongs to, before any cutoff
// adjustment.
func MonthOf(d Date) Month {
	return NewMonth(d.Time.Year(), d.Time.Month())
}

// CurrentMonth returns the calendar month of today.
func CurrentMonth() Month {
	return MonthOf(Today())
}

// ParseMonth parses a YYYY-MM identifier.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return NewMonth(t.Year(), t.Month()), nil
}

func (m Month) String() string {
	return m.Format(monthLayout)
}

func (m Month) Validate() error {
	if m.IsZero() {
		return ErrInvalidMonth
	}
	return nil
}

// AddMonths returns the month shifted by delta, which may be negative.
func (m Month) AddMonths(delta int) Month {
	return Month{Time: m.Time.AddDate(0, delta, 0)}
}

// MonthsBetween returns the signed number of months from a to b.
func MonthsBetween(a, b Month) int {
	years := b.Time.Year() - a.Time.Year()
	months := int(b.Time.Month()) - int(a.Time.Month())
	return years*12 + months
}

// DateOn returns the calendar date of the given day within the month. The
// day is clamped to [1,28] before construction.
func (m Month) DateOn(day int) Date {
	return NewDate(m.Time.Year(), m.Time.Month(), ClampDay(day))
}

// InRange reports whether m falls within [start, end], both inclusive. A
// zero end month leaves the range open-ended.
func (m Month) InRange(start, end Month) bool {
	if m.Time.Before(start.Time) {
		return false
	}
	return end.IsZero() || !m.Time.After(end.Time)
}

func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// EffectiveMonth assigns a date to its accounting month. Days on or after
// the cutoff roll into the next month: spending late in a calendar month,
// past the user's payday, counts against the following month's budget. The
// cutoff is clamped to [1,28] so the comparison is well-defined regardless
// of month length.
func EffectiveMonth(d Date, cutoffDay int) Month {
	m := MonthOf(d)
	if d.Day() >= ClampDay(cutoffDay) {
		return m.AddMonths(1)
	}
	return m
}
