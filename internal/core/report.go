package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Row badges returned alongside the status label.
const (
	BadgeOK   = "ok"
	BadgeWarn = "warn"
	BadgeBad  = "bad"
)

// Status labels for plan-vs-actual rows.
const (
	StatusNotPlanned  = "Not planned"
	StatusWithinPlan  = "Good (within plan)"
	StatusOverBudget  = "Over budget"
	StatusExtraIncome = "Extra income"
	StatusAbovePlan   = "Good (above plan)"
	StatusOnPlan      = "On plan"
	StatusBelowPlan   = "Below plan"
)

type (
	// MonthlyRow is one display-ready plan-vs-actual line.
	MonthlyRow struct {
		Group    string          `json:"group"`
		Category string          `json:"category"`
		Type     TxType          `json:"type"`
		Planned  decimal.Decimal `json:"planned"`
		Actual   decimal.Decimal `json:"actual"`
		Diff     decimal.Decimal `json:"diff"`
		Status   string          `json:"status"`
		Badge    string          `json:"badge"`
	}

	// UnpaidBills summarizes the active bills not yet paid in a month.
	UnpaidBills struct {
		Total decimal.Decimal `json:"total"`
		Count int             `json:"count"`
	}

	// TrendPoint is one month of the net trend, income minus expenses.
	TrendPoint struct {
		Month Month           `json:"month"`
		Net   decimal.Decimal `json:"net"`
	}
)

type rowKey struct {
	group    string
	category string
	txType   TxType
}

// normalizeRowKey builds the case-insensitive grouping key shared by plan
// items and transactions. Empty group or category defaults to "Other" so
// uncategorized actuals still merge with their plan line.
func normalizeRowKey(group, category string, txType TxType) rowKey {
	g := strings.ToLower(strings.TrimSpace(group))
	c := strings.ToLower(strings.TrimSpace(category))
	if g == "" {
		g = "other"
	}
	if c == "" {
		c = "other"
	}
	return rowKey{group: g, category: c, txType: txType}
}

func displayName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Other"
	}
	return s
}

// BuildMonthlyRows merges a month's plan items with its actual
// transactions into unified rows with variance and status. Expense rows
// sort before income rows; within a type, worst variance first; ties break
// on group then category.
func BuildMonthlyRows(items []PlanItem, txs []Transaction) []MonthlyRow {
	rows := make(map[rowKey]*MonthlyRow)

	ensure := func(key rowKey, group, category string) *MonthlyRow {
		if row, ok := rows[key]; ok {
			return row
		}
		row := &MonthlyRow{
			Group:    displayName(group),
			Category: displayName(category),
			Type:     key.txType,
		}
		rows[key] = row
		return row
	}

	for _, item := range items {
		key := normalizeRowKey(item.Group, item.Category, item.Type)
		row := ensure(key, item.Group, item.Category)
		row.Planned = row.Planned.Add(item.Planned)
	}
	for _, tx := range txs {
		key := normalizeRowKey(tx.Group, tx.Category, tx.Type)
		row := ensure(key, tx.Group, tx.Category)
		row.Actual = row.Actual.Add(tx.Amount)
	}

	out := make([]MonthlyRow, 0, len(rows))
	for _, row := range rows {
		classifyRow(row)
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type != b.Type {
			return a.Type == Expense
		}
		if cmp := a.Diff.Cmp(b.Diff); cmp != 0 {
			return cmp < 0
		}
		ag, bg := strings.ToLower(a.Group), strings.ToLower(b.Group)
		if ag != bg {
			return ag < bg
		}
		return strings.ToLower(a.Category) < strings.ToLower(b.Category)
	})
	return out
}

// classifyRow fills Diff, Status and Badge. Expenses measure planned minus
// actual (positive diff is money left); income measures actual minus
// planned (positive diff is money above plan).
func classifyRow(row *MonthlyRow) {
	if row.Type == Expense {
		row.Diff = row.Planned.Sub(row.Actual)
		switch {
		case row.Planned.IsZero() && row.Actual.Sign() > 0:
			row.Status, row.Badge = StatusNotPlanned, BadgeWarn
		case row.Diff.Sign() >= 0:
			row.Status, row.Badge = StatusWithinPlan, BadgeOK
		default:
			row.Status, row.Badge = StatusOverBudget, BadgeBad
		}
		return
	}

	row.Diff = row.Actual.Sub(row.Planned)
	switch {
	case row.Planned.IsZero() && row.Actual.Sign() > 0:
		row.Status, row.Badge = StatusExtraIncome, BadgeOK
	case row.Diff.Sign() > 0:
		row.Status, row.Badge = StatusAbovePlan, BadgeOK
	case row.Diff.IsZero():
		row.Status, row.Badge = StatusOnPlan, BadgeOK
	default:
		row.Status, row.Badge = StatusBelowPlan, BadgeWarn
	}
}

// ComputeUnpaidBills totals the active bills whose status for the month is
// missing or unpaid.
func ComputeUnpaidBills(bills []Bill, statuses []BillStatus) UnpaidBills {
	paid := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		if st.Paid {
			paid[st.BillID] = true
		}
	}

	var unpaid UnpaidBills
	for _, bill := range bills {
		if !bill.Active || paid[bill.ID] {
			continue
		}
		unpaid.Total = unpaid.Total.Add(bill.Amount)
		unpaid.Count++
	}
	unpaid.Total = Round2(unpaid.Total)
	return unpaid
}

// NetTrend computes income minus expenses per effective month for the
// window ending at anchor, oldest month first. Months without transactions
// contribute a zero point so the series length is stable.
func NetTrend(txs []Transaction, anchor Month, months int) []TrendPoint {
	if months <= 0 {
		return nil
	}

	net := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.EffectiveMonth.IsZero() {
			continue
		}
		key := tx.EffectiveMonth.String()
		switch tx.Type {
		case Income:
			net[key] = net[key].Add(tx.Amount)
		default:
			net[key] = net[key].Sub(tx.Amount)
		}
	}

	points := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := anchor.AddMonths(-i)
		points = append(points, TrendPoint{Month: m, Net: Round2(net[m.String()])})
	}
	return points
}
