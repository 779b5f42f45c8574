// Store document coercion.
//
// The document store hands back loosely-typed maps. One FromDoc function
// per entity normalizes them into the typed model: numeric fields are
// coerced across int/float/string encodings, day-of-month fields are
// clamped to [1,28], and unknown transaction types default to expense, so
// malformed stored data degrades gracefully instead of crashing
// aggregation. The matching Doc methods build the maps written back.

package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func docString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func docBool(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	case float64:
		return v != 0
	case int64:
		return v != 0
	}
	return false
}

func docInt(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func docDecimal(data map[string]any, key string) decimal.Decimal {
	switch v := data[key].(type) {
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func docDate(data map[string]any, key string) Date {
	s := docString(data, key)
	if s == "" {
		return Date{}
	}
	d, err := ParseDate(s)
	if err != nil {
		return Date{}
	}
	return d
}

func docMonth(data map[string]any, key string) Month {
	s := docString(data, key)
	if s == "" {
		return Month{}
	}
	m, err := ParseMonth(s)
	if err != nil {
		return Month{}
	}
	return m
}

func docTime(data map[string]any, key string) time.Time {
	s := docString(data, key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SettingsFromDoc coerces the settings document. A missing or out-of-range
// cutoff falls back to the clamped default.
func SettingsFromDoc(data map[string]any) Settings {
	day := docInt(data, "cutoffDay")
	if day == 0 {
		day = DefaultCutoffDay
	}
	return Settings{CutoffDay: ClampDay(day)}
}

func (s Settings) Doc() map[string]any {
	return map[string]any{"cutoffDay": ClampDay(s.CutoffDay)}
}

func CategoryFromDoc(id string, data map[string]any) Category {
	return Category{
		ID:    id,
		Group: docString(data, "group"),
		Name:  docString(data, "name"),
		Type:  NormalizeTxType(docString(data, "type")),
	}
}

func (c Category) Doc() map[string]any {
	return map[string]any{
		"group": c.Group,
		"name":  c.Name,
		"type":  string(c.Type),
	}
}

func RecurringRuleFromDoc(id string, data map[string]any) RecurringRule {
	return RecurringRule{
		ID:         id,
		Type:       NormalizeTxType(docString(data, "type")),
		Group:      docString(data, "group"),
		Category:   docString(data, "category"),
		Amount:     docDecimal(data, "amount"),
		DayOfMonth: ClampDay(docInt(data, "dayOfMonth")),
		StartMonth: docMonth(data, "startMonth"),
		EndMonth:   docMonth(data, "endMonth"),
		Active:     docBool(data, "active"),
	}
}

func (r RecurringRule) Doc() map[string]any {
	data := map[string]any{
		"type":       string(r.Type),
		"group":      r.Group,
		"category":   r.Category,
		"amount":     r.Amount.String(),
		"dayOfMonth": ClampDay(r.DayOfMonth),
		"startMonth": r.StartMonth.String(),
		"active":     r.Active,
	}
	if !r.EndMonth.IsZero() {
		data["endMonth"] = r.EndMonth.String()
	}
	return data
}

func BillFromDoc(id string, data map[string]any) Bill {
	return Bill{
		ID:     id,
		Name:   docString(data, "name"),
		Group:  docString(data, "group"),
		Amount: docDecimal(data, "amount"),
		DueDay: ClampDay(docInt(data, "dueDay")),
		Active: docBool(data, "active"),
	}
}

func (b Bill) Doc() map[string]any {
	return map[string]any{
		"name":   b.Name,
		"group":  b.Group,
		"amount": b.Amount.String(),
		"dueDay": ClampDay(b.DueDay),
		"active": b.Active,
	}
}

func BillStatusFromDoc(data map[string]any) BillStatus {
	return BillStatus{
		BillID:   docString(data, "billId"),
		Month:    docMonth(data, "month"),
		Paid:     docBool(data, "paid"),
		PaidDate: docDate(data, "paidDate"),
	}
}

func (bs BillStatus) Doc() map[string]any {
	data := map[string]any{
		"billId": bs.BillID,
		"month":  bs.Month.String(),
		"paid":   bs.Paid,
	}
	if !bs.PaidDate.IsZero() {
		data["paidDate"] = bs.PaidDate.String()
	}
	return data
}

func DebtFromDoc(id string, data map[string]any) Debt {
	return Debt{
		ID:             id,
		Name:           docString(data, "name"),
		Type:           docString(data, "type"),
		APR:            docDecimal(data, "apr"),
		CurrentBalance: docDecimal(data, "currentBalance"),
		MonthlyPayment: docDecimal(data, "monthlyPayment"),
		DueDay:         ClampDay(docInt(data, "dueDay")),
		LastPaidMonth:  docMonth(data, "lastPaidMonth"),
	}
}

func (d Debt) Doc() map[string]any {
	data := map[string]any{
		"name":           d.Name,
		"type":           d.Type,
		"apr":            d.APR.String(),
		"currentBalance": d.CurrentBalance.String(),
		"monthlyPayment": d.MonthlyPayment.String(),
		"dueDay":         ClampDay(d.DueDay),
	}
	if !d.LastPaidMonth.IsZero() {
		data["lastPaidMonth"] = d.LastPaidMonth.String()
	}
	return data
}

func FundFromDoc(id string, data map[string]any) Fund {
	return Fund{
		ID:           id,
		Name:         docString(data, "name"),
		GoalAmount:   docDecimal(data, "goalAmount"),
		TargetMonth:  docMonth(data, "targetMonth"),
		CurrentSaved: docDecimal(data, "currentSaved"),
	}
}

func (f Fund) Doc() map[string]any {
	return map[string]any{
		"name":         f.Name,
		"goalAmount":   f.GoalAmount.String(),
		"targetMonth":  f.TargetMonth.String(),
		"currentSaved": f.CurrentSaved.String(),
	}
}

func VehicleFromDoc(id string, data map[string]any) Vehicle {
	return Vehicle{
		ID:                    id,
		Name:                  docString(data, "name"),
		Plate:                 docString(data, "plate"),
		CurrentMileage:        docInt(data, "currentMileage"),
		ServiceIntervalKm:     docInt(data, "serviceIntervalKm"),
		ServiceIntervalMonths: docInt(data, "serviceIntervalMonths"),
	}
}

func (v Vehicle) Doc() map[string]any {
	return map[string]any{
		"name":                  v.Name,
		"plate":                 v.Plate,
		"currentMileage":        v.CurrentMileage,
		"serviceIntervalKm":     v.ServiceIntervalKm,
		"serviceIntervalMonths": v.ServiceIntervalMonths,
	}
}

func MaintenanceItemFromDoc(vehicleID, code string, data map[string]any) MaintenanceItem {
	return MaintenanceItem{
		VehicleID:       vehicleID,
		Code:            code,
		Name:            docString(data, "name"),
		IntervalKm:      docInt(data, "intervalKm"),
		IntervalMonths:  docInt(data, "intervalMonths"),
		LastDoneMileage: docInt(data, "lastDoneMileage"),
		LastDoneDate:    docDate(data, "lastDoneDate"),
	}
}

func (mi MaintenanceItem) Doc() map[string]any {
	data := map[string]any{
		"name":           mi.Name,
		"intervalKm":     mi.IntervalKm,
		"intervalMonths": mi.IntervalMonths,
	}
	if mi.LastDoneMileage > 0 {
		data["lastDoneMileage"] = mi.LastDoneMileage
	}
	if !mi.LastDoneDate.IsZero() {
		data["lastDoneDate"] = mi.LastDoneDate.String()
	}
	return data
}

func MaintenanceLogFromDoc(id string, data map[string]any) MaintenanceLog {
	logType := LogType(docString(data, "logType"))
	if logType != LogAccessory {
		logType = LogMaintenance
	}
	return MaintenanceLog{
		ID:          id,
		VehicleID:   docString(data, "vehicleId"),
		Date:        docDate(data, "date"),
		Mileage:     docInt(data, "mileage"),
		ServiceType: docString(data, "serviceType"),
		Quantity:    docDecimal(data, "quantity"),
		Cost:        docDecimal(data, "cost"),
		ItemCode:    docString(data, "itemCode"),
		LogType:     logType,
	}
}

func (ml MaintenanceLog) Doc() map[string]any {
	data := map[string]any{
		"vehicleId":   ml.VehicleID,
		"date":        ml.Date.String(),
		"mileage":     ml.Mileage,
		"serviceType": ml.ServiceType,
		"cost":        ml.Cost.String(),
		"logType":     string(ml.LogType),
	}
	if !ml.Quantity.IsZero() {
		data["quantity"] = ml.Quantity.String()
	}
	if ml.ItemCode != "" {
		data["itemCode"] = ml.ItemCode
	}
	return data
}

func TransactionFromDoc(id string, data map[string]any) Transaction {
	return Transaction{
		ID:             id,
		Date:           docDate(data, "date"),
		Type:           NormalizeTxType(docString(data, "type")),
		Group:          docString(data, "group"),
		Category:       docString(data, "category"),
		Description:    docString(data, "description"),
		Amount:         docDecimal(data, "amount"),
		EffectiveMonth: docMonth(data, "effectiveMonth"),

		IsRecurring:        docBool(data, "isRecurring"),
		IsBill:             docBool(data, "isBill"),
		IsDebtPayment:      docBool(data, "isDebtPayment"),
		IsFundContribution: docBool(data, "isFundContribution"),
		IsVehicle:          docBool(data, "isVehicle"),
		RecurringID:        docString(data, "recurringId"),
		BillID:             docString(data, "billId"),
		DebtID:             docString(data, "debtId"),
		FundID:             docString(data, "fundId"),
		VehicleID:          docString(data, "vehicleId"),
		SourceMonth:        docMonth(data, "sourceMonth"),
		GeneratedAt:        docTime(data, "generatedAt"),

		Interest:     docDecimal(data, "interest"),
		Principal:    docDecimal(data, "principal"),
		BalanceAfter: docDecimal(data, "balanceAfter"),

		UpdatedAt: docTime(data, "updatedAt"),
	}
}

func (t Transaction) Doc() map[string]any {
	data := map[string]any{
		"date":           t.Date.String(),
		"type":           string(t.Type),
		"group":          t.Group,
		"category":       t.Category,
		"amount":         t.Amount.String(),
		"effectiveMonth": t.EffectiveMonth.String(),
	}
	if t.Description != "" {
		data["description"] = t.Description
	}
	setFlag := func(key string, on bool) {
		if on {
			data[key] = true
		}
	}
	setFlag("isRecurring", t.IsRecurring)
	setFlag("isBill", t.IsBill)
	setFlag("isDebtPayment", t.IsDebtPayment)
	setFlag("isFundContribution", t.IsFundContribution)
	setFlag("isVehicle", t.IsVehicle)
	setID := func(key, id string) {
		if id != "" {
			data[key] = id
		}
	}
	setID("recurringId", t.RecurringID)
	setID("billId", t.BillID)
	setID("debtId", t.DebtID)
	setID("fundId", t.FundID)
	setID("vehicleId", t.VehicleID)
	if !t.SourceMonth.IsZero() {
		data["sourceMonth"] = t.SourceMonth.String()
	}
	if !t.GeneratedAt.IsZero() {
		data["generatedAt"] = t.GeneratedAt.UTC().Format(time.RFC3339)
	}
	if t.IsDebtPayment {
		data["interest"] = t.Interest.String()
		data["principal"] = t.Principal.String()
		data["balanceAfter"] = t.BalanceAfter.String()
	}
	if !t.UpdatedAt.IsZero() {
		data["updatedAt"] = t.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return data
}

// PlanFromDoc coerces a plan document. Items arrive as a list of loose
// maps under the "items" key.
func PlanFromDoc(month Month, data map[string]any) Plan {
	plan := Plan{Month: month}
	raw, ok := data["items"].([]any)
	if !ok {
		return plan
	}
	for _, entry := range raw {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := PlanItem{
			Group:    docString(fields, "group"),
			Category: docString(fields, "category"),
			Type:     NormalizeTxType(docString(fields, "type")),
			Planned:  docDecimal(fields, "planned"),
		}
		if item.Empty() {
			continue
		}
		plan.Items = append(plan.Items, item)
	}
	return plan
}

func (p Plan) Doc() map[string]any {
	items := make([]any, 0, len(p.Items))
	for _, item := range p.Items {
		if item.Empty() {
			continue
		}
		items = append(items, map[string]any{
			"group":    item.Group,
			"category": item.Category,
			"type":     string(item.Type),
			"planned":  item.Planned.String(),
		})
	}
	return map[string]any{
		"month": p.Month.String(),
		"items": items,
	}
}
