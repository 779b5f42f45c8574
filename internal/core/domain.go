package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	LogMaintenance LogType = "maintenance"
	LogAccessory   LogType = "accessory"
)

type (
	// TxType classifies transactions, categories, plan items and
	// recurring rules as income or expense.
	TxType string

	// LogType distinguishes maintenance work from accessory purchases in
	// the vehicle log.
	LogType string

	// Settings is the per-user singleton configuration document.
	Settings struct {
		CutoffDay int `json:"cutoffDay"`
	}

	Category struct {
		ID    string `json:"id"`
		Group string `json:"group"`
		Name  string `json:"name"`
		Type  TxType `json:"type"`
	}

	// RecurringRule materializes into one transaction per covered month.
	// A zero EndMonth leaves the rule open-ended.
	RecurringRule struct {
		ID         string          `json:"id"`
		Type       TxType          `json:"type"`
		Group      string          `json:"group"`
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		DayOfMonth int             `json:"dayOfMonth"`
		StartMonth Month           `json:"startMonth"`
		EndMonth   Month           `json:"endMonth"`
		Active     bool            `json:"active"`
	}

	Bill struct {
		ID     string          `json:"id"`
		Name   string          `json:"name"`
		Group  string          `json:"group"`
		Amount decimal.Decimal `json:"amount"`
		DueDay int             `json:"dueDay"`
		Active bool            `json:"active"`
	}

	// BillStatus tracks whether one bill was paid in one month. There is
	// at most one status document per (bill, month) pair.
	BillStatus struct {
		BillID   string `json:"billId"`
		Month    Month  `json:"month"`
		Paid     bool   `json:"paid"`
		PaidDate Date   `json:"paidDate"`
	}

	Debt struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Type           string          `json:"type"`
		APR            decimal.Decimal `json:"apr"`
		CurrentBalance decimal.Decimal `json:"currentBalance"`
		MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
		DueDay         int             `json:"dueDay"`
		LastPaidMonth  Month           `json:"lastPaidMonth"`
	}

	// Fund is a sinking fund: savings accumulated toward GoalAmount by
	// TargetMonth.
	Fund struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		GoalAmount   decimal.Decimal `json:"goalAmount"`
		TargetMonth  Month           `json:"targetMonth"`
		CurrentSaved decimal.Decimal `json:"currentSaved"`
	}

	Vehicle struct {
		ID                    string `json:"id"`
		Name                  string `json:"name"`
		Plate                 string `json:"plate"`
		CurrentMileage        int    `json:"currentMileage"`
		ServiceIntervalKm     int    `json:"serviceIntervalKm"`
		ServiceIntervalMonths int    `json:"serviceIntervalMonths"`
	}

	// MaintenanceItem is the per-(vehicle, item) service schedule. Zero
	// LastDoneMileage and zero LastDoneDate mean the item has never been
	// logged.
	MaintenanceItem struct {
		VehicleID       string `json:"vehicleId"`
		Code            string `json:"code"`
		Name            string `json:"name"`
		IntervalKm      int    `json:"intervalKm"`
		IntervalMonths  int    `json:"intervalMonths"`
		LastDoneMileage int    `json:"lastDoneMileage"`
		LastDoneDate    Date   `json:"lastDoneDate"`
	}

	MaintenanceLog struct {
		ID          string          `json:"id"`
		VehicleID   string          `json:"vehicleId"`
		Date        Date            `json:"date"`
		Mileage     int             `json:"mileage"`
		ServiceType string          `json:"serviceType"`
		Quantity    decimal.Decimal `json:"quantity"`
		Cost        decimal.Decimal `json:"cost"`
		ItemCode    string          `json:"itemCode,omitempty"`
		LogType     LogType         `json:"logType"`
	}

	// Transaction is a dated money movement. EffectiveMonth is always
	// recomputed from Date and the current cutoff day, never entered
	// directly. Generated transactions carry provenance back to their
	// source entity and use deterministic ids (see ids.go).
	Transaction struct {
		ID             string          `json:"id"`
		Date           Date            `json:"date"`
		Type           TxType          `json:"type"`
		Group          string          `json:"group"`
		Category       string          `json:"category"`
		Description    string          `json:"description"`
		Amount         decimal.Decimal `json:"amount"`
		EffectiveMonth Month           `json:"effectiveMonth"`

		IsRecurring        bool      `json:"isRecurring,omitempty"`
		IsBill             bool      `json:"isBill,omitempty"`
		IsDebtPayment      bool      `json:"isDebtPayment,omitempty"`
		IsFundContribution bool      `json:"isFundContribution,omitempty"`
		IsVehicle          bool      `json:"isVehicle,omitempty"`
		RecurringID        string    `json:"recurringId,omitempty"`
		BillID             string    `json:"billId,omitempty"`
		DebtID             string    `json:"debtId,omitempty"`
		FundID             string    `json:"fundId,omitempty"`
		VehicleID          string    `json:"vehicleId,omitempty"`
		SourceMonth        Month     `json:"sourceMonth"`
		GeneratedAt        time.Time `json:"generatedAt"`

		// Amortization audit fields, set on debt payments only.
		Interest     decimal.Decimal `json:"interest"`
		Principal    decimal.Decimal `json:"principal"`
		BalanceAfter decimal.Decimal `json:"balanceAfter"`

		UpdatedAt time.Time `json:"updatedAt"`
	}

	// PlanItem is one budget line inside a month's plan. Items live only
	// inside their Plan document and have no id of their own.
	PlanItem struct {
		Group    string          `json:"group"`
		Category string          `json:"category"`
		Type     TxType          `json:"type"`
		Planned  decimal.Decimal `json:"planned"`
	}

	Plan struct {
		Month Month      `json:"month"`
		Items []PlanItem `json:"items"`
	}
)

var (
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidMileage = errors.New("invalid mileage")
)

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// NormalizeTxType coerces a stored type string, defaulting anything
// unknown to expense so malformed documents degrade instead of crashing
// aggregation.
func NormalizeTxType(s string) TxType {
	if TxType(strings.ToLower(strings.TrimSpace(s))) == Income {
		return Income
	}
	return Expense
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(r.Category) == "" && strings.TrimSpace(r.Group) == "" {
		return fmt.Errorf("%w: recurring rule needs a group or category", ErrEmptyName)
	}
	if r.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := r.StartMonth.Validate(); err != nil {
		return fmt.Errorf("invalid start month: %w", err)
	}
	if !r.EndMonth.IsZero() && r.EndMonth.Time.Before(r.StartMonth.Time) {
		return fmt.Errorf("%w: end month before start month", ErrInvalidMonth)
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.APR.Sign() < 0 {
		return fmt.Errorf("%w: negative apr", ErrInvalidAmount)
	}
	if d.CurrentBalance.Sign() < 0 {
		return fmt.Errorf("%w: negative balance", ErrInvalidAmount)
	}
	if d.MonthlyPayment.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (f Fund) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.GoalAmount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := f.TargetMonth.Validate(); err != nil {
		return fmt.Errorf("invalid target month: %w", err)
	}
	return nil
}

// MonthlyNeeded suggests how much to set aside per month to reach the
// goal by the target month. The current month counts as a contribution
// opportunity, as does the target month itself; a target in the past
// collapses the window to a single month.
func (f Fund) MonthlyNeeded(current Month) decimal.Decimal {
	remaining := NonNegative(f.GoalAmount.Sub(f.CurrentSaved))
	months := MonthsBetween(current, f.TargetMonth) + 1
	if months < 1 {
		months = 1
	}
	return Round2(remaining.Div(decimal.NewFromInt(int64(months))))
}

func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return ErrEmptyName
	}
	if v.CurrentMileage < 0 {
		return ErrInvalidMileage
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p PlanItem) Validate() error {
	if !p.Type.Valid() {
		return ErrInvalidType
	}
	if p.Planned.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Empty reports whether a plan item carries neither group nor category.
// Empty items are dropped when a plan is saved.
func (p PlanItem) Empty() bool {
	return strings.TrimSpace(p.Group) == "" && strings.TrimSpace(p.Category) == ""
}
