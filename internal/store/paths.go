package store

// Paths lays out the logical document tree for one user. Every collection
// hangs off the user prefix, so a backend could hold several users' data
// even though the service itself runs single-user.
type Paths struct {
	userID string
}

func NewPaths(userID string) Paths {
	return Paths{userID: userID}
}

func (p Paths) user() string {
	return "users/" + p.userID
}

// Settings is the per-user singleton settings document.
func (p Paths) Settings() string { return p.user() + "/settings/main" }

func (p Paths) Transactions() string         { return p.user() + "/transactions" }
func (p Paths) Transaction(id string) string { return p.Transactions() + "/" + id }

// Plans are keyed directly by accounting month (YYYY-MM).
func (p Paths) Plans() string            { return p.user() + "/plans" }
func (p Paths) Plan(month string) string { return p.Plans() + "/" + month }

func (p Paths) Categories() string        { return p.user() + "/categories" }
func (p Paths) Category(id string) string { return p.Categories() + "/" + id }

func (p Paths) RecurringRules() string         { return p.user() + "/recurring" }
func (p Paths) RecurringRule(id string) string { return p.RecurringRules() + "/" + id }

func (p Paths) Bills() string         { return p.user() + "/bills" }
func (p Paths) Bill(id string) string { return p.Bills() + "/" + id }

// BillStatuses holds one paid-state document per (bill, month).
func (p Paths) BillStatuses() string { return p.user() + "/billStatus" }
func (p Paths) BillStatus(billID, month string) string {
	return p.BillStatuses() + "/" + billID + "-" + month
}

func (p Paths) Debts() string         { return p.user() + "/debts" }
func (p Paths) Debt(id string) string { return p.Debts() + "/" + id }

func (p Paths) Funds() string         { return p.user() + "/funds" }
func (p Paths) Fund(id string) string { return p.Funds() + "/" + id }

func (p Paths) Vehicles() string         { return p.user() + "/vehicles" }
func (p Paths) Vehicle(id string) string { return p.Vehicles() + "/" + id }

// Maintenance items are a subcollection under their vehicle, keyed by
// item code.
func (p Paths) MaintenanceItems(vehicleID string) string {
	return p.Vehicle(vehicleID) + "/maintenance"
}
func (p Paths) MaintenanceItem(vehicleID, code string) string {
	return p.MaintenanceItems(vehicleID) + "/" + code
}

func (p Paths) MaintenanceLogs() string         { return p.user() + "/maintenanceLogs" }
func (p Paths) MaintenanceLog(id string) string { return p.MaintenanceLogs() + "/" + id }
