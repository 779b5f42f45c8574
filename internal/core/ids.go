package core

import "fmt"

// Generated-transaction id prefixes, one per automated source. Ids derive
// only from the source entity and the concrete date or target month, so
// re-materialization upserts the same document instead of appending a
// duplicate. No duplicate-detection query is ever needed.
const (
	recurringIDPrefix = "rec"
	billIDPrefix      = "bill"
	debtIDPrefix      = "debt"
	fundIDPrefix      = "fund"
)

// RecurringTransactionID identifies the transaction a recurring rule
// produces on a concrete date.
func RecurringTransactionID(ruleID string, date Date) string {
	return fmt.Sprintf("%s-%s-%s", recurringIDPrefix, ruleID, date)
}

// BillTransactionID identifies the transaction a bill produces on its due
// date.
func BillTransactionID(billID string, date Date) string {
	return fmt.Sprintf("%s-%s-%s", billIDPrefix, billID, date)
}

// DebtTransactionID identifies the single payment a debt may record in a
// target month. Keying by month, not date, is what makes a second payment
// attempt in the same month collide with the first.
func DebtTransactionID(debtID string, month Month) string {
	return fmt.Sprintf("%s-%s-%s", debtIDPrefix, debtID, month)
}

// FundTransactionID identifies a fund contribution. The key includes both
// the target month and the contribution date, so contributions made on the
// same calendar day collapse into one document.
func FundTransactionID(fundID string, month Month, date Date) string {
	return fmt.Sprintf("%s-%s-%s-%s", fundIDPrefix, fundID, month, date)
}
