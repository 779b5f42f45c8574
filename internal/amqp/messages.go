package amqp

import (
	"encoding/json"
	"time"
)

// Apply reasons carried on ApplyMonthMessage. The worker logs them and the
// report cache uses cutoff-change to drop every cached month instead of one.
const (
	ReasonMonthSwitch  = "month-switch"
	ReasonRuleChange   = "rule-change"
	ReasonCutoffChange = "cutoff-change"
	ReasonManual       = "manual"
)

// ApplyMonthMessage asks the worker to materialize recurring transactions
// for one accounting month. It carries only the month and the reason, the
// worker reads everything else from the store.
type ApplyMonthMessage struct {
	Month       string    `json:"month"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewApplyMonthMessage creates an apply request for the given month.
func NewApplyMonthMessage(month, reason string) *ApplyMonthMessage {
	return &ApplyMonthMessage{
		Month:       month,
		Reason:      reason,
		RequestedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ApplyMonthMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ApplyMonthMessageFromJSON creates a message from JSON bytes
func ApplyMonthMessageFromJSON(data []byte) (*ApplyMonthMessage, error) {
	var msg ApplyMonthMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
