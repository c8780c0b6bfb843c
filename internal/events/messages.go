package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/store"
)

// ChangeEvent is the message relayed for every published store State.
// It carries the change and the resulting totals, not the collection.
type ChangeEvent struct {
	Kind      string          `json:"kind"`
	ExpenseID *int64          `json:"expenseId,omitempty"`
	Version   uint64          `json:"version"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewChangeEvent describes st as of now.
func NewChangeEvent(st store.State, now time.Time) ChangeEvent {
	return ChangeEvent{
		Kind:      string(st.Change.Kind),
		ExpenseID: st.Change.ExpenseID,
		Version:   st.Version,
		Count:     len(st.Expenses),
		Total:     st.Summary.Total,
		Timestamp: now.UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes an event produced by ToJSON.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, err
	}
	return ev, nil
}
