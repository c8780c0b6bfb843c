package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Accepted date layouts, tried in order. The backend emits LocalDateTime
// values without a zone; those are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

const wireDateLayout = "2006-01-02T15:04:05.000Z07:00"

type expenseJSON struct {
	ID          *int64      `json:"id,omitempty"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	AIInsights  *string     `json:"aiInsights,omitempty"`
}

type draftJSON struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Category    string      `json:"category"`
}

// ParseDate parses an ISO-8601 date or date-time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidDate)
}

// FormatDate renders t in UTC with millisecond precision.
func FormatDate(t time.Time) string {
	return t.UTC().Format(wireDateLayout)
}

func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Amount:      json.Number(e.Amount.String()),
		Date:        FormatDate(e.Date),
		Category:    string(e.Category),
		AIInsights:  e.AIInsights,
	})
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", raw.Amount, ErrInvalidAmount)
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return err
	}
	*e = Expense{
		ID:          raw.ID,
		Description: raw.Description,
		Amount:      amount,
		Date:        date,
		Category:    Category(raw.Category),
		AIInsights:  raw.AIInsights,
	}
	return e.Validate()
}

func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(draftJSON{
		Description: d.Description,
		Amount:      json.Number(d.Amount.String()),
		Date:        FormatDate(d.Date),
		Category:    string(d.Category),
	})
}
