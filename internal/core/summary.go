package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount is an amount aggregated by category.
type CategoryAmount struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthAmount is an amount aggregated by calendar month ("YYYY-MM").
type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// CategoryShare is a category total with its rounded share of the overall total.
type CategoryShare struct {
	Category   Category        `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage int64           `json:"percentage"`
}

// Summary is the set of aggregates derived from one snapshot of expenses.
type Summary struct {
	Total decimal.Decimal `json:"total"`
	// CategoryBreakdown keeps categories in the order they were first seen.
	CategoryBreakdown []CategoryAmount `json:"categoryBreakdown"`
	// MonthlyTrend is sorted ascending by month.
	MonthlyTrend []MonthAmount `json:"monthlyTrend"`
}

// Breakdown returns the category breakdown as a map.
func (s Summary) Breakdown() map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal, len(s.CategoryBreakdown))
	for _, ca := range s.CategoryBreakdown {
		out[ca.Category] = ca.Amount
	}
	return out
}

// MonthKey returns the "YYYY-MM" bucket of t, computed in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
