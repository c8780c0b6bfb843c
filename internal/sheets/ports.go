// Package sheets turns a store snapshot into a tabular report and defines
// the port that report exporters implement.
package sheets

import (
	"context"
	"time"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/core"
)

// Ports for outbound adapters.
type (
	// Exporter writes a report somewhere and returns a reference to it.
	Exporter interface {
		Export(ctx context.Context, r Report) (ref string, err error)
	}
)

// Report is everything an export contains.
type Report struct {
	GeneratedAt time.Time
	Expenses    []core.Expense
	Summary     core.Summary
	Shares      []core.CategoryShare
}

// NewReport builds a report from a collection.
func NewReport(expenses []core.Expense, now time.Time) Report {
	summary := aggregate.Summarize(expenses)
	return Report{
		GeneratedAt: now.UTC(),
		Expenses:    append([]core.Expense(nil), expenses...),
		Summary:     summary,
		Shares:      aggregate.CategoryPercentages(summary.CategoryBreakdown, summary.Total),
	}
}
