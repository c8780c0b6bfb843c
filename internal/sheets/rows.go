package sheets

import (
	"strconv"
)

// Header rows of the report blocks.
var (
	CategoryHeader = []any{"Category", "Amount", "Share %"}
	MonthHeader    = []any{"Month", "Amount"}
	ExpenseHeader  = []any{"ID", "Date", "Description", "Category", "Amount"}
)

// Rows lays the report out as spreadsheet rows: a totals block, the
// category breakdown, the monthly trend and finally one row per expense.
// Amounts are fixed two-decimal strings so a spreadsheet reads them as
// numbers.
func Rows(r Report) [][]any {
	rows := [][]any{
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total", r.Summary.Total.StringFixed(2)},
		{"Expenses", len(r.Expenses)},
		{},
		CategoryHeader,
	}
	for _, s := range r.Shares {
		rows = append(rows, []any{s.Category.String(), s.Amount.StringFixed(2), s.Percentage})
	}

	rows = append(rows, []any{}, MonthHeader)
	for _, m := range r.Summary.MonthlyTrend {
		rows = append(rows, []any{m.Month, m.Amount.StringFixed(2)})
	}

	rows = append(rows, []any{}, ExpenseHeader)
	for _, e := range r.Expenses {
		id := ""
		if v, ok := e.Identifier(); ok {
			id = strconv.FormatInt(v, 10)
		}
		rows = append(rows, []any{
			id,
			e.Date.UTC().Format("2006-01-02"),
			e.Description,
			e.Category.String(),
			e.Amount.StringFixed(2),
		})
	}
	return rows
}
