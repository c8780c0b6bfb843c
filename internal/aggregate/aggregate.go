// Package aggregate derives statistics from a snapshot of expenses.
//
// Every function is pure: it reads the slice it is given, never retains or
// mutates it, and returns zero values for empty input instead of errors.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

const averagingPeriod = 30 * 24 * time.Hour

var hundred = decimal.NewFromInt(100)

// Total returns the sum of all amounts.
func Total(expenses []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// CategoryBreakdown sums amounts per category. Categories appear in the
// order they are first seen; categories without expenses are absent.
func CategoryBreakdown(expenses []core.Expense) []core.CategoryAmount {
	if len(expenses) == 0 {
		return nil
	}
	index := make(map[core.Category]int)
	var out []core.CategoryAmount
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategoryAmount{Category: e.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// MonthlyTrend sums amounts per "YYYY-MM" month, ascending by month.
func MonthlyTrend(expenses []core.Expense) []core.MonthAmount {
	if len(expenses) == 0 {
		return nil
	}
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := core.MonthKey(e.Date)
		prev, ok := sums[key]
		if !ok {
			prev = decimal.Zero
		}
		sums[key] = prev.Add(e.Amount)
	}
	out := make([]core.MonthAmount, 0, len(sums))
	for month, amount := range sums {
		out = append(out, core.MonthAmount{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Summarize computes the total, category breakdown and monthly trend.
func Summarize(expenses []core.Expense) core.Summary {
	return core.Summary{
		Total:             Total(expenses),
		CategoryBreakdown: CategoryBreakdown(expenses),
		MonthlyTrend:      MonthlyTrend(expenses),
	}
}

// CategoryPercentages rounds each category's share of total to a whole
// percent (half-up). The result is ordered by amount, largest first, keeping
// the breakdown order for equal amounts. All shares are 0 when total is not
// positive.
func CategoryPercentages(breakdown []core.CategoryAmount, total decimal.Decimal) []core.CategoryShare {
	if len(breakdown) == 0 {
		return nil
	}
	out := make([]core.CategoryShare, len(breakdown))
	for i, ca := range breakdown {
		var pct int64
		if total.IsPositive() {
			pct = ca.Amount.Div(total).Mul(hundred).Round(0).IntPart()
		}
		out[i] = core.CategoryShare{Category: ca.Category, Amount: ca.Amount, Percentage: pct}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// TopCategory returns the category with the largest total, or "" when there
// are no expenses. Equal totals resolve to the category seen first.
func TopCategory(expenses []core.Expense) core.Category {
	var (
		top  core.Category
		best decimal.Decimal
		set  bool
	)
	for _, ca := range CategoryBreakdown(expenses) {
		if !set || ca.Amount.GreaterThan(best) {
			top, best, set = ca.Category, ca.Amount, true
		}
	}
	return top
}

// MonthlyAverage divides the total by the number of whole 30-day periods
// between the earliest and latest expense, with a divisor of at least 1.
// With fewer than two expenses it is the total.
func MonthlyAverage(expenses []core.Expense) decimal.Decimal {
	total := Total(expenses)
	if len(expenses) < 2 {
		return total
	}
	earliest, latest := expenses[0].Date, expenses[0].Date
	for _, e := range expenses[1:] {
		if e.Date.Before(earliest) {
			earliest = e.Date
		}
		if e.Date.After(latest) {
			latest = e.Date
		}
	}
	periods := int64(latest.Sub(earliest) / averagingPeriod)
	if periods < 1 {
		periods = 1
	}
	return total.Div(decimal.NewFromInt(periods))
}

// AverageExpense is the mean amount per expense, 0 for no expenses.
func AverageExpense(expenses []core.Expense) decimal.Decimal {
	if len(expenses) == 0 {
		return decimal.Zero
	}
	return Total(expenses).Div(decimal.NewFromInt(int64(len(expenses))))
}

// Recent returns up to n expenses, newest first.
func Recent(expenses []core.Expense, n int) []core.Expense {
	if n <= 0 || len(expenses) == 0 {
		return nil
	}
	out := append([]core.Expense(nil), expenses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Categories returns the distinct categories present, sorted.
func Categories(expenses []core.Expense) []core.Category {
	seen := make(map[core.Category]struct{})
	var out []core.Category
	for _, e := range expenses {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
