package aggregate

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func exp(id int64, amount string, category core.Category, date time.Time) core.Expense {
	return core.Expense{
		ID:          core.NewID(id),
		Description: "item",
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Category:    category,
	}
}

func TestSummarize_FoodAndRent(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "50", "FOOD", day(2024, 1, 5)),
		exp(2, "150", "RENT", day(2024, 1, 6)),
	}

	s := Summarize(expenses)

	assert.True(t, s.Total.Equal(decimal.NewFromInt(200)), "total = %s", s.Total)
	breakdown := s.Breakdown()
	require.Len(t, breakdown, 2)
	assert.True(t, breakdown["FOOD"].Equal(decimal.NewFromInt(50)))
	assert.True(t, breakdown["RENT"].Equal(decimal.NewFromInt(150)))
	assert.Equal(t, core.Category("RENT"), TopCategory(expenses))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.True(t, s.Total.IsZero())
	assert.Empty(t, s.CategoryBreakdown)
	assert.Empty(t, s.MonthlyTrend)
	assert.Equal(t, core.Category(""), TopCategory(nil))
	assert.True(t, MonthlyAverage(nil).IsZero())
	assert.True(t, AverageExpense(nil).IsZero())
	assert.Empty(t, CategoryPercentages(nil, decimal.Zero))
}

func TestSummarize_TotalMatchesBreakdownAndOrderIndependent(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "10.10", "FOOD", day(2024, 2, 1)),
		exp(2, "0.20", "OTHER", day(2024, 1, 3)),
		exp(3, "33.33", "FOOD", day(2023, 12, 31)),
		exp(4, "0", "HEALTH", day(2024, 2, 9)),
		exp(5, "99.99", "BILLS", day(2024, 1, 15)),
	}
	reversed := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		reversed[len(expenses)-1-i] = e
	}

	s := Summarize(expenses)
	r := Summarize(reversed)

	assert.True(t, s.Total.Equal(decimal.RequireFromString("143.62")))
	assert.True(t, s.Total.Equal(r.Total))

	sum := decimal.Zero
	for _, ca := range s.CategoryBreakdown {
		sum = sum.Add(ca.Amount)
	}
	assert.True(t, sum.Equal(s.Total))

	trendSum := decimal.Zero
	for _, m := range s.MonthlyTrend {
		trendSum = trendSum.Add(m.Amount)
	}
	assert.True(t, trendSum.Equal(s.Total))
}

func TestCategoryBreakdown_FirstSeenOrder(t *testing.T) {
	got := CategoryBreakdown([]core.Expense{
		exp(1, "1", "B", day(2024, 1, 1)),
		exp(2, "1", "A", day(2024, 1, 1)),
		exp(3, "1", "B", day(2024, 1, 1)),
	})

	require.Len(t, got, 2)
	assert.Equal(t, core.Category("B"), got[0].Category)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, core.Category("A"), got[1].Category)
}

func TestMonthlyTrend_SortedAscending(t *testing.T) {
	got := MonthlyTrend([]core.Expense{
		exp(1, "5", "FOOD", day(2024, 3, 2)),
		exp(2, "7", "FOOD", day(2023, 11, 20)),
		exp(3, "1", "FOOD", day(2024, 3, 28)),
		exp(4, "2", "FOOD", day(2024, 1, 1)),
	})

	months := make([]string, len(got))
	for i, m := range got {
		months[i] = m.Month
	}
	assert.Equal(t, []string{"2023-11", "2024-01", "2024-03"}, months)
	assert.True(t, got[2].Amount.Equal(decimal.NewFromInt(6)))
}

func TestCategoryPercentages(t *testing.T) {
	breakdown := []core.CategoryAmount{
		{Category: "A", Amount: decimal.NewFromInt(1)},
		{Category: "B", Amount: decimal.NewFromInt(1)},
		{Category: "C", Amount: decimal.NewFromInt(1)},
		{Category: "D", Amount: decimal.NewFromInt(5)},
	}
	total := decimal.NewFromInt(8)

	got := CategoryPercentages(breakdown, total)

	require.Len(t, got, 4)
	assert.Equal(t, core.Category("D"), got[0].Category)
	assert.Equal(t, int64(63), got[0].Percentage) // 62.5 rounds half-up
	// equal amounts keep breakdown order
	assert.Equal(t, []core.Category{"A", "B", "C"}, []core.Category{got[1].Category, got[2].Category, got[3].Category})
	assert.Equal(t, int64(13), got[1].Percentage)

	var sum int64
	for _, s := range got {
		sum += s.Percentage
	}
	assert.InDelta(t, 100, sum, float64(len(got)))
}

func TestCategoryPercentages_ZeroTotal(t *testing.T) {
	got := CategoryPercentages([]core.CategoryAmount{
		{Category: "A", Amount: decimal.Zero},
		{Category: "B", Amount: decimal.Zero},
	}, decimal.Zero)

	for _, s := range got {
		assert.Zero(t, s.Percentage)
	}
}

func TestTopCategory_TieKeepsFirstSeen(t *testing.T) {
	got := TopCategory([]core.Expense{
		exp(1, "10", "SHOPPING", day(2024, 1, 1)),
		exp(2, "10", "FOOD", day(2024, 1, 2)),
	})
	assert.Equal(t, core.Category("SHOPPING"), got)
}

func TestMonthlyAverage(t *testing.T) {
	tests := []struct {
		name     string
		expenses []core.Expense
		want     string
	}{
		{
			name:     "single expense is the total",
			expenses: []core.Expense{exp(1, "42", "FOOD", day(2024, 1, 1))},
			want:     "42",
		},
		{
			name: "span shorter than a period divides by one",
			expenses: []core.Expense{
				exp(1, "10", "FOOD", day(2024, 1, 1)),
				exp(2, "20", "FOOD", day(2024, 1, 20)),
			},
			want: "30",
		},
		{
			name: "two whole periods",
			expenses: []core.Expense{
				exp(1, "90", "FOOD", day(2024, 3, 10)),
				exp(2, "30", "FOOD", day(2024, 1, 1)),
				exp(3, "0", "FOOD", day(2024, 2, 1)),
			},
			want: "60",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyAverage(tt.expenses)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestRecentAndCategories(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "1", "FOOD", day(2024, 1, 1)),
		exp(2, "1", "BILLS", day(2024, 1, 3)),
		exp(3, "1", "FOOD", day(2024, 1, 2)),
	}

	recent := Recent(expenses, 2)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].HasID(2))
	assert.True(t, recent[1].HasID(3))
	assert.True(t, expenses[0].HasID(1), "input must not be reordered")

	assert.Equal(t, []core.Category{"BILLS", "FOOD"}, Categories(expenses))
	assert.True(t, AverageExpense(expenses).Equal(decimal.NewFromInt(1)))
}

func TestFallbackInsights(t *testing.T) {
	assert.Equal(t, noExpensesInsight, FallbackInsights(nil))

	text := FallbackInsights([]core.Expense{
		exp(1, "50", "FOOD", day(2024, 1, 5)),
		exp(2, "150", "RENT", day(2024, 1, 6)),
	})
	assert.True(t, strings.HasPrefix(text, "Based on your 2 expenses totaling $200.00"))
	assert.Contains(t, text, "largest spending category is rent, accounting for 75%")
	assert.Contains(t, text, "averaging $200.00 per month")
}
