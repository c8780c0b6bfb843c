package aggregate

import (
	"fmt"
	"strings"

	"expensetracker/internal/core"
)

const noExpensesInsight = "No expenses to analyze. Start adding expenses to get insights!"

// FallbackInsights renders a deterministic, locally computed summary used
// in place of the remote AI insights when those are unavailable.
func FallbackInsights(expenses []core.Expense) string {
	if len(expenses) == 0 {
		return noExpensesInsight
	}

	summary := Summarize(expenses)
	shares := CategoryPercentages(summary.CategoryBreakdown, summary.Total)
	top := strings.ToLower(shares[0].Category.String())
	if top == "" {
		top = strings.ToLower(core.CategoryOther.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your %d expenses totaling %s, here are some insights:\n\n",
		len(expenses), core.FormatAmount(summary.Total))

	b.WriteString("Spending patterns:\n")
	fmt.Fprintf(&b, "- Your largest spending category is %s, accounting for %d%% of your total expenses\n",
		top, shares[0].Percentage)
	fmt.Fprintf(&b, "- You're averaging %s per month in expenses\n\n",
		core.FormatAmount(MonthlyAverage(expenses).Round(2)))

	b.WriteString("Recommendations:\n")
	fmt.Fprintf(&b, "- Consider setting a monthly budget for %s to better control your spending\n", top)
	b.WriteString("- Review recurring expenses and identify any subscriptions you might not be using\n")
	b.WriteString("- Track cash expenses consistently for complete financial visibility\n\n")

	b.WriteString("Small, consistent changes often lead to the biggest financial improvements over time.")
	return b.String()
}
