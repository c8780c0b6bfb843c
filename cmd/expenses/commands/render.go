package commands

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"text/tabwriter"

	"expensetracker/internal/core"
	"expensetracker/internal/notify"
)

// notificationPrinter writes each notification once, when it first appears
// in the queue.
type notificationPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	lastID int64
}

func newNotificationPrinter(w io.Writer) *notificationPrinter {
	return &notificationPrinter{w: w}
}

func (p *notificationPrinter) print(list []notify.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range list {
		if n.ID <= p.lastID {
			continue
		}
		p.lastID = n.ID
		fmt.Fprintf(p.w, "%s %s\n", notificationIcon(n.Type), n.Message)
	}
}

func notificationIcon(t notify.Type) string {
	switch t {
	case notify.Success:
		return "✓"
	case notify.Error:
		return "✗"
	case notify.Warning:
		return "!"
	default:
		return "i"
	}
}

func printExpenses(w io.Writer, expenses []core.Expense) {
	if len(expenses) == 0 {
		fmt.Fprintln(w, "No expenses found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, e := range expenses {
		id := "-"
		if v, ok := e.Identifier(); ok {
			id = strconv.FormatInt(v, 10)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			id, e.Date.UTC().Format("2006-01-02"), e.Category, core.FormatAmount(e.Amount), e.Description)
	}
	_ = tw.Flush()
}

func printShares(w io.Writer, shares []core.CategoryShare) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tSHARE")
	for _, s := range shares {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\n", s.Category, core.FormatAmount(s.Amount), s.Percentage)
	}
	_ = tw.Flush()
}

func printTrend(w io.Writer, trend []core.MonthAmount) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tAMOUNT")
	for _, m := range trend {
		fmt.Fprintf(tw, "%s\t%s\n", m.Month, core.FormatAmount(m.Amount))
	}
	_ = tw.Flush()
}
