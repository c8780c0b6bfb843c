package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/observable"
	"expensetracker/internal/store"
)

// RecentLimit is how many expenses the dashboard lists.
const RecentLimit = 5

// DefaultSampleConcurrency bounds LoadSampleData when no limit is given.
const DefaultSampleConcurrency = 2

type sample struct {
	description string
	amount      string
}

// Sample expenses offered to an empty dashboard. The backend categorizes
// them.
var samples = []sample{
	{"Groceries at Whole Foods", "85.50"},
	{"Uber ride to work", "25.75"},
	{"Netflix subscription", "15.99"},
	{"Electricity bill", "120.00"},
	{"Dinner at Italian restaurant", "65.80"},
}

// DashboardModel is what the dashboard renders.
type DashboardModel struct {
	ExpenseCount   int
	Total          decimal.Decimal
	AverageExpense decimal.Decimal
	Recent         []core.Expense
	Categories     []core.CategoryShare
	MonthlyTrend   []core.MonthAmount
	LoadingSample  bool
}

type Dashboard struct {
	store       ExpenseStore
	notifier    Notifier
	concurrency int
	opts        options

	mu    sync.Mutex
	model DashboardModel
	sub   observable.Subscription
}

// NewDashboard subscribes a dashboard to s. concurrency bounds the number
// of sample expenses created at once.
func NewDashboard(s ExpenseStore, n Notifier, concurrency int, opts ...Option) *Dashboard {
	if concurrency < 1 {
		concurrency = DefaultSampleConcurrency
	}
	d := &Dashboard{
		store:       s,
		notifier:    n,
		concurrency: concurrency,
		opts:        buildOptions(opts),
	}
	d.sub = s.Subscribe(d.update)
	return d
}

func (d *Dashboard) update(st store.State) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.model.ExpenseCount = len(st.Expenses)
	d.model.Total = st.Summary.Total
	d.model.AverageExpense = aggregate.AverageExpense(st.Expenses)
	d.model.Recent = aggregate.Recent(st.Expenses, RecentLimit)
	d.model.Categories = aggregate.CategoryPercentages(st.Summary.CategoryBreakdown, st.Summary.Total)
	d.model.MonthlyTrend = st.Summary.MonthlyTrend
}

// Model returns the current dashboard contents.
func (d *Dashboard) Model() DashboardModel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model
}

// LoadSampleData creates the sample expenses, a few at a time, and reports
// one notification for the batch.
func (d *Dashboard) LoadSampleData(ctx context.Context) error {
	d.setLoading(true)
	defer d.setLoading(false)

	now := d.opts.now()
	// One failed add leaves the others running.
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for _, smp := range samples {
		amount := decimal.RequireFromString(smp.amount)
		draft := core.NewDraft(smp.description, amount, now)
		g.Go(func() error {
			_, err := d.store.Add(ctx, draft)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		d.opts.logger.Error("Sample data load failed",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err.Error())
		d.notifier.Error("Failed to load sample data")
		return fmt.Errorf("load sample data: %w", err)
	}

	d.opts.logger.Info("Sample data loaded", log.FieldCount, len(samples))
	d.notifier.Success("Sample data loaded successfully!")
	return nil
}

// Close stops following the store.
func (d *Dashboard) Close() {
	d.sub.Unsubscribe()
}

func (d *Dashboard) setLoading(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.model.LoadingSample = v
}
