package views

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/observable"
	"expensetracker/internal/store"
)

// InsightsCache remembers insight text per store version.
// *cache.Insights satisfies it.
type InsightsCache interface {
	Get(version uint64) (string, bool)
	Set(version uint64, text string)
	Invalidate(version uint64)
}

// InsightsModel is what the insights screen renders.
type InsightsModel struct {
	Text string
	// Demo is set when Text is the local fallback rather than remote output.
	Demo           bool
	Generating     bool
	ExpenseCount   int
	Total          decimal.Decimal
	MonthlyAverage decimal.Decimal
	TopCategory    core.Category
	Distribution   []core.CategoryShare
}

type Insights struct {
	store    ExpenseStore
	notifier Notifier
	cache    InsightsCache
	opts     options

	mu    sync.Mutex
	state store.State
	model InsightsModel
	sub   observable.Subscription
}

// NewInsights subscribes an insights controller to s. cache may be nil.
func NewInsights(s ExpenseStore, n Notifier, cache InsightsCache, opts ...Option) *Insights {
	in := &Insights{
		store:    s,
		notifier: n,
		cache:    cache,
		opts:     buildOptions(opts),
	}
	in.sub = s.Subscribe(in.update)
	return in
}

func (in *Insights) update(st store.State) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.state = st
	in.model.ExpenseCount = len(st.Expenses)
	in.model.Total = st.Summary.Total
	in.model.MonthlyAverage = aggregate.MonthlyAverage(st.Expenses)
	in.model.TopCategory = aggregate.TopCategory(st.Expenses)
	in.model.Distribution = aggregate.CategoryPercentages(st.Summary.CategoryBreakdown, st.Summary.Total)
}

// Model returns the current insights screen contents.
func (in *Insights) Model() InsightsModel {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.model
}

// Generate shows insight text for the current expenses. Remote text is
// cached per store version. When the remote call fails the local fallback
// text is shown and returned together with the error.
func (in *Insights) Generate(ctx context.Context) (string, error) {
	in.mu.Lock()
	st := in.state
	in.model.Generating = true
	in.mu.Unlock()

	if in.cache != nil {
		if text, ok := in.cache.Get(st.Version); ok {
			in.finish(text, false)
			in.notifier.Success("AI insights generated successfully!")
			return text, nil
		}
	}

	text, err := in.store.FetchInsights(ctx)
	if err != nil {
		fallback := aggregate.FallbackInsights(st.Expenses)
		in.finish(fallback, true)
		in.opts.logger.Warn("Remote insights unavailable, using fallback",
			log.FieldOperation, log.OpInsights,
			log.FieldVersion, st.Version,
			log.FieldError, err.Error())
		in.notifier.Error("Using demo insights (AI service unavailable)")
		return fallback, err
	}

	if in.cache != nil {
		in.cache.Set(st.Version, text)
	}
	in.finish(text, false)
	in.notifier.Success("AI insights generated successfully!")
	return text, nil
}

// Regenerate discards the shown and cached text and asks the server again.
func (in *Insights) Regenerate(ctx context.Context) (string, error) {
	in.mu.Lock()
	in.model.Text = ""
	in.model.Demo = false
	version := in.state.Version
	in.mu.Unlock()

	if in.cache != nil {
		in.cache.Invalidate(version)
	}
	return in.Generate(ctx)
}

// Close stops following the store.
func (in *Insights) Close() {
	in.sub.Unsubscribe()
}

func (in *Insights) finish(text string, demo bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.model.Text = text
	in.model.Demo = demo
	in.model.Generating = false
}
