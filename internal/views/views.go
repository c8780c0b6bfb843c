// Package views holds the controllers behind the dashboard, expense list
// and insights screens. Each one subscribes to the store, keeps a small
// amount of local view state and turns user actions into store commands
// with a user-facing notification for the outcome.
package views

import (
	"context"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/observable"
	"expensetracker/internal/store"
)

// ExpenseStore is the part of *store.Store the controllers use.
type ExpenseStore interface {
	Subscribe(fn func(store.State)) observable.Subscription
	Add(ctx context.Context, draft core.Draft) (core.Expense, error)
	Remove(ctx context.Context, id int64) error
	FetchInsights(ctx context.Context) (string, error)
}

// Notifier is the part of *notify.Queue the controllers use.
type Notifier interface {
	Success(message string) int64
	Error(message string) int64
}

// Option configures any controller.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *log.Logger
}

// WithClock replaces time.Now for dates given to new expenses.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: log.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.WithComponent(log.ComponentViews)
	return o
}
