// Package store holds the session's authoritative expense collection and
// publishes it, together with its derived summary, on every change.
package store

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/observable"
)

// ChangeKind names the command that produced a State.
type ChangeKind string

const (
	ChangeInitial ChangeKind = ""
	ChangeLoaded  ChangeKind = "loaded"
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
)

// Change describes the mutation behind a State. ExpenseID is set for adds
// and removes.
type Change struct {
	Kind      ChangeKind
	ExpenseID *int64
}

// State is one published snapshot. Expenses and Summary always describe the
// same collection. Receivers must treat it as read-only.
type State struct {
	Version  uint64
	Expenses []core.Expense
	Summary  core.Summary
	Change   Change
}

// Gateway is the remote side of the store's commands.
type Gateway interface {
	List(ctx context.Context) ([]core.Expense, error)
	Create(ctx context.Context, draft core.Draft) (core.Expense, error)
	Delete(ctx context.Context, id int64) error
	Insights(ctx context.Context) (string, error)
}

// Store is the Expense Store. Commands may run concurrently; their network
// calls are not serialized, but each result is applied and published as one
// step, so the last response to arrive determines the final collection.
//
// Subscribers are called synchronously and must not issue store commands
// from inside the callback.
type Store struct {
	gateway Gateway
	logger  *log.Logger

	mu      sync.Mutex
	subject *observable.Subject[State]
}

// New creates an empty store. A nil logger discards output.
func New(gateway Gateway, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Nop()
	}
	return &Store{
		gateway: gateway,
		logger:  logger.WithComponent(log.ComponentStore),
		subject: observable.NewSubject(State{Summary: aggregate.Summarize(nil)}),
	}
}

// Load replaces the collection with the server's. On failure the held
// collection is left untouched.
func (s *Store) Load(ctx context.Context) error {
	expenses, err := s.gateway.List(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	s.apply(Change{Kind: ChangeLoaded}, func([]core.Expense) []core.Expense {
		return append([]core.Expense(nil), expenses...)
	})
	return nil
}

// Add creates draft on the server and appends the returned record. Drafts
// are expected to be validated by the caller.
func (s *Store) Add(ctx context.Context, draft core.Draft) (core.Expense, error) {
	created, err := s.gateway.Create(ctx, draft)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	s.apply(Change{Kind: ChangeAdded, ExpenseID: created.ID}, func(current []core.Expense) []core.Expense {
		next := make([]core.Expense, 0, len(current)+1)
		next = append(next, current...)
		return append(next, created)
	})
	return created, nil
}

// Remove deletes id on the server and drops the matching record, if held.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove expense %d: %w", id, err)
	}

	s.apply(Change{Kind: ChangeRemoved, ExpenseID: core.NewID(id)}, func(current []core.Expense) []core.Expense {
		next := make([]core.Expense, 0, len(current))
		for _, e := range current {
			if !e.HasID(id) {
				next = append(next, e)
			}
		}
		return next
	})
	return nil
}

// FetchInsights asks the server for insight text. It never changes the
// collection.
func (s *Store) FetchInsights(ctx context.Context) (string, error) {
	text, err := s.gateway.Insights(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch insights: %w", err)
	}
	return text, nil
}

// Snapshot returns the latest published State.
func (s *Store) Snapshot() State {
	return s.subject.Value()
}

// Expenses returns a copy of the held collection.
func (s *Store) Expenses() []core.Expense {
	return append([]core.Expense(nil), s.subject.Value().Expenses...)
}

// Summary returns the summary of the held collection.
func (s *Store) Summary() core.Summary {
	return s.subject.Value().Summary
}

// Subscribe delivers the current State immediately and then every new one.
func (s *Store) Subscribe(fn func(State)) observable.Subscription {
	return s.subject.Subscribe(fn)
}

// SubscribeExpenses is Subscribe narrowed to the collection.
func (s *Store) SubscribeExpenses(fn func([]core.Expense)) observable.Subscription {
	return observable.Map(s.subject, func(st State) []core.Expense { return st.Expenses }, fn)
}

// SubscribeSummary is Subscribe narrowed to the summary.
func (s *Store) SubscribeSummary(fn func(core.Summary)) observable.Subscription {
	return observable.Map(s.subject, func(st State) core.Summary { return st.Summary }, fn)
}

// apply derives the next collection from the current one, recomputes the
// summary and publishes, all under s.mu.
func (s *Store) apply(change Change, next func(current []core.Expense) []core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.subject.Value()
	expenses := next(prev.Expenses)
	state := State{
		Version:  prev.Version + 1,
		Expenses: expenses,
		Summary:  aggregate.Summarize(expenses),
		Change:   change,
	}
	s.subject.Publish(state)

	fields := log.NewFields().WithOperation(string(change.Kind))
	fields[log.FieldVersion] = state.Version
	fields[log.FieldCount] = len(expenses)
	if change.ExpenseID != nil {
		fields[log.FieldExpenseID] = *change.ExpenseID
	}
	s.logger.Debug("Expense state published", fields.ToSlice()...)
}
