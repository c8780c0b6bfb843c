package views

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/core"
	"expensetracker/internal/gateway"
	"expensetracker/internal/log"
	"expensetracker/internal/observable"
	"expensetracker/internal/store"
)

// SortOrder is the expense list ordering.
type SortOrder string

const (
	SortDateDesc   SortOrder = "date-desc"
	SortDateAsc    SortOrder = "date-asc"
	SortAmountDesc SortOrder = "amount-desc"
	SortAmountAsc  SortOrder = "amount-asc"
)

// ParseSortOrder validates s. An empty string means SortDateDesc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// ExpenseListModel is what the expense list renders.
type ExpenseListModel struct {
	// Expenses is the filtered and sorted view of the collection.
	Expenses         []core.Expense
	Categories       []core.Category
	Total            decimal.Decimal
	SelectedCategory core.Category
	Sort             SortOrder
	Adding           bool
	DeletingID       *int64
}

type ExpenseList struct {
	store    ExpenseStore
	notifier Notifier
	opts     options

	mu       sync.Mutex
	all      []core.Expense
	category core.Category
	sort     SortOrder
	adding   bool
	deleting *int64
	sub      observable.Subscription
}

func NewExpenseList(s ExpenseStore, n Notifier, opts ...Option) *ExpenseList {
	l := &ExpenseList{
		store:    s,
		notifier: n,
		opts:     buildOptions(opts),
		sort:     SortDateDesc,
	}
	l.sub = s.Subscribe(func(st store.State) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.all = st.Expenses
	})
	return l
}

// Model returns the current list contents.
func (l *ExpenseList) Model() ExpenseListModel {
	l.mu.Lock()
	defer l.mu.Unlock()

	return ExpenseListModel{
		Expenses:         filterAndSort(l.all, l.category, l.sort),
		Categories:       aggregate.Categories(l.all),
		Total:            aggregate.Total(l.all),
		SelectedCategory: l.category,
		Sort:             l.sort,
		Adding:           l.adding,
		DeletingID:       l.deleting,
	}
}

// SetCategory filters the list to c. The empty category shows everything.
func (l *ExpenseList) SetCategory(c core.Category) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.category = c
}

func (l *ExpenseList) SetSort(o SortOrder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sort = o
}

// ClearFilters resets the category filter and the default ordering.
func (l *ExpenseList) ClearFilters() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.category = ""
	l.sort = SortDateDesc
}

// Submit adds an expense dated now with the placeholder category. Invalid
// input is rejected without a request or a notification; the validation
// error is returned so callers can tell.
func (l *ExpenseList) Submit(ctx context.Context, description string, amount decimal.Decimal) (core.Expense, error) {
	return l.SubmitDraft(ctx, core.NewDraft(description, amount, l.opts.now()))
}

// SubmitDraft is Submit for a fully specified draft.
func (l *ExpenseList) SubmitDraft(ctx context.Context, draft core.Draft) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		l.opts.logger.Debug("Draft rejected",
			log.FieldOperation, log.OpCreate,
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldError, err.Error())
		return core.Expense{}, err
	}

	l.mu.Lock()
	l.adding = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.adding = false
		l.mu.Unlock()
	}()

	created, err := l.store.Add(ctx, draft)
	if err != nil {
		l.notifier.Error("Failed to add expense: " + gateway.UserMessage(err))
		return core.Expense{}, err
	}

	l.opts.logger.Debug("Expense submitted",
		log.NewFields().WithExpense(created.ID, created.Description, created.Amount, created.Category.String()).ToSlice()...)
	l.notifier.Success("Expense added successfully!")
	return created, nil
}

// Delete removes the expense with id.
func (l *ExpenseList) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	l.deleting = core.NewID(id)
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.deleting = nil
		l.mu.Unlock()
	}()

	if err := l.store.Remove(ctx, id); err != nil {
		l.notifier.Error("Failed to delete expense: " + gateway.UserMessage(err))
		return err
	}

	l.notifier.Success("Expense deleted successfully!")
	return nil
}

// Close stops following the store.
func (l *ExpenseList) Close() {
	l.sub.Unsubscribe()
}

func filterAndSort(all []core.Expense, category core.Category, order SortOrder) []core.Expense {
	out := make([]core.Expense, 0, len(all))
	for _, e := range all {
		if category == "" || e.Category == category {
			out = append(out, e)
		}
	}

	slices.SortStableFunc(out, func(a, b core.Expense) int {
		switch order {
		case SortDateAsc:
			return a.Date.Compare(b.Date)
		case SortAmountDesc:
			return b.Amount.Cmp(a.Amount)
		case SortAmountAsc:
			return a.Amount.Cmp(b.Amount)
		default:
			return b.Date.Compare(a.Date)
		}
	})
	return out
}
