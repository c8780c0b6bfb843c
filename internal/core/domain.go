package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Known category labels. The set is open: the backend may return labels
// that are not listed here and they are carried through unchanged.
const (
	CategoryFood          Category = "FOOD"
	CategoryGroceries     Category = "GROCERIES"
	CategoryTransport     Category = "TRANSPORT"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryShopping      Category = "SHOPPING"
	CategoryBills         Category = "BILLS"
	CategoryHealth        Category = "HEALTH"
	CategoryRent          Category = "RENT"
	CategoryOther         Category = "OTHER"
)

type (
	Category string

	// Expense is a record as held by the client. ID is nil until the server
	// assigns one.
	Expense struct {
		ID          *int64
		Description string
		Amount      decimal.Decimal
		Date        time.Time
		Category    Category
		AIInsights  *string // set by the backend when it annotated the expense
	}

	// Draft is the payload of a create request.
	Draft struct {
		Description string
		Amount      decimal.Decimal
		Date        time.Time
		Category    Category
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrInvalidDate      = errors.New("invalid date")
)

// KnownCategories returns the labels the backend categorizer produces.
func KnownCategories() []Category {
	return []Category{
		CategoryFood, CategoryGroceries, CategoryTransport, CategoryEntertainment,
		CategoryShopping, CategoryBills, CategoryHealth, CategoryRent, CategoryOther,
	}
}

func (c Category) String() string {
	return string(c)
}

// NewID returns a pointer suitable for Expense.ID.
func NewID(id int64) *int64 {
	return &id
}

// Identifier returns the server-assigned id and whether one is present.
func (e Expense) Identifier() (int64, bool) {
	if e.ID == nil {
		return 0, false
	}
	return *e.ID, true
}

// HasID reports whether the expense carries the given id.
func (e Expense) HasID(id int64) bool {
	got, ok := e.Identifier()
	return ok && got == id
}

func (e Expense) Validate() error {
	if e.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDraft builds a draft with the placeholder category the backend
// replaces after categorizing the description.
func NewDraft(description string, amount decimal.Decimal, date time.Time) Draft {
	return Draft{
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Date:        date,
		Category:    CategoryOther,
	}
}

func (d Draft) Validate() error {
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
