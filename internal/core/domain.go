package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the root of every input-validation error. Callers branch
// with errors.Is(err, ErrValidation) to distinguish bad input from I/O
// failure.
var ErrValidation = errors.New("invalid input")

var (
	ErrInvalidAmount  = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrMissingCountry = fmt.Errorf("%w: missing country", ErrValidation)
	ErrMissingType    = fmt.Errorf("%w: missing expense type", ErrValidation)
	ErrMissingDate    = fmt.Errorf("%w: missing date", ErrValidation)
	ErrUnknownMonth   = fmt.Errorf("%w: unknown month", ErrValidation)
	ErrEmptyName      = fmt.Errorf("%w: empty name", ErrValidation)
	ErrNoHomeCountry  = errors.New("no home country configured")
	ErrNotFound       = errors.New("not found")
)

type (
	// Country is immutable reference data seeded at first run.
	Country struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Flag     string `json:"flag"`
		Currency string `json:"currency"`
	}

	// Trip scopes a subset of expenses to a travel period. At most one trip
	// is active at a time; activation is handled by the repository.
	Trip struct {
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		CountryID      int64  `json:"country_id"`
		BaseCurrency   string `json:"base_currency"`
		TargetCurrency string `json:"target_currency"`
		StartDate      *int64 `json:"start_date,omitempty"`
		EndDate        *int64 `json:"end_date,omitempty"`
		IsActive       bool   `json:"is_active"`
	}

	// Expense is a single recorded spend. Amounts are minor units; Date is
	// Unix epoch seconds. Expenses are never edited, only deleted.
	Expense struct {
		ID               int64  `json:"id"`
		Amount           Money  `json:"amount"`
		AmountInHome     Money  `json:"amount_in_home_currency"`
		HomeCurrency     string `json:"home_currency"`
		SelectedCurrency string `json:"selected_currency"`
		CountryID        int64  `json:"country_id"`
		TripID           *int64 `json:"trip_id,omitempty"`
		Type             string `json:"expense_types"`
		Date             int64  `json:"date"`
	}

	// ExpandedExpense is an Expense joined with its country's display fields.
	ExpandedExpense struct {
		Expense
		Country string `json:"country"`
		Flag    string `json:"flag"`
	}

	// CustomCategory is a user-defined extension of the built-in category
	// set. Keys are unique and never shadow a built-in.
	CustomCategory struct {
		ID    int64  `json:"id"`
		Key   string `json:"key"`
		Text  string `json:"text"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}

	// ExpenseFilter is a sparse filter; nil/empty fields contribute no
	// predicate. MonthYear is "<MonthName> <Year>", e.g. "March 2024".
	ExpenseFilter struct {
		CountryID *int64
		TripID    *int64
		Category  string
		MonthYear string
		DateStart *int64
		DateEnd   *int64
	}

	// Subscription is the singleton entitlement row.
	Subscription struct {
		Active    bool  `json:"active"`
		UpdatedAt int64 `json:"updated_at"`
	}
)

// IsEmpty reports whether the filter carries no predicate at all.
func (f ExpenseFilter) IsEmpty() bool {
	return f.CountryID == nil && f.TripID == nil && f.Category == "" &&
		f.MonthYear == "" && f.DateStart == nil && f.DateEnd == nil
}

// Validate checks the entry invariants. Both amounts must be non-negative;
// Amount must also be non-zero, since the entry flow never records an empty
// spend, so zero means the amount was never supplied. AmountInHome may be
// zero: a small amount can legitimately round down to zero cents in the
// home currency.
func (e Expense) Validate() error {
	if e.Amount.Cents < 0 || e.AmountInHome.Cents < 0 {
		return ErrInvalidAmount
	}
	if e.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if e.CountryID == 0 {
		return ErrMissingCountry
	}
	if strings.TrimSpace(e.Type) == "" {
		return ErrMissingType
	}
	if e.Date == 0 {
		return ErrMissingDate
	}
	return nil
}

func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.CountryID == 0 {
		return ErrMissingCountry
	}
	if t.StartDate != nil && t.EndDate != nil && *t.EndDate < *t.StartDate {
		return fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	return nil
}

func (c CustomCategory) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("%w: empty category key", ErrValidation)
	}
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyName
	}
	return nil
}
